package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"chesstwist/internal/board"
	"chesstwist/internal/cli"
	"chesstwist/internal/game"
	"chesstwist/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, script ...string) (*CLIHandler, *service.Service, string) {
	t.Helper()
	svc := service.New(nil, []byte("cli-test-secret-0123456789abcdef"), time.Hour)
	t.Cleanup(func() { svc.Shutdown(time.Second) })

	var out bytes.Buffer
	input := strings.NewReader(strings.Join(script, "\n") + "\n")
	view := cli.New(cli.NewScannerReader(input), &out)

	h := New(svc, view)
	h.Run()
	return h, svc, out.String()
}

func currentFEN(t *testing.T, h *CLIHandler, svc *service.Service) string {
	t.Helper()
	var fen string
	require.NoError(t, svc.WithGame(h.GameID(), func(g *game.Game) error {
		fen = g.CurrentFEN()
		return nil
	}))
	return fen
}

func TestNoGameYet(t *testing.T) {
	h, _, out := runScript(t, "e2e4", "quit")
	assert.Empty(t, h.GameID())
	assert.Contains(t, out, "No active game")
}

func TestPlayAndUndo(t *testing.T) {
	h, svc, out := runScript(t, "new", "e2e4", "e7e5", "undo 2", "history")
	require.NotEmpty(t, h.GameID())

	assert.Contains(t, out, "Game started.")
	assert.Contains(t, out, "White: e2e4")
	assert.Contains(t, out, "Black: e7e5")
	assert.Contains(t, out, "2 moves undone")
	assert.Equal(t, board.StartingFEN, currentFEN(t, h, svc))
}

func TestIllegalMoveReported(t *testing.T) {
	h, svc, out := runScript(t, "new", "e2e5", "e7e5")
	assert.Contains(t, out, "invalid move")
	assert.Contains(t, out, "illegal move: e7e5")
	assert.Equal(t, board.StartingFEN, currentFEN(t, h, svc))
}

func TestMovesMarksTargets(t *testing.T) {
	_, _, out := runScript(t, "new", "moves g1", "moves e1")
	assert.Contains(t, out, "3 . . . . . * . *  3")
	assert.Contains(t, out, "No legal moves from e1")
}

func TestPromotionFromPosition(t *testing.T) {
	h, svc, out := runScript(t, "new 4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7a8", "e8d7", "promote k", "promote r")
	assert.Contains(t, out, "promote <q|r|b|n>")
	assert.Contains(t, out, "promotion pending")
	assert.Contains(t, out, "Promotion piece must be one of")
	assert.Contains(t, out, "White: a7a8r")
	assert.Equal(t, "R3k3/8/8/8/8/8/8/4K3 b - - 0 1", currentFEN(t, h, svc))
}

func TestCheckmateEndsGame(t *testing.T) {
	_, _, out := runScript(t, "new", "f2f3", "e7e5", "g2g4", "d8h4", "a2a3")
	assert.Contains(t, out, "Game Over: black wins")
	assert.Contains(t, out, "4 . . . . . . P q! 4")
	assert.Contains(t, out, "game is over")
}

func TestResetAndThemes(t *testing.T) {
	h, svc, out := runScript(t, "color blue", "new", "d2d4", "reset", "color brown")
	assert.Contains(t, out, "invalid theme")
	assert.Contains(t, out, "Game reset.")
	assert.Contains(t, out, "Color theme set to: brown")
	assert.Equal(t, board.StartingFEN, currentFEN(t, h, svc))
}

func TestNewGameReplacesPrevious(t *testing.T) {
	h, svc, out := runScript(t, "new", "new not-a-fen", "new")
	assert.Contains(t, out, "could not start the game")
	assert.Equal(t, 1, svc.GameCount())
	assert.NotEmpty(t, h.GameID())
}
