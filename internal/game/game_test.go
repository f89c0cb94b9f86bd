package game

import (
	"testing"

	"chesstwist/internal/board"
	"chesstwist/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T, fen string) *Game {
	t.Helper()
	g, err := New(fen,
		core.NewPlayer(core.PlayerConfig{Name: "alice"}, core.ColorWhite),
		core.NewPlayer(core.PlayerConfig{Name: "bob"}, core.ColorBlack),
	)
	require.NoError(t, err)
	return g
}

func move(t *testing.T, g *Game, m string) *MoveResult {
	t.Helper()
	from, err := board.ParseSquare(m[:2])
	require.NoError(t, err)
	to, err := board.ParseSquare(m[2:4])
	require.NoError(t, err)
	result, err := g.MakeMove(from, to)
	require.NoError(t, err, m)
	return result
}

func TestNewGameDefaults(t *testing.T) {
	g := newGame(t, "")

	assert.Equal(t, board.StartingFEN, g.CurrentFEN())
	assert.Equal(t, board.StartingFEN, g.InitialFEN())
	assert.Equal(t, core.ColorWhite, g.NextTurn())
	assert.Equal(t, "alice", g.NextPlayer().Name)
	assert.Equal(t, core.StateOngoing, g.State())
	assert.Empty(t, g.Moves())
	assert.Zero(t, g.MoveCount())
}

func TestNewGameRejectsBadFEN(t *testing.T) {
	_, err := New("not a fen", nil, nil)
	assert.Error(t, err)
}

func TestMoveThenUndoRestoresPosition(t *testing.T) {
	g := newGame(t, "")
	move(t, g, "e2e4")
	before := g.CurrentFEN()

	result := move(t, g, "e7e5")
	assert.Equal(t, "e7e5", result.Move)
	assert.Equal(t, core.ColorBlack, result.Player)
	assert.Equal(t, []string{"e2e4", "e7e5"}, g.Moves())

	require.NoError(t, g.Undo(1))
	assert.Equal(t, before, g.CurrentFEN())
	assert.Equal(t, before, g.Board().FEN())
	assert.Equal(t, core.ColorBlack, g.NextTurn())
	assert.Equal(t, []string{"e2e4"}, g.Moves())
	assert.Nil(t, g.LastResult())

	require.NoError(t, g.Undo(1))
	assert.Equal(t, board.StartingFEN, g.Board().FEN())
}

func TestUndoBounds(t *testing.T) {
	g := newGame(t, "")
	assert.Error(t, g.Undo(0))
	assert.Error(t, g.Undo(1))

	move(t, g, "e2e4")
	assert.Error(t, g.Undo(2))
	assert.NoError(t, g.Undo(1))
}

func TestIllegalMoveRefused(t *testing.T) {
	g := newGame(t, "")

	_, err := g.MakeMove(board.Sq(4, 1), board.Sq(4, 4))
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Equal(t, board.StartingFEN, g.CurrentFEN())
}

func TestMovesRefusedAfterCheckmate(t *testing.T) {
	g := newGame(t, "")
	for _, m := range []string{"f2f3", "e7e5", "g2g4"} {
		move(t, g, m)
	}
	result := move(t, g, "d8h4")

	assert.Equal(t, core.StateBlackWins, result.GameState)
	assert.True(t, result.InCheck)
	assert.Equal(t, core.StateBlackWins, g.State())

	sq, ok := g.CheckingSquare()
	require.True(t, ok)
	assert.Equal(t, "h4", sq.String())

	_, err := g.MakeMove(board.Sq(4, 0), board.Sq(5, 1))
	assert.ErrorIs(t, err, ErrGameOver)
	assert.Empty(t, g.LegalDestinations(board.Sq(4, 0)))

	require.NoError(t, g.Undo(1))
	assert.Equal(t, core.StateOngoing, g.State())
}

func TestStalemateEndsGame(t *testing.T) {
	g := newGame(t, "7k/8/4Q3/6K1/8/8/8/8 w - - 0 1")
	result := move(t, g, "e6f7")

	assert.Equal(t, core.StateStalemate, result.GameState)
	assert.False(t, result.InCheck)

	_, err := g.MakeMove(board.Sq(7, 7), board.Sq(6, 7))
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestPromotionBlocksMovesUntilChosen(t *testing.T) {
	g := newGame(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	result := move(t, g, "a7a8")
	assert.True(t, result.Promotion)

	sq, ok := g.PendingPromotion()
	require.True(t, ok)
	assert.Equal(t, "a8", sq.String())

	_, err := g.MakeMove(board.Sq(4, 7), board.Sq(3, 7))
	assert.ErrorIs(t, err, ErrPromotionPending)
	assert.Empty(t, g.LegalDestinations(board.Sq(4, 7)))

	_, err = g.Promote(core.King)
	assert.Error(t, err)

	result, err = g.Promote(core.Queen)
	require.NoError(t, err)
	assert.Equal(t, "a7a8q", result.Move)
	assert.Equal(t, core.ColorWhite, result.Player)
	assert.True(t, result.InCheck)
	assert.Equal(t, []string{"a7a8q"}, g.Moves())

	p, ok := g.Board().PieceAt(sq)
	require.True(t, ok)
	assert.Equal(t, core.Queen, p.Type)

	_, ok = g.PendingPromotion()
	assert.False(t, ok)
	assert.Equal(t, g.Board().FEN(), g.CurrentFEN())

	_, err = g.Promote(core.Queen)
	assert.ErrorIs(t, err, ErrNoPromotion)

	// Black escapes the check
	move(t, g, "e8e7")
}

func TestUndoClearsPendingPromotion(t *testing.T) {
	g := newGame(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	move(t, g, "a7a8")

	require.NoError(t, g.Undo(1))
	_, ok := g.PendingPromotion()
	assert.False(t, ok)

	p, ok := g.Board().PieceAt(board.Sq(0, 6))
	require.True(t, ok)
	assert.Equal(t, core.Pawn, p.Type)
}

func TestResetStartsOver(t *testing.T) {
	g := newGame(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	move(t, g, "a7a8")

	g.Reset()

	assert.Equal(t, board.StartingFEN, g.CurrentFEN())
	assert.Equal(t, core.StateOngoing, g.State())
	assert.Empty(t, g.Moves())
	_, ok := g.PendingPromotion()
	assert.False(t, ok)
}
