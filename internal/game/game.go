package game

import (
	"errors"
	"fmt"

	"chesstwist/internal/board"
	"chesstwist/internal/core"
	"chesstwist/internal/engine"
)

var (
	ErrGameOver         = errors.New("game is over")
	ErrIllegalMove      = errors.New("illegal move")
	ErrPromotionPending = errors.New("promotion pending")
	ErrNoPromotion      = errors.New("no promotion pending")
)

type Snapshot struct {
	Board        *board.Board
	FEN          string     // Board state at this point
	PreviousMove string     // Move that created this position (empty for initial)
	NextTurn     core.Color // Whose turn it is at this position
}

// MoveResult tracks the outcome of a move
type MoveResult struct {
	Move      string
	Player    core.Color
	GameState core.State
	InCheck   bool
	Promotion bool // Move reached the last rank and waits for a piece choice
}

// Game is one session around an engine: players, history and result. It is
// not safe for concurrent use.
type Game struct {
	engine     *engine.Engine
	snapshots  []Snapshot
	players    map[core.Color]*core.Player
	state      core.State
	pending    *board.Square
	lastResult *MoveResult
}

// New starts a game from fen, or from the standard layout when fen is empty
func New(fen string, whitePlayer, blackPlayer *core.Player) (*Game, error) {
	b := board.New()
	if fen != "" {
		parsed, err := board.ParseFEN(fen)
		if err != nil {
			return nil, err
		}
		b = parsed
	}

	g := &Game{
		engine: engine.FromBoard(b),
		players: map[core.Color]*core.Player{
			core.ColorWhite: whitePlayer,
			core.ColorBlack: blackPlayer,
		},
	}
	g.snapshots = []Snapshot{g.snapshot("")}
	g.state = g.evaluate()
	return g, nil
}

func (g *Game) snapshot(move string) Snapshot {
	b := g.engine.Board()
	return Snapshot{
		Board:        b,
		FEN:          b.FEN(),
		PreviousMove: move,
		NextTurn:     b.Turn(),
	}
}

// evaluate derives the session state from the engine for the side to move
func (g *Game) evaluate() core.State {
	active := g.engine.ActiveColor()
	switch {
	case g.engine.IsGameOver():
		return core.WinFor(core.OppositeColor(active))
	case g.engine.IsStalemate(active):
		return core.StateStalemate
	default:
		return core.StateOngoing
	}
}

// MakeMove validates and commits from -> to. A pawn reaching its last rank
// leaves the game waiting on Promote before the next move.
func (g *Game) MakeMove(from, to board.Square) (*MoveResult, error) {
	if g.state.IsOver() {
		return nil, ErrGameOver
	}
	if g.pending != nil {
		return nil, fmt.Errorf("%w on %s", ErrPromotionPending, g.pending)
	}
	if !g.engine.IsLegal(from, to) {
		return nil, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}

	mover := g.engine.ActiveColor()
	if err := g.engine.ApplyMove(from, to); err != nil {
		return nil, err
	}

	move := from.String() + to.String()
	result := &MoveResult{Move: move, Player: mover}

	if g.engine.NeedsPromotion(to) {
		sq := to
		g.pending = &sq
		result.Promotion = true
	} else {
		g.state = g.evaluate()
	}

	g.snapshots = append(g.snapshots, g.snapshot(move))
	result.GameState = g.state
	result.InCheck = g.engine.InCheck()
	g.lastResult = result
	return result, nil
}

// Promote completes a pending promotion. The last history entry is rewritten
// so the recorded move carries the piece letter, e.g. e7e8q.
func (g *Game) Promote(t core.PieceType) (*MoveResult, error) {
	if g.pending == nil {
		return nil, ErrNoPromotion
	}
	if err := g.engine.Promote(*g.pending, t); err != nil {
		return nil, err
	}
	g.pending = nil
	g.state = g.evaluate()

	last := &g.snapshots[len(g.snapshots)-1]
	move := last.PreviousMove + string(t.Symbol())
	*last = g.snapshot(move)

	result := &MoveResult{
		Move:      move,
		Player:    core.OppositeColor(g.engine.ActiveColor()),
		GameState: g.state,
		InCheck:   g.engine.InCheck(),
	}
	g.lastResult = result
	return result, nil
}

// Undo takes back count moves, restoring the position from history
func (g *Game) Undo(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	availableMoves := len(g.snapshots) - 1
	if availableMoves < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, availableMoves)
	}

	g.snapshots = g.snapshots[:len(g.snapshots)-count]
	g.engine = engine.FromBoard(g.CurrentSnapshot().Board.Clone())
	g.pending = nil
	g.state = g.evaluate()
	g.lastResult = nil
	return nil
}

// Reset discards the history and restarts from the standard layout
func (g *Game) Reset() {
	g.engine.Reset()
	g.snapshots = []Snapshot{g.snapshot("")}
	g.pending = nil
	g.state = core.StateOngoing
	g.lastResult = nil
}

func (g *Game) LastResult() *MoveResult {
	return g.lastResult
}

func (g *Game) CurrentSnapshot() Snapshot {
	return g.snapshots[len(g.snapshots)-1]
}

func (g *Game) CurrentFEN() string {
	return g.CurrentSnapshot().FEN
}

func (g *Game) NextTurn() core.Color {
	return g.engine.ActiveColor()
}

func (g *Game) NextPlayer() *core.Player {
	return g.players[g.NextTurn()]
}

func (g *Game) Player(color core.Color) *core.Player {
	return g.players[color]
}

// Board returns a copy of the current position
func (g *Game) Board() *board.Board {
	return g.engine.Board()
}

func (g *Game) InCheck() bool {
	return g.engine.InCheck()
}

// CheckingSquare reports the attacker of the side to move's king, if any
func (g *Game) CheckingSquare() (board.Square, bool) {
	if !g.engine.InCheck() {
		return board.Square{}, false
	}
	return g.engine.CheckingSquare()
}

// PendingPromotion returns the square of a pawn waiting for a piece choice
func (g *Game) PendingPromotion() (board.Square, bool) {
	if g.pending == nil {
		return board.Square{}, false
	}
	return *g.pending, true
}

// LegalDestinations is empty while the game is over or a promotion is pending
func (g *Game) LegalDestinations(sq board.Square) []board.Square {
	if g.state.IsOver() || g.pending != nil {
		return nil
	}
	return g.engine.LegalDestinations(sq)
}

func (g *Game) Moves() []string {
	moves := []string{}
	for i := 1; i < len(g.snapshots); i++ {
		if g.snapshots[i].PreviousMove != "" {
			moves = append(moves, g.snapshots[i].PreviousMove)
		}
	}
	return moves
}

// MoveCount is the number of committed moves in the history
func (g *Game) MoveCount() int {
	return len(g.snapshots) - 1
}

func (g *Game) State() core.State {
	return g.state
}

func (g *Game) InitialFEN() string {
	if len(g.snapshots) > 0 {
		return g.snapshots[0].FEN
	}
	return board.StartingFEN
}
