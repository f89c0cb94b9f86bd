// Package engine implements the chess rules: move legality, check and
// checkmate detection, and committing moves to a board.
//
// An Engine is not safe for concurrent use. Callers sharing one game across
// goroutines must serialize access themselves.
package engine

import (
	"errors"

	"chesstwist/internal/board"
	"chesstwist/internal/core"
)

var (
	ErrInvalidSquare    = errors.New("square out of range")
	ErrNoPiece          = errors.New("no piece on origin square")
	ErrNotYourTurn      = errors.New("piece does not belong to the side to move")
	ErrNotPromotable    = errors.New("no pawn awaiting promotion on square")
	ErrInvalidPromotion = errors.New("pawn can only promote to queen, rook, bishop or knight")
)

// Engine owns one board and the check status derived from it
type Engine struct {
	board *board.Board

	inCheck     bool
	checking    board.Square
	hasChecking bool
	gameOver    bool
}

// New returns an engine set up with the standard starting position
func New() *Engine {
	return FromBoard(board.New())
}

// FromBoard takes ownership of b and computes its check status
func FromBoard(b *board.Board) *Engine {
	e := &Engine{board: b}
	e.refreshStatus()
	return e
}

// Reset discards the position and starts over from the standard layout
func (e *Engine) Reset() {
	e.board.Reset()
	e.inCheck = false
	e.hasChecking = false
	e.checking = board.Square{}
	e.gameOver = false
}

// Board returns a copy of the current position
func (e *Engine) Board() *board.Board {
	return e.board.Clone()
}

func (e *Engine) PieceAt(sq board.Square) (board.Piece, bool) {
	return e.board.PieceAt(sq)
}

func (e *Engine) ActiveColor() core.Color {
	return e.board.Turn()
}

// InCheck reports whether the side to move was in check after the last commit
func (e *Engine) InCheck() bool {
	return e.inCheck
}

// CheckingSquare names the square of the piece found attacking the king by
// the most recent detection pass
func (e *Engine) CheckingSquare() (board.Square, bool) {
	return e.checking, e.hasChecking
}

// IsGameOver is set once a committed move or promotion leaves the side to
// move checkmated. It is advisory: the engine keeps accepting commits.
func (e *Engine) IsGameOver() bool {
	return e.gameOver
}

// refreshStatus recomputes the derived flags for the side to move
func (e *Engine) refreshStatus() {
	active := e.board.Turn()
	e.inCheck = e.IsKingInCheck(active)
	if e.inCheck {
		e.gameOver = e.IsCheckmate(active)
	}
}
