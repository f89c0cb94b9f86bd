package engine

import (
	"fmt"

	"chesstwist/internal/board"
	"chesstwist/internal/core"
)

// ApplyMove commits from -> to without re-running the legality check. Callers
// are expected to have asked IsLegal first. Castling relocates the rook, a
// capture removes the target, and the turn passes to the other side.
func (e *Engine) ApplyMove(from, to board.Square) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidSquare, from, to)
	}
	p, ok := e.board.PieceAt(from)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPiece, from)
	}
	if p.Color != e.board.Turn() {
		return fmt.Errorf("%w: %s", ErrNotYourTurn, from)
	}

	if isCastle(p, from, to) {
		dir := sign(to.File - from.File)
		rookFile := 0
		if dir > 0 {
			rookFile = board.Size - 1
		}
		if rook, ok := e.board.Remove(board.Sq(rookFile, from.Rank)); ok {
			rook.HasMoved = true
			e.board.Place(board.Sq(to.File-dir, from.Rank), rook)
		}
	}

	_, captured := e.board.Remove(to)
	e.board.Remove(from)
	p.HasMoved = true
	e.board.Place(to, p)

	e.board.FlipTurn(p.Type == core.Pawn || captured)
	e.refreshStatus()
	return nil
}

// NeedsPromotion reports whether sq holds a pawn of the side that just moved
// standing on its last rank
func (e *Engine) NeedsPromotion(sq board.Square) bool {
	p, ok := e.board.PieceAt(sq)
	if !ok || p.Type != core.Pawn {
		return false
	}
	mover := core.OppositeColor(e.board.Turn())
	return p.Color == mover && sq.Rank == board.LastRank(mover)
}

// Promote replaces the pawn on sq with a piece of type t. The turn is not
// changed; the move that reached the last rank already passed it.
func (e *Engine) Promote(sq board.Square, t core.PieceType) error {
	if !sq.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSquare, sq)
	}
	if !t.Promotable() {
		return fmt.Errorf("%w: %s", ErrInvalidPromotion, t)
	}
	if !e.NeedsPromotion(sq) {
		return fmt.Errorf("%w: %s", ErrNotPromotable, sq)
	}

	pawn, _ := e.board.PieceAt(sq)
	e.board.Place(sq, board.Piece{Type: t, Color: pawn.Color, HasMoved: true})
	e.refreshStatus()
	return nil
}
