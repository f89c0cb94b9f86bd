package engine

import (
	"chesstwist/internal/board"
	"chesstwist/internal/core"
)

// attacker finds a piece of the opponent of c that attacks c's king on b.
// A missing king is never in check.
func attacker(b *board.Board, c core.Color) (board.Square, bool) {
	king, ok := b.KingSquare(c)
	if !ok {
		return board.Square{}, false
	}
	return squareAttacker(b, king, core.OppositeColor(c))
}

// squareAttacker returns the first piece of color by whose raw pattern reaches target
func squareAttacker(b *board.Board, target board.Square, by core.Color) (board.Square, bool) {
	for _, from := range b.Occupied(by) {
		p, _ := b.PieceAt(from)
		if reaches(b, p, from, target) {
			return from, true
		}
	}
	return board.Square{}, false
}

// IsKingInCheck reports whether c's king is attacked and records the
// attacking square for CheckingSquare
func (e *Engine) IsKingInCheck(c core.Color) bool {
	e.hasChecking = false
	e.checking = board.Square{}

	sq, ok := attacker(e.board, c)
	if ok {
		e.checking = sq
		e.hasChecking = true
	}
	return ok
}

// IsCheckmate reports whether c is in check with no legal move. Every piece
// of c is tried against all 64 squares through the full legality check.
func (e *Engine) IsCheckmate(c core.Color) bool {
	if !e.IsKingInCheck(c) {
		return false
	}
	return !hasLegalMove(e.board, c)
}

// IsStalemate reports whether c is not in check yet has no legal move
func (e *Engine) IsStalemate(c core.Color) bool {
	if _, inCheck := attacker(e.board, c); inCheck {
		return false
	}
	return !hasLegalMove(e.board, c)
}

func hasLegalMove(b *board.Board, c core.Color) bool {
	for _, from := range b.Occupied(c) {
		for r := 0; r < board.Size; r++ {
			for f := 0; f < board.Size; f++ {
				if legalFor(b, c, from, board.Sq(f, r)) {
					return true
				}
			}
		}
	}
	return false
}
