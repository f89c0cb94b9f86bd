package engine

import (
	"chesstwist/internal/board"
	"chesstwist/internal/core"
)

// IsLegal reports whether the side to move may play from -> to. It never
// modifies the position.
func (e *Engine) IsLegal(from, to board.Square) bool {
	return legalFor(e.board, e.board.Turn(), from, to)
}

// LegalDestinations lists every square the piece on sq may legally move to,
// rank by rank from a1
func (e *Engine) LegalDestinations(sq board.Square) []board.Square {
	var out []board.Square
	for r := 0; r < board.Size; r++ {
		for f := 0; f < board.Size; f++ {
			to := board.Sq(f, r)
			if e.IsLegal(sq, to) {
				out = append(out, to)
			}
		}
	}
	return out
}

// legalFor checks a move for color c in order: owner, target, pattern, then
// king safety on a scratch copy of b
func legalFor(b *board.Board, c core.Color, from, to board.Square) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}

	p, ok := b.PieceAt(from)
	if !ok || p.Color != c {
		return false
	}
	if target, ok := b.PieceAt(to); ok && target.Color == p.Color {
		return false
	}

	if isCastle(p, from, to) {
		if !castleAllowed(b, p, from, to) {
			return false
		}
	} else if !reaches(b, p, from, to) {
		return false
	}

	scratch := b.Clone()
	scratch.Remove(from)
	scratch.Place(to, p)
	_, inCheck := attacker(scratch, c)
	return !inCheck
}

func isCastle(p board.Piece, from, to board.Square) bool {
	return p.Type == core.King && from.Rank == to.Rank && abs(to.File-from.File) == 2
}

// castleAllowed applies the castling preconditions. The square the rook
// crosses is not tested for attack; only the king's origin and transit
// squares are, and the destination is covered by the general safety check.
func castleAllowed(b *board.Board, king board.Piece, from, to board.Square) bool {
	if king.HasMoved {
		return false
	}

	dir := sign(to.File - from.File)
	rookFile := 0
	if dir > 0 {
		rookFile = board.Size - 1
	}
	rookSq := board.Sq(rookFile, from.Rank)
	rook, ok := b.PieceAt(rookSq)
	if !ok || rook.Type != core.Rook || rook.Color != king.Color || rook.HasMoved {
		return false
	}

	if !pathClear(b, from, rookSq) {
		return false
	}

	if _, inCheck := attacker(b, king.Color); inCheck {
		return false
	}

	transit := board.Sq(from.File+dir, from.Rank)
	scratch := b.Clone()
	scratch.Remove(from)
	scratch.Place(transit, king)
	_, inCheck := attacker(scratch, king.Color)
	return !inCheck
}
