package engine

import (
	"chesstwist/internal/board"
	"chesstwist/internal/core"
)

// reaches reports whether p standing on from may travel to to under its
// movement pattern on b, including path blocking and the pawn's occupancy
// rules. Castling is not considered here; see castleAllowed.
//
// This is the raw pattern used by attack detection, so it must never consult
// king safety: castling legality calls back into attack detection and any
// recursion here would not terminate.
func reaches(b *board.Board, p board.Piece, from, to board.Square) bool {
	df := to.File - from.File
	dr := to.Rank - from.Rank
	if df == 0 && dr == 0 {
		return false
	}

	switch p.Type {
	case core.Pawn:
		return pawnReaches(b, p, from, to)
	case core.Rook:
		return (df == 0 || dr == 0) && pathClear(b, from, to)
	case core.Knight:
		adf, adr := abs(df), abs(dr)
		return (adf == 2 && adr == 1) || (adf == 1 && adr == 2)
	case core.Bishop:
		return abs(df) == abs(dr) && pathClear(b, from, to)
	case core.Queen:
		return (df == 0 || dr == 0 || abs(df) == abs(dr)) && pathClear(b, from, to)
	case core.King:
		return abs(df) <= 1 && abs(dr) <= 1
	default:
		return false
	}
}

func pawnReaches(b *board.Board, p board.Piece, from, to board.Square) bool {
	dir := 1
	if p.Color == core.ColorBlack {
		dir = -1
	}
	df := to.File - from.File
	dr := to.Rank - from.Rank

	if df == 0 {
		if dr == dir {
			return b.IsEmpty(to)
		}
		// Double step uses the fixed starting rank, not hasMoved
		if dr == 2*dir && from.Rank == board.PawnStartRank(p.Color) {
			return b.IsEmpty(board.Sq(from.File, from.Rank+dir)) && b.IsEmpty(to)
		}
		return false
	}

	if abs(df) == 1 && dr == dir {
		target, ok := b.PieceAt(to)
		return ok && target.Color != p.Color
	}
	return false
}

// pathClear reports whether every square strictly between from and to along
// a straight or diagonal line is empty
func pathClear(b *board.Board, from, to board.Square) bool {
	stepF := sign(to.File - from.File)
	stepR := sign(to.Rank - from.Rank)
	sq := board.Sq(from.File+stepF, from.Rank+stepR)
	for sq != to {
		if !b.IsEmpty(sq) {
			return false
		}
		sq = board.Sq(sq.File+stepF, sq.Rank+stepR)
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
