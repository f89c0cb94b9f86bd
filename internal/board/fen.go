package board

import (
	"fmt"
	"strconv"
	"strings"

	"chesstwist/internal/core"
)

// ParseFEN builds a board from a FEN record. The en passant field is accepted
// and ignored. Castling availability is folded into the hasMoved flags of the
// kings and corner rooks; every other non-pawn piece is treated as moved.
func ParseFEN(fen string) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 || len(parts) > 6 {
		return nil, fmt.Errorf("invalid FEN: expected 2 to 6 fields, got %d", len(parts))
	}

	b := &Board{fullmove: 1}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != Size {
		return nil, fmt.Errorf("invalid FEN: expected 8 ranks")
	}

	kings := map[core.Color]int{}
	for i, row := range ranks {
		rank := Size - 1 - i
		file := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= Size {
				return nil, fmt.Errorf("invalid FEN: too many pieces in rank %d", rank+1)
			}
			t, ok := core.PieceTypeFromSymbol(ch)
			if !ok {
				return nil, fmt.Errorf("invalid FEN: unknown piece %q", ch)
			}
			color := core.ColorBlack
			if ch >= 'A' && ch <= 'Z' {
				color = core.ColorWhite
			}
			if t == core.Pawn && (rank == 0 || rank == Size-1) {
				return nil, fmt.Errorf("invalid FEN: pawn on rank %d", rank+1)
			}
			if t == core.King {
				kings[color]++
			}
			moved := t != core.Pawn || rank != PawnStartRank(color)
			b.squares[rank][file] = Piece{Type: t, Color: color, HasMoved: moved}
			file++
		}
		if file != Size {
			return nil, fmt.Errorf("invalid FEN: rank %d has %d files", rank+1, file)
		}
	}
	if kings[core.ColorWhite] != 1 || kings[core.ColorBlack] != 1 {
		return nil, fmt.Errorf("invalid FEN: each side needs exactly one king")
	}

	turn, ok := core.ParseColor(parts[1])
	if !ok || len(parts[1]) != 1 {
		return nil, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}
	b.turn = turn

	if len(parts) > 2 && parts[2] != "-" {
		for _, ch := range parts[2] {
			var color core.Color
			var rookFile int
			switch ch {
			case 'K':
				color, rookFile = core.ColorWhite, Size-1
			case 'Q':
				color, rookFile = core.ColorWhite, 0
			case 'k':
				color, rookFile = core.ColorBlack, Size-1
			case 'q':
				color, rookFile = core.ColorBlack, 0
			default:
				return nil, fmt.Errorf("invalid FEN: castling field %q", parts[2])
			}
			b.markUnmoved(color, rookFile)
		}
	}

	if len(parts) > 4 {
		n, err := strconv.Atoi(parts[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid FEN: halfmove counter")
		}
		b.halfmove = n
	}
	if len(parts) > 5 {
		n, err := strconv.Atoi(parts[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid FEN: fullmove counter")
		}
		b.fullmove = n
	}

	return b, nil
}

// markUnmoved clears hasMoved for the king and the corner rook named by one
// castling right, when both stand on their home squares
func (b *Board) markUnmoved(c core.Color, rookFile int) {
	home := HomeRank(c)
	king := &b.squares[home][4]
	rook := &b.squares[home][rookFile]
	if king.Type != core.King || king.Color != c || rook.Type != core.Rook || rook.Color != c {
		return
	}
	king.HasMoved = false
	rook.HasMoved = false
}

// FEN serializes the position. En passant is not tracked and always "-".
func (b *Board) FEN() string {
	var sb strings.Builder
	for r := Size - 1; r >= 0; r-- {
		empty := 0
		for f := 0; f < Size; f++ {
			p := b.squares[r][f]
			if p.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}

	fmt.Fprintf(&sb, " %s %s - %d %d", b.turn, b.castlingRights(), b.halfmove, b.fullmove)
	return sb.String()
}

func (b *Board) castlingRights() string {
	var sb strings.Builder
	for _, c := range []core.Color{core.ColorWhite, core.ColorBlack} {
		home := HomeRank(c)
		king := b.squares[home][4]
		if king.Type != core.King || king.Color != c || king.HasMoved {
			continue
		}
		for _, side := range []struct {
			file   int
			symbol byte
		}{{Size - 1, 'k'}, {0, 'q'}} {
			rook := b.squares[home][side.file]
			if rook.Type == core.Rook && rook.Color == c && !rook.HasMoved {
				ch := side.symbol
				if c == core.ColorWhite {
					ch -= 0x20
				}
				sb.WriteByte(ch)
			}
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}
