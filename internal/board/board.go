package board

import (
	"fmt"
	"strings"

	"chesstwist/internal/core"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	Size = 8
)

var backRank = [Size]core.PieceType{
	core.Rook, core.Knight, core.Bishop, core.Queen,
	core.King, core.Bishop, core.Knight, core.Rook,
}

// Square is a board coordinate, file 0 is the a-file and rank 0 is White's back rank
type Square struct {
	File int
	Rank int
}

func Sq(file, rank int) Square {
	return Square{File: file, Rank: rank}
}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File < Size && s.Rank >= 0 && s.Rank < Size
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+s.File, '1'+s.Rank)
}

// ParseSquare reads a square name such as "e2"
func ParseSquare(name string) (Square, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", name)
	}
	if name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return Square{}, fmt.Errorf("invalid square %q", name)
	}
	return Square{File: int(name[0] - 'a'), Rank: int(name[1] - '1')}, nil
}

// Piece occupies one square. The zero value is an empty square.
type Piece struct {
	Type     core.PieceType
	Color    core.Color
	HasMoved bool
}

func (p Piece) Empty() bool {
	return p.Type == core.NoPiece
}

// Symbol returns the FEN letter, uppercase for White
func (p Piece) Symbol() byte {
	ch := p.Type.Symbol()
	if p.Color == core.ColorWhite && ch != '.' {
		ch -= 0x20
	}
	return ch
}

// Board holds piece placement and the side to move. Squares are indexed
// [rank][file]; a Board is a plain value so copying it yields an independent
// position.
type Board struct {
	squares  [Size][Size]Piece
	turn     core.Color
	halfmove int
	fullmove int
}

// New returns a board in the standard starting position
func New() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Empty returns a board without pieces, used to build positions piece by piece
func Empty(turn core.Color) *Board {
	return &Board{turn: turn, fullmove: 1}
}

// Reset clears every square and restores the standard initial layout with White to move
func (b *Board) Reset() {
	*b = Board{turn: core.ColorWhite, fullmove: 1}
	for f := 0; f < Size; f++ {
		b.squares[0][f] = Piece{Type: backRank[f], Color: core.ColorWhite}
		b.squares[1][f] = Piece{Type: core.Pawn, Color: core.ColorWhite}
		b.squares[6][f] = Piece{Type: core.Pawn, Color: core.ColorBlack}
		b.squares[7][f] = Piece{Type: backRank[f], Color: core.ColorBlack}
	}
}

func (b *Board) Clone() *Board {
	c := *b
	return &c
}

func (b *Board) Turn() core.Color {
	return b.turn
}

func (b *Board) SetTurn(c core.Color) {
	b.turn = c
}

// FlipTurn passes the move to the other side and advances the move clocks.
// resetHalfmove marks a pawn move or capture.
func (b *Board) FlipTurn(resetHalfmove bool) {
	if resetHalfmove {
		b.halfmove = 0
	} else {
		b.halfmove++
	}
	if b.turn == core.ColorBlack {
		b.fullmove++
	}
	b.turn = core.OppositeColor(b.turn)
}

func (b *Board) Fullmove() int {
	return b.fullmove
}

func (b *Board) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	p := b.squares[sq.Rank][sq.File]
	return p, !p.Empty()
}

func (b *Board) IsEmpty(sq Square) bool {
	_, ok := b.PieceAt(sq)
	return !ok
}

// Place puts p on sq, replacing any occupant
func (b *Board) Place(sq Square, p Piece) {
	b.squares[sq.Rank][sq.File] = p
}

// Remove empties sq and returns the piece that stood there
func (b *Board) Remove(sq Square) (Piece, bool) {
	p, ok := b.PieceAt(sq)
	if ok {
		b.squares[sq.Rank][sq.File] = Piece{}
	}
	return p, ok
}

// KingSquare locates the king of color c
func (b *Board) KingSquare(c core.Color) (Square, bool) {
	for r := 0; r < Size; r++ {
		for f := 0; f < Size; f++ {
			p := b.squares[r][f]
			if p.Type == core.King && p.Color == c {
				return Sq(f, r), true
			}
		}
	}
	return Square{}, false
}

// Occupied lists the squares holding pieces of color c, rank by rank from a1
func (b *Board) Occupied(c core.Color) []Square {
	var out []Square
	for r := 0; r < Size; r++ {
		for f := 0; f < Size; f++ {
			p := b.squares[r][f]
			if !p.Empty() && p.Color == c {
				out = append(out, Sq(f, r))
			}
		}
	}
	return out
}

// Count returns the number of pieces on the board
func (b *Board) Count() int {
	n := 0
	for r := 0; r < Size; r++ {
		for f := 0; f < Size; f++ {
			if !b.squares[r][f].Empty() {
				n++
			}
		}
	}
	return n
}

// PawnStartRank is the rank a pawn of color c may double-step from
func PawnStartRank(c core.Color) int {
	if c == core.ColorWhite {
		return 1
	}
	return 6
}

// LastRank is the rank on which a pawn of color c promotes
func LastRank(c core.Color) int {
	if c == core.ColorWhite {
		return 7
	}
	return 0
}

// HomeRank is the back rank of color c
func HomeRank(c core.Color) int {
	if c == core.ColorWhite {
		return 0
	}
	return 7
}
