package board

import (
	"strings"
	"testing"

	"chesstwist/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetRestoresStandardLayout(t *testing.T) {
	b := Empty(core.ColorBlack)
	b.Place(Sq(3, 3), Piece{Type: core.Queen, Color: core.ColorBlack, HasMoved: true})

	b.Reset()

	assert.Equal(t, 32, b.Count())
	assert.Equal(t, core.ColorWhite, b.Turn())

	testCases := []struct {
		sq    string
		typ   core.PieceType
		color core.Color
	}{
		{"a1", core.Rook, core.ColorWhite},
		{"b1", core.Knight, core.ColorWhite},
		{"c1", core.Bishop, core.ColorWhite},
		{"d1", core.Queen, core.ColorWhite},
		{"e1", core.King, core.ColorWhite},
		{"h1", core.Rook, core.ColorWhite},
		{"e2", core.Pawn, core.ColorWhite},
		{"e7", core.Pawn, core.ColorBlack},
		{"d8", core.Queen, core.ColorBlack},
		{"e8", core.King, core.ColorBlack},
		{"g8", core.Knight, core.ColorBlack},
	}

	for _, tc := range testCases {
		sq, err := ParseSquare(tc.sq)
		require.NoError(t, err)
		p, ok := b.PieceAt(sq)
		require.True(t, ok, tc.sq)
		assert.Equal(t, tc.typ, p.Type, tc.sq)
		assert.Equal(t, tc.color, p.Color, tc.sq)
		assert.False(t, p.HasMoved, tc.sq)
	}

	for r := 2; r < 6; r++ {
		for f := 0; f < Size; f++ {
			assert.True(t, b.IsEmpty(Sq(f, r)))
		}
	}
}

func TestParseSquare(t *testing.T) {
	sq, err := ParseSquare("e2")
	require.NoError(t, err)
	assert.Equal(t, Sq(4, 1), sq)
	assert.Equal(t, "e2", sq.String())

	sq, err = ParseSquare("H8")
	require.NoError(t, err)
	assert.Equal(t, Sq(7, 7), sq)

	for _, bad := range []string{"", "e", "i1", "a9", "a0", "e22"} {
		_, err := ParseSquare(bad)
		assert.Error(t, err, bad)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := New()
	c := b.Clone()

	c.Remove(Sq(4, 1))
	c.SetTurn(core.ColorBlack)

	_, ok := b.PieceAt(Sq(4, 1))
	assert.True(t, ok)
	assert.Equal(t, core.ColorWhite, b.Turn())
	assert.Equal(t, 31, c.Count())
}

func TestKingSquareAndOccupied(t *testing.T) {
	b := New()

	sq, ok := b.KingSquare(core.ColorBlack)
	require.True(t, ok)
	assert.Equal(t, Sq(4, 7), sq)

	assert.Len(t, b.Occupied(core.ColorWhite), 16)

	_, ok = Empty(core.ColorWhite).KingSquare(core.ColorWhite)
	assert.False(t, ok)
}

func TestFENRoundTrip(t *testing.T) {
	b := New()
	assert.Equal(t, StartingFEN, b.FEN())

	fens := []string{
		StartingFEN,
		"r3k2r/8/8/8/8/8/8/R3K2R w Kq - 3 20",
		"4k3/8/8/8/8/8/8/4K2R b K - 0 1",
		"8/8/8/4k3/8/8/8/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		parsed, err := ParseFEN(fen)
		require.NoError(t, err, fen)
		assert.Equal(t, fen, parsed.FEN())
	}
}

func TestParseFENCastlingFlags(t *testing.T) {
	b, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w K -")
	require.NoError(t, err)

	king, _ := b.PieceAt(Sq(4, 0))
	hRook, _ := b.PieceAt(Sq(7, 0))
	aRook, _ := b.PieceAt(Sq(0, 0))
	blackKing, _ := b.PieceAt(Sq(4, 7))

	assert.False(t, king.HasMoved)
	assert.False(t, hRook.HasMoved)
	assert.True(t, aRook.HasMoved)
	assert.True(t, blackKing.HasMoved)
}

func TestParseFENRejectsBadInput(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"8/8/8/8/8/8/8/4K3 w - - 0 1",
		"P3k3/8/8/8/8/8/8/4K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w Z - 0 1",
	}
	for _, fen := range bad {
		_, err := ParseFEN(fen)
		assert.Error(t, err, fen)
	}
}

func TestToASCII(t *testing.T) {
	ascii := New().ToASCII()
	lines := strings.Split(ascii, "\n")

	require.Len(t, lines, 10)
	assert.Equal(t, "8 r n b q k b n r  8", lines[1])
	assert.Equal(t, "4 . . . . . . . .  4", lines[5])
	assert.Equal(t, "1 R N B Q K B N R  1", lines[8])
}

func TestFlipTurnAdvancesClocks(t *testing.T) {
	b := New()
	b.FlipTurn(false)
	assert.Equal(t, core.ColorBlack, b.Turn())
	assert.Equal(t, 1, b.Fullmove())

	b.FlipTurn(true)
	assert.Equal(t, core.ColorWhite, b.Turn())
	assert.Equal(t, 2, b.Fullmove())
	assert.True(t, strings.HasSuffix(b.FEN(), " 0 2"))
}
