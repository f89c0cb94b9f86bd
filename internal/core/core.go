package core

type State int

const (
	StateOngoing State = iota
	StateWhiteWins
	StateBlackWins
	StateStalemate
)

func (s State) String() string {
	switch s {
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateStalemate:
		return "stalemate"
	case StateOngoing:
		return "ongoing"
	default:
		return "unknown"
	}
}

// IsOver reports whether no further moves are accepted in this state
func (s State) IsOver() bool {
	return s != StateOngoing
}

// WinFor returns the terminal state in which the given color has won
func WinFor(c Color) State {
	if c == ColorWhite {
		return StateWhiteWins
	}
	return StateBlackWins
}

type Color byte

const (
	ColorWhite Color = iota + 1
	ColorBlack
)

func (c Color) String() string {
	if c == ColorWhite {
		return "w"
	} else if c == ColorBlack {
		return "b"
	} else {
		return "-"
	}
}

// Name returns the capitalised color name used in user-facing messages
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts "w"/"b" and the full lowercase names
func ParseColor(s string) (Color, bool) {
	switch s {
	case "w", "white":
		return ColorWhite, true
	case "b", "black":
		return ColorBlack, true
	default:
		return 0, false
	}
}

type PieceType byte

const (
	NoPiece PieceType = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

func (t PieceType) String() string {
	switch t {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	default:
		return "none"
	}
}

// Symbol returns the lowercase FEN letter for the piece type
func (t PieceType) Symbol() byte {
	switch t {
	case King:
		return 'k'
	case Queen:
		return 'q'
	case Rook:
		return 'r'
	case Bishop:
		return 'b'
	case Knight:
		return 'n'
	case Pawn:
		return 'p'
	default:
		return '.'
	}
}

// PieceTypeFromSymbol maps a FEN letter of either case to its piece type
func PieceTypeFromSymbol(ch byte) (PieceType, bool) {
	switch ch | 0x20 {
	case 'k':
		return King, true
	case 'q':
		return Queen, true
	case 'r':
		return Rook, true
	case 'b':
		return Bishop, true
	case 'n':
		return Knight, true
	case 'p':
		return Pawn, true
	default:
		return NoPiece, false
	}
}

// Promotable reports whether a pawn may be promoted to this type
func (t PieceType) Promotable() bool {
	return t == Queen || t == Rook || t == Bishop || t == Knight
}
