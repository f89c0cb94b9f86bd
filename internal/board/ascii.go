package board

import (
	"fmt"
	"strings"
)

// ToASCII creates an ASCII representation of the board, rank 8 on top
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := Size - 1; r >= 0; r-- {
		sb.WriteString(fmt.Sprintf("%d ", r+1))
		for f := 0; f < Size; f++ {
			p, ok := b.PieceAt(Sq(f, r))
			if !ok {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", p.Symbol()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", r+1))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
