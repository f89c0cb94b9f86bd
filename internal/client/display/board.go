package display

import (
	"fmt"
	"io"
	"strings"
)

// RenderBoard colors the server's ASCII board: white pieces blue, black
// pieces red, coordinates cyan. The first and last lines are file labels.
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(strings.TrimRight(asciiBoard, "\n"), "\n")

	var sb strings.Builder
	for i, line := range lines {
		labels := i == 0 || i == len(lines)-1
		for _, ch := range line {
			switch {
			case labels && ch >= 'a' && ch <= 'h':
				sb.WriteString(Cyan + string(ch) + Reset)
			case ch >= '1' && ch <= '8':
				sb.WriteString(Cyan + string(ch) + Reset)
			case ch >= 'A' && ch <= 'Z':
				sb.WriteString(Blue + string(ch) + Reset)
			case ch >= 'a' && ch <= 'z':
				sb.WriteString(Red + string(ch) + Reset)
			default:
				sb.WriteRune(ch)
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Fprint(w, sb.String())
}
