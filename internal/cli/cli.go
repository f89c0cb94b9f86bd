package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"chesstwist/internal/board"
	"chesstwist/internal/core"
	"chesstwist/internal/game"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdMove
	CmdMoves
	CmdPromote
	CmdUndo
	CmdReset
	CmdColor
	CmdHistory
	CmdHelp
	CmdQuit
	CmdUnknown
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

// LineReader supplies one line of input per call and io.EOF at the end
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg  string
	darkBg   string
	checkBg  string
	targetBg string
	white    string
	black    string
	reset    string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg:  "\033[48;5;230m", // Beige
		darkBg:   "\033[48;5;94m",  // Brown
		checkBg:  "\033[48;5;160m", // Red
		targetBg: "\033[48;5;179m", // Gold
		white:    "\033[97m",
		black:    "\033[30m",
		reset:    "\033[0m",
	},
	ThemeGreen: {
		lightBg:  "\033[48;5;157m",
		darkBg:   "\033[48;5;22m",
		checkBg:  "\033[48;5;160m",
		targetBg: "\033[48;5;185m",
		white:    "\033[97m",
		black:    "\033[30m",
		reset:    "\033[0m",
	},
	ThemeGray: {
		lightBg:  "\033[48;5;251m",
		darkBg:   "\033[48;5;240m",
		checkBg:  "\033[48;5;160m",
		targetBg: "\033[48;5;110m", // Steel blue
		white:    "\033[97m",
		black:    "\033[30m",
		reset:    "\033[0m",
	},
}

// Highlight marks squares of interest when drawing the board
type Highlight struct {
	Check   *board.Square
	Targets []board.Square
}

func (h Highlight) isTarget(sq board.Square) bool {
	for _, t := range h.Targets {
		if t == sq {
			return true
		}
	}
	return false
}

type CLI struct {
	input  LineReader
	output io.Writer
	theme  ColorTheme
}

func New(input LineReader, output io.Writer) *CLI {
	return &CLI{
		input:  input,
		output: output,
		theme:  ThemeOff,
	}
}

// GetCommand shows prompt and reads one command. End of input reads as quit.
func (c *CLI) GetCommand(prompt string) (*Command, error) {
	c.input.SetPrompt(prompt)
	line, err := c.input.Readline()
	if err == io.EOF {
		return &Command{Type: CmdQuit}, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseCommand(line), nil
}

// ParseCommand maps one input line to a command
func ParseCommand(input string) *Command {
	input = strings.TrimSpace(input)
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "new", "resume":
		return &Command{Type: CmdNew, Args: args, Raw: input}
	case "moves":
		return &Command{Type: CmdMoves, Args: args}
	case "promote":
		return &Command{Type: CmdPromote, Args: args}
	case "undo":
		return &Command{Type: CmdUndo, Args: args}
	case "reset":
		return &Command{Type: CmdReset}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "history":
		return &Command{Type: CmdHistory}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit":
		return &Command{Type: CmdQuit}
	}

	if len(parts) == 1 && isCoordinateMove(cmd) {
		return &Command{Type: CmdMove, Args: []string{cmd[:2], cmd[2:]}, Raw: input}
	}
	return &Command{Type: CmdUnknown, Raw: input}
}

// isCoordinateMove reports whether s is two square names back to back
func isCoordinateMove(s string) bool {
	if len(s) != 4 {
		return false
	}
	if _, err := board.ParseSquare(s[:2]); err != nil {
		return false
	}
	_, err := board.ParseSquare(s[2:])
	return err == nil
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v", err))
}

// DisplayBoard draws the board with rank 8 on top. Without a theme the
// checking piece is suffixed with '!' and empty targets show as '*'.
func (c *CLI) DisplayBoard(b *board.Board, hl Highlight) {
	c.ShowMessage(c.renderBoard(b, hl))
}

func (c *CLI) renderBoard(b *board.Board, hl Highlight) string {
	theme := themes[c.theme]
	var sb strings.Builder

	sb.WriteString("\n  a b c d e f g h\n")

	for r := board.Size - 1; r >= 0; r-- {
		sb.WriteString(fmt.Sprintf("%d ", r+1))
		for f := 0; f < board.Size; f++ {
			sq := board.Sq(f, r)
			piece, occupied := b.PieceAt(sq)
			checked := hl.Check != nil && *hl.Check == sq
			target := hl.isTarget(sq)

			if c.theme == ThemeOff {
				var cell [2]byte
				switch {
				case occupied:
					cell[0] = piece.Symbol()
				case target:
					cell[0] = '*'
				default:
					cell[0] = '.'
				}
				switch {
				case checked:
					cell[1] = '!'
				case target && occupied:
					cell[1] = '*'
				default:
					cell[1] = ' '
				}
				sb.Write(cell[:])
				continue
			}

			bg := theme.lightBg
			if (r+f)%2 == 0 {
				bg = theme.darkBg
			}
			if target {
				bg = theme.targetBg
			}
			if checked {
				bg = theme.checkBg
			}

			if !occupied {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
				continue
			}
			fg := theme.black
			if piece.Color == core.ColorWhite {
				fg = theme.white
			}
			sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, fg, piece.Symbol(), theme.reset))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", r+1))
	}
	sb.WriteString("  a b c d e f g h\n")

	return sb.String()
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  new [FEN]        - Start a new game, optionally from a position
  <from><to>       - Make a move (e.g., e2e4, g1f3, e1g1 to castle)
  moves <square>   - Mark legal destinations of the piece on square
  promote <piece>  - Complete a pending promotion (q|r|b|n)
  undo [count]     - Undo last move(s), default 1
  reset            - Restart the current game from the standard layout
  color <theme>    - Set board color theme (off|brown|green|gray)
  history          - Show game move history and positions
  quit/exit        - Exit the program
  help/?           - Show this help message`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Chess!")
	c.ShowMessage("Commands: new [FEN], <move>, moves, promote, undo, reset, history, help/?, quit")
	c.ShowMessage("Example: 'new 4k3/8/8/8/8/8/8/4K2R w K - 0 1' to start from a puzzle.")
	c.ShowMessage("")
}

func (c *CLI) ShowGameHistory(g *game.Game) {
	c.ShowMessage(fmt.Sprintf("Starting FEN: %s", g.InitialFEN()))

	moves := g.Moves()
	for i := 0; i < len(moves); i += 2 {
		moveNum := i/2 + 1
		if i+1 < len(moves) {
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", moveNum, moves[i], moves[i+1]))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", moveNum, moves[i]))
		}
	}
	c.ShowMessage(fmt.Sprintf("Current FEN: %s", g.CurrentFEN()))
	c.ShowMessage(fmt.Sprintf("Game state: %s", g.State()))
}

func (c *CLI) ShowMove(result *game.MoveResult) {
	msg := fmt.Sprintf("%s: %s", result.Player.Name(), result.Move)
	if result.InCheck && !result.GameState.IsOver() {
		msg += " (check)"
	}
	c.ShowMessage(msg)
}

func (c *CLI) ShowGameOver(state core.State) {
	c.ShowMessage(fmt.Sprintf("\nGame Over: %s", state))
	c.ShowMessage("Start a new game with 'new', or 'undo' to step back.")
}

// scannerReader adapts a plain io.Reader to LineReader
type scannerReader struct {
	scanner *bufio.Scanner
}

// NewScannerReader reads lines from r without editing or history
func NewScannerReader(r io.Reader) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(r)}
}

func (s *scannerReader) Readline() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

func (s *scannerReader) SetPrompt(string) {}
