package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"chesstwist/internal/board"
	"chesstwist/internal/client/api"
	"chesstwist/internal/client/display"
)

// ErrExit asks the input loop to stop
var ErrExit = errors.New("exit")

// Session is the client's view of the game it is playing
type Session struct {
	Client    *api.Client
	Out       io.Writer
	GameID    string
	Tokens    map[string]string // "w"/"b" → seat token held by this client
	Seat      string            // Color moves are sent as
	Turn      string            // Side to move at last fetch
	MoveCount int               // Moves seen at last fetch, used for long-poll
}

func NewSession(client *api.Client, out io.Writer) *Session {
	return &Session{
		Client: client,
		Out:    out,
		Tokens: make(map[string]string),
	}
}

// Token returns the seat token for the active seat
func (s *Session) Token() string {
	return s.Tokens[s.Seat]
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*Session, []string) error
}

// Registry maps command names and short forms to handlers
type Registry struct {
	session  *Session
	commands map[string]*Command
	ordered  []*Command
}

func NewRegistry(session *Session) *Registry {
	r := &Registry{
		session:  session,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     func(*Session, []string) error { return ErrExit },
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
	r.ordered = append(r.ordered, cmd)
}

// Execute runs one input line, returning false when the client should exit.
// A bare coordinate move such as e2e4 is shorthand for "move e2e4".
func (r *Registry) Execute(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	name, args := parts[0], parts[1:]
	cmd, exists := r.commands[name]
	if !exists && len(parts) == 1 && isCoordinateMove(name) {
		cmd, args = r.commands["move"], parts
		exists = true
	}
	if !exists {
		r.session.printf("%sUnknown command: %s%s\n", display.Red, name, display.Reset)
		r.session.printf("Type 'help' for available commands\n")
		return true
	}

	if err := cmd.Handler(r.session, args); err != nil {
		if errors.Is(err, ErrExit) {
			return false
		}
		r.session.printf("%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
	return true
}

func isCoordinateMove(s string) bool {
	if len(s) != 4 {
		return false
	}
	_, errFrom := board.ParseSquare(s[:2])
	_, errTo := board.ParseSquare(s[2:])
	return errFrom == nil && errTo == nil
}

func (r *Registry) helpHandler(s *Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		s.printf("\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			s.printf("Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		s.printf("Usage: %s\n", cmd.Usage)
		return nil
	}

	cmds := append([]*Command(nil), r.ordered...)
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

	s.printf("\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)
	for _, cmd := range cmds {
		short := "   "
		if cmd.ShortName != "" {
			short = fmt.Sprintf("[%s]", cmd.ShortName)
		}
		s.printf("  %s %-10s %s\n", short, cmd.Name, cmd.Description)
	}
	s.printf("\nType 'help <command>' for detailed usage\n")
	return nil
}
