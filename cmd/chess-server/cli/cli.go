package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"chesstwist/internal/storage"

	"golang.org/x/term"
)

// Run is the entry point for the database maintenance commands
func Run(args []string) error {
	return run(args, os.Stdin, os.Stdout)
}

func run(args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:], out)
	case "delete":
		return runDelete(args[1:], in, out)
	case "query":
		return runQuery(args[1:], out)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func runInit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	force := fs.Bool("force", false, "Skip the confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	// Only ask when a person is at the keyboard
	if !*force && isTerminal(in) {
		fmt.Fprintf(out, "Delete database %s and all recorded games? [y/N]: ", *path)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(out, "Aborted")
			return nil
		}
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(out, "Database deleted: %s\n", *path)
	return nil
}

func runQuery(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	playerID := fs.String("playerId", "", "Player ID to filter (optional, * for all)")
	moves := fs.Bool("moves", false, "List the moves of each matching game")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *playerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tWhite Player\tBlack Player\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			short(g.GameID)+"...",
			playerLabel(g.WhiteName, g.WhitePlayerID),
			playerLabel(g.BlackName, g.BlackPlayerID),
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	if *moves {
		for _, g := range games {
			if err := printMoves(out, store, g); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

func printMoves(out io.Writer, store *storage.Store, g storage.GameRecord) error {
	records, err := store.QueryMoves(g.GameID)
	if err != nil {
		return fmt.Errorf("move query failed: %w", err)
	}

	fmt.Fprintf(out, "\nGame %s from %s\n", g.GameID, g.InitialFEN)
	if len(records) == 0 {
		fmt.Fprintln(out, "  (no moves)")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  #\tColor\tMove\tFEN After")
	for _, m := range records {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", m.MoveNumber, m.PlayerColor, m.MoveText, m.FENAfterMove)
	}
	return w.Flush()
}

func playerLabel(name, id string) string {
	if name == "" {
		return short(id)
	}
	return fmt.Sprintf("%s (%s)", name, short(id))
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
