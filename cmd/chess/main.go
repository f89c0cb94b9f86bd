package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chesstwist/internal/cli"
	"chesstwist/internal/service"
	"chesstwist/internal/storage"
	clitransport "chesstwist/internal/transport/cli"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

func main() {
	storagePath := flag.String("storage-path", "", "SQLite database file path (empty disables persistence)")
	historyFile := flag.String("history", defaultHistoryFile(), "Command history file")
	theme := flag.String("theme", string(cli.ThemeOff), "Board color theme (off|brown|green|gray)")
	flag.Parse()

	var store *storage.Store
	if *storagePath != "" {
		var err error
		store, err = storage.NewStore(*storagePath, false)
		if err != nil {
			fmt.Printf("Failed to open storage: %v\n", err)
			os.Exit(1)
		}
		if err := store.InitDB(); err != nil {
			fmt.Printf("Failed to initialize schema: %v\n", err)
			store.Close()
			os.Exit(1)
		}
	}

	// Tokens never leave the process, any secret will do
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		fmt.Printf("Failed to generate secret: %v\n", err)
		os.Exit(1)
	}

	svc := service.New(store, secret, 0)
	defer svc.Shutdown(5 * time.Second)

	var view *cli.CLI
	if term.IsTerminal(int(os.Stdin.Fd())) {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "> ",
			HistoryFile:     *historyFile,
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
		})
		if err != nil {
			fmt.Printf("Failed to start terminal: %v\n", err)
			os.Exit(1)
		}
		defer rl.Close()
		view = cli.New(rl, rl.Stdout())
	} else {
		// Piped input: plain lines, no prompt or history
		view = cli.New(cli.NewScannerReader(os.Stdin), os.Stdout)
	}

	if err := view.SetTheme(cli.ColorTheme(*theme)); err != nil {
		view.ShowError(err)
	}
	handler := clitransport.New(svc, view)

	view.ShowWelcome()
	handler.Run()
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chess_history"
	}
	return filepath.Join(home, ".chess_history")
}
