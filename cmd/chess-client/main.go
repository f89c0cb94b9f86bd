// Package main implements an interactive client that plays against the chess
// server API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chesstwist/internal/client/api"
	"chesstwist/internal/client/commands"
	"chesstwist/internal/client/display"

	"github.com/chzyer/readline"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API server base URL")
	flag.Parse()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     ".chess_client_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	s := commands.NewSession(api.New(*baseURL), rl.Stdout())
	registry := commands.NewRegistry(s)

	fmt.Fprintf(s.Out, "%sChess Client%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(s.Out, "%sAPI: %s%s\n", display.Cyan, s.Client.BaseURL, display.Reset)
	fmt.Fprintf(s.Out, "Type 'help' for commands\n\n")

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		if !registry.Execute(strings.TrimSpace(line)) {
			break
		}
	}
}

func buildPrompt(s *commands.Session) string {
	if s.GameID == "" {
		return display.Prompt("chess")
	}

	prompt := fmt.Sprintf("chess [%s%s%s", display.White, s.GameID[:8], display.Reset)
	if s.Seat != "" {
		prompt += " " + display.ColorForTurn(s.Seat)
	}
	prompt += display.Yellow + "]"
	if s.Turn != "" {
		prompt += " - Turn:" + display.ColorForTurn(s.Turn)
	}
	return display.Prompt(prompt)
}
