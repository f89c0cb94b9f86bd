package commands

import (
	"fmt"
	"time"

	"chesstwist/internal/client/display"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "verbose",
		ShortName:   "v",
		Description: "Toggle request tracing",
		Usage:       "verbose",
		Handler:     verboseHandler,
	})
}

func healthHandler(s *Session, args []string) error {
	resp, err := s.Client.Health()
	if err != nil {
		return err
	}

	s.printf("%sServer Health:%s\n", display.Cyan, display.Reset)
	s.printf("  Status:  %s\n", resp.Status)
	s.printf("  Time:    %s\n", time.Unix(resp.Time, 0).Format("2006-01-02 15:04:05"))
	s.printf("  Storage: %s\n", resp.Storage)
	s.printf("  Games:   %d\n", resp.Games)
	return nil
}

func urlHandler(s *Session, args []string) error {
	if len(args) == 0 {
		s.printf("API URL: %s\n", s.Client.BaseURL)
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: url [apiUrl]")
	}
	s.Client.SetBaseURL(args[0])
	s.printf("API URL set to: %s\n", s.Client.BaseURL)
	return nil
}

func verboseHandler(s *Session, args []string) error {
	s.Client.Verbose = !s.Client.Verbose
	s.Client.Log = s.Out
	s.printf("Verbose: %t\n", s.Client.Verbose)
	return nil
}
