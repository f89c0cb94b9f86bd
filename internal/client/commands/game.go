package commands

import (
	"fmt"
	"strconv"
	"strings"

	"chesstwist/internal/client/display"
	"chesstwist/internal/core"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a game holding both seats",
		Usage:       "new [FEN]",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Take a seat in an existing game",
		Usage:       "join <gameId> <w|b> <token>",
		Handler:     joinGameHandler,
	})

	r.Register(&Command{
		Name:        "seat",
		Description: "Switch which held seat sends moves",
		Usage:       "seat <w|b>",
		Handler:     seatHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Make a move",
		Usage:       "move <from><to>  (e.g. e2e4)",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "promote",
		ShortName:   "p",
		Description: "Choose the piece for a pending promotion",
		Usage:       "promote <q|r|b|n>",
		Handler:     promoteHandler,
	})

	r.Register(&Command{
		Name:        "legal",
		ShortName:   "l",
		Description: "List legal destinations of a piece",
		Usage:       "legal <square>",
		Handler:     legalHandler,
	})

	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Undo moves",
		Usage:       "undo [count]",
		Handler:     undoHandler,
	})

	r.Register(&Command{
		Name:        "reset",
		Description: "Restart the game from the standard layout",
		Usage:       "reset",
		Handler:     resetHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "s",
		Description: "Show board and game state",
		Usage:       "show",
		Handler:     showHandler,
	})

	r.Register(&Command{
		Name:        "wait",
		ShortName:   "w",
		Description: "Wait for the opponent to move",
		Usage:       "wait",
		Handler:     waitHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete the current game",
		Usage:       "delete",
		Handler:     deleteGameHandler,
	})
}

func requireGame(s *Session) error {
	if s.GameID == "" {
		return fmt.Errorf("no game selected, use 'new' or 'join'")
	}
	return nil
}

func newGameHandler(s *Session, args []string) error {
	req := core.CreateGameRequest{
		White: core.PlayerConfig{Name: "white"},
		Black: core.PlayerConfig{Name: "black"},
		FEN:   strings.Join(args, " "),
	}
	resp, err := s.Client.CreateGame(req)
	if err != nil {
		return err
	}

	s.GameID = resp.GameID
	s.Tokens = map[string]string{"w": resp.Tokens.White, "b": resp.Tokens.Black}
	s.Seat = resp.Turn

	s.printf("%sGame created: %s%s\n", display.Green, resp.GameID, display.Reset)
	s.printf("Black seat token (share to let someone else play black):\n%s\n", resp.Tokens.Black)
	return s.render(resp)
}

func joinGameHandler(s *Session, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: join <gameId> <w|b> <token>")
	}
	color := strings.ToLower(args[1])
	if color != "w" && color != "b" {
		return fmt.Errorf("seat must be w or b")
	}

	resp, err := s.Client.GetGame(args[0])
	if err != nil {
		return err
	}

	s.GameID = resp.GameID
	s.Tokens = map[string]string{color: args[2]}
	s.Seat = color
	s.printf("Joined %s as %s\n", resp.GameID, display.ColorForTurn(color))
	return s.render(resp)
}

func seatHandler(s *Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: seat <w|b>")
	}
	if _, ok := s.Tokens[args[0]]; !ok {
		return fmt.Errorf("no token held for seat %q", args[0])
	}
	s.Seat = args[0]
	s.printf("Now playing %s\n", display.ColorForTurn(s.Seat))
	return nil
}

func moveHandler(s *Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	if len(args) != 1 || len(args[0]) != 4 {
		return fmt.Errorf("usage: move <from><to>")
	}
	move := strings.ToLower(args[0])

	resp, err := s.Client.MakeMove(s.GameID, s.Token(), move[:2], move[2:])
	if err != nil {
		return err
	}
	s.autoSeat(resp)
	return s.render(resp)
}

func promoteHandler(s *Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: promote <q|r|b|n>")
	}

	resp, err := s.Client.Promote(s.GameID, s.Token(), strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	s.autoSeat(resp)
	return s.render(resp)
}

func legalHandler(s *Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: legal <square>")
	}

	resp, err := s.Client.LegalMoves(s.GameID, args[0])
	if err != nil {
		return err
	}
	if len(resp.Destinations) == 0 {
		s.printf("No legal moves from %s\n", resp.Square)
		return nil
	}
	s.printf("%s → %s\n", resp.Square, strings.Join(resp.Destinations, " "))
	return nil
}

func undoHandler(s *Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid undo count: %s", args[0])
		}
		count = n
	}

	resp, err := s.Client.UndoMoves(s.GameID, s.Token(), count)
	if err != nil {
		return err
	}
	s.autoSeat(resp)
	return s.render(resp)
}

func resetHandler(s *Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	resp, err := s.Client.ResetGame(s.GameID, s.Token())
	if err != nil {
		return err
	}
	s.autoSeat(resp)
	return s.render(resp)
}

func showHandler(s *Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	resp, err := s.Client.GetGame(s.GameID)
	if err != nil {
		return err
	}
	return s.render(resp)
}

func waitHandler(s *Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	s.printf("Waiting for a move...\n")
	resp, err := s.Client.WaitGame(s.GameID, s.MoveCount)
	if err != nil {
		return err
	}
	if len(resp.Moves) == s.MoveCount {
		s.printf("No change yet\n")
		return nil
	}
	return s.render(resp)
}

func deleteGameHandler(s *Session, args []string) error {
	if err := requireGame(s); err != nil {
		return err
	}
	if err := s.Client.DeleteGame(s.GameID, s.Token()); err != nil {
		return err
	}
	s.printf("Game %s deleted\n", s.GameID)
	s.GameID = ""
	s.Tokens = make(map[string]string)
	s.Seat, s.Turn, s.MoveCount = "", "", 0
	return nil
}

// autoSeat follows the turn when this client holds both seats
func (s *Session) autoSeat(resp *core.GameResponse) {
	if len(s.Tokens) == 2 {
		s.Seat = resp.Turn
		if resp.PendingPromotion != "" && resp.LastMove != nil {
			// The promoting side answers before the turn passes
			s.Seat = resp.LastMove.PlayerColor
		}
	}
}

// render prints the board and a one-line status for resp
func (s *Session) render(resp *core.GameResponse) error {
	s.Turn = resp.Turn
	s.MoveCount = len(resp.Moves)

	board, err := s.Client.GetBoard(resp.GameID)
	if err != nil {
		return err
	}
	display.RenderBoard(s.Out, board.Board)

	status := fmt.Sprintf("Turn: %s  Moves: %d  State: %s", display.ColorForTurn(resp.Turn), len(resp.Moves), resp.State)
	if resp.InCheck {
		status += fmt.Sprintf("  %sCheck from %s%s", display.Red, resp.CheckingSquare, display.Reset)
	}
	if resp.PendingPromotion != "" {
		status += fmt.Sprintf("  %sPromote on %s%s", display.Yellow, resp.PendingPromotion, display.Reset)
	}
	if resp.LastMove != nil {
		status += fmt.Sprintf("  Last: %s", resp.LastMove.Move)
	}
	s.printf("%s\n", status)
	return nil
}
