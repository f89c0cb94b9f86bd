package cli

import (
	"fmt"
	"strconv"
	"strings"

	"chesstwist/internal/board"
	"chesstwist/internal/cli"
	"chesstwist/internal/core"
	"chesstwist/internal/game"
	"chesstwist/internal/service"
)

type CLIHandler struct {
	svc    *service.Service
	view   *cli.CLI
	gameID string
}

func New(svc *service.Service, view *cli.CLI) *CLIHandler {
	return &CLIHandler{
		svc:  svc,
		view: view,
	}
}

// Run reads and executes commands until quit or end of input
func (h *CLIHandler) Run() {
	for {
		cmd, err := h.view.GetCommand(h.getPrompt())
		if err != nil {
			break
		}

		if !h.ProcessCommand(cmd) {
			break
		}
	}
}

// getPrompt shows whose turn it is while a game is running
func (h *CLIHandler) getPrompt() string {
	prompt := "> "
	if h.gameID == "" {
		return prompt
	}
	_ = h.svc.WithGame(h.gameID, func(g *game.Game) error {
		if g.State().IsOver() {
			return nil
		}
		if _, pending := g.PendingPromotion(); pending {
			prompt = fmt.Sprintf("[%s promote]> ", core.OppositeColor(g.NextTurn()))
			return nil
		}
		prompt = fmt.Sprintf("[%s]> ", g.NextTurn())
		return nil
	})
	return prompt
}

// ProcessCommand handles one command, returning false to exit
func (h *CLIHandler) ProcessCommand(cmd *cli.Command) bool {
	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:
		return true

	case cli.CmdUnknown:
		h.view.ShowMessage(fmt.Sprintf("Unknown command %q. Type 'help' for commands.", cmd.Raw))

	case cli.CmdNew:
		h.handleNewGame(strings.Join(cmd.Args, " "))

	case cli.CmdHelp:
		h.view.ShowHelp()

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}
		theme := cli.ColorTheme(strings.ToLower(cmd.Args[0]))
		if err := h.view.SetTheme(theme); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", theme))
		if h.gameID != "" {
			h.showBoard(nil)
		}

	default:
		if h.gameID == "" {
			h.view.ShowMessage("No active game. Use 'new' or 'new <FEN>'.")
			return true
		}
		h.processGameCommand(cmd)
	}

	return true
}

// processGameCommand handles commands that need an active game
func (h *CLIHandler) processGameCommand(cmd *cli.Command) {
	switch cmd.Type {
	case cli.CmdMove:
		h.handleMove(cmd.Args[0], cmd.Args[1])

	case cli.CmdMoves:
		if len(cmd.Args) != 1 {
			h.view.ShowMessage("Usage: moves <square>")
			return
		}
		sq, err := board.ParseSquare(cmd.Args[0])
		if err != nil {
			h.view.ShowError(err)
			return
		}
		var targets []board.Square
		_ = h.svc.WithGame(h.gameID, func(g *game.Game) error {
			targets = g.LegalDestinations(sq)
			return nil
		})
		if len(targets) == 0 {
			h.view.ShowMessage(fmt.Sprintf("No legal moves from %s", sq))
			return
		}
		h.showBoard(targets)

	case cli.CmdPromote:
		if len(cmd.Args) != 1 || len(cmd.Args[0]) != 1 {
			h.view.ShowMessage("Usage: promote <q|r|b|n>")
			return
		}
		t, ok := core.PieceTypeFromSymbol(cmd.Args[0][0])
		if !ok || !t.Promotable() {
			h.view.ShowMessage("Promotion piece must be one of q, r, b, n")
			return
		}
		result, err := h.svc.Promote(h.gameID, t, 0)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		h.afterMove(result)

	case cli.CmdUndo:
		count := 1
		if len(cmd.Args) > 0 {
			n, err := strconv.Atoi(cmd.Args[0])
			if err != nil || n <= 0 {
				h.view.ShowMessage("Invalid undo count. Usage: undo [count]")
				return
			}
			count = n
		}
		if err := h.svc.UndoMoves(h.gameID, count); err != nil {
			h.view.ShowError(err)
			return
		}
		if count == 1 {
			h.view.ShowMessage("Move undone")
		} else {
			h.view.ShowMessage(fmt.Sprintf("%d moves undone", count))
		}
		h.showBoard(nil)

	case cli.CmdReset:
		if err := h.svc.ResetGame(h.gameID); err != nil {
			h.view.ShowError(err)
			return
		}
		h.view.ShowMessage("Game reset.")
		h.showBoard(nil)

	case cli.CmdHistory:
		_ = h.svc.WithGame(h.gameID, func(g *game.Game) error {
			h.view.ShowGameHistory(g)
			return nil
		})
	}
}

func (h *CLIHandler) handleMove(fromName, toName string) {
	from, err := board.ParseSquare(fromName)
	if err != nil {
		h.view.ShowError(err)
		return
	}
	to, err := board.ParseSquare(toName)
	if err != nil {
		h.view.ShowError(err)
		return
	}

	result, err := h.svc.MakeMove(h.gameID, from, to, 0)
	if err != nil {
		h.view.ShowError(fmt.Errorf("invalid move: %w", err))
		return
	}
	h.afterMove(result)
}

// afterMove reports a committed move and redraws the board
func (h *CLIHandler) afterMove(result *game.MoveResult) {
	h.view.ShowMove(result)
	h.showBoard(nil)

	if result.Promotion {
		h.view.ShowMessage("Pawn reached the last rank. Choose with 'promote <q|r|b|n>'.")
		return
	}
	if result.GameState.IsOver() {
		h.view.ShowGameOver(result.GameState)
	}
}

// showBoard draws the current position with the check square and targets
func (h *CLIHandler) showBoard(targets []board.Square) {
	err := h.svc.WithGame(h.gameID, func(g *game.Game) error {
		hl := cli.Highlight{Targets: targets}
		if sq, ok := g.CheckingSquare(); ok {
			hl.Check = &sq
		}
		h.view.DisplayBoard(g.Board(), hl)
		return nil
	})
	if err != nil {
		h.view.ShowError(err)
	}
}

// handleNewGame replaces the active game. An empty fen uses the standard layout.
func (h *CLIHandler) handleNewGame(fen string) {
	id := h.svc.GenerateGameID()
	white := core.PlayerConfig{Name: "White"}
	black := core.PlayerConfig{Name: "Black"}

	if err := h.svc.CreateGame(id, white, black, fen); err != nil {
		h.view.ShowError(fmt.Errorf("could not start the game: %w", err))
		return
	}

	if h.gameID != "" {
		_ = h.svc.DeleteGame(h.gameID)
	}
	h.gameID = id

	h.view.ShowMessage("Game started.")
	h.showBoard(nil)

	_ = h.svc.WithGame(id, func(g *game.Game) error {
		if g.State().IsOver() {
			h.view.ShowGameOver(g.State())
		}
		return nil
	})
}

// GameID returns the active game, empty when none
func (h *CLIHandler) GameID() string {
	return h.gameID
}
