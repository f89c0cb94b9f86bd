package processor

import (
	"chesstwist/internal/core"
	"chesstwist/internal/service"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdDeleteGame
	CmdMakeMove
	CmdPromote
	CmdUndoMove
	CmdResetGame
	CmdGetBoard
	CmdLegalMoves
)

// Command is a unified structure for all processor operations. Seat is set
// when the caller presented a seat token; commands without one are trusted.
type Command struct {
	Type   CommandType
	GameID string // For game-specific commands
	Seat   *service.Seat
	Args   any // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateGameCommand(req core.CreateGameRequest) Command {
	return Command{
		Type: CmdCreateGame,
		Args: req,
	}
}

func NewGetGameCommand(gameID string) Command {
	return Command{
		Type:   CmdGetGame,
		GameID: gameID,
	}
}

func NewDeleteGameCommand(gameID string, seat *service.Seat) Command {
	return Command{
		Type:   CmdDeleteGame,
		GameID: gameID,
		Seat:   seat,
	}
}

func NewMakeMoveCommand(gameID string, seat *service.Seat, req core.MoveRequest) Command {
	return Command{
		Type:   CmdMakeMove,
		GameID: gameID,
		Seat:   seat,
		Args:   req,
	}
}

func NewPromoteCommand(gameID string, seat *service.Seat, req core.PromotionRequest) Command {
	return Command{
		Type:   CmdPromote,
		GameID: gameID,
		Seat:   seat,
		Args:   req,
	}
}

func NewUndoMoveCommand(gameID string, seat *service.Seat, req core.UndoRequest) Command {
	return Command{
		Type:   CmdUndoMove,
		GameID: gameID,
		Seat:   seat,
		Args:   req,
	}
}

func NewResetGameCommand(gameID string, seat *service.Seat) Command {
	return Command{
		Type:   CmdResetGame,
		GameID: gameID,
		Seat:   seat,
	}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{
		Type:   CmdGetBoard,
		GameID: gameID,
	}
}

// NewLegalMovesCommand asks for the legal destinations of the piece on square
func NewLegalMovesCommand(gameID, square string) Command {
	return Command{
		Type:   CmdLegalMoves,
		GameID: gameID,
		Args:   square,
	}
}
