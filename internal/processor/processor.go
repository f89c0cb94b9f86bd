package processor

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"chesstwist/internal/board"
	"chesstwist/internal/core"
	"chesstwist/internal/engine"
	"chesstwist/internal/game"
	"chesstwist/internal/service"
)

// Processor executes commands against the service and shapes API responses
type Processor struct {
	svc *service.Service
}

func New(svc *service.Service) *Processor {
	return &Processor{svc: svc}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdPromote:
		return p.handlePromote(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdResetGame:
		return p.handleResetGame(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isFENSafe rejects control characters before the record reaches the parser
func (p *Processor) isFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// handleCreateGame creates a new game and issues a seat token per color
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	fen := strings.TrimSpace(args.FEN)
	if fen != "" {
		if !p.isFENSafe(fen) {
			return p.errorResponse("invalid FEN characters", core.ErrInvalidFEN)
		}
		if _, err := board.ParseFEN(fen); err != nil {
			return p.errorResponse(err.Error(), core.ErrInvalidFEN)
		}
	}

	gameID := p.svc.GenerateGameID()
	if err := p.svc.CreateGame(gameID, args.White, args.Black, fen); err != nil {
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
	}

	whiteToken, err := p.svc.IssueSeatToken(gameID, core.ColorWhite)
	if err != nil {
		return p.errorResponse("failed to issue seat token", core.ErrInternalError)
	}
	blackToken, err := p.svc.IssueSeatToken(gameID, core.ColorBlack)
	if err != nil {
		return p.errorResponse("failed to issue seat token", core.ErrInternalError)
	}

	resp, err := p.gameResponse(gameID)
	if err != nil {
		return p.failure(err)
	}
	resp.Tokens = &core.SeatTokens{White: whiteToken, Black: blackToken}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	resp, err := p.gameResponse(cmd.GameID)
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// handleMakeMove validates and commits a coordinate move
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	from, err := board.ParseSquare(args.From)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidMove)
	}
	to, err := board.ParseSquare(args.To)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidMove)
	}

	as, err := p.seatColor(cmd)
	if err != nil {
		return p.failure(err)
	}

	result, err := p.svc.MakeMove(cmd.GameID, from, to, as)
	if err != nil {
		return p.failure(err)
	}

	return p.moveResponse(cmd.GameID, result)
}

// handlePromote completes a pending promotion
func (p *Processor) handlePromote(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.PromotionRequest)
	if !ok || len(args.Piece) != 1 {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	t, ok := core.PieceTypeFromSymbol(args.Piece[0])
	if !ok || !t.Promotable() {
		return p.errorResponse("promotion piece must be q, r, b or n", core.ErrInvalidRequest)
	}

	as, err := p.seatColor(cmd)
	if err != nil {
		return p.failure(err)
	}

	result, err := p.svc.Promote(cmd.GameID, t, as)
	if err != nil {
		return p.failure(err)
	}

	return p.moveResponse(cmd.GameID, result)
}

// handleUndoMove reverts game state
func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args := core.UndoRequest{Count: 1}
	if req, ok := cmd.Args.(core.UndoRequest); ok && req.Count > 0 {
		args = req
	}

	if _, err := p.seatColor(cmd); err != nil {
		return p.failure(err)
	}

	if err := p.svc.UndoMoves(cmd.GameID, args.Count); err != nil {
		return p.failure(err)
	}

	return p.handleGetGame(cmd)
}

func (p *Processor) handleResetGame(cmd Command) ProcessorResponse {
	if _, err := p.seatColor(cmd); err != nil {
		return p.failure(err)
	}

	if err := p.svc.ResetGame(cmd.GameID); err != nil {
		return p.failure(err)
	}

	return p.handleGetGame(cmd)
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if _, err := p.seatColor(cmd); err != nil {
		return p.failure(err)
	}

	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
	}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	var resp core.BoardResponse
	err := p.svc.WithGame(cmd.GameID, func(g *game.Game) error {
		b := g.Board()
		resp = core.BoardResponse{
			FEN:   g.CurrentFEN(),
			Board: b.ToASCII(),
		}
		return nil
	})
	if err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// handleLegalMoves lists the destinations of the piece on a square
func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	name, _ := cmd.Args.(string)
	sq, err := board.ParseSquare(name)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	resp := core.LegalMovesResponse{Square: sq.String(), Destinations: []string{}}
	err = p.svc.WithGame(cmd.GameID, func(g *game.Game) error {
		for _, to := range g.LegalDestinations(sq) {
			resp.Destinations = append(resp.Destinations, to.String())
		}
		return nil
	})
	if err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// seatColor verifies the caller's seat for this game. Trusted commands
// without a seat return the zero color, which the service treats as any side.
func (p *Processor) seatColor(cmd Command) (core.Color, error) {
	if cmd.Seat == nil {
		return 0, nil
	}
	if err := p.svc.CheckSeat(cmd.GameID, *cmd.Seat); err != nil {
		return 0, err
	}
	return cmd.Seat.Color, nil
}

func (p *Processor) moveResponse(gameID string, result *game.MoveResult) ProcessorResponse {
	resp, err := p.gameResponse(gameID)
	if err != nil {
		return p.failure(err)
	}
	resp.LastMove = &core.MoveInfo{
		Move:        result.Move,
		PlayerColor: result.Player.String(),
	}
	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) gameResponse(gameID string) (core.GameResponse, error) {
	var resp core.GameResponse
	err := p.svc.WithGame(gameID, func(g *game.Game) error {
		resp = buildGameResponse(gameID, g)
		return nil
	})
	return resp, err
}

// buildGameResponse constructs standard game response
func buildGameResponse(gameID string, g *game.Game) core.GameResponse {
	resp := core.GameResponse{
		GameID:  gameID,
		FEN:     g.CurrentFEN(),
		Turn:    g.NextTurn().String(),
		State:   g.State().String(),
		InCheck: g.InCheck(),
		Moves:   g.Moves(),
		Players: core.PlayersResponse{
			White: g.Player(core.ColorWhite),
			Black: g.Player(core.ColorBlack),
		},
	}

	if sq, ok := g.CheckingSquare(); ok {
		resp.CheckingSquare = sq.String()
	}
	if sq, ok := g.PendingPromotion(); ok {
		resp.PendingPromotion = sq.String()
	}
	if result := g.LastResult(); result != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        result.Move,
			PlayerColor: result.Player.String(),
		}
	}

	return resp
}

// failure maps a domain error to its API error code
func (p *Processor) failure(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, service.ErrInvalidSeat):
		return p.errorResponse(err.Error(), core.ErrUnauthorized)
	case errors.Is(err, service.ErrNotYourTurn), errors.Is(err, engine.ErrNotYourTurn):
		return p.errorResponse("not your turn", core.ErrNotYourTurn)
	case errors.Is(err, game.ErrGameOver):
		return p.errorResponse(err.Error(), core.ErrGameOver)
	case errors.Is(err, game.ErrPromotionPending):
		return p.errorResponse(err.Error(), core.ErrPromotionPending)
	case errors.Is(err, game.ErrNoPromotion):
		return p.errorResponse(err.Error(), core.ErrNoPromotion)
	case errors.Is(err, game.ErrIllegalMove):
		return p.errorResponse("illegal move", core.ErrInvalidMove)
	default:
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}
