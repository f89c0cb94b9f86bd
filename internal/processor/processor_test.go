package processor

import (
	"testing"
	"time"

	"chesstwist/internal/board"
	"chesstwist/internal/core"
	"chesstwist/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcessor(t *testing.T) (*Processor, *service.Service) {
	t.Helper()
	svc := service.New(nil, []byte("processor-test-secret-0123456789"), time.Hour)
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return New(svc), svc
}

func create(t *testing.T, p *Processor, fen string) core.GameResponse {
	t.Helper()
	resp := p.Execute(NewCreateGameCommand(core.CreateGameRequest{
		White: core.PlayerConfig{Name: "white"},
		Black: core.PlayerConfig{Name: "black"},
		FEN:   fen,
	}))
	require.True(t, resp.Success, "%+v", resp.Error)
	return resp.Data.(core.GameResponse)
}

func seatFor(t *testing.T, svc *service.Service, token string) *service.Seat {
	t.Helper()
	playerID, claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	seat, err := service.SeatFromClaims(playerID, claims)
	require.NoError(t, err)
	return &seat
}

func TestCreateGame(t *testing.T) {
	p, _ := newProcessor(t)
	g := create(t, p, "")

	assert.NotEmpty(t, g.GameID)
	assert.Equal(t, board.StartingFEN, g.FEN)
	assert.Equal(t, "w", g.Turn)
	assert.Equal(t, "ongoing", g.State)
	assert.Empty(t, g.Moves)
	require.NotNil(t, g.Tokens)
	assert.NotEmpty(t, g.Tokens.White)
	assert.NotEqual(t, g.Tokens.White, g.Tokens.Black)
	assert.Equal(t, "white", g.Players.White.Name)
}

func TestCreateGameRejectsBadFEN(t *testing.T) {
	p, _ := newProcessor(t)

	for _, fen := range []string{"8/8/8 w", "4k3/8/8/8/8/8/8/4K3 w - - 0 1\x00"} {
		resp := p.Execute(NewCreateGameCommand(core.CreateGameRequest{FEN: fen}))
		require.False(t, resp.Success)
		assert.Equal(t, core.ErrInvalidFEN, resp.Error.Code)
	}
}

func TestMoveFlow(t *testing.T) {
	p, svc := newProcessor(t)
	g := create(t, p, "")
	white := seatFor(t, svc, g.Tokens.White)
	black := seatFor(t, svc, g.Tokens.Black)

	resp := p.Execute(NewMakeMoveCommand(g.GameID, white, core.MoveRequest{From: "e2", To: "e4"}))
	require.True(t, resp.Success, "%+v", resp.Error)
	data := resp.Data.(core.GameResponse)
	assert.Equal(t, "b", data.Turn)
	assert.Equal(t, []string{"e2e4"}, data.Moves)
	require.NotNil(t, data.LastMove)
	assert.Equal(t, "w", data.LastMove.PlayerColor)

	// White may not move twice
	resp = p.Execute(NewMakeMoveCommand(g.GameID, white, core.MoveRequest{From: "d2", To: "d4"}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrNotYourTurn, resp.Error.Code)

	resp = p.Execute(NewMakeMoveCommand(g.GameID, black, core.MoveRequest{From: "e7", To: "e4"}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrInvalidMove, resp.Error.Code)

	resp = p.Execute(NewMakeMoveCommand(g.GameID, black, core.MoveRequest{From: "z9", To: "e4"}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrInvalidMove, resp.Error.Code)

	resp = p.Execute(NewMakeMoveCommand(g.GameID, black, core.MoveRequest{From: "e7", To: "e5"}))
	require.True(t, resp.Success)

	resp = p.Execute(NewUndoMoveCommand(g.GameID, white, core.UndoRequest{Count: 2}))
	require.True(t, resp.Success)
	assert.Equal(t, board.StartingFEN, resp.Data.(core.GameResponse).FEN)
}

func TestSeatFromAnotherGameIsRejected(t *testing.T) {
	p, svc := newProcessor(t)
	g1 := create(t, p, "")
	g2 := create(t, p, "")
	foreign := seatFor(t, svc, g2.Tokens.White)

	resp := p.Execute(NewMakeMoveCommand(g1.GameID, foreign, core.MoveRequest{From: "e2", To: "e4"}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrUnauthorized, resp.Error.Code)

	resp = p.Execute(NewDeleteGameCommand(g1.GameID, foreign))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrUnauthorized, resp.Error.Code)
}

func TestGameOverAfterMate(t *testing.T) {
	p, _ := newProcessor(t)
	g := create(t, p, "")

	for _, m := range []core.MoveRequest{{From: "f2", To: "f3"}, {From: "e7", To: "e5"}, {From: "g2", To: "g4"}, {From: "d8", To: "h4"}} {
		resp := p.Execute(NewMakeMoveCommand(g.GameID, nil, m))
		require.True(t, resp.Success, "%+v", resp.Error)
	}

	resp := p.Execute(NewGetGameCommand(g.GameID))
	data := resp.Data.(core.GameResponse)
	assert.Equal(t, "black wins", data.State)
	assert.True(t, data.InCheck)
	assert.Equal(t, "h4", data.CheckingSquare)

	resp = p.Execute(NewMakeMoveCommand(g.GameID, nil, core.MoveRequest{From: "a2", To: "a3"}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrGameOver, resp.Error.Code)
}

func TestPromotionFlow(t *testing.T) {
	p, svc := newProcessor(t)
	g := create(t, p, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	white := seatFor(t, svc, g.Tokens.White)
	black := seatFor(t, svc, g.Tokens.Black)

	resp := p.Execute(NewPromoteCommand(g.GameID, white, core.PromotionRequest{Piece: "q"}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrNoPromotion, resp.Error.Code)

	resp = p.Execute(NewMakeMoveCommand(g.GameID, white, core.MoveRequest{From: "a7", To: "a8"}))
	require.True(t, resp.Success)
	assert.Equal(t, "a8", resp.Data.(core.GameResponse).PendingPromotion)

	resp = p.Execute(NewMakeMoveCommand(g.GameID, black, core.MoveRequest{From: "e8", To: "d7"}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrPromotionPending, resp.Error.Code)

	resp = p.Execute(NewPromoteCommand(g.GameID, black, core.PromotionRequest{Piece: "q"}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrNotYourTurn, resp.Error.Code)

	resp = p.Execute(NewPromoteCommand(g.GameID, white, core.PromotionRequest{Piece: "k"}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrInvalidRequest, resp.Error.Code)

	resp = p.Execute(NewPromoteCommand(g.GameID, white, core.PromotionRequest{Piece: "n"}))
	require.True(t, resp.Success, "%+v", resp.Error)
	data := resp.Data.(core.GameResponse)
	assert.Equal(t, []string{"a7a8n"}, data.Moves)
	assert.Empty(t, data.PendingPromotion)
	assert.Equal(t, "a7a8n", data.LastMove.Move)
}

func TestBoardAndLegalMoves(t *testing.T) {
	p, _ := newProcessor(t)
	g := create(t, p, "")

	resp := p.Execute(NewGetBoardCommand(g.GameID))
	require.True(t, resp.Success)
	b := resp.Data.(core.BoardResponse)
	assert.Equal(t, board.StartingFEN, b.FEN)
	assert.Contains(t, b.Board, "R N B Q K B N R")

	resp = p.Execute(NewLegalMovesCommand(g.GameID, "g1"))
	require.True(t, resp.Success)
	assert.ElementsMatch(t, []string{"f3", "h3"}, resp.Data.(core.LegalMovesResponse).Destinations)

	resp = p.Execute(NewLegalMovesCommand(g.GameID, "e8"))
	require.True(t, resp.Success)
	assert.Empty(t, resp.Data.(core.LegalMovesResponse).Destinations)

	resp = p.Execute(NewLegalMovesCommand(g.GameID, "x1"))
	assert.False(t, resp.Success)
}

func TestResetAndDelete(t *testing.T) {
	p, _ := newProcessor(t)
	g := create(t, p, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")

	resp := p.Execute(NewMakeMoveCommand(g.GameID, nil, core.MoveRequest{From: "e1", To: "g1"}))
	require.True(t, resp.Success)

	resp = p.Execute(NewResetGameCommand(g.GameID, nil))
	require.True(t, resp.Success)
	assert.Equal(t, board.StartingFEN, resp.Data.(core.GameResponse).FEN)

	resp = p.Execute(NewDeleteGameCommand(g.GameID, nil))
	require.True(t, resp.Success)

	resp = p.Execute(NewGetGameCommand(g.GameID))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrGameNotFound, resp.Error.Code)
}

func TestUnknownCommand(t *testing.T) {
	p, _ := newProcessor(t)
	resp := p.Execute(Command{Type: CommandType(99)})
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrInvalidRequest, resp.Error.Code)
}
