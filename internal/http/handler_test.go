package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chesstwist/internal/board"
	"chesstwist/internal/core"
	"chesstwist/internal/processor"
	"chesstwist/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := service.New(nil, []byte("http-test-secret-0123456789abcdef"), time.Hour)
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return NewFiberApp(processor.New(svc), svc, true)
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func createGame(t *testing.T, app *fiber.App, req core.CreateGameRequest) core.GameResponse {
	t.Helper()
	resp, raw := do(t, app, fiber.MethodPost, "/api/v1/games", "", req)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	var g core.GameResponse
	require.NoError(t, json.Unmarshal(raw, &g))
	require.NotNil(t, g.Tokens)
	return g
}

func decodeError(t *testing.T, raw []byte) core.ErrorResponse {
	t.Helper()
	var e core.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestHealth(t *testing.T) {
	app := newApp(t)
	resp, raw := do(t, app, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"storage":"disabled"`)
}

func TestCreateMoveAndBoard(t *testing.T) {
	app := newApp(t)
	g := createGame(t, app, core.CreateGameRequest{})
	base := "/api/v1/games/" + g.GameID

	resp, raw := do(t, app, fiber.MethodPost, base+"/moves", g.Tokens.White, core.MoveRequest{From: "e2", To: "e4"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var moved core.GameResponse
	require.NoError(t, json.Unmarshal(raw, &moved))
	assert.Equal(t, "b", moved.Turn)
	assert.Equal(t, []string{"e2e4"}, moved.Moves)

	resp, raw = do(t, app, fiber.MethodGet, base+"/board", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var b core.BoardResponse
	require.NoError(t, json.Unmarshal(raw, &b))
	assert.NotEqual(t, board.StartingFEN, b.FEN)

	resp, raw = do(t, app, fiber.MethodGet, base+"/legal?square=g8", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var legal core.LegalMovesResponse
	require.NoError(t, json.Unmarshal(raw, &legal))
	assert.ElementsMatch(t, []string{"f6", "h6"}, legal.Destinations)
}

func TestMoveRequiresSeatToken(t *testing.T) {
	app := newApp(t)
	g := createGame(t, app, core.CreateGameRequest{})
	path := "/api/v1/games/" + g.GameID + "/moves"
	move := core.MoveRequest{From: "e2", To: "e4"}

	resp, raw := do(t, app, fiber.MethodPost, path, "", move)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, core.ErrUnauthorized, decodeError(t, raw).Code)

	resp, _ = do(t, app, fiber.MethodPost, path, "not-a-token", move)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Black's seat cannot move for white
	resp, raw = do(t, app, fiber.MethodPost, path, g.Tokens.Black, move)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, core.ErrNotYourTurn, decodeError(t, raw).Code)

	// A seat from another game is refused
	other := createGame(t, app, core.CreateGameRequest{})
	resp, raw = do(t, app, fiber.MethodPost, path, other.Tokens.White, move)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, core.ErrUnauthorized, decodeError(t, raw).Code)
}

func TestRequestValidation(t *testing.T) {
	app := newApp(t)
	g := createGame(t, app, core.CreateGameRequest{})
	base := "/api/v1/games/" + g.GameID

	resp, raw := do(t, app, fiber.MethodPost, base+"/moves", g.Tokens.White, core.MoveRequest{From: "e9", To: "e4"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, raw).Details, "From must be a board square")

	resp, raw = do(t, app, fiber.MethodPost, base+"/promotion", g.Tokens.White, core.PromotionRequest{Piece: "k"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, raw).Details, "Piece must be one of")

	resp, _ = do(t, app, fiber.MethodPost, base+"/undo", g.Tokens.White, core.UndoRequest{Count: 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, fiber.MethodGet, "/api/v1/games/not-a-uuid", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, fiber.MethodGet, base+"/legal?square=z0", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, raw = do(t, app, fiber.MethodPost, "/api/v1/games", "", core.CreateGameRequest{FEN: "8/8/8 w"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, core.ErrInvalidFEN, decodeError(t, raw).Code)

	req := httptest.NewRequest(fiber.MethodPost, base+"/moves", bytes.NewReader([]byte("from=e2")))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestUnknownGame(t *testing.T) {
	app := newApp(t)
	resp, raw := do(t, app, fiber.MethodGet, "/api/v1/games/7f0c1b8e-5a6d-4d3e-9c2b-1a0f9e8d7c6b", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, core.ErrGameNotFound, decodeError(t, raw).Code)
}

func TestPromotionUndoResetDelete(t *testing.T) {
	app := newApp(t)
	g := createGame(t, app, core.CreateGameRequest{FEN: "4k3/P7/8/8/8/8/8/4K3 w - - 0 1"})
	base := "/api/v1/games/" + g.GameID

	resp, raw := do(t, app, fiber.MethodPost, base+"/moves", g.Tokens.White, core.MoveRequest{From: "a7", To: "a8"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	resp, raw = do(t, app, fiber.MethodPost, base+"/moves", g.Tokens.Black, core.MoveRequest{From: "e8", To: "d7"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, core.ErrPromotionPending, decodeError(t, raw).Code)

	resp, raw = do(t, app, fiber.MethodPost, base+"/promotion", g.Tokens.White, core.PromotionRequest{Piece: "q"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var promoted core.GameResponse
	require.NoError(t, json.Unmarshal(raw, &promoted))
	assert.Equal(t, []string{"a7a8q"}, promoted.Moves)
	assert.True(t, promoted.InCheck)

	resp, _ = do(t, app, fiber.MethodPost, base+"/undo", g.Tokens.Black, core.UndoRequest{Count: 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, raw = do(t, app, fiber.MethodPost, base+"/reset", g.Tokens.White, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var reset core.GameResponse
	require.NoError(t, json.Unmarshal(raw, &reset))
	assert.Equal(t, board.StartingFEN, reset.FEN)

	resp, _ = do(t, app, fiber.MethodDelete, base, g.Tokens.Black, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, app, fiber.MethodGet, base, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLongPollReturnsOnMove(t *testing.T) {
	app := newApp(t)
	g := createGame(t, app, core.CreateGameRequest{})
	base := "/api/v1/games/" + g.GameID

	// A stale move count returns immediately
	resp, _ := do(t, app, fiber.MethodGet, base+"?wait=true&moveCount=5", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, fiber.MethodGet, base+"?wait=true", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	done := make(chan core.GameResponse, 1)
	go func() {
		req := httptest.NewRequest(fiber.MethodGet, base+"?wait=true&moveCount=0", nil)
		r, err := app.Test(req, -1)
		if err != nil {
			close(done)
			return
		}
		var out core.GameResponse
		_ = json.NewDecoder(r.Body).Decode(&out)
		done <- out
	}()

	// Give the waiter time to register before moving
	time.Sleep(100 * time.Millisecond)
	resp, _ = do(t, app, fiber.MethodPost, base+"/moves", g.Tokens.White, core.MoveRequest{From: "d2", To: "d4"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	select {
	case out := <-done:
		assert.Equal(t, []string{"d2d4"}, out.Moves)
	case <-time.After(5 * time.Second):
		t.Fatal("long poll did not return after move")
	}
}

func TestStreamRequiresUpgrade(t *testing.T) {
	app := newApp(t)
	g := createGame(t, app, core.CreateGameRequest{})
	resp, _ := do(t, app, fiber.MethodGet, "/ws/games/"+g.GameID, "", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
