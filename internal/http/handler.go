package http

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chesstwist/internal/core"
	"chesstwist/internal/game"
	"chesstwist/internal/processor"
	"chesstwist/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

const rateLimitRate = 10 // req/sec

type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: service.WaitTimeout + 5*time.Second, // Long-poll responses
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	// Push stream of game updates
	app.Use("/ws", websocketUpgrade)
	app.Get("/ws/games/:gameId", websocket.New(h.GameStream, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			// First hop of X-Forwarded-For, else the peer address
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	seat := AuthRequired(svc.ValidateToken)

	api.Post("/games", h.CreateGame)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", seat, h.DeleteGame)
	api.Post("/games/:gameId/moves", seat, h.MakeMove)
	api.Post("/games/:gameId/promotion", seat, h.Promote)
	api.Post("/games/:gameId/undo", seat, h.UndoMove)
	api.Post("/games/:gameId/reset", seat, h.ResetGame)
	api.Get("/games/:gameId/board", h.GetBoard)
	api.Get("/games/:gameId/legal", h.LegalMoves)

	return app
}

// contentTypeValidator ensures POST requests carry application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrGameNotFound
		case fiber.StatusBadRequest, fiber.StatusUpgradeRequired:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps a processor error code to its HTTP status
func statusFor(code string) int {
	switch code {
	case core.ErrGameNotFound:
		return fiber.StatusNotFound
	case core.ErrUnauthorized:
		return fiber.StatusForbidden
	case core.ErrNotYourTurn, core.ErrGameOver, core.ErrPromotionPending:
		return fiber.StatusConflict
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// reply writes a processor response with status on success
func reply(c *fiber.Ctx, resp processor.ProcessorResponse, status int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(status)
	}
	return c.Status(status).JSON(resp.Data)
}

func invalidGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.ErrInvalidRequest,
		Details: "game ID must be a valid UUID",
	})
}

// validatedBody returns the request parsed by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (T, error) {
	var zero T
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return zero, c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		})
	}
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return zero, c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		})
	}
	return *body, nil
}

// Health reports liveness and storage state
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
		"games":   h.svc.GameCount(),
	})
}

// CreateGame creates a game and returns both seat tokens
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateGameRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(processor.NewCreateGameCommand(req))
	return reply(c, resp, fiber.StatusCreated)
}

// GetGame retrieves current game state. With wait=true and a moveCount it
// blocks until the game moves past that count or the wait times out.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	if c.QueryBool("wait") {
		moveCount := c.QueryInt("moveCount", -1)
		if moveCount < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "moveCount is required when waiting",
				Code:    core.ErrInvalidRequest,
				Details: "moveCount must be a non-negative integer",
			})
		}

		var current int
		err := h.svc.WithGame(gameID, func(g *game.Game) error {
			current = g.MoveCount()
			return nil
		})
		if err == nil && current == moveCount {
			// Release the wait slot when the handler returns
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			select {
			case <-h.svc.RegisterWait(gameID, moveCount, ctx):
			case <-c.Context().Done():
				return nil
			}
		}
	}

	resp := h.proc.Execute(processor.NewGetGameCommand(gameID))
	return reply(c, resp, fiber.StatusOK)
}

// MakeMove submits a move for the token's seat
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.MoveRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(processor.NewMakeMoveCommand(gameID, seatFrom(c), req))
	return reply(c, resp, fiber.StatusOK)
}

// Promote chooses the piece for a pending promotion
func (h *HTTPHandler) Promote(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.PromotionRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(processor.NewPromoteCommand(gameID, seatFrom(c), req))
	return reply(c, resp, fiber.StatusOK)
}

// UndoMove undoes one or more moves
func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.UndoRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(processor.NewUndoMoveCommand(gameID, seatFrom(c), req))
	return reply(c, resp, fiber.StatusOK)
}

func (h *HTTPHandler) ResetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	resp := h.proc.Execute(processor.NewResetGameCommand(gameID, seatFrom(c)))
	return reply(c, resp, fiber.StatusOK)
}

// DeleteGame ends and cleans up a game
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	resp := h.proc.Execute(processor.NewDeleteGameCommand(gameID, seatFrom(c)))
	return reply(c, resp, fiber.StatusNoContent)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	resp := h.proc.Execute(processor.NewGetBoardCommand(gameID))
	return reply(c, resp, fiber.StatusOK)
}

// LegalMoves lists destinations for the piece on ?square=
func (h *HTTPHandler) LegalMoves(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	square := c.Query("square")
	if errs := validate.Var(square, "required,square"); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: "square must be a board square like e2",
		})
	}

	resp := h.proc.Execute(processor.NewLegalMovesCommand(gameID, square))
	return reply(c, resp, fiber.StatusOK)
}
