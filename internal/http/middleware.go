package http

import (
	"strings"

	"chesstwist/internal/core"
	"chesstwist/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// TokenValidator validates seat tokens
type TokenValidator func(token string) (playerID string, claims map[string]any, err error)

// AuthRequired resolves the bearer token into a seat for protected endpoints
func AuthRequired(validateToken TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c.Get("Authorization"))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
				Error: "missing authorization token",
				Code:  core.ErrUnauthorized,
			})
		}

		playerID, claims, err := validateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
				Error: "invalid or expired token",
				Code:  core.ErrUnauthorized,
			})
		}

		seat, err := service.SeatFromClaims(playerID, claims)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
				Error: "token carries no seat",
				Code:  core.ErrUnauthorized,
			})
		}

		c.Locals("seat", &seat)
		return c.Next()
	}
}

// seatFrom returns the seat stored by AuthRequired
func seatFrom(c *fiber.Ctx) *service.Seat {
	seat, _ := c.Locals("seat").(*service.Seat)
	return seat
}

// websocketUpgrade rejects plain HTTP requests on stream routes
func websocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// extractBearerToken extracts the token from an Authorization header
func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}
