package service

import (
	"errors"
	"fmt"

	"chesstwist/internal/core"
	"chesstwist/internal/game"

	"github.com/lixenwraith/auth"
)

var ErrInvalidSeat = errors.New("token does not hold a seat in this game")

// Seat is the game and color a token authorises its bearer to play
type Seat struct {
	GameID   string
	PlayerID string
	Color    core.Color
}

// IssueSeatToken signs a bearer token for the player holding color in gameID
func (s *Service) IssueSeatToken(gameID string, color core.Color) (string, error) {
	var playerID string
	err := s.WithGame(gameID, func(g *game.Game) error {
		p := g.Player(color)
		if p == nil {
			return fmt.Errorf("%w: no %s player", ErrInvalidSeat, color.Name())
		}
		playerID = p.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	claims := map[string]any{
		"game":  gameID,
		"color": color.String(),
	}
	return auth.GenerateHS256Token(s.jwtSecret, playerID, claims, s.tokenTTL)
}

// ValidateToken verifies a seat token and returns the player ID with claims
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	return auth.ValidateHS256Token(s.jwtSecret, token)
}

// SeatFromClaims decodes the seat carried by a validated token
func SeatFromClaims(playerID string, claims map[string]any) (Seat, error) {
	gameID, _ := claims["game"].(string)
	colorStr, _ := claims["color"].(string)
	color, ok := core.ParseColor(colorStr)
	if gameID == "" || !ok {
		return Seat{}, ErrInvalidSeat
	}
	return Seat{GameID: gameID, PlayerID: playerID, Color: color}, nil
}

// CheckSeat verifies that seat belongs to gameID and still matches its player
func (s *Service) CheckSeat(gameID string, seat Seat) error {
	if seat.GameID != gameID {
		return ErrInvalidSeat
	}
	return s.WithGame(gameID, func(g *game.Game) error {
		p := g.Player(seat.Color)
		if p == nil || p.ID != seat.PlayerID {
			return ErrInvalidSeat
		}
		return nil
	})
}
