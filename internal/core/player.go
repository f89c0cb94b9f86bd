package core

import (
	"github.com/google/uuid"
)

// Player occupies one seat of a game
type Player struct {
	ID    string `json:"id"`
	Color Color  `json:"color"`
	Name  string `json:"name,omitempty"`
}

// PlayerConfig for API requests and configuration
type PlayerConfig struct {
	Name string `json:"name,omitempty" validate:"omitempty,max=40"`
}

// PlayersResponse for API responses
type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

// NewPlayer creates a Player with a fresh ID from PlayerConfig
func NewPlayer(config PlayerConfig, color Color) *Player {
	return &Player{
		ID:    uuid.New().String(),
		Color: color,
		Name:  config.Name,
	}
}
