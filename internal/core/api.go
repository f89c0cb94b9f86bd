package core

// Request types

type CreateGameRequest struct {
	White PlayerConfig `json:"white"`
	Black PlayerConfig `json:"black"`
	FEN   string       `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type MoveRequest struct {
	From string `json:"from" validate:"required,square"`
	To   string `json:"to" validate:"required,square"`
}

type PromotionRequest struct {
	Piece string `json:"piece" validate:"required,oneof=q r b n"`
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

// Response types

type GameResponse struct {
	GameID           string          `json:"gameId"`
	FEN              string          `json:"fen"`
	Turn             string          `json:"turn"`  // "w" or "b"
	State            string          `json:"state"` // "ongoing", "white wins", etc
	InCheck          bool            `json:"inCheck"`
	CheckingSquare   string          `json:"checkingSquare,omitempty"`
	PendingPromotion string          `json:"pendingPromotion,omitempty"`
	Moves            []string        `json:"moves"`
	Players          PlayersResponse `json:"players"`
	LastMove         *MoveInfo       `json:"lastMove,omitempty"`
	Tokens           *SeatTokens     `json:"tokens,omitempty"` // Only on creation
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
}

// SeatTokens are bearer tokens authorising moves for each color
type SeatTokens struct {
	White string `json:"white"`
	Black string `json:"black"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type LegalMovesResponse struct {
	Square       string   `json:"square"`
	Destinations []string `json:"destinations"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// StreamMessage is one frame pushed to game stream subscribers
type StreamMessage struct {
	Type string `json:"type"` // "game" or "error"
	Data any    `json:"data"`
}
