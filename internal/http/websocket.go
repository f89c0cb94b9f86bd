package http

import (
	"log"

	"chesstwist/internal/core"
	"chesstwist/internal/processor"

	"github.com/gofiber/websocket/v2"
)

// GameStream pushes the full game state on connect and after every change
// until the client disconnects or the game is deleted.
func (h *HTTPHandler) GameStream(c *websocket.Conn) {
	defer c.Close()

	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		_ = c.WriteJSON(core.StreamMessage{Type: "error", Data: core.ErrorResponse{
			Error:   "invalid game ID format",
			Code:    core.ErrInvalidRequest,
			Details: "game ID must be a valid UUID",
		}})
		return
	}

	sub, err := h.svc.Subscribe(gameID)
	if err != nil {
		_ = c.WriteJSON(core.StreamMessage{Type: "error", Data: core.ErrorResponse{
			Error: "game not found",
			Code:  core.ErrGameNotFound,
		}})
		return
	}
	defer sub.Close()

	// Inbound frames are ignored; a read error means the peer went away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !h.pushState(c, gameID) {
		return
	}

	for {
		select {
		case _, ok := <-sub.C:
			if !ok {
				// Game deleted or server shutting down
				_ = c.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game closed"))
				return
			}
			if !h.pushState(c, gameID) {
				return
			}
		case <-gone:
			return
		}
	}
}

// pushState writes the current game state, reporting whether the stream
// should continue
func (h *HTTPHandler) pushState(c *websocket.Conn, gameID string) bool {
	resp := h.proc.Execute(processor.NewGetGameCommand(gameID))

	msg := core.StreamMessage{Type: "game", Data: resp.Data}
	if !resp.Success {
		msg = core.StreamMessage{Type: "error", Data: resp.Error}
	}

	if err := c.WriteJSON(msg); err != nil {
		log.Printf("Stream write failed for game %s: %v", gameID, err)
		return false
	}
	return resp.Success
}
