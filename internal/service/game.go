package service

import (
	"errors"
	"fmt"
	"time"

	"chesstwist/internal/board"
	"chesstwist/internal/core"
	"chesstwist/internal/game"
	"chesstwist/internal/storage"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrNotYourTurn  = errors.New("not your turn")
)

// CreateGame registers a new game with fresh players. An empty fen starts
// from the standard layout.
func (s *Service) CreateGame(id string, whiteConfig, blackConfig core.PlayerConfig, fen string) error {
	whitePlayer := core.NewPlayer(whiteConfig, core.ColorWhite)
	blackPlayer := core.NewPlayer(blackConfig, core.ColorBlack)

	g, err := game.New(fen, whitePlayer, blackPlayer)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; exists {
		return fmt.Errorf("%w: %s", ErrGameExists, id)
	}
	s.games[id] = &session{game: g}

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:        id,
			InitialFEN:    g.InitialFEN(),
			WhitePlayerID: whitePlayer.ID,
			WhiteName:     whitePlayer.Name,
			BlackPlayerID: blackPlayer.ID,
			BlackName:     blackPlayer.Name,
			StartTimeUTC:  time.Now().UTC(),
		})
	}

	return nil
}

// MakeMove validates and commits a move, then persists and broadcasts it.
// A non-zero as restricts the move to that side.
func (s *Service) MakeMove(gameID string, from, to board.Square, as core.Color) (*game.MoveResult, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if as != 0 && as != sess.game.NextTurn() {
		return nil, ErrNotYourTurn
	}

	result, err := sess.game.MakeMove(from, to)
	if err != nil {
		return nil, err
	}
	moveCount := sess.game.MoveCount()

	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   moveCount,
			MoveText:     result.Move,
			FENAfterMove: sess.game.CurrentFEN(),
			PlayerColor:  result.Player.String(),
			MoveTimeUTC:  time.Now().UTC(),
		})
	}

	s.notify(gameID, moveCount, false)
	return result, nil
}

// Promote completes a pending promotion and rewrites the stored move. A
// non-zero as must be the side whose pawn is promoting.
func (s *Service) Promote(gameID string, t core.PieceType, as core.Color) (*game.MoveResult, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if as != 0 && as == sess.game.NextTurn() {
		return nil, ErrNotYourTurn
	}

	result, err := sess.game.Promote(t)
	if err != nil {
		return nil, err
	}
	moveCount := sess.game.MoveCount()

	if s.store != nil {
		s.store.UpdateMove(gameID, moveCount, result.Move, sess.game.CurrentFEN())
	}

	// Move count is unchanged, so every waiter is woken
	s.notify(gameID, moveCount, true)
	return result, nil
}

// UndoMoves removes the specified number of moves from game history
func (s *Service) UndoMoves(gameID string, count int) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.game.Undo(count); err != nil {
		return err
	}
	remaining := sess.game.MoveCount()

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, remaining)
	}

	s.notify(gameID, remaining, false)
	return nil
}

// ResetGame restarts a game from the standard layout, keeping its players
func (s *Service) ResetGame(gameID string) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.game.Reset()

	if s.store != nil {
		s.store.ResetGame(gameID, sess.game.InitialFEN())
	}

	s.notify(gameID, 0, true)
	return nil
}

// DeleteGame removes a game from memory and storage
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	// Release waiters and subscribers before the game disappears
	s.waiter.RemoveGame(gameID)
	s.hub.CloseGame(gameID)

	delete(s.games, gameID)

	if s.store != nil {
		s.store.DeleteGame(gameID)
	}
	return nil
}
