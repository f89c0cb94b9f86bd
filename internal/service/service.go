package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chesstwist/internal/game"
	"chesstwist/internal/storage"

	"github.com/google/uuid"
)

const DefaultTokenTTL = 24 * time.Hour

// Service coordinates game sessions, seat tokens and optional persistence
type Service struct {
	games     map[string]*session
	mu        sync.RWMutex
	store     *storage.Store // nil if persistence disabled
	jwtSecret []byte
	tokenTTL  time.Duration
	waiter    *WaitRegistry
	hub       *Hub
}

// session serializes rule operations on one game
type session struct {
	mu   sync.Mutex
	game *game.Game
}

// New creates a new service instance with optional storage
func New(store *storage.Store, jwtSecret []byte, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{
		games:     make(map[string]*session),
		store:     store,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		waiter:    NewWaitRegistry(),
		hub:       NewHub(),
	}
}

// lookup returns the session for gameID
func (s *Service) lookup(gameID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return sess, nil
}

// WithGame runs fn while holding the game's lock. fn must not retain g.
func (s *Service) WithGame(gameID string, fn func(g *game.Game) error) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.game)
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// GameCount returns the number of live games
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// RegisterWait registers a client to wait for game state changes
func (s *Service) RegisterWait(gameID string, moveCount int, ctx context.Context) <-chan struct{} {
	return s.waiter.RegisterWait(gameID, moveCount, ctx)
}

// Subscribe returns a subscription that fires after every change to gameID
func (s *Service) Subscribe(gameID string) (*Subscription, error) {
	if _, err := s.lookup(gameID); err != nil {
		return nil, err
	}
	return s.hub.Subscribe(gameID), nil
}

// notify wakes long-poll waiters and push subscribers of gameID
func (s *Service) notify(gameID string, moveCount int, force bool) {
	if force {
		s.waiter.WakeGame(gameID)
	} else {
		s.waiter.NotifyGame(gameID, moveCount)
	}
	s.hub.Publish(gameID)
}

// Shutdown releases waiters and subscribers and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	waitErr := s.waiter.Shutdown(timeout)
	s.hub.Close()

	s.mu.Lock()
	s.games = make(map[string]*session)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return err
		}
	}
	return waitErr
}
