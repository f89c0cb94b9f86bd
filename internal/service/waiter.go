package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second

	// WaitChannelBuffer size for notification channels
	WaitChannelBuffer = 1
)

// WaitRegistry manages long-polling clients waiting for game state changes
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*WaitRequest // gameID → waiting clients
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// WaitRequest represents a single client waiting for game updates. Notify
// receives exactly one signal: a change, a timeout, deletion or shutdown.
type WaitRequest struct {
	MoveCount int           // Last known move count
	Notify    chan struct{} // Buffered channel for notifications
	Timer     *time.Timer   // Timeout timer
	GameID    string        // Game being watched
}

// NewWaitRegistry creates a new wait registry
func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		shutdown: make(chan struct{}),
	}
}

// RegisterWait registers a client to wait for game state changes. The
// registration lives until ctx is done, so callers cancel ctx once they stop
// waiting. A registry that is shut down fires at once.
func (w *WaitRegistry) RegisterWait(gameID string, moveCount int, ctx context.Context) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &WaitRequest{
		MoveCount: moveCount,
		Notify:    make(chan struct{}, WaitChannelBuffer),
		GameID:    gameID,
	}

	if w.closed {
		signal(req)
		return req.Notify
	}

	req.Timer = time.AfterFunc(WaitTimeout, func() {
		signal(req)
	})

	w.waiters[gameID] = append(w.waiters[gameID], req)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			// Client disconnected
		case <-w.shutdown:
			signal(req)
		}
		w.removeWaiter(gameID, req)
	}()

	return req.Notify
}

// NotifyGame signals clients whose known move count differs from currentMoveCount
func (w *WaitRegistry) NotifyGame(gameID string, currentMoveCount int) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, req := range w.waiters[gameID] {
		if req.MoveCount != currentMoveCount {
			signal(req)
		}
	}
}

// WakeGame signals every client waiting on gameID, used for changes that keep
// the move count, such as a promotion or a reset of a fresh game
func (w *WaitRegistry) WakeGame(gameID string) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, req := range w.waiters[gameID] {
		signal(req)
	}
}

// RemoveGame wakes and forgets all waiters for a game (called before game deletion)
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		signal(req)
	}
}

// Waiting returns the number of clients waiting on gameID
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.waiters[gameID])
}

// Shutdown wakes every waiter and waits for their cleanup goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.shutdown)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out after %s", timeout)
	}
}

// signal delivers a notification without blocking; a pending one is enough
func signal(req *WaitRequest) {
	select {
	case req.Notify <- struct{}{}:
	default:
	}
}

// removeWaiter removes a specific waiter from the registry
func (w *WaitRegistry) removeWaiter(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}

	req.Timer.Stop()
}
