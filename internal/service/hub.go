package service

import (
	"sync"
)

// Subscription receives a tick on C after each change to its game. Ticks
// coalesce: a slow reader sees at least one tick per burst of changes. C is
// closed when the game is deleted or the hub shuts down.
type Subscription struct {
	C      <-chan struct{}
	c      chan struct{}
	gameID string
	hub    *Hub
	once   sync.Once
}

// Close detaches the subscription from the hub
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub fans game change notifications out to push subscribers
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe attaches a new subscriber to gameID
func (h *Hub) Subscribe(gameID string) *Subscription {
	ch := make(chan struct{}, 1)
	sub := &Subscription{C: ch, c: ch, gameID: gameID, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.close()
		return sub
	}

	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*Subscription]struct{})
	}
	h.subs[gameID][sub] = struct{}{}
	return sub
}

// Publish ticks every subscriber of gameID without blocking
func (h *Hub) Publish(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[gameID] {
		select {
		case sub.c <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for gameID
func (h *Hub) Subscribers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}

// CloseGame closes and drops every subscription of gameID
func (h *Hub) CloseGame(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[gameID] {
		sub.close()
	}
	delete(h.subs, gameID)
}

// Close shuts the hub down, closing every subscription
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for gameID, subs := range h.subs {
		for sub := range subs {
			sub.close()
		}
		delete(h.subs, gameID)
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[sub.gameID]; ok {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			sub.close()
		}
		if len(subs) == 0 {
			delete(h.subs, sub.gameID)
		}
	}
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.c) })
}
