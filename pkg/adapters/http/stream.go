package http

import (
	"log/slog"
	"sync"
)

// StreamManager fans out diff messages to the SSE subscribers of each workpad.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // WorkpadID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for workpadID. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(workpadID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[workpadID]; !ok {
		sm.subscribers[workpadID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[workpadID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[workpadID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, workpadID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of workpadID without blocking.
func (sm *StreamManager) Broadcast(workpadID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[workpadID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "workpad_id", workpadID)
		}
	}
}

// Subscribers reports how many clients follow workpadID.
func (sm *StreamManager) Subscribers(workpadID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[workpadID])
}
