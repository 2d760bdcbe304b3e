// Package events carries best-effort sync notifications to interested
// consumers (logs, the SSE stream). Delivery is never allowed to block a sync.
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Name identifies the kind of sync notification.
type Name string

const (
	SyncHappened  Name = "SYNC_HAPPENED"
	SyncCompleted Name = "SYNC_COMPLETED"
	SyncError     Name = "SYNC_ERROR"
)

// Event is a single notification. ItemID is the Plaid item id and is empty
// for user-level events.
type Event struct {
	Name    Name      `json:"name"`
	RunID   string    `json:"run_id"`
	ItemID  string    `json:"item_id,omitempty"`
	UserID  uint      `json:"user_id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives events. Implementations must not block.
type Notifier interface {
	Notify(e Event)
}

// Multi fans an event out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(e)
		}
	}
}

// Nop discards events.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(Event) {}

// LogNotifier writes events to a zap logger.
type LogNotifier struct {
	log *zap.SugaredLogger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(e Event) {
	kv := []interface{}{
		"event", e.Name,
		"run_id", e.RunID,
		"item_id", e.ItemID,
		"user_id", e.UserID,
	}
	if e.Name == SyncError {
		n.log.Warnw(e.Message, kv...)
		return
	}
	n.log.Infow(e.Message, kv...)
}

// Hub delivers events to per-user subscribers over buffered channels. A
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint]map[*Subscription]struct{}
	buffer int
}

// Subscription is a live feed of one user's events.
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	userID uint
	hub    *Hub
	once   sync.Once
}

// NewHub creates a Hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[uint]map[*Subscription]struct{}), buffer: buffer}
}

// Subscribe registers a subscriber for userID's events.
func (h *Hub) Subscribe(userID uint) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, userID: userID, hub: h}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Close unregisters the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		delete(h.subs[s.userID], s)
		if len(h.subs[s.userID]) == 0 {
			delete(h.subs, s.userID)
		}
		close(s.ch)
		h.mu.Unlock()
	})
}

// Notify implements Notifier.
func (h *Hub) Notify(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[e.UserID] {
		select {
		case sub.ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for userID.
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
