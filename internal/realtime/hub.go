// Package realtime is the in-process change-notification hub. Gateways publish
// an event after every committed insert, update or delete; views subscribe with
// a table name and an optional predicate and react by re-fetching a fresh
// snapshot, never by patching state incrementally.
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// Event describes one committed change to a table row.
type Event struct {
	Table    string
	Kind     EventKind
	RecordID uuid.UUID
}

// Predicate filters events for a subscription. A nil predicate matches all
// events on the subscribed table.
type Predicate func(Event) bool

type subscription struct {
	table string
	pred  Predicate
	fn    func(Event)
}

// Hub fans committed change events out to registered subscribers.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscription)}
}

// Subscribe registers fn for events on table matching pred and returns an id
// for Unsubscribe. Callers deregister on view teardown.
func (h *Hub) Subscribe(table string, pred Predicate, fn func(Event)) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.subs[h.nextID] = &subscription{table: table, pred: pred, fn: fn}
	return h.nextID
}

// Unsubscribe removes a subscription. Unknown ids are ignored so teardown is
// safe to run twice.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// Publish delivers the event to every matching subscriber. Callbacks run on
// the publisher's goroutine, outside the hub lock, so a subscriber may
// subscribe or unsubscribe from within its callback.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	matched := make([]func(Event), 0, len(h.subs))
	for _, s := range h.subs {
		if s.table != ev.Table {
			continue
		}
		if s.pred != nil && !s.pred(ev) {
			continue
		}
		matched = append(matched, s.fn)
	}
	h.mu.RUnlock()

	for _, fn := range matched {
		fn(ev)
	}
}
