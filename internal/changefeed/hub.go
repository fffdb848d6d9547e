// Package changefeed fans row-level store notifications out to subscribers.
package changefeed

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

// OpResync is delivered to every subscriber, regardless of filter, after the
// underlying connection was re-established and notifications may have been lost.
const OpResync model.ChangeOp = "RESYNC"

type Handler func(event model.ChangeEvent)

// Filter selects events by table, optionally by operation and by equality on one column.
type Filter struct {
	Table  string
	Op     model.ChangeOp
	Column string
	Value  string
}

func (f Filter) Matches(event model.ChangeEvent) bool {
	if event.Op == OpResync {
		return true
	}
	if f.Table != "" && f.Table != event.Table {
		return false
	}
	if f.Op != "" && f.Op != event.Op {
		return false
	}
	if f.Column == "" {
		return true
	}

	var row map[string]interface{}
	if err := json.Unmarshal(event.Row(), &row); err != nil {
		return false
	}
	value, ok := row[f.Column]
	if !ok || value == nil {
		return false
	}
	return fmt.Sprint(value) == f.Value
}

type Subscription struct {
	id      uint64
	hub     *Hub
	filter  Filter
	handler Handler
	active  atomic.Bool
}

// Unsubscribe detaches the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	s.hub.remove(s.id)
}

func (s *Subscription) Active() bool {
	return s != nil && s.active.Load()
}

type Hub struct {
	mu   sync.RWMutex
	subs map[uint64]*Subscription
	next uint64
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint64]*Subscription),
	}
}

func (h *Hub) Subscribe(filter Filter, handler Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	sub := &Subscription{
		id:      h.next,
		hub:     h,
		filter:  filter,
		handler: handler,
	}
	sub.active.Store(true)
	h.subs[sub.id] = sub

	return sub
}

// Publish delivers event to every matching subscriber in subscription order
// and returns the number of handlers invoked. Handlers run on the caller's
// goroutine and may unsubscribe themselves.
func (h *Hub) Publish(event model.ChangeEvent) int {
	h.mu.RLock()
	matched := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		if sub.filter.Matches(event) {
			matched = append(matched, sub)
		}
	}
	h.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })

	delivered := 0
	for _, sub := range matched {
		if !sub.Active() {
			continue
		}
		sub.handler(event)
		delivered++
	}
	return delivered
}

// Resync tells every subscriber that notifications may have been missed.
func (h *Hub) Resync() int {
	return h.Publish(model.ChangeEvent{Op: OpResync})
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}
