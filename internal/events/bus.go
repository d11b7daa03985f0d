// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package events provides the in-process publish/subscribe bus the engine
// uses to surface citation, claim, and research lifecycle events. Consumers
// subscribe by event kind instead of matching on strings.
package events

import (
	"sync"
	"time"
)

// Kind identifies an event type.
type Kind string

const (
	CitationAdded     Kind = "citation-added"
	CitationRejected  Kind = "citation-rejected"
	CitationVerified  Kind = "citation-verified"
	CitationRemoved   Kind = "citation-removed"
	ClaimRegistered   Kind = "claim-registered"
	ClaimVerified     Kind = "claim-verified"
	SourceScored      Kind = "source-scored"
	PlanCreated       Kind = "plan-created"
	ResearchStarted   Kind = "research-started"
	Progress          Kind = "progress"
	ResearchCompleted Kind = "research-completed"
	ResearchFailed    Kind = "research-failed"
	ResearchCancelled Kind = "research-cancelled"
)

// Event is one published notification. ID carries the primary identifier for
// the kind (citation id, claim id, or plan id); Payload carries the full
// record when one exists.
type Event struct {
	Kind    Kind
	Time    time.Time
	ID      string
	Payload any
}

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(Event)

type subscription struct {
	kinds   map[Kind]bool // nil means all kinds
	handler Handler
}

// Bus is a kind-filtered callback registry. The zero value is not usable;
// construct with NewBus. A nil *Bus drops all publishes, so components can
// treat the bus as optional.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]subscription
	nextID int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscription)}
}

// Subscribe registers handler for the given kinds (all kinds when none are
// given) and returns a function that removes the subscription.
func (b *Bus) Subscribe(handler Handler, kinds ...Kind) (cancel func()) {
	var filter map[Kind]bool
	if len(kinds) > 0 {
		filter = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			filter[k] = true
		}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscription{kinds: filter, handler: handler}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers the event to every matching subscriber. Publishing on a
// nil bus is a no-op.
func (b *Bus) Publish(kind Kind, id string, payload any) {
	if b == nil {
		return
	}

	ev := Event{Kind: kind, Time: time.Now(), ID: id, Payload: payload}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.kinds == nil || sub.kinds[kind] {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
