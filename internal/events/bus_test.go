// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package events

import (
	"sync"
	"testing"
)

func TestSubscribeFiltersByKind(t *testing.T) {
	bus := NewBus()

	var got []Kind
	bus.Subscribe(func(ev Event) {
		got = append(got, ev.Kind)
	}, CitationAdded, CitationRemoved)

	bus.Publish(CitationAdded, "c1", nil)
	bus.Publish(ClaimRegistered, "cl1", nil)
	bus.Publish(CitationRemoved, "c1", nil)

	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0] != CitationAdded || got[1] != CitationRemoved {
		t.Errorf("got = %v, want [citation-added citation-removed]", got)
	}
}

func TestSubscribeAllKinds(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.Subscribe(func(Event) { count++ })

	bus.Publish(PlanCreated, "p1", nil)
	bus.Publish(Progress, "p1", nil)
	bus.Publish(ResearchCompleted, "p1", nil)

	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestCancelRemovesSubscription(t *testing.T) {
	bus := NewBus()

	count := 0
	cancel := bus.Subscribe(func(Event) { count++ }, SourceScored)

	bus.Publish(SourceScored, "u1", nil)
	cancel()
	bus.Publish(SourceScored, "u2", nil)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestPublishOnNilBus(t *testing.T) {
	var bus *Bus
	// Must not panic.
	bus.Publish(CitationAdded, "c1", nil)
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	}, Progress)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(Progress, "p", nil)
			}
		}()
	}
	wg.Wait()

	if count != 1000 {
		t.Errorf("count = %d, want 1000", count)
	}
}

func TestEventCarriesIDAndPayload(t *testing.T) {
	bus := NewBus()

	var got Event
	bus.Subscribe(func(ev Event) { got = ev }, CitationVerified)

	bus.Publish(CitationVerified, "c42", "payload")

	if got.ID != "c42" {
		t.Errorf("ID = %q, want %q", got.ID, "c42")
	}
	if got.Payload != "payload" {
		t.Errorf("Payload = %v, want %q", got.Payload, "payload")
	}
	if got.Time.IsZero() {
		t.Error("Time is zero, want set")
	}
}
