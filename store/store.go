package store

import (
	"context"
	"sync"

	"sharepool/sharepooling"
)

// EventStore persists and reloads the event history of asset aggregates.
type EventStore interface {
	Append(ctx context.Context, assetID string, events []sharepooling.Event) error
	Load(ctx context.Context, assetID string) ([]sharepooling.Event, error)
}

// Memory is an in-memory EventStore. Events are round-tripped through the
// persistence encoding on the way in and out, so it exercises the same
// serialization path as a durable store and cannot leak shared entity
// pointers back to callers.
type Memory struct {
	mu     sync.RWMutex
	events map[string][]encoded
}

type encoded struct {
	eventType string
	payload   []byte
}

func NewMemory() *Memory {
	return &Memory{events: make(map[string][]encoded)}
}

func (m *Memory) Append(_ context.Context, assetID string, events []sharepooling.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		payload, err := sharepooling.EncodeEvent(e)
		if err != nil {
			return err
		}
		m.events[assetID] = append(m.events[assetID], encoded{e.EventType(), payload})
	}
	return nil
}

func (m *Memory) Load(_ context.Context, assetID string) ([]sharepooling.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.events[assetID]
	events := make([]sharepooling.Event, 0, len(stored))
	for _, enc := range stored {
		e, err := sharepooling.DecodeEvent(enc.eventType, enc.payload)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
