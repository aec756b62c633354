package infrastructure

import (
	"context"
	"sync"

	"levelbot/events"
)

// recordingPublisher captures raw messages handed to the bus client
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (r *recordingPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
	return nil
}

// recordingEventPublisher captures domain events
type recordingEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEventPublisher) Publish(event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEventPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
