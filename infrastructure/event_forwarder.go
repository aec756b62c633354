package infrastructure

import (
	"context"

	"levelbot/domain/interfaces"
	"levelbot/events"

	log "github.com/sirupsen/logrus"
)

// ForwardEvents subscribes publisher to bus for each of eventTypes. Events
// reach the bus only after their transaction committed, so nothing rolled
// back is ever forwarded.
func ForwardEvents(bus *events.Bus, publisher interfaces.EventPublisher, eventTypes ...events.EventType) {
	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) {
			if err := publisher.Publish(event); err != nil {
				log.WithError(err).WithField("eventType", event.Type()).Error("Failed to forward event")
			}
		})
	}
}
