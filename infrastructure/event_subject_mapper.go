package infrastructure

import (
	"fmt"

	"levelbot/events"
)

// NATS subjects for published domain events
const (
	SubjectBalanceChanged = "ledger.balance_changed"
	SubjectLevelChanged   = "levels.level_changed"
	SubjectWagerSettled   = "wagers.settled"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return SubjectBalanceChanged
	case events.EventTypeLevelChange:
		return SubjectLevelChanged
	case events.EventTypeWagerSettled:
		return SubjectWagerSettled
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectBalanceChanged:
		return events.EventTypeBalanceChange
	case SubjectLevelChanged:
		return events.EventTypeLevelChange
	case SubjectWagerSettled:
		return events.EventTypeWagerSettled
	default:
		return events.EventType(subject)
	}
}

// PublishedEventTypes returns the event types forwarded to NATS. Per-message
// activity events stay in process.
func (m *EventSubjectMapper) PublishedEventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeLevelChange,
		events.EventTypeWagerSettled,
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectBalanceChanged,
		SubjectLevelChanged,
		SubjectWagerSettled,
	}
}
