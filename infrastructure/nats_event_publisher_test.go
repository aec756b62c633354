package infrastructure

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"levelbot/domain/entities"
	"levelbot/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, "ledger.balance_changed"},
		{events.LevelChangeEvent{}, "levels.level_changed"},
		{events.WagerSettledEvent{}, "wagers.settled"},
		{events.ActivityCountedEvent{}, "unknown.activity_counted"},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type()), func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
		})
	}

	for _, subject := range mapper.GetAllSubjects() {
		eventType := mapper.MapSubjectToEventType(subject)
		assert.Contains(t, mapper.PublishedEventTypes(), eventType, subject)
	}
}

func TestNATSEventPublisher_Envelope(t *testing.T) {
	client := &recordingPublisher{}
	var published []events.EventType
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), func(eventType events.EventType) {
		published = append(published, eventType)
	})

	event := events.BalanceChangeEvent{
		GuildID:         1,
		DiscordID:       2,
		OldBalance:      100,
		NewBalance:      90,
		ChangeAmount:    -10,
		TransactionType: entities.TransactionTypeDiceBet,
	}

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, publisher.Publish(event))

	require.Len(t, client.subjects, 1)
	assert.Equal(t, SubjectBalanceChanged, client.subjects[0])

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(client.payloads[0], &envelope))
	assert.Equal(t, "balance_change", envelope.EventType)
	assert.Equal(t, "levelbot", envelope.SourceService)
	assert.True(t, envelope.Timestamp.After(before))
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)

	var payload events.BalanceChangeEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)

	assert.Equal(t, []events.EventType{events.EventTypeBalanceChange}, published)
}

func TestNATSEventPublisher_Errors(t *testing.T) {
	t.Run("missing stream is ignored", func(t *testing.T) {
		client := &recordingPublisher{err: errors.New("nats: no response from stream")}
		publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), nil)

		assert.NoError(t, publisher.Publish(events.WagerSettledEvent{}))
	})

	t.Run("other failures are returned", func(t *testing.T) {
		client := &recordingPublisher{err: errors.New("nats: connection closed")}
		publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), nil)

		err := publisher.Publish(events.LevelChangeEvent{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection closed")
	})
}

func TestForwardEvents(t *testing.T) {
	bus := events.NewBus()
	publisher := &recordingEventPublisher{}

	ForwardEvents(bus, publisher, NewEventSubjectMapper().PublishedEventTypes()...)

	require.NoError(t, bus.Publish(events.WagerSettledEvent{Game: events.GameDice}))
	require.NoError(t, bus.Publish(events.ActivityCountedEvent{}))
	require.NoError(t, bus.Publish(events.LevelChangeEvent{Level: "LV2"}))

	assert.Eventually(t, func() bool { return publisher.count() == 2 }, time.Second, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, publisher.count())
}

func TestNoopEventPublisher(t *testing.T) {
	assert.NoError(t, NewNoopEventPublisher().Publish(events.BalanceChangeEvent{}))
}
