package observability

import (
	"context"
	"testing"

	"levelbot/config"
	"levelbot/domain/entities"
	"levelbot/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true

	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.initializeWithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

// sumOf adds every data point of the named int64 metric
func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetricsProvider_Resource(t *testing.T) {
	_, reader := newTestProvider(t)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotNil(t, rm.Resource)

	serviceName, ok := rm.Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "levelbot-test", serviceName.AsString())

	environment, ok := rm.Resource.Set().Value("environment")
	require.True(t, ok)
	assert.Equal(t, "test", environment.AsString())
}

func TestMetricsProvider_RecordEvent(t *testing.T) {
	mp, reader := newTestProvider(t)
	ctx := context.Background()

	mp.RecordEvent(ctx, events.ActivityCountedEvent{GuildID: 1, DiscordID: 2, Live: 3})
	mp.RecordEvent(ctx, events.ActivityCountedEvent{GuildID: 1, DiscordID: 2, Live: 4})
	mp.RecordEvent(ctx, events.BalanceChangeEvent{TransactionType: entities.TransactionTypeClaim})
	mp.RecordEvent(ctx, events.LevelChangeEvent{Level: "LV2"})
	mp.RecordEvent(ctx, events.WagerSettledEvent{Game: events.GameDice, Outcome: "rolled", Bet: 50, Payout: 150})
	mp.RecordEvent(ctx, events.WagerSettledEvent{Game: events.GameBlackjack, Outcome: "blackjack", Bet: 10, Payout: 25})
	mp.RecordCommand("claim")

	assert.Equal(t, int64(2), sumOf(t, reader, MessagesCountedTotal))
	assert.Equal(t, int64(1), sumOf(t, reader, BalanceTransactionsTotal))
	assert.Equal(t, int64(1), sumOf(t, reader, LevelChangesTotal))
	assert.Equal(t, int64(2), sumOf(t, reader, WagersSettledTotal))
	assert.Equal(t, int64(175), sumOf(t, reader, WagersPayoutTotal))
	assert.Equal(t, int64(1), sumOf(t, reader, CommandsTotal))
}

func TestMetricsProvider_ActiveWagers(t *testing.T) {
	mp, reader := newTestProvider(t)

	blackjack, dice := 3, 2
	require.NoError(t, mp.RegisterActiveWagers(
		func() int { return blackjack },
		func() int { return dice },
	))

	assert.Equal(t, int64(5), sumOf(t, reader, WagersActive))

	blackjack = 0
	assert.Equal(t, int64(2), sumOf(t, reader, WagersActive))
}

func TestMetricsProvider_Disabled(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = false

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		mp.RecordEvent(context.Background(), events.LevelChangeEvent{Level: "LV3"})
		mp.RecordCommand("level")
		mp.RecordNATSMessagePublished(events.EventTypeLevelChange)
	})
	assert.NoError(t, mp.RegisterActiveWagers(func() int { return 0 }, func() int { return 0 }))
	assert.NoError(t, mp.Shutdown(context.Background()))

	var nilProvider *MetricsProvider
	assert.NotPanics(t, func() { nilProvider.RecordCommand("level") })
}
