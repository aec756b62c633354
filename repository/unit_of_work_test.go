package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"levelbot/domain/entities"
	"levelbot/events"
	"levelbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects events delivered by the bus
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestUnitOfWork(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	bus := events.NewBus()
	rec := &recorder{}
	bus.Subscribe(events.EventTypeBalanceChange, rec.handle)

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	t.Run("getters panic before begin", func(t *testing.T) {
		uow := factory.CreateForGuild(1)
		assert.Panics(t, func() { uow.BalanceRepository() })
		assert.Panics(t, func() { uow.ActivityRepository() })
	})

	t.Run("commit persists and delivers events", func(t *testing.T) {
		uow := factory.CreateForGuild(1)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		newBalance, err := uow.BalanceRepository().AddBalance(ctx, 100, 40)
		require.NoError(t, err)
		require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{
			GuildID:         1,
			DiscordID:       100,
			NewBalance:      newBalance,
			ChangeAmount:    40,
			TransactionType: entities.TransactionTypeAdminGrant,
		}))
		require.NoError(t, uow.Commit())

		assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 10*time.Millisecond)

		balance, err := NewBalanceRepository(testDB.DB, 1).GetOrCreate(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(40), balance.Balance)
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		uow := factory.CreateForGuild(1)
		require.NoError(t, uow.Begin(ctx))

		_, err := uow.BalanceRepository().AddBalance(ctx, 200, 99)
		require.NoError(t, err)
		require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{GuildID: 1, DiscordID: 200}))
		require.NoError(t, uow.Rollback())

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 1, rec.count())

		balance, err := NewBalanceRepository(testDB.DB, 1).GetOrCreate(ctx, 200)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance.Balance)
	})

	t.Run("rollback after commit is a no-op", func(t *testing.T) {
		uow := factory.CreateForGuild(1)
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.Commit())
		assert.NoError(t, uow.Rollback())
	})

	t.Run("double begin fails", func(t *testing.T) {
		uow := factory.CreateForGuild(1)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		assert.Error(t, uow.Begin(ctx))
	})
}
