package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"levelbot/domain"
	"levelbot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRoller returns faces in order, repeating the last one
func fixedRoller(faces ...int) Roller {
	var mu sync.Mutex
	i := 0
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		face := faces[i]
		if i < len(faces)-1 {
			i++
		}
		return face
	}
}

// resultCollector records every onResult call
type resultCollector struct {
	mu      sync.Mutex
	results []*entities.DiceResult
}

func (c *resultCollector) record(result *entities.DiceResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

func (c *resultCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

func (c *resultCollector) first() *entities.DiceResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[0]
}

func TestDiceService_Rolled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		bet        int64
		reply      string
		dice       []int
		matches    int
		payout     int64
		newBalance int64
	}{
		{"one match pays 3x", 50, "4", []int{4, 2}, 1, 150, 200},
		{"two matches pay 10x", 10, "6", []int{6, 6}, 2, 100, 190},
		{"no match", 100, " 1 ", []int{3, 5}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100})
			collector := &resultCollector{}
			service := NewDiceService(ledger, nil, fixedRoller(tt.dice...), time.Minute)

			require.NoError(t, service.Place(ctx, TestGuildID, TestUser1ID, TestChannelID, tt.bet, collector.record))
			assert.Equal(t, 100-tt.bet, ledger.balance(TestUser1ID))
			assert.Equal(t, 1, service.Pending())

			require.True(t, service.Deliver(TestGuildID, TestUser1ID, TestChannelID, tt.reply))
			require.Equal(t, 1, collector.count())

			result := collector.first()
			assert.Equal(t, entities.DiceOutcomeRolled, result.Outcome)
			assert.Equal(t, tt.matches, result.Matches)
			assert.Equal(t, tt.payout, result.Payout)
			assert.Equal(t, tt.newBalance, result.NewBalance)
			assert.Equal(t, tt.newBalance, ledger.balance(TestUser1ID))
			assert.Equal(t, 0, service.Pending())
		})
	}
}

func TestDiceService_RefundedReplies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reply   string
		outcome entities.DiceOutcome
		face    int
	}{
		{"not a number", "four", entities.DiceOutcomeInvalidReply, 0},
		{"empty", "   ", entities.DiceOutcomeInvalidReply, 0},
		{"out of range high", "7", entities.DiceOutcomeOutOfRange, 7},
		{"out of range low", "0", entities.DiceOutcomeOutOfRange, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100})
			collector := &resultCollector{}
			service := NewDiceService(ledger, nil, fixedRoller(1), time.Minute)

			require.NoError(t, service.Place(context.Background(), TestGuildID, TestUser1ID, TestChannelID, 10, collector.record))
			require.True(t, service.Deliver(TestGuildID, TestUser1ID, TestChannelID, tt.reply))

			result := collector.first()
			assert.Equal(t, tt.outcome, result.Outcome)
			assert.Equal(t, tt.face, result.Face)
			assert.Equal(t, int64(0), result.Net())
			assert.Equal(t, int64(100), ledger.balance(TestUser1ID))
			assert.Equal(t, []entities.TransactionType{
				entities.TransactionTypeDiceBet,
				entities.TransactionTypeDiceRefund,
			}, ledger.transactions())
		})
	}
}

func TestDiceService_Timeout(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100})
	collector := &resultCollector{}
	service := NewDiceService(ledger, nil, fixedRoller(1), 20*time.Millisecond)

	require.NoError(t, service.Place(context.Background(), TestGuildID, TestUser1ID, TestChannelID, 50, collector.record))

	assert.Eventually(t, func() bool { return collector.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, entities.DiceOutcomeTimedOut, collector.first().Outcome)
	assert.Equal(t, int64(100), ledger.balance(TestUser1ID))

	// a late reply is not consumed and refunds nothing more
	assert.False(t, service.Deliver(TestGuildID, TestUser1ID, TestChannelID, "3"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, collector.count())
	assert.Equal(t, int64(100), ledger.balance(TestUser1ID))
}

func TestDiceService_SettleFailure(t *testing.T) {
	t.Parallel()

	t.Run("refund that cannot be credited is reported as failed", func(t *testing.T) {
		t.Parallel()

		ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100})
		ledger.addErr = errors.New("database unavailable")
		collector := &resultCollector{}
		service := NewDiceService(ledger, nil, fixedRoller(1), 30*time.Millisecond)

		require.NoError(t, service.Place(context.Background(), TestGuildID, TestUser1ID, TestChannelID, 50, collector.record))

		require.Eventually(t, func() bool { return collector.count() == 1 }, time.Second, 5*time.Millisecond)
		result := collector.first()
		assert.Equal(t, entities.DiceOutcomeTimedOut, result.Outcome)
		require.Error(t, result.Err)
		assert.ErrorContains(t, result.Err, "database unavailable")
		assert.Equal(t, int64(50), ledger.balance(TestUser1ID))
		assert.Equal(t, 0, service.Pending())
	})

	t.Run("payout that cannot be credited is reported as failed", func(t *testing.T) {
		t.Parallel()

		ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100})
		collector := &resultCollector{}
		service := NewDiceService(ledger, nil, fixedRoller(4, 4), time.Minute)

		require.NoError(t, service.Place(context.Background(), TestGuildID, TestUser1ID, TestChannelID, 10, collector.record))
		ledger.mu.Lock()
		ledger.addErr = errors.New("database unavailable")
		ledger.mu.Unlock()

		require.True(t, service.Deliver(TestGuildID, TestUser1ID, TestChannelID, "4"))
		require.Equal(t, 1, collector.count())
		result := collector.first()
		assert.Equal(t, entities.DiceOutcomeRolled, result.Outcome)
		assert.Equal(t, int64(100), result.Payout)
		require.Error(t, result.Err)
		assert.Equal(t, int64(90), ledger.balance(TestUser1ID))
	})

	t.Run("transient failure is retried once", func(t *testing.T) {
		t.Parallel()

		ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100})
		ledger.addFailures = 1
		collector := &resultCollector{}
		service := NewDiceService(ledger, nil, fixedRoller(1), 30*time.Millisecond)

		require.NoError(t, service.Place(context.Background(), TestGuildID, TestUser1ID, TestChannelID, 50, collector.record))

		require.Eventually(t, func() bool { return collector.count() == 1 }, time.Second, 5*time.Millisecond)
		result := collector.first()
		assert.NoError(t, result.Err)
		assert.Equal(t, int64(100), result.NewBalance)
		assert.Equal(t, int64(100), ledger.balance(TestUser1ID))
	})
}

func TestDiceService_ReplyRacesTimeout(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100})
		collector := &resultCollector{}
		service := NewDiceService(ledger, nil, fixedRoller(2, 3), time.Millisecond)

		require.NoError(t, service.Place(context.Background(), TestGuildID, TestUser1ID, TestChannelID, 10, collector.record))
		time.Sleep(time.Millisecond)
		service.Deliver(TestGuildID, TestUser1ID, TestChannelID, "5")

		require.Eventually(t, func() bool { return collector.count() >= 1 }, time.Second, time.Millisecond)
		time.Sleep(5 * time.Millisecond)
		assert.Equal(t, 1, collector.count())

		// refund or losing roll, never both
		switch collector.first().Outcome {
		case entities.DiceOutcomeTimedOut:
			assert.Equal(t, int64(100), ledger.balance(TestUser1ID))
		case entities.DiceOutcomeRolled:
			assert.Equal(t, int64(90), ledger.balance(TestUser1ID))
		default:
			t.Fatalf("unexpected outcome %s", collector.first().Outcome)
		}
	}
}

func TestDiceService_Deliver_Ignored(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100})
	collector := &resultCollector{}
	service := NewDiceService(ledger, nil, fixedRoller(1), time.Minute)

	assert.False(t, service.Deliver(TestGuildID, TestUser1ID, TestChannelID, "3"), "nothing pending")

	require.NoError(t, service.Place(context.Background(), TestGuildID, TestUser1ID, TestChannelID, 10, collector.record))

	assert.False(t, service.Deliver(TestGuildID, TestUser1ID, TestChannelID+1, "3"), "other channel")
	assert.False(t, service.Deliver(TestGuildID, TestUser2ID, TestChannelID, "3"), "other member")
	assert.False(t, service.Deliver(TestGuildID+1, TestUser1ID, TestChannelID, "3"), "other guild")
	assert.Equal(t, 0, collector.count())
	assert.Equal(t, 1, service.Pending())
}

func TestDiceService_Place_Rejections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("bet not allowed", func(t *testing.T) {
		t.Parallel()

		ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100})
		service := NewDiceService(ledger, nil, nil, time.Minute)

		for _, bet := range []int64{0, 5, 20, 1000} {
			err := service.Place(ctx, TestGuildID, TestUser1ID, TestChannelID, bet, nil)
			var validationErr *domain.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, "Bet must be 10, 50, or 100.", validationErr.Reason)
		}
		assert.Equal(t, int64(100), ledger.balance(TestUser1ID))
	})

	t.Run("insufficient balance", func(t *testing.T) {
		t.Parallel()

		ledger := newFakeLedger(map[int64]int64{TestUser1ID: 40})
		service := NewDiceService(ledger, nil, nil, time.Minute)

		err := service.Place(ctx, TestGuildID, TestUser1ID, TestChannelID, 50, nil)
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		assert.Equal(t, 0, service.Pending())
	})

	t.Run("one wager at a time", func(t *testing.T) {
		t.Parallel()

		ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100})
		service := NewDiceService(ledger, nil, nil, time.Minute)

		require.NoError(t, service.Place(ctx, TestGuildID, TestUser1ID, TestChannelID, 10, nil))
		err := service.Place(ctx, TestGuildID, TestUser1ID, TestChannelID, 10, nil)
		assert.ErrorIs(t, err, domain.ErrWagerPending)
		assert.Equal(t, int64(90), ledger.balance(TestUser1ID))
	})
}

func TestDiceService_Shutdown(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger(map[int64]int64{TestUser1ID: 100, TestUser2ID: 100})
	var refunds atomic.Int32
	onResult := func(result *entities.DiceResult) {
		if result.Outcome == entities.DiceOutcomeCancelled {
			refunds.Add(1)
		}
	}
	service := NewDiceService(ledger, nil, nil, time.Minute)

	ctx := context.Background()
	require.NoError(t, service.Place(ctx, TestGuildID, TestUser1ID, TestChannelID, 50, onResult))
	require.NoError(t, service.Place(ctx, TestGuildID, TestUser2ID, TestChannelID, 100, onResult))

	service.Shutdown(ctx)

	assert.Equal(t, int32(2), refunds.Load())
	assert.Equal(t, 0, service.Pending())
	assert.Equal(t, int64(100), ledger.balance(TestUser1ID))
	assert.Equal(t, int64(100), ledger.balance(TestUser2ID))
}
