package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"levelbot/domain/entities"
	"levelbot/domain/interfaces"

	"github.com/stretchr/testify/assert"
)

// sweepRecorder is a BlackjackService that only records idle sweeps
type sweepRecorder struct {
	interfaces.BlackjackService

	mu    sync.Mutex
	calls []time.Duration
}

func (r *sweepRecorder) ExpireIdle(ctx context.Context, idle time.Duration) []*entities.BlackjackHand {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, idle)
	return []*entities.BlackjackHand{{GuildID: 1, DiscordID: 2, Bet: 10, Finished: true, Outcome: entities.BlackjackOutcomeWin}}
}

func (r *sweepRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestStartBlackjackIdleWorker(t *testing.T) {
	t.Parallel()

	recorder := &sweepRecorder{}
	b := &Bot{services: Services{Blackjack: recorder}}

	stop := b.StartBlackjackIdleWorker(context.Background(), 5*time.Millisecond, 10*time.Minute)
	assert.Eventually(t, func() bool { return recorder.count() >= 2 }, time.Second, 5*time.Millisecond)
	stop()

	recorder.mu.Lock()
	assert.Equal(t, 10*time.Minute, recorder.calls[0])
	recorder.mu.Unlock()

	settled := recorder.count()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, recorder.count(), settled+1, "worker kept sweeping after stop")
}

func TestStartBlackjackIdleWorker_ContextCancel(t *testing.T) {
	t.Parallel()

	recorder := &sweepRecorder{}
	b := &Bot{services: Services{Blackjack: recorder}}

	ctx, cancel := context.WithCancel(context.Background())
	stop := b.StartBlackjackIdleWorker(ctx, 5*time.Millisecond, time.Minute)
	cancel()
	defer stop()

	time.Sleep(30 * time.Millisecond)
	after := recorder.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, recorder.count())
}
