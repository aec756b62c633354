package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const blackjackSweepInterval = 1 * time.Minute

// StartBlackjackIdleWorker starts a background worker that stands hands left
// idle for longer than idle, checking every interval.
// Returns a cleanup function to stop the worker gracefully
func (b *Bot) StartBlackjackIdleWorker(ctx context.Context, interval, idle time.Duration) func() {
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})

	sweep := func() {
		for _, hand := range b.services.Blackjack.ExpireIdle(ctx, idle) {
			log.WithFields(log.Fields{
				"guild_id": hand.GuildID,
				"user_id":  hand.DiscordID,
				"bet":      hand.Bet,
				"outcome":  hand.Outcome.String(),
				"payout":   hand.Payout,
			}).Info("Idle blackjack hand settled")
		}
	}

	go func() {
		log.Infof("Blackjack idle worker started (timeout %v)", idle)

		for {
			select {
			case <-ctx.Done():
				log.Info("Blackjack idle worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Blackjack idle worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}
