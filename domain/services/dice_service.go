package services

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"levelbot/domain"
	"levelbot/domain/entities"
	"levelbot/domain/interfaces"
	"levelbot/events"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultDiceReplyTimeout is how long a wager waits for the member's face
	DefaultDiceReplyTimeout = 20 * time.Second

	diceSettleTimeout = 10 * time.Second
)

// Roller returns one die face in 1..6
type Roller func() int

// RandomRoller rolls a fair die with math/rand
func RandomRoller() int {
	return rand.Intn(6) + 1
}

// diceWager is a debited stake waiting for one reply. resolved flips exactly
// once; whoever flips it settles the wager.
type diceWager struct {
	guildID   int64
	discordID int64
	channelID int64
	bet       int64
	onResult  func(*entities.DiceResult)
	timer     *time.Timer
	resolved  atomic.Bool
}

// diceService implements the DiceService interface
type diceService struct {
	ledger    interfaces.LedgerService
	publisher interfaces.EventPublisher
	roll      Roller
	timeout   time.Duration

	mu      sync.Mutex
	pending map[memberKey]*diceWager
}

// NewDiceService creates a dice service. roll may be nil for RandomRoller,
// timeout 0 for DefaultDiceReplyTimeout, publisher nil to skip events.
func NewDiceService(ledger interfaces.LedgerService, publisher interfaces.EventPublisher, roll Roller, timeout time.Duration) interfaces.DiceService {
	if roll == nil {
		roll = RandomRoller
	}
	if timeout <= 0 {
		timeout = DefaultDiceReplyTimeout
	}
	return &diceService{
		ledger:    ledger,
		publisher: publisher,
		roll:      roll,
		timeout:   timeout,
		pending:   make(map[memberKey]*diceWager),
	}
}

// Place debits bet and starts waiting for the member's reply in channelID
func (s *diceService) Place(ctx context.Context, guildID, discordID, channelID, bet int64, onResult func(*entities.DiceResult)) error {
	if !entities.IsAllowedDiceBet(bet) {
		return domain.NewValidationError("Bet must be 10, 50, or 100.")
	}

	key := memberKey{guildID: guildID, discordID: discordID}
	wager := &diceWager{
		guildID:   guildID,
		discordID: discordID,
		channelID: channelID,
		bet:       bet,
		onResult:  onResult,
	}

	// The slot is held while debiting so a second Place cannot debit too.
	// resolved stays set until the debit succeeds so nothing can settle an
	// unpaid wager.
	wager.resolved.Store(true)
	s.mu.Lock()
	if _, exists := s.pending[key]; exists {
		s.mu.Unlock()
		return domain.NewStateError(domain.ErrWagerPending, "You already have a dice roll waiting for your number.")
	}
	s.pending[key] = wager
	s.mu.Unlock()

	if _, err := s.ledger.Debit(ctx, guildID, discordID, bet, entities.TransactionTypeDiceBet, nil); err != nil {
		s.remove(key, wager)
		return err
	}

	s.mu.Lock()
	wager.resolved.Store(false)
	wager.timer = time.AfterFunc(s.timeout, func() {
		s.resolve(wager, entities.DiceOutcomeTimedOut, 0)
	})
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"guild_id":   guildID,
		"user_id":    discordID,
		"channel_id": channelID,
		"bet":        bet,
	}).Debug("Dice wager waiting for reply")

	return nil
}

// Deliver hands a chat message to the member's waiting wager. A reply that
// loses the race with the timeout is not consumed.
func (s *diceService) Deliver(guildID, discordID, channelID int64, content string) bool {
	s.mu.Lock()
	wager := s.pending[memberKey{guildID: guildID, discordID: discordID}]
	s.mu.Unlock()

	if wager == nil || wager.channelID != channelID {
		return false
	}

	face, err := strconv.Atoi(strings.TrimSpace(content))
	switch {
	case err != nil:
		return s.resolve(wager, entities.DiceOutcomeInvalidReply, 0)
	case face < 1 || face > 6:
		return s.resolve(wager, entities.DiceOutcomeOutOfRange, face)
	default:
		return s.resolve(wager, entities.DiceOutcomeRolled, face)
	}
}

// resolve settles wager once. Returns false if something else already did.
func (s *diceService) resolve(wager *diceWager, outcome entities.DiceOutcome, face int) bool {
	if !wager.resolved.CompareAndSwap(false, true) {
		return false
	}

	s.mu.Lock()
	if wager.timer != nil {
		wager.timer.Stop()
	}
	if key := (memberKey{guildID: wager.guildID, discordID: wager.discordID}); s.pending[key] == wager {
		delete(s.pending, key)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), diceSettleTimeout)
	defer cancel()

	result := s.settle(ctx, wager, outcome, face)
	if wager.onResult != nil {
		wager.onResult(result)
	}
	return true
}

func (s *diceService) settle(ctx context.Context, wager *diceWager, outcome entities.DiceOutcome, face int) *entities.DiceResult {
	result := &entities.DiceResult{
		GuildID:   wager.guildID,
		DiscordID: wager.discordID,
		ChannelID: wager.channelID,
		Bet:       wager.bet,
		Outcome:   outcome,
		Face:      face,
	}

	logger := log.WithFields(log.Fields{
		"guild_id": wager.guildID,
		"user_id":  wager.discordID,
		"bet":      wager.bet,
		"outcome":  outcome.String(),
	})

	credit := func(amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
		balance, err := s.ledger.Add(ctx, wager.guildID, wager.discordID, amount, txType, metadata)
		if err != nil {
			logger.WithError(err).Warn("Dice credit failed, retrying")
			balance, err = s.ledger.Add(ctx, wager.guildID, wager.discordID, amount, txType, metadata)
		}
		return balance, err
	}

	var err error
	switch {
	case outcome.IsRefund():
		result.NewBalance, err = credit(wager.bet, entities.TransactionTypeDiceRefund,
			map[string]any{"reason": outcome.String()})
	default:
		result.Dice = [2]int{s.roll(), s.roll()}
		result.Matches = entities.DiceMatches(face, result.Dice)
		result.Payout = entities.DicePayout(result.Matches, wager.bet)
		if result.Payout > 0 {
			result.NewBalance, err = credit(result.Payout, entities.TransactionTypeDicePayout,
				map[string]any{"face": face, "matches": result.Matches})
		} else {
			result.NewBalance, err = s.ledger.GetBalance(ctx, wager.guildID, wager.discordID)
		}
	}
	if err != nil {
		logger.WithError(err).Error("Failed to settle dice wager")
		result.Err = fmt.Errorf("failed to settle dice wager: %w", err)
		return result
	}
	logger.WithField("payout", result.Payout).Info("Dice wager settled")

	if s.publisher != nil {
		if err := s.publisher.Publish(events.WagerSettledEvent{
			GuildID:   wager.guildID,
			DiscordID: wager.discordID,
			Game:      events.GameDice,
			Outcome:   outcome.String(),
			Bet:       wager.bet,
			Payout:    result.Payout,
		}); err != nil {
			logger.WithError(err).Warn("Failed to publish wager settled event")
		}
	}

	return result
}

func (s *diceService) remove(key memberKey, wager *diceWager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[key] == wager {
		delete(s.pending, key)
	}
}

// Pending returns the number of wagers waiting for a reply
func (s *diceService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Shutdown refunds every waiting wager
func (s *diceService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	wagers := make([]*diceWager, 0, len(s.pending))
	for _, wager := range s.pending {
		wagers = append(wagers, wager)
	}
	s.mu.Unlock()

	for _, wager := range wagers {
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).Warn("Shutdown deadline reached before all dice wagers were refunded")
			return
		}
		s.resolve(wager, entities.DiceOutcomeCancelled, 0)
	}
}
