package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"levelbot/domain"
	"levelbot/domain/entities"
	"levelbot/domain/interfaces"
	"levelbot/events"

	log "github.com/sirupsen/logrus"
)

const dealerStandsOn = 17

// Shuffler orders a fresh deck in place
type Shuffler func(deck []entities.Card)

// RandomShuffler shuffles uniformly with math/rand
func RandomShuffler(deck []entities.Card) {
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// blackjackSession is one member's hand in progress. mu serializes actions
// from the same member; done is set once the hand is settled so an action that
// queued behind the settling one reports no active hand.
type blackjackSession struct {
	mu         sync.Mutex
	guildID    int64
	discordID  int64
	bet        int64
	deck       []entities.Card
	player     entities.Hand
	dealer     entities.Hand
	doubled    bool
	lastAction time.Time
	done       bool
}

func (sess *blackjackSession) draw() entities.Card {
	card := sess.deck[len(sess.deck)-1]
	sess.deck = sess.deck[:len(sess.deck)-1]
	return card
}

func (sess *blackjackSession) snapshot() *entities.BlackjackHand {
	return &entities.BlackjackHand{
		GuildID:    sess.guildID,
		DiscordID:  sess.discordID,
		Bet:        sess.bet,
		PlayerHand: append(entities.Hand(nil), sess.player...),
		DealerHand: append(entities.Hand(nil), sess.dealer...),
		Doubled:    sess.doubled,
	}
}

// blackjackService implements the BlackjackService interface
type blackjackService struct {
	ledger    interfaces.LedgerService
	publisher interfaces.EventPublisher
	shuffle   Shuffler
	now       func() time.Time

	mu       sync.Mutex
	sessions map[memberKey]*blackjackSession
}

// NewBlackjackService creates a blackjack service. shuffle may be nil for
// RandomShuffler; publisher may be nil.
func NewBlackjackService(ledger interfaces.LedgerService, publisher interfaces.EventPublisher, shuffle Shuffler) interfaces.BlackjackService {
	if shuffle == nil {
		shuffle = RandomShuffler
	}
	return &blackjackService{
		ledger:    ledger,
		publisher: publisher,
		shuffle:   shuffle,
		now:       time.Now,
		sessions:  make(map[memberKey]*blackjackSession),
	}
}

func errNoActiveHand() error {
	return domain.NewStateError(domain.ErrNoActiveHand, "No active blackjack hand.")
}

// Start debits bet and deals. A natural on either side settles immediately.
func (s *blackjackService) Start(ctx context.Context, guildID, discordID, bet int64) (*entities.BlackjackHand, error) {
	if bet <= 0 {
		return nil, domain.NewValidationError("Bet must be a positive integer.")
	}

	key := memberKey{guildID: guildID, discordID: discordID}
	sess := &blackjackSession{guildID: guildID, discordID: discordID, bet: bet}

	// The session is registered locked so a second Start or an early action
	// cannot slip in while the stake is being debited.
	s.mu.Lock()
	if _, exists := s.sessions[key]; exists {
		s.mu.Unlock()
		return nil, domain.NewStateError(domain.ErrHandInProgress,
			"You already have an active blackjack hand. Use Hit, Stand, Double or Surrender.")
	}
	sess.mu.Lock()
	s.sessions[key] = sess
	s.mu.Unlock()
	defer sess.mu.Unlock()

	if _, err := s.ledger.Debit(ctx, guildID, discordID, bet, entities.TransactionTypeBlackjackBet, nil); err != nil {
		sess.done = true
		s.remove(key, sess)
		return nil, err
	}

	sess.deck = entities.NewDeck()
	s.shuffle(sess.deck)
	sess.player = entities.Hand{sess.draw(), sess.draw()}
	sess.dealer = entities.Hand{sess.draw(), sess.draw()}
	sess.lastAction = s.now()

	playerNatural := sess.player.IsTwentyOne()
	dealerNatural := sess.dealer.IsTwentyOne()

	switch {
	case playerNatural && dealerNatural:
		return s.settleNatural(ctx, sess, entities.BlackjackOutcomePush)
	case playerNatural:
		return s.settleNatural(ctx, sess, entities.BlackjackOutcomeBlackjack)
	case dealerNatural:
		return s.settleNatural(ctx, sess, entities.BlackjackOutcomeLose)
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"user_id":  discordID,
		"bet":      bet,
	}).Debug("Blackjack hand dealt")

	return sess.snapshot(), nil
}

func (s *blackjackService) settleNatural(ctx context.Context, sess *blackjackSession, outcome entities.BlackjackOutcome) (*entities.BlackjackHand, error) {
	hand, err := s.settle(ctx, sess, outcome)
	if hand != nil {
		hand.Natural = true
	}
	return hand, err
}

// withSession runs fn while holding the member's session lock
func (s *blackjackService) withSession(guildID, discordID int64, fn func(sess *blackjackSession) (*entities.BlackjackHand, error)) (*entities.BlackjackHand, error) {
	s.mu.Lock()
	sess := s.sessions[memberKey{guildID: guildID, discordID: discordID}]
	s.mu.Unlock()

	if sess == nil {
		return nil, errNoActiveHand()
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.done {
		return nil, errNoActiveHand()
	}
	return fn(sess)
}

// Hit draws one card; a bust loses the stake
func (s *blackjackService) Hit(ctx context.Context, guildID, discordID int64) (*entities.BlackjackHand, error) {
	return s.withSession(guildID, discordID, func(sess *blackjackSession) (*entities.BlackjackHand, error) {
		sess.player = append(sess.player, sess.draw())
		if sess.player.IsBust() {
			return s.settle(ctx, sess, entities.BlackjackOutcomeLose)
		}
		sess.lastAction = s.now()
		return sess.snapshot(), nil
	})
}

// Stand lets the dealer play out and settles
func (s *blackjackService) Stand(ctx context.Context, guildID, discordID int64) (*entities.BlackjackHand, error) {
	return s.withSession(guildID, discordID, func(sess *blackjackSession) (*entities.BlackjackHand, error) {
		return s.settle(ctx, sess, s.playDealer(sess))
	})
}

// Double debits a second stake, draws exactly one card and settles. The bust
// check comes before the dealer draws anything.
func (s *blackjackService) Double(ctx context.Context, guildID, discordID int64) (*entities.BlackjackHand, error) {
	return s.withSession(guildID, discordID, func(sess *blackjackSession) (*entities.BlackjackHand, error) {
		_, err := s.ledger.Debit(ctx, guildID, discordID, sess.bet, entities.TransactionTypeBlackjackBet,
			map[string]any{"double": true})
		if err != nil {
			return nil, err
		}

		sess.bet *= 2
		sess.doubled = true
		sess.player = append(sess.player, sess.draw())

		if sess.player.IsBust() {
			return s.settle(ctx, sess, entities.BlackjackOutcomeLose)
		}
		return s.settle(ctx, sess, s.playDealer(sess))
	})
}

// Surrender forfeits half the stake
func (s *blackjackService) Surrender(ctx context.Context, guildID, discordID int64) (*entities.BlackjackHand, error) {
	return s.withSession(guildID, discordID, func(sess *blackjackSession) (*entities.BlackjackHand, error) {
		return s.settle(ctx, sess, entities.BlackjackOutcomeSurrender)
	})
}

// playDealer draws for the dealer until 17 or more and compares hands
func (s *blackjackService) playDealer(sess *blackjackSession) entities.BlackjackOutcome {
	for sess.dealer.Value() < dealerStandsOn {
		sess.dealer = append(sess.dealer, sess.draw())
	}

	player, dealer := sess.player.Value(), sess.dealer.Value()
	switch {
	case dealer > 21 || player > dealer:
		return entities.BlackjackOutcomeWin
	case player < dealer:
		return entities.BlackjackOutcomeLose
	default:
		return entities.BlackjackOutcomePush
	}
}

// settle ends the session and credits the payout. The session is gone even if
// the credit fails; the credit is retried once and the error returned with the
// settled hand.
func (s *blackjackService) settle(ctx context.Context, sess *blackjackSession, outcome entities.BlackjackOutcome) (*entities.BlackjackHand, error) {
	sess.done = true
	s.remove(memberKey{guildID: sess.guildID, discordID: sess.discordID}, sess)

	hand := sess.snapshot()
	hand.Finished = true
	hand.Outcome = outcome
	hand.Payout = outcome.Payout(sess.bet)

	logger := log.WithFields(log.Fields{
		"guild_id": sess.guildID,
		"user_id":  sess.discordID,
		"bet":      hand.Bet,
		"outcome":  outcome.String(),
		"payout":   hand.Payout,
	})

	var err error
	if hand.Payout > 0 {
		metadata := map[string]any{"outcome": outcome.String(), "bet": hand.Bet}
		hand.NewBalance, err = s.ledger.Add(ctx, sess.guildID, sess.discordID, hand.Payout, entities.TransactionTypeBlackjackPayout, metadata)
		if err != nil {
			logger.WithError(err).Warn("Blackjack payout failed, retrying")
			hand.NewBalance, err = s.ledger.Add(ctx, sess.guildID, sess.discordID, hand.Payout, entities.TransactionTypeBlackjackPayout, metadata)
		}
	} else {
		hand.NewBalance, err = s.ledger.GetBalance(ctx, sess.guildID, sess.discordID)
	}
	if err != nil {
		logger.WithError(err).Error("Failed to settle blackjack hand")
		return hand, fmt.Errorf("failed to settle blackjack hand: %w", err)
	}

	logger.Info("Blackjack hand settled")
	s.publishSettled(hand)
	return hand, nil
}

func (s *blackjackService) publishSettled(hand *entities.BlackjackHand) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(events.WagerSettledEvent{
		GuildID:   hand.GuildID,
		DiscordID: hand.DiscordID,
		Game:      events.GameBlackjack,
		Outcome:   hand.Outcome.String(),
		Bet:       hand.Bet,
		Payout:    hand.Payout,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish wager settled event")
	}
}

func (s *blackjackService) remove(key memberKey, sess *blackjackSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[key] == sess {
		delete(s.sessions, key)
	}
}

// Current returns the member's hand in progress
func (s *blackjackService) Current(guildID, discordID int64) (*entities.BlackjackHand, bool) {
	s.mu.Lock()
	sess := s.sessions[memberKey{guildID: guildID, discordID: discordID}]
	s.mu.Unlock()
	if sess == nil {
		return nil, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return nil, false
	}
	return sess.snapshot(), true
}

// ExpireIdle stands every hand untouched for at least idle and returns the
// settled hands
func (s *blackjackService) ExpireIdle(ctx context.Context, idle time.Duration) []*entities.BlackjackHand {
	s.mu.Lock()
	candidates := make([]*blackjackSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		candidates = append(candidates, sess)
	}
	s.mu.Unlock()

	var expired []*entities.BlackjackHand
	for _, sess := range candidates {
		sess.mu.Lock()
		if sess.done || s.now().Sub(sess.lastAction) < idle {
			sess.mu.Unlock()
			continue
		}

		hand, err := s.settle(ctx, sess, s.playDealer(sess))
		sess.mu.Unlock()

		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"guild_id": sess.guildID,
				"user_id":  sess.discordID,
			}).Error("Failed to settle idle blackjack hand")
		}
		hand.Expired = true
		expired = append(expired, hand)
	}

	return expired
}

// ActiveSessions returns the number of hands in progress
func (s *blackjackService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
