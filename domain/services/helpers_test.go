package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"levelbot/domain"
	"levelbot/domain/entities"
	"levelbot/domain/testhelpers"
)

// Test constants for consistent test data
const (
	TestGuildID   = int64(555555555)
	TestUser1ID   = int64(100)
	TestUser2ID   = int64(200)
	TestChannelID = int64(987654321)
)

// newFactory returns a factory that hands out uow for TestGuildID
func newFactory(uow *testhelpers.MockUnitOfWork) *testhelpers.MockUnitOfWorkFactory {
	factory := new(testhelpers.MockUnitOfWorkFactory)
	factory.On("CreateForGuild", TestGuildID).Return(uow)
	return factory
}

// stackedDeck returns a shuffler that deals cards in the given order. The
// deal order is player, player, dealer, dealer, then every later draw.
func stackedDeck(cards ...entities.Card) Shuffler {
	return func(deck []entities.Card) {
		rest := make([]entities.Card, 0, len(deck))
		for _, c := range deck {
			wanted := false
			for _, w := range cards {
				if c == w {
					wanted = true
					break
				}
			}
			if !wanted {
				rest = append(rest, c)
			}
		}
		for i := len(cards) - 1; i >= 0; i-- {
			rest = append(rest, cards[i])
		}
		copy(deck, rest)
	}
}

func card(rank entities.Rank, suit entities.Suit) entities.Card {
	return entities.Card{Rank: rank, Suit: suit}
}

func settingsWith(mutate func(*entities.GuildSettings)) *entities.GuildSettings {
	settings := &entities.GuildSettings{GuildID: TestGuildID}
	if mutate != nil {
		mutate(settings)
	}
	return settings
}

// fakeLedger is an in-memory LedgerService for the game services
type fakeLedger struct {
	mu       sync.Mutex
	balances map[int64]int64
	history  []entities.TransactionType
	addErr   error

	// addFailures makes the next n Add calls fail with errTransientLedger
	addFailures int
}

var errTransientLedger = errors.New("connection reset")

func newFakeLedger(balances map[int64]int64) *fakeLedger {
	return &fakeLedger{balances: balances}
}

func (f *fakeLedger) balance(discordID int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[discordID]
}

func (f *fakeLedger) transactions() []entities.TransactionType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.TransactionType(nil), f.history...)
}

func (f *fakeLedger) GetBalance(_ context.Context, _, discordID int64) (int64, error) {
	return f.balance(discordID), nil
}

func (f *fakeLedger) Add(_ context.Context, _, discordID, delta int64, txType entities.TransactionType, _ map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return 0, f.addErr
	}
	if f.addFailures > 0 {
		f.addFailures--
		return 0, errTransientLedger
	}
	f.balances[discordID] += delta
	if f.balances[discordID] < 0 {
		f.balances[discordID] = 0
	}
	f.history = append(f.history, txType)
	return f.balances[discordID], nil
}

func (f *fakeLedger) Debit(_ context.Context, _, discordID, amount int64, txType entities.TransactionType, _ map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[discordID] < amount {
		return 0, &domain.InsufficientBalanceError{Balance: f.balances[discordID], Needed: amount}
	}
	f.balances[discordID] -= amount
	f.history = append(f.history, txType)
	return f.balances[discordID], nil
}

func (f *fakeLedger) Claim(context.Context, int64, int64, time.Time) (*entities.ClaimResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLedger) Transfer(context.Context, int64, int64, int64, int64, bool) (*entities.TransferResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLedger) AdminGrant(context.Context, int64, int64, int64) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeLedger) AdminRevoke(context.Context, int64, int64, int64) (int64, int64, error) {
	return 0, 0, errors.New("not implemented")
}

func (f *fakeLedger) TopBalances(context.Context, int64, int) ([]*entities.GuildBalance, error) {
	return nil, errors.New("not implemented")
}
