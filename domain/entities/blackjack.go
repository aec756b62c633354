package entities

import "fmt"

// BlackjackOutcome is the terminal result of a hand
type BlackjackOutcome int

const (
	BlackjackOutcomeWin BlackjackOutcome = iota + 1
	BlackjackOutcomeBlackjack
	BlackjackOutcomeLose
	BlackjackOutcomePush
	BlackjackOutcomeSurrender
)

// BlackjackOutcomes lists every outcome
var BlackjackOutcomes = []BlackjackOutcome{
	BlackjackOutcomeWin,
	BlackjackOutcomeBlackjack,
	BlackjackOutcomeLose,
	BlackjackOutcomePush,
	BlackjackOutcomeSurrender,
}

// Payout returns the amount credited back for a stake of bet. The stake has
// already been debited, so a push returns exactly bet and a loss returns 0.
func (o BlackjackOutcome) Payout(bet int64) int64 {
	switch o {
	case BlackjackOutcomeWin:
		return bet * 2
	case BlackjackOutcomeBlackjack:
		return bet * 5 / 2
	case BlackjackOutcomeLose:
		return 0
	case BlackjackOutcomePush:
		return bet
	case BlackjackOutcomeSurrender:
		return bet / 2
	default:
		panic(fmt.Sprintf("unknown blackjack outcome %d", int(o)))
	}
}

func (o BlackjackOutcome) String() string {
	switch o {
	case BlackjackOutcomeWin:
		return "win"
	case BlackjackOutcomeBlackjack:
		return "blackjack"
	case BlackjackOutcomeLose:
		return "lose"
	case BlackjackOutcomePush:
		return "push"
	case BlackjackOutcomeSurrender:
		return "surrender"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// BlackjackHand is a read-only snapshot of a hand, handed to the bot layer
// after every action.
type BlackjackHand struct {
	GuildID    int64
	DiscordID  int64
	Bet        int64
	PlayerHand Hand
	DealerHand Hand
	Doubled    bool
	Finished   bool
	Natural    bool             // settled at the deal
	Expired    bool             // settled by the idle sweep
	Outcome    BlackjackOutcome // zero until Finished
	Payout     int64
	NewBalance int64 // balance after settlement, only set when Finished
}

// PlayerValue is the player's hand value
func (h *BlackjackHand) PlayerValue() int {
	return h.PlayerHand.Value()
}

// DealerValue is the dealer's hand value
func (h *BlackjackHand) DealerValue() int {
	return h.DealerHand.Value()
}

// Net is the balance change over the whole hand
func (h *BlackjackHand) Net() int64 {
	return h.Payout - h.Bet
}
