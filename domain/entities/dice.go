package entities

// AllowedDiceBets are the only permitted dice stakes
var AllowedDiceBets = []int64{10, 50, 100}

// IsAllowedDiceBet checks bet against AllowedDiceBets
func IsAllowedDiceBet(bet int64) bool {
	for _, allowed := range AllowedDiceBets {
		if bet == allowed {
			return true
		}
	}
	return false
}

// DiceOutcome is how a dice wager ended
type DiceOutcome int

const (
	// DiceOutcomeRolled means a valid face was picked and the dice were thrown
	DiceOutcomeRolled DiceOutcome = iota + 1
	// DiceOutcomeTimedOut means no reply arrived in time; the stake was refunded
	DiceOutcomeTimedOut
	// DiceOutcomeInvalidReply means the reply was not a face 1-6; the stake was refunded
	DiceOutcomeInvalidReply
	// DiceOutcomeOutOfRange means the reply was a number outside 1-6; the stake was refunded
	DiceOutcomeOutOfRange
	// DiceOutcomeCancelled means the wager was abandoned on shutdown; the stake was refunded
	DiceOutcomeCancelled
)

func (o DiceOutcome) String() string {
	switch o {
	case DiceOutcomeRolled:
		return "rolled"
	case DiceOutcomeTimedOut:
		return "timed_out"
	case DiceOutcomeInvalidReply:
		return "invalid_reply"
	case DiceOutcomeOutOfRange:
		return "out_of_range"
	case DiceOutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsRefund reports outcomes that return the stake
func (o DiceOutcome) IsRefund() bool {
	switch o {
	case DiceOutcomeTimedOut, DiceOutcomeInvalidReply, DiceOutcomeOutOfRange, DiceOutcomeCancelled:
		return true
	}
	return false
}

// DiceMatches counts the dice showing face
func DiceMatches(face int, dice [2]int) int {
	matches := 0
	for _, d := range dice {
		if d == face {
			matches++
		}
	}
	return matches
}

// DicePayout returns the amount credited for a stake of bet with the given
// number of matching dice.
func DicePayout(matches int, bet int64) int64 {
	switch matches {
	case 2:
		return bet * 10
	case 1:
		return bet * 3
	default:
		return 0
	}
}

// DiceResult is the settled state of a dice wager
type DiceResult struct {
	GuildID    int64
	DiscordID  int64
	ChannelID  int64
	Bet        int64
	Outcome    DiceOutcome
	Face       int
	Dice       [2]int
	Matches    int
	Payout     int64
	NewBalance int64

	// Err is set when the refund or payout could not be credited. Payout and
	// NewBalance are then not reflected in the ledger.
	Err error
}

// Net is the balance change over the whole wager
func (r *DiceResult) Net() int64 {
	if r.Outcome.IsRefund() {
		return 0
	}
	return r.Payout - r.Bet
}
