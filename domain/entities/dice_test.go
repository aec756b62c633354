package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedDiceBet(t *testing.T) {
	for _, bet := range []int64{10, 50, 100} {
		assert.True(t, IsAllowedDiceBet(bet), "bet %d", bet)
	}
	for _, bet := range []int64{-10, 0, 1, 20, 99, 1000} {
		assert.False(t, IsAllowedDiceBet(bet), "bet %d", bet)
	}
}

func TestDiceMatchesAndPayout(t *testing.T) {
	tests := []struct {
		name           string
		face           int
		dice           [2]int
		bet            int64
		expectedMatch  int
		expectedPayout int64
	}{
		{"double match", 4, [2]int{4, 4}, 10, 2, 100},
		{"single match", 3, [2]int{3, 5}, 50, 1, 150},
		{"single match second die", 6, [2]int{1, 6}, 100, 1, 300},
		{"no match", 2, [2]int{5, 6}, 50, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := DiceMatches(tt.face, tt.dice)
			assert.Equal(t, tt.expectedMatch, matches)
			assert.Equal(t, tt.expectedPayout, DicePayout(matches, tt.bet))
		})
	}
}

func TestDiceResult_Net(t *testing.T) {
	r := &DiceResult{Bet: 50, Outcome: DiceOutcomeRolled, Payout: 150}
	assert.Equal(t, int64(100), r.Net())

	r = &DiceResult{Bet: 50, Outcome: DiceOutcomeRolled}
	assert.Equal(t, int64(-50), r.Net())

	r = &DiceResult{Bet: 50, Outcome: DiceOutcomeTimedOut}
	assert.Equal(t, int64(0), r.Net())
}
