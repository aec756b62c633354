package coins

import (
	"testing"

	"levelbot/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestFormatClaim(t *testing.T) {
	t.Parallel()

	t.Run("rewarded", func(t *testing.T) {
		t.Parallel()
		got := formatClaim("🪙", &entities.ClaimResult{Rewarded: true, Reward: 10, NewBalance: 35})
		assert.Equal(t, "✅ Claimed **🪙10**! New balance: **🪙35**.", got)
	})

	t.Run("cooling down", func(t *testing.T) {
		t.Parallel()
		got := formatClaim("🪙", &entities.ClaimResult{Remaining: 3725})
		assert.Equal(t, "You already claimed. Come back in **1h 2m 5s**.", got)
	})
}

func TestFormatTransfer(t *testing.T) {
	t.Parallel()

	got := formatTransfer("$", "bo", &entities.TransferResult{Amount: 30, FromBalance: 70, ToBalance: 130})
	assert.Equal(t, "✅ Transferred **$30** to **bo**.\nYour new balance: **$70**. bo's new balance: **$130**.", got)
	assert.Equal(t, "You don’t have enough coins. Your balance is **$12**.", formatTransferShortfall("$", 12))
}

func TestFormatTake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		requested int64
		taken     int64
		expected  string
	}{
		{
			name:      "full amount",
			requested: 20,
			taken:     20,
			expected:  "✅ Took **$20** from **bo**. New balance: **$0**.",
		},
		{
			name:      "clamped to balance",
			requested: 100,
			taken:     40,
			expected:  "✅ Took **$40** from **bo** (requested $100, but user only had $40). New balance: **$0**.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, formatTake("$", "bo", tt.requested, tt.taken, 0))
		})
	}
}

func TestBuildLeaderboardEmbed(t *testing.T) {
	t.Parallel()

	embed := buildLeaderboardEmbed("🪙", []leaderboardRow{
		{name: "ana", balance: 500},
		{name: "bo", balance: 20},
	})

	assert.Equal(t, "🏆 Top 2 Coin Holders", embed.Title)
	assert.Equal(t, "🥇  ana · **🪙500**\n🥈  bo · **🪙20**", embed.Description)
}
