package testutil

import (
	"context"
	"testing"
	"time"

	"levelbot/domain/entities"

	"github.com/stretchr/testify/require"
)

// SeedBalance sets a member's balance directly, bypassing the ledger
func (td *TestDatabase) SeedBalance(t *testing.T, guildID, discordID, balance int64) {
	t.Helper()

	_, err := td.DB.Exec(context.Background(), `
		INSERT INTO guild_balances (guild_id, discord_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, discord_id) DO UPDATE SET balance = EXCLUDED.balance
	`, guildID, discordID, balance)
	require.NoError(t, err)
}

// SeedActivity sets a member's live count directly
func (td *TestDatabase) SeedActivity(t *testing.T, guildID, discordID, count int64) {
	t.Helper()

	_, err := td.DB.Exec(context.Background(), `
		INSERT INTO member_activity (guild_id, discord_id, message_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, discord_id) DO UPDATE SET message_count = EXCLUDED.message_count
	`, guildID, discordID, count)
	require.NoError(t, err)
}

// CreateTestBalanceHistory builds an unsaved history row with sane amounts
func CreateTestBalanceHistory(discordID int64, transactionType entities.TransactionType) *entities.BalanceHistory {
	return &entities.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   100,
		BalanceAfter:    90,
		ChangeAmount:    -10,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}
