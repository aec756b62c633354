package entities

import (
	"errors"
	"time"
)

// BalanceHistory is one applied balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	GuildID             int64           `db:"guild_id"`
	DiscordID           int64           `db:"discord_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	RelatedDiscordID    *int64          `db:"related_discord_id"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}

// Description returns a human-readable label
func (bh *BalanceHistory) Description() string {
	switch bh.TransactionType {
	case TransactionTypeClaim:
		return "Claim"
	case TransactionTypeTransferIn:
		return "Transfer received"
	case TransactionTypeTransferOut:
		return "Transfer sent"
	case TransactionTypeAdminGrant:
		return "Admin grant"
	case TransactionTypeAdminRevoke:
		return "Admin revoke"
	case TransactionTypeBlackjackBet:
		return "Blackjack stake"
	case TransactionTypeBlackjackPayout:
		return "Blackjack payout"
	case TransactionTypeDiceBet:
		return "Dice stake"
	case TransactionTypeDicePayout:
		return "Dice payout"
	case TransactionTypeDiceRefund:
		return "Dice refund"
	default:
		return string(bh.TransactionType)
	}
}

// Validate checks the row is internally consistent
func (bh *BalanceHistory) Validate() error {
	if bh.ChangeAmount == 0 {
		return errors.New("change amount cannot be zero")
	}
	if bh.BalanceAfter < 0 {
		return errors.New("balance cannot go negative")
	}
	if bh.BalanceAfter != bh.BalanceBefore+bh.ChangeAmount {
		return errors.New("balance calculation is inconsistent")
	}
	return nil
}
