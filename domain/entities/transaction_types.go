package entities

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeClaim       TransactionType = "claim"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeAdminGrant  TransactionType = "admin_grant"
	TransactionTypeAdminRevoke TransactionType = "admin_revoke"

	TransactionTypeBlackjackBet    TransactionType = "blackjack_bet"
	TransactionTypeBlackjackPayout TransactionType = "blackjack_payout"
	TransactionTypeDiceBet         TransactionType = "dice_bet"
	TransactionTypeDicePayout      TransactionType = "dice_payout"
	TransactionTypeDiceRefund      TransactionType = "dice_refund"
)

// IsWagerType returns true for stakes, payouts and refunds of either game
func (tt TransactionType) IsWagerType() bool {
	switch tt {
	case TransactionTypeBlackjackBet, TransactionTypeBlackjackPayout,
		TransactionTypeDiceBet, TransactionTypeDicePayout, TransactionTypeDiceRefund:
		return true
	}
	return false
}

// IsTransferType returns true if the transaction type represents a transfer
func (tt TransactionType) IsTransferType() bool {
	return tt == TransactionTypeTransferIn || tt == TransactionTypeTransferOut
}

// IsAdminType returns true for manual grants and revokes
func (tt TransactionType) IsAdminType() bool {
	return tt == TransactionTypeAdminGrant || tt == TransactionTypeAdminRevoke
}

func (tt TransactionType) String() string {
	return string(tt)
}
