package entities

import "time"

// GuildBalance is a member's coin account within one guild
type GuildBalance struct {
	GuildID     int64     `db:"guild_id"`
	DiscordID   int64     `db:"discord_id"`
	Balance     int64     `db:"balance"`
	LastClaimAt int64     `db:"last_claim_at"` // epoch seconds, 0 = never claimed
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CanAfford checks if the balance covers amount
func (b *GuildBalance) CanAfford(amount int64) bool {
	return b.Balance >= amount
}

// HasClaimed reports whether the member ever claimed
func (b *GuildBalance) HasClaimed() bool {
	return b.LastClaimAt > 0
}

// ClaimRemaining returns the seconds left before the next claim is allowed
// at now (epoch seconds). Zero means a claim is allowed.
func (b *GuildBalance) ClaimRemaining(now, cooldownSeconds int64) int64 {
	if !b.HasClaimed() {
		return 0
	}
	remaining := cooldownSeconds - (now - b.LastClaimAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
