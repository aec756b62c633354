package entities

const (
	DefaultActivityCooldownSeconds = 20
	DefaultClaimReward             = 10
	DefaultClaimCooldownSeconds    = 86400
	DefaultCurrencySymbol          = "🪙"
	MaxCurrencySymbolLength        = 64 // fits a custom emoji mention
)

// GuildSettings holds per-guild configuration. Nil fields fall back to the
// defaults above.
type GuildSettings struct {
	GuildID                 int64   `db:"guild_id"`
	ActivityCooldownSeconds *int    `db:"activity_cooldown_seconds"`
	LevelUpChannelID        *int64  `db:"level_up_channel_id"` // Nullable - channel for level-up announcements
	ClaimReward             *int64  `db:"claim_reward"`
	ClaimCooldownSeconds    *int64  `db:"claim_cooldown_seconds"`
	CurrencySymbol          *string `db:"currency_symbol"`
}

// ActivityCooldown returns the configured debounce window in seconds
func (gs *GuildSettings) ActivityCooldown() int {
	if gs.ActivityCooldownSeconds == nil {
		return DefaultActivityCooldownSeconds
	}
	return *gs.ActivityCooldownSeconds
}

// HasLevelUpChannel checks if an announce channel is configured
func (gs *GuildSettings) HasLevelUpChannel() bool {
	return gs.LevelUpChannelID != nil && *gs.LevelUpChannelID > 0
}

// Reward returns the coins granted per claim
func (gs *GuildSettings) Reward() int64 {
	if gs.ClaimReward == nil {
		return DefaultClaimReward
	}
	return *gs.ClaimReward
}

// ClaimCooldown returns the seconds between claims
func (gs *GuildSettings) ClaimCooldown() int64 {
	if gs.ClaimCooldownSeconds == nil {
		return DefaultClaimCooldownSeconds
	}
	return *gs.ClaimCooldownSeconds
}

// Symbol returns the currency prefix
func (gs *GuildSettings) Symbol() string {
	if gs.CurrencySymbol == nil || *gs.CurrencySymbol == "" {
		return DefaultCurrencySymbol
	}
	return *gs.CurrencySymbol
}

// Clone returns a deep copy so cached settings are never mutated in place
func (gs *GuildSettings) Clone() *GuildSettings {
	clone := &GuildSettings{GuildID: gs.GuildID}
	if gs.ActivityCooldownSeconds != nil {
		v := *gs.ActivityCooldownSeconds
		clone.ActivityCooldownSeconds = &v
	}
	if gs.LevelUpChannelID != nil {
		v := *gs.LevelUpChannelID
		clone.LevelUpChannelID = &v
	}
	if gs.ClaimReward != nil {
		v := *gs.ClaimReward
		clone.ClaimReward = &v
	}
	if gs.ClaimCooldownSeconds != nil {
		v := *gs.ClaimCooldownSeconds
		clone.ClaimCooldownSeconds = &v
	}
	if gs.CurrencySymbol != nil {
		v := *gs.CurrencySymbol
		clone.CurrencySymbol = &v
	}
	return clone
}
