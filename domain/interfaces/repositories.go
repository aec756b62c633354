package interfaces

import (
	"context"

	"levelbot/domain/entities"
)

// ActivityRepository stores live message counts for one guild
type ActivityRepository interface {
	// Increment adds one to the member's live count and returns the new count
	Increment(ctx context.Context, discordID int64) (int64, error)

	// GetCount returns the member's live count, 0 if never counted
	GetCount(ctx context.Context, discordID int64) (int64, error)

	// ListCounts returns every counted member of the guild
	ListCounts(ctx context.Context) ([]*entities.MemberActivity, error)
}

// AdjustmentStore holds the admin-pinned offset per (guild, member). Reads
// never fail: a missing or unreadable record is 0.
type AdjustmentStore interface {
	Get(ctx context.Context, guildID, discordID int64) int64

	// Set overwrites the record
	Set(ctx context.Context, guildID, discordID, adjusted int64) error

	// List returns every record in the guild keyed by member
	List(ctx context.Context, guildID int64) (map[int64]int64, error)
}

// BalanceRepository stores coin balances for one guild
type BalanceRepository interface {
	// GetOrCreate returns the member's account, inserting a zero balance on first access
	GetOrCreate(ctx context.Context, discordID int64) (*entities.GuildBalance, error)

	// LockForUpdate creates missing accounts and row-locks all of them in id order
	LockForUpdate(ctx context.Context, discordIDs ...int64) (map[int64]*entities.GuildBalance, error)

	// AddBalance credits a positive amount and returns the new balance
	AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error)

	// DeductBalance debits amount only if the balance covers it. Returns
	// ErrInsufficientBalance otherwise.
	DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error)

	// ApplyClampedDelta sets balance = max(0, balance+delta) and returns the
	// balance before and after
	ApplyClampedDelta(ctx context.Context, discordID int64, delta int64) (before int64, after int64, err error)

	// TryClaim credits reward and stamps now if the cooldown elapsed. claimed
	// is false when the member is still cooling down.
	TryClaim(ctx context.Context, discordID int64, reward, now, cooldownSeconds int64) (newBalance int64, claimed bool, err error)

	// TopBalances returns the richest accounts, balance desc then id asc
	TopBalances(ctx context.Context, limit int) ([]*entities.GuildBalance, error)
}

// BalanceHistoryRepository records applied balance changes
type BalanceHistoryRepository interface {
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByUser returns the newest entries first
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error)
}

// GuildSettingsRepository stores per-guild settings
type GuildSettingsRepository interface {
	// GetGuildSettings returns the stored row, or an all-default row if none exists
	GetGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error)

	// UpsertGuildSettings writes every field of settings
	UpsertGuildSettings(ctx context.Context, settings *entities.GuildSettings) error
}
