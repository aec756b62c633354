package interfaces

import (
	"context"
	"time"

	"levelbot/domain/entities"
	"levelbot/events"
)

// EventPublisher accepts domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// UnitOfWork groups repository calls for one guild in a single transaction.
// Events published on EventBus are delivered only after Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ActivityRepository() ActivityRepository
	BalanceRepository() BalanceRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	GuildSettingsRepository() GuildSettingsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates UnitOfWork instances
type UnitOfWorkFactory interface {
	CreateForGuild(guildID int64) UnitOfWork
}

// Privilege is a grantable role in a guild
type Privilege struct {
	ID   string
	Name string
}

// PrivilegeDirectory is the externally owned set of guild roles. Grant and
// Revoke return an error wrapping ErrPrivilegeDenied when the platform
// refuses the change.
type PrivilegeDirectory interface {
	GuildPrivileges(ctx context.Context, guildID int64) ([]Privilege, error)
	MemberPrivilegeIDs(ctx context.Context, guildID, discordID int64) ([]string, error)
	Grant(ctx context.Context, guildID, discordID int64, privilegeID, reason string) error
	Revoke(ctx context.Context, guildID, discordID int64, privilegeID, reason string) error
}

// GuildSettingsService reads and writes cached per-guild settings
type GuildSettingsService interface {
	GetSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error)
	SetActivityCooldown(ctx context.Context, guildID int64, seconds int) error
	SetLevelUpChannel(ctx context.Context, guildID int64, channelID *int64) error
	SetClaimReward(ctx context.Context, guildID int64, reward int64) error
	SetClaimCooldown(ctx context.Context, guildID int64, seconds int64) error
	SetCurrencySymbol(ctx context.Context, guildID int64, symbol string) error
}

// ActivityService counts messages and manages adjusted totals
type ActivityService interface {
	// OnMessage counts the message unless it is too short or the member is
	// still inside the guild's cooldown window
	OnMessage(ctx context.Context, guildID, discordID int64, content string, now time.Time) (bool, error)
	GetTotal(ctx context.Context, guildID, discordID int64) (entities.MemberActivity, error)
	SetAdjustedForTarget(ctx context.Context, guildID, discordID, targetTotal int64) (entities.MemberActivity, error)
	GetCooldown(ctx context.Context, guildID int64) (int, error)
	SetCooldown(ctx context.Context, guildID int64, seconds int) (int, error)
	TopActivity(ctx context.Context, guildID int64, limit int) ([]entities.MemberActivity, error)
}

// LevelService maps totals to tiers and keeps level roles in sync
type LevelService interface {
	Resolve(total int64) entities.LevelTier
	NextThreshold(total int64) (entities.LevelTier, bool)
	EnsurePrivilege(ctx context.Context, guildID, discordID int64, levelName string) entities.PrivilegeResult
	Reconcile(ctx context.Context, guildID, discordID int64) (*entities.LevelStatus, error)
	MeetsTier(ctx context.Context, guildID, discordID int64, tier entities.LevelTier) (bool, entities.MemberActivity, error)
}

// LedgerService owns coin balances
type LedgerService interface {
	GetBalance(ctx context.Context, guildID, discordID int64) (int64, error)
	Add(ctx context.Context, guildID, discordID, delta int64, transactionType entities.TransactionType, metadata map[string]any) (int64, error)
	Debit(ctx context.Context, guildID, discordID, amount int64, transactionType entities.TransactionType, metadata map[string]any) (int64, error)
	Claim(ctx context.Context, guildID, discordID int64, now time.Time) (*entities.ClaimResult, error)
	Transfer(ctx context.Context, guildID, fromID, toID, amount int64, recipientIsBot bool) (*entities.TransferResult, error)
	AdminGrant(ctx context.Context, guildID, discordID, amount int64) (int64, error)
	AdminRevoke(ctx context.Context, guildID, discordID, amount int64) (newBalance int64, taken int64, err error)
	TopBalances(ctx context.Context, guildID int64, limit int) ([]*entities.GuildBalance, error)
}

// BlackjackService runs one hand per member
type BlackjackService interface {
	Start(ctx context.Context, guildID, discordID, bet int64) (*entities.BlackjackHand, error)
	Hit(ctx context.Context, guildID, discordID int64) (*entities.BlackjackHand, error)
	Stand(ctx context.Context, guildID, discordID int64) (*entities.BlackjackHand, error)
	Double(ctx context.Context, guildID, discordID int64) (*entities.BlackjackHand, error)
	Surrender(ctx context.Context, guildID, discordID int64) (*entities.BlackjackHand, error)
	Current(guildID, discordID int64) (*entities.BlackjackHand, bool)
	ExpireIdle(ctx context.Context, idle time.Duration) []*entities.BlackjackHand
	ActiveSessions() int
}

// DiceService runs single-shot dice wagers that wait for one chat reply
type DiceService interface {
	// Place debits bet and waits in the background for the member's reply in
	// channelID. onResult is called exactly once when the wager settles.
	Place(ctx context.Context, guildID, discordID, channelID, bet int64, onResult func(*entities.DiceResult)) error

	// Deliver hands a chat message to a waiting wager. Returns false if no
	// wager was waiting for this member in this channel.
	Deliver(guildID, discordID, channelID int64, content string) bool

	Pending() int

	// Shutdown refunds every waiting wager
	Shutdown(ctx context.Context)
}
