package testhelpers

import (
	"context"
	"time"

	"levelbot/domain/entities"
	"levelbot/domain/interfaces"
	"levelbot/events"

	"github.com/stretchr/testify/mock"
)

// MockActivityRepository is a mock implementation of ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Increment(ctx context.Context, discordID int64) (int64, error) {
	args := m.Called(ctx, discordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityRepository) GetCount(ctx context.Context, discordID int64) (int64, error) {
	args := m.Called(ctx, discordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityRepository) ListCounts(ctx context.Context) ([]*entities.MemberActivity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MemberActivity), args.Error(1)
}

// MockAdjustmentStore is a mock implementation of AdjustmentStore
type MockAdjustmentStore struct {
	mock.Mock
}

func (m *MockAdjustmentStore) Get(ctx context.Context, guildID, discordID int64) int64 {
	args := m.Called(ctx, guildID, discordID)
	return args.Get(0).(int64)
}

func (m *MockAdjustmentStore) Set(ctx context.Context, guildID, discordID, adjusted int64) error {
	args := m.Called(ctx, guildID, discordID, adjusted)
	return args.Error(0)
}

func (m *MockAdjustmentStore) List(ctx context.Context, guildID int64) (map[int64]int64, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetOrCreate(ctx context.Context, discordID int64) (*entities.GuildBalance, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildBalance), args.Error(1)
}

func (m *MockBalanceRepository) LockForUpdate(ctx context.Context, discordIDs ...int64) (map[int64]*entities.GuildBalance, error) {
	args := m.Called(ctx, discordIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*entities.GuildBalance), args.Error(1)
}

func (m *MockBalanceRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) ApplyClampedDelta(ctx context.Context, discordID int64, delta int64) (int64, int64, error) {
	args := m.Called(ctx, discordID, delta)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockBalanceRepository) TryClaim(ctx context.Context, discordID int64, reward, now, cooldownSeconds int64) (int64, bool, error) {
	args := m.Called(ctx, discordID, reward, now, cooldownSeconds)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockBalanceRepository) TopBalances(ctx context.Context, limit int) ([]*entities.GuildBalance, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GuildBalance), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpsertGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockPrivilegeDirectory is a mock implementation of PrivilegeDirectory
type MockPrivilegeDirectory struct {
	mock.Mock
}

func (m *MockPrivilegeDirectory) GuildPrivileges(ctx context.Context, guildID int64) ([]interfaces.Privilege, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.Privilege), args.Error(1)
}

func (m *MockPrivilegeDirectory) MemberPrivilegeIDs(ctx context.Context, guildID, discordID int64) ([]string, error) {
	args := m.Called(ctx, guildID, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPrivilegeDirectory) Grant(ctx context.Context, guildID, discordID int64, privilegeID, reason string) error {
	args := m.Called(ctx, guildID, discordID, privilegeID, reason)
	return args.Error(0)
}

func (m *MockPrivilegeDirectory) Revoke(ctx context.Context, guildID, discordID int64, privilegeID, reason string) error {
	args := m.Called(ctx, guildID, discordID, privilegeID, reason)
	return args.Error(0)
}

// MockGuildSettingsService is a mock implementation of GuildSettingsService
type MockGuildSettingsService struct {
	mock.Mock
}

func (m *MockGuildSettingsService) GetSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsService) SetActivityCooldown(ctx context.Context, guildID int64, seconds int) error {
	args := m.Called(ctx, guildID, seconds)
	return args.Error(0)
}

func (m *MockGuildSettingsService) SetLevelUpChannel(ctx context.Context, guildID int64, channelID *int64) error {
	args := m.Called(ctx, guildID, channelID)
	return args.Error(0)
}

func (m *MockGuildSettingsService) SetClaimReward(ctx context.Context, guildID int64, reward int64) error {
	args := m.Called(ctx, guildID, reward)
	return args.Error(0)
}

func (m *MockGuildSettingsService) SetClaimCooldown(ctx context.Context, guildID int64, seconds int64) error {
	args := m.Called(ctx, guildID, seconds)
	return args.Error(0)
}

func (m *MockGuildSettingsService) SetCurrencySymbol(ctx context.Context, guildID int64, symbol string) error {
	args := m.Called(ctx, guildID, symbol)
	return args.Error(0)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, guildID, discordID int64) (int64, error) {
	args := m.Called(ctx, guildID, discordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) Add(ctx context.Context, guildID, discordID, delta int64, transactionType entities.TransactionType, metadata map[string]any) (int64, error) {
	args := m.Called(ctx, guildID, discordID, delta, transactionType, metadata)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) Debit(ctx context.Context, guildID, discordID, amount int64, transactionType entities.TransactionType, metadata map[string]any) (int64, error) {
	args := m.Called(ctx, guildID, discordID, amount, transactionType, metadata)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) Claim(ctx context.Context, guildID, discordID int64, now time.Time) (*entities.ClaimResult, error) {
	args := m.Called(ctx, guildID, discordID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ClaimResult), args.Error(1)
}

func (m *MockLedgerService) Transfer(ctx context.Context, guildID, fromID, toID, amount int64, recipientIsBot bool) (*entities.TransferResult, error) {
	args := m.Called(ctx, guildID, fromID, toID, amount, recipientIsBot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TransferResult), args.Error(1)
}

func (m *MockLedgerService) AdminGrant(ctx context.Context, guildID, discordID, amount int64) (int64, error) {
	args := m.Called(ctx, guildID, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) AdminRevoke(ctx context.Context, guildID, discordID, amount int64) (int64, int64, error) {
	args := m.Called(ctx, guildID, discordID, amount)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) TopBalances(ctx context.Context, guildID int64, limit int) ([]*entities.GuildBalance, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GuildBalance), args.Error(1)
}

// MockActivityService is a mock implementation of ActivityService
type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) OnMessage(ctx context.Context, guildID, discordID int64, content string, now time.Time) (bool, error) {
	args := m.Called(ctx, guildID, discordID, content, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockActivityService) GetTotal(ctx context.Context, guildID, discordID int64) (entities.MemberActivity, error) {
	args := m.Called(ctx, guildID, discordID)
	return args.Get(0).(entities.MemberActivity), args.Error(1)
}

func (m *MockActivityService) SetAdjustedForTarget(ctx context.Context, guildID, discordID, targetTotal int64) (entities.MemberActivity, error) {
	args := m.Called(ctx, guildID, discordID, targetTotal)
	return args.Get(0).(entities.MemberActivity), args.Error(1)
}

func (m *MockActivityService) GetCooldown(ctx context.Context, guildID int64) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}

func (m *MockActivityService) SetCooldown(ctx context.Context, guildID int64, seconds int) (int, error) {
	args := m.Called(ctx, guildID, seconds)
	return args.Int(0), args.Error(1)
}

func (m *MockActivityService) TopActivity(ctx context.Context, guildID int64, limit int) ([]entities.MemberActivity, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.MemberActivity), args.Error(1)
}
