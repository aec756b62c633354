package testhelpers

import (
	"context"

	"levelbot/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return the embedded mocks, so tests set expectations on those directly.
type MockUnitOfWork struct {
	mock.Mock

	ActivityRepo       *MockActivityRepository
	BalanceRepo        *MockBalanceRepository
	BalanceHistoryRepo *MockBalanceHistoryRepository
	GuildSettingsRepo  *MockGuildSettingsRepository
	Publisher          *MockEventPublisher
}

// NewMockUnitOfWork creates a unit of work with fresh repository mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		ActivityRepo:       new(MockActivityRepository),
		BalanceRepo:        new(MockBalanceRepository),
		BalanceHistoryRepo: new(MockBalanceHistoryRepository),
		GuildSettingsRepo:  new(MockGuildSettingsRepository),
		Publisher:          new(MockEventPublisher),
	}
}

// ExpectCommit sets up Begin, Commit and a deferred Rollback
func (m *MockUnitOfWork) ExpectCommit() {
	m.On("Begin", mock.Anything).Return(nil)
	m.On("Commit").Return(nil)
	m.On("Rollback").Return(nil).Maybe()
}

// ExpectRollback sets up Begin and Rollback with no Commit
func (m *MockUnitOfWork) ExpectRollback() {
	m.On("Begin", mock.Anything).Return(nil)
	m.On("Rollback").Return(nil)
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) ActivityRepository() interfaces.ActivityRepository {
	return m.ActivityRepo
}

func (m *MockUnitOfWork) BalanceRepository() interfaces.BalanceRepository {
	return m.BalanceRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return m.BalanceHistoryRepo
}

func (m *MockUnitOfWork) GuildSettingsRepository() interfaces.GuildSettingsRepository {
	return m.GuildSettingsRepo
}

func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher {
	return m.Publisher
}

// AssertAll checks the unit and every embedded mock
func (m *MockUnitOfWork) AssertAll(t mock.TestingT) bool {
	return m.AssertExpectations(t) &&
		m.ActivityRepo.AssertExpectations(t) &&
		m.BalanceRepo.AssertExpectations(t) &&
		m.BalanceHistoryRepo.AssertExpectations(t) &&
		m.GuildSettingsRepo.AssertExpectations(t) &&
		m.Publisher.AssertExpectations(t)
}

// MockUnitOfWorkFactory hands out units per guild
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) CreateForGuild(guildID int64) interfaces.UnitOfWork {
	args := m.Called(guildID)
	return args.Get(0).(interfaces.UnitOfWork)
}
