package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crapstable/events"
	"crapstable/models"
)

// MockPlayerRepository is a mock implementation of PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.Player, error) {
	args := m.Called(ctx, discordID, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) AddBalance(ctx context.Context, discordID int64, amount int64) error {
	args := m.Called(ctx, discordID, amount)
	return args.Error(0)
}

func (m *MockPlayerRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) error {
	args := m.Called(ctx, discordID, amount)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.Player, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Player), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByPlayer(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockRollAuditRepository is a mock implementation of RollAuditRepository
type MockRollAuditRepository struct {
	mock.Mock
}

func (m *MockRollAuditRepository) Record(ctx context.Context, val *models.RollValidation) error {
	args := m.Called(ctx, val)
	return args.Error(0)
}

func (m *MockRollAuditRepository) GetByPlayer(ctx context.Context, discordID int64, limit int) ([]*models.RollValidation, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RollValidation), args.Error(1)
}

func (m *MockRollAuditRepository) GetMismatches(ctx context.Context, limit int) ([]*models.RollValidation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RollValidation), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return whatever SetRepositories installed instead of going through the
// expectation machinery, so tests only assert on Begin/Commit/Rollback.
type MockUnitOfWork struct {
	mock.Mock

	playerRepo         PlayerRepository
	balanceHistoryRepo BalanceHistoryRepository
	rollAuditRepo      RollAuditRepository
	eventPublisher     EventPublisher
}

// SetRepositories installs the repositories the getters hand out.
func (m *MockUnitOfWork) SetRepositories(players PlayerRepository, history BalanceHistoryRepository, audits RollAuditRepository) {
	m.playerRepo = players
	m.balanceHistoryRepo = history
	m.rollAuditRepo = audits
}

// SetEventPublisher installs the event publisher EventBus hands out.
func (m *MockUnitOfWork) SetEventPublisher(pub EventPublisher) {
	m.eventPublisher = pub
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

func (m *MockUnitOfWork) PlayerRepository() PlayerRepository {
	return m.playerRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) RollAuditRepository() RollAuditRepository {
	return m.rollAuditRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventPublisher != nil {
		return m.eventPublisher
	}
	return nopPublisher{}
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
