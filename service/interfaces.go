package service

import (
	"context"

	"crapstable/events"
	"crapstable/models"
)

// PlayerRepository defines the interface for player data access
type PlayerRepository interface {
	// GetByDiscordID retrieves a player by their Discord ID
	GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error)

	// Create creates a new player with the initial balance
	Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.Player, error)

	// AddBalance adds to a player's balance atomically
	AddBalance(ctx context.Context, discordID int64, amount int64) error

	// DeductBalance deducts from a player's balance atomically, failing if insufficient funds
	DeductBalance(ctx context.Context, discordID int64, amount int64) error

	// GetTopByBalance returns players ordered by balance, richest first
	GetTopByBalance(ctx context.Context, limit int) ([]*models.Player, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByPlayer returns balance history for a specific player
	GetByPlayer(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error)
}

// RollAuditRepository defines the interface for roll validation audit records
type RollAuditRepository interface {
	// Record stores one roll validation record
	Record(ctx context.Context, val *models.RollValidation) error

	// GetByPlayer returns roll audit records for a player
	GetByPlayer(ctx context.Context, discordID int64, limit int) ([]*models.RollValidation, error)

	// GetMismatches returns non-legit audit records for review
	GetMismatches(ctx context.Context, limit int) ([]*models.RollValidation, error)
}

// PlayerService defines the interface for player account operations
type PlayerService interface {
	// GetOrCreatePlayer retrieves an existing player or creates a new one with the initial balance
	GetOrCreatePlayer(ctx context.Context, discordID int64, username string) (*models.Player, error)

	// GetPlayer retrieves an existing player, failing if not found
	GetPlayer(ctx context.Context, discordID int64) (*models.Player, error)

	// GetScoreboard returns the richest players
	GetScoreboard(ctx context.Context, limit int) ([]*models.Player, error)
}

// TableService defines the interface for craps table operations. Each
// player has one table session; every operation is serialized against
// that player's dice.
type TableService interface {
	// PlaceBet places chips on a betting area, debiting the player balance
	PlaceBet(ctx context.Context, discordID int64, area models.Area, amount int64) (*models.PlacementResult, error)

	// RemoveBet takes chips off a removable bet, crediting the refund
	RemoveBet(ctx context.Context, discordID int64, area models.Area, amount int64) (*models.PlacementResult, error)

	// Roll throws the dice, resolves every bet, credits winnings and
	// returned stakes, and advances the table phase
	Roll(ctx context.Context, discordID int64) (*models.RollOutcome, error)

	// SetBonusBetsWorking toggles whether place, buy and hardway bets
	// have action during come-out rolls
	SetBonusBetsWorking(ctx context.Context, discordID int64, working bool) error

	// TableState returns a snapshot of the player's table
	TableState(ctx context.Context, discordID int64) (*models.TableState, error)

	// RevealSeed rotates the player's dice seed and returns the retired
	// server seed so past rolls can be independently verified
	RevealSeed(ctx context.Context, discordID int64) (seed string, seedHash string, err error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	PlayerRepository() PlayerRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	RollAuditRepository() RollAuditRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
