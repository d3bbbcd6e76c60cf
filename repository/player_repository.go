package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crapstable/database"
	"crapstable/models"
)

// PlayerRepository implements the PlayerRepository interface
type PlayerRepository struct {
	q queryable
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{q: db.Pool}
}

// newPlayerRepositoryWithTx creates a new player repository with a transaction
func newPlayerRepositoryWithTx(tx queryable) *PlayerRepository {
	return &PlayerRepository{q: tx}
}

// GetByDiscordID retrieves a player by their Discord ID
func (r *PlayerRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error) {
	query := `
		SELECT discord_id, username, balance, created_at, updated_at
		FROM players
		WHERE discord_id = $1
	`

	var player models.Player
	err := r.q.QueryRow(ctx, query, discordID).Scan(
		&player.DiscordID,
		&player.Username,
		&player.Balance,
		&player.CreatedAt,
		&player.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by discord ID %d: %w", discordID, err)
	}

	return &player, nil
}

// Create creates a new player with the initial balance
func (r *PlayerRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.Player, error) {
	query := `
		INSERT INTO players (discord_id, username, balance)
		VALUES ($1, $2, $3)
		RETURNING discord_id, username, balance, created_at, updated_at
	`

	var player models.Player
	err := r.q.QueryRow(ctx, query, discordID, username, initialBalance).Scan(
		&player.DiscordID,
		&player.Username,
		&player.Balance,
		&player.CreatedAt,
		&player.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create player with discord ID %d: %w", discordID, err)
	}

	return &player, nil
}

// AddBalance adds to a player's balance atomically
func (r *PlayerRepository) AddBalance(ctx context.Context, discordID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE players
		SET balance = balance + $1, updated_at = NOW()
		WHERE discord_id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, discordID)
	if err != nil {
		return fmt.Errorf("failed to add balance for player %d: %w", discordID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("player with discord ID %d not found", discordID)
	}

	return nil
}

// DeductBalance deducts from a player's balance atomically, failing if
// the player cannot cover the amount
func (r *PlayerRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE players
		SET balance = balance - $1, updated_at = NOW()
		WHERE discord_id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, discordID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for player %d: %w", discordID, err)
	}

	if result.RowsAffected() == 0 {
		player, err := r.GetByDiscordID(ctx, discordID)
		if err != nil {
			return fmt.Errorf("failed to check player: %w", err)
		}
		if player == nil {
			return fmt.Errorf("player with discord ID %d not found", discordID)
		}
		return fmt.Errorf("insufficient balance: have %d, need %d", player.Balance, amount)
	}

	return nil
}

// GetTopByBalance returns players ordered by balance, richest first
func (r *PlayerRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.Player, error) {
	query := `
		SELECT discord_id, username, balance, created_at, updated_at
		FROM players
		ORDER BY balance DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var player models.Player
		err := rows.Scan(
			&player.DiscordID,
			&player.Username,
			&player.Balance,
			&player.CreatedAt,
			&player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return players, nil
}
