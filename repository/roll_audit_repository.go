package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"crapstable/database"
	"crapstable/models"
)

// RollAuditRepository implements the RollAuditRepository interface
type RollAuditRepository struct {
	q queryable
}

// NewRollAuditRepository creates a new roll audit repository
func NewRollAuditRepository(db *database.DB) *RollAuditRepository {
	return &RollAuditRepository{q: db.Pool}
}

// newRollAuditRepositoryWithTx creates a new roll audit repository with a transaction
func newRollAuditRepositoryWithTx(tx queryable) *RollAuditRepository {
	return &RollAuditRepository{q: tx}
}

// Record stores one roll validation record
func (r *RollAuditRepository) Record(ctx context.Context, val *models.RollValidation) error {
	ledgerJSON, err := json.Marshal(val.LedgerBefore)
	if err != nil {
		return fmt.Errorf("failed to marshal pre-roll ledger: %w", err)
	}
	errorsJSON, err := json.Marshal(val.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal validation errors: %w", err)
	}

	query := `
		INSERT INTO roll_audits
		(id, discord_id, die1, die2, phase, point, ledger_before,
		 expected_payout, actual_payout, expected_return, actual_return,
		 legit, errors, dice_nonce, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.q.Exec(ctx, query,
		val.ID,
		val.DiscordID,
		val.Roll.Die1,
		val.Roll.Die2,
		val.Phase,
		val.Point,
		ledgerJSON,
		val.ExpectedPayout,
		val.ActualPayout,
		val.ExpectedReturn,
		val.ActualReturn,
		val.Legit,
		errorsJSON,
		val.DiceNonce,
		val.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record roll audit for player %d: %w", val.DiscordID, err)
	}

	return nil
}

// GetByPlayer returns roll audit records for a player, newest first
func (r *RollAuditRepository) GetByPlayer(ctx context.Context, discordID int64, limit int) ([]*models.RollValidation, error) {
	query := `
		SELECT id, discord_id, die1, die2, phase, point, ledger_before,
		       expected_payout, actual_payout, expected_return, actual_return,
		       legit, errors, dice_nonce, created_at
		FROM roll_audits
		WHERE discord_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	return r.queryAudits(ctx, query, discordID, limit)
}

// GetMismatches returns non-legit audit records for anti-cheat review
func (r *RollAuditRepository) GetMismatches(ctx context.Context, limit int) ([]*models.RollValidation, error) {
	query := `
		SELECT id, discord_id, die1, die2, phase, point, ledger_before,
		       expected_payout, actual_payout, expected_return, actual_return,
		       legit, errors, dice_nonce, created_at
		FROM roll_audits
		WHERE legit = false
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	return r.queryAudits(ctx, query, limit)
}

func (r *RollAuditRepository) queryAudits(ctx context.Context, query string, args ...any) ([]*models.RollValidation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query roll audits: %w", err)
	}
	defer rows.Close()

	var audits []*models.RollValidation
	for rows.Next() {
		var val models.RollValidation
		var ledgerJSON, errorsJSON []byte

		err := rows.Scan(
			&val.ID,
			&val.DiscordID,
			&val.Roll.Die1,
			&val.Roll.Die2,
			&val.Phase,
			&val.Point,
			&ledgerJSON,
			&val.ExpectedPayout,
			&val.ActualPayout,
			&val.ExpectedReturn,
			&val.ActualReturn,
			&val.Legit,
			&errorsJSON,
			&val.DiceNonce,
			&val.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roll audit: %w", err)
		}

		if len(ledgerJSON) > 0 {
			if err := json.Unmarshal(ledgerJSON, &val.LedgerBefore); err != nil {
				return nil, fmt.Errorf("failed to unmarshal pre-roll ledger: %w", err)
			}
		}
		if len(errorsJSON) > 0 {
			if err := json.Unmarshal(errorsJSON, &val.Errors); err != nil {
				return nil, fmt.Errorf("failed to unmarshal validation errors: %w", err)
			}
		}

		audits = append(audits, &val)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roll audits: %w", err)
	}

	return audits, nil
}
