package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"crapstable/engine"
	"crapstable/events"
	"crapstable/models"
)

type tableService struct {
	uowFactory UnitOfWorkFactory
	sessions   *SessionManager
	validator  *engine.Validator
}

// NewTableService creates a new table service
func NewTableService(uowFactory UnitOfWorkFactory, sessions *SessionManager) TableService {
	return &tableService{
		uowFactory: uowFactory,
		sessions:   sessions,
		validator:  engine.NewValidator(),
	}
}

// sessionFor returns the player's table session, loading the player row to
// seed the balance mirror when the session does not exist yet.
func (s *tableService) sessionFor(ctx context.Context, discordID int64) (*tableSession, error) {
	if sess := s.sessions.peek(discordID); sess != nil {
		return sess, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("player with discord ID %d not found", discordID)
	}

	return s.sessions.session(discordID, player.Balance)
}

func (s *tableService) PlaceBet(ctx context.Context, discordID int64, area models.Area, amount int64) (*models.PlacementResult, error) {
	sess, err := s.sessionFor(ctx, discordID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.rolling {
		return rejection(sess, engine.ErrRollInProgress.Error()), nil
	}

	// Work on a clone so a failed persist leaves the table untouched.
	next := sess.ledger.Clone()
	cost, err := next.Place(area, amount, engine.PlacementContext{
		Phase:   sess.machine.Phase(),
		Point:   sess.machine.Point(),
		Balance: sess.balance.Cents(),
	})
	if err != nil {
		if engine.IsRejection(err) {
			return rejection(sess, err.Error()), nil
		}
		return nil, fmt.Errorf("failed to place bet: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PlayerRepository().DeductBalance(ctx, discordID, cost); err != nil {
		return nil, fmt.Errorf("failed to deduct bet cost: %w", err)
	}

	balanceBefore := sess.balance.Cents()
	history := &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceBefore - cost,
		ChangeAmount:    -cost,
		TransactionType: models.TransactionTypeBetPlace,
		TransactionMetadata: map[string]any{
			"area":   area.String(),
			"amount": amount,
			"cost":   cost,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		DiscordID: discordID,
		Area:      area,
		Amount:    amount,
		Cost:      cost,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	sess.ledger = next
	sess.balance.Debit(cost)

	return &models.PlacementResult{
		Accepted: true,
		Balance:  sess.balance.Cents(),
		Bets:     sess.ledger.Bets(),
	}, nil
}

func (s *tableService) RemoveBet(ctx context.Context, discordID int64, area models.Area, amount int64) (*models.PlacementResult, error) {
	sess, err := s.sessionFor(ctx, discordID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.rolling {
		return rejection(sess, engine.ErrRollInProgress.Error()), nil
	}

	next := sess.ledger.Clone()
	refund, err := next.Remove(area, amount, engine.PlacementContext{
		Phase: sess.machine.Phase(),
		Point: sess.machine.Point(),
	})
	if err != nil {
		if engine.IsRejection(err) {
			return rejection(sess, err.Error()), nil
		}
		return nil, fmt.Errorf("failed to remove bet: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PlayerRepository().AddBalance(ctx, discordID, refund); err != nil {
		return nil, fmt.Errorf("failed to refund bet: %w", err)
	}

	balanceBefore := sess.balance.Cents()
	history := &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceBefore + refund,
		ChangeAmount:    refund,
		TransactionType: models.TransactionTypeBetRemove,
		TransactionMetadata: map[string]any{
			"area":   area.String(),
			"refund": refund,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	uow.EventBus().Publish(events.BetRemovedEvent{
		DiscordID: discordID,
		Area:      area,
		Refund:    refund,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	sess.ledger = next
	sess.balance.Credit(refund)

	return &models.PlacementResult{
		Accepted: true,
		Balance:  sess.balance.Cents(),
		Bets:     sess.ledger.Bets(),
	}, nil
}

func (s *tableService) Roll(ctx context.Context, discordID int64) (*models.RollOutcome, error) {
	sess, err := s.sessionFor(ctx, discordID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.rolling {
		sess.mu.Unlock()
		return nil, engine.ErrRollInProgress
	}
	sess.rolling = true

	roll, err := sess.dice.Roll()
	if err != nil {
		sess.rolling = false
		sess.mu.Unlock()
		return nil, fmt.Errorf("failed to roll dice: %w", err)
	}
	nonce := sess.dice.Nonce()
	in := engine.Input{
		Roll:             roll,
		Ledger:           sess.ledger,
		Phase:            sess.machine.Phase(),
		Point:            sess.machine.Point(),
		BonusBetsWorking: sess.bonusWorking,
	}
	balanceBefore := sess.balance.Cents()
	sess.mu.Unlock()

	// The rolling flag keeps the ledger stable while the mutex is
	// released for resolution and persistence.
	out, val, err := s.resolveAndPersist(ctx, discordID, in, nonce, balanceBefore)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.rolling = false
	if err != nil {
		return nil, err
	}

	sess.ledger = engine.LedgerFromBets(out.BetsRetained)
	sess.machine.Set(out.Phase, out.Point)
	sess.balance.Credit(out.TotalWinnings + out.TotalReturned)

	if !val.Legit {
		log.WithFields(log.Fields{
			"discordID":      discordID,
			"roll":           out.Roll.String(),
			"expectedPayout": val.ExpectedPayout,
			"actualPayout":   val.ActualPayout,
			"errors":         val.Errors,
		}).Error("Roll payout failed independent validation")
	}

	return out, nil
}

// resolveAndPersist runs the resolver and the independent payout check,
// then writes the payout, the balance history and the audit record in one
// transaction.
func (s *tableService) resolveAndPersist(ctx context.Context, discordID int64, in engine.Input, nonce uint64, balanceBefore int64) (*models.RollOutcome, models.RollValidation, error) {
	out, err := engine.Resolve(in)
	if err != nil {
		return nil, models.RollValidation{}, fmt.Errorf("failed to resolve roll: %w", err)
	}

	val := s.validator.Check(in, discordID, out.TotalWinnings, out.TotalReturned, nonce)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, val, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	credit := out.TotalWinnings + out.TotalReturned
	if credit > 0 {
		if err := uow.PlayerRepository().AddBalance(ctx, discordID, credit); err != nil {
			return nil, val, fmt.Errorf("failed to credit winnings: %w", err)
		}

		history := &models.BalanceHistory{
			DiscordID:       discordID,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    balanceBefore + credit,
			ChangeAmount:    credit,
			TransactionType: models.TransactionTypeRollPayout,
			TransactionMetadata: map[string]any{
				"roll":     out.Roll.String(),
				"event":    string(out.Event),
				"winnings": out.TotalWinnings,
				"returned": out.TotalReturned,
			},
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, val, fmt.Errorf("failed to record balance change: %w", err)
		}
	}

	if err := uow.RollAuditRepository().Record(ctx, &val); err != nil {
		return nil, val, fmt.Errorf("failed to record roll audit: %w", err)
	}

	uow.EventBus().Publish(events.RollResolvedEvent{
		DiscordID: discordID,
		Outcome:   *out,
		Nonce:     nonce,
	})
	if !val.Legit {
		uow.EventBus().Publish(events.PayoutMismatchEvent{Validation: val})
	}

	if err := uow.Commit(); err != nil {
		return nil, val, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return out, val, nil
}

func (s *tableService) SetBonusBetsWorking(ctx context.Context, discordID int64, working bool) error {
	sess, err := s.sessionFor(ctx, discordID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.rolling {
		return engine.ErrRollInProgress
	}
	sess.bonusWorking = working
	return nil
}

func (s *tableService) TableState(ctx context.Context, discordID int64) (*models.TableState, error) {
	sess, err := s.sessionFor(ctx, discordID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

func (s *tableService) RevealSeed(ctx context.Context, discordID int64) (string, string, error) {
	sess, err := s.sessionFor(ctx, discordID)
	if err != nil {
		return "", "", err
	}

	next, err := s.sessions.diceFactory(discordID)
	if err != nil {
		return "", "", fmt.Errorf("failed to create replacement dice source: %w", err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.rolling {
		return "", "", engine.ErrRollInProgress
	}

	old := sess.swapDice(next)
	return old.RevealSeed(), old.SeedHash(), nil
}

// rejection builds the no-op answer for an invalid placement. Caller
// holds the session mutex.
func rejection(sess *tableSession, reason string) *models.PlacementResult {
	return &models.PlacementResult{
		Accepted: false,
		Reason:   reason,
		Balance:  sess.balance.Cents(),
		Bets:     sess.ledger.Bets(),
	}
}
