package testutil

import (
	"time"

	"github.com/google/uuid"

	"crapstable/models"
)

// CreateTestPlayer creates a test player with default values
func CreateTestPlayer(discordID int64, username string) *models.Player {
	now := time.Now()
	return &models.Player{
		DiscordID: discordID,
		Username:  username,
		Balance:   100000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestPlayerWithBalance creates a test player with a specific balance
func CreateTestPlayerWithBalance(discordID int64, username string, balance int64) *models.Player {
	player := CreateTestPlayer(discordID, username)
	player.Balance = balance
	return player
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(discordID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   100000,
		BalanceAfter:    99000,
		ChangeAmount:    -1000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"area": "passLine",
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestRollValidation creates a clean roll validation record
func CreateTestRollValidation(discordID int64) *models.RollValidation {
	return &models.RollValidation{
		ID:        uuid.New(),
		DiscordID: discordID,
		Roll:      models.Roll{Die1: 3, Die2: 4},
		Phase:     models.PhaseComeOut,
		Point:     models.PointOff,
		LedgerBefore: []models.Bet{
			{Area: models.Area{Kind: models.BetPassLine}, Amount: 1000},
		},
		ExpectedPayout: 1000,
		ActualPayout:   1000,
		ExpectedReturn: 1000,
		ActualReturn:   1000,
		Legit:          true,
		DiceNonce:      1,
		CreatedAt:      time.Now(),
	}
}
