package models

import (
	"time"

	"github.com/google/uuid"
)

// RollValidation is the audit record produced by the independent payout
// check that runs after every resolved roll. A non-legit record does not
// block or roll back the payout; it is a signal for anti-cheat review.
type RollValidation struct {
	ID              uuid.UUID `json:"id"`
	DiscordID       int64     `json:"discordId"`
	Roll            Roll      `json:"roll"`
	Phase           Phase     `json:"phase"` // phase before the roll
	Point           int       `json:"point"` // point before the roll
	LedgerBefore    []Bet     `json:"ledgerBefore"`
	ExpectedPayout  int64     `json:"expectedPayout"` // cents, net winnings
	ActualPayout    int64     `json:"actualPayout"`   // cents, net winnings
	ExpectedReturn  int64     `json:"expectedReturn"` // cents, stakes returned
	ActualReturn    int64     `json:"actualReturn"`   // cents, stakes returned
	Legit           bool      `json:"legit"`
	Errors          []string  `json:"errors,omitempty"`
	DiceNonce       uint64    `json:"diceNonce"`
	CreatedAt       time.Time `json:"createdAt"`
}
