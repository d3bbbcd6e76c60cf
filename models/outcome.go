package models

// BetOutcome is what a single roll did to a single bet.
type BetOutcome string

const (
	BetOutcomeWin  BetOutcome = "win"
	BetOutcomeLoss BetOutcome = "loss"
	BetOutcomeKeep BetOutcome = "keep"
)

// BetResult is the per-bet line item of a resolved roll.
//
// Payout is net winnings only; Returned is the original stake handed back
// for bets that leave the table as winners. Stay-on-table winners (place,
// buy, hardways) have Returned == 0 because the stake keeps riding. The two
// figures are never folded together.
type BetResult struct {
	Area        Area       `json:"area"`
	TravelPoint *int       `json:"travelPoint,omitempty"`
	Outcome     BetOutcome `json:"outcome"`
	Payout      int64      `json:"payout"`   // net winnings, cents
	Returned    int64      `json:"returned"` // stake returned, cents
}

// RollOutcome is the full result of resolving one roll against a table.
type RollOutcome struct {
	Roll          Roll        `json:"roll"`
	Event         RollEvent   `json:"event"`
	Phase         Phase       `json:"phase"` // phase after the roll
	Point         int         `json:"point"` // point after the roll, PointOff when none
	TotalWinnings int64       `json:"totalWinnings"` // sum of per-bet payouts, cents
	TotalReturned int64       `json:"totalReturned"` // sum of returned stakes, cents
	Results       []BetResult `json:"results"`
	BetsRetained  []Bet       `json:"betsRetained"`
	Message       string      `json:"message"`
}

// PlacementResult is the caller-facing answer to a place or remove request.
// Rejections are a no-op with a reason, never an error.
type PlacementResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	Balance  int64  `json:"balance"` // cents, after the operation
	Bets     []Bet  `json:"bets"`
}

// TableState is a read-only snapshot of one player's table.
type TableState struct {
	Phase            Phase  `json:"phase"`
	Point            int    `json:"point"`
	Bets             []Bet  `json:"bets"`
	Balance          int64  `json:"balance"`
	BonusBetsWorking bool   `json:"bonusBetsWorking"`
	SeedHash         string `json:"seedHash"`
	Nonce            uint64 `json:"nonce"`
}
