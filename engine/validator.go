package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crapstable/models"
)

// Validator recomputes the expected payout of a roll from the same
// pre-roll ledger the resolver saw, using its own rules table and decimal
// arithmetic instead of the resolver's integer ratio math. It never blocks
// a roll: a mismatch is recorded and flagged for review while the
// resolver's result stands.
type Validator struct{}

// NewValidator returns a ready validator.
func NewValidator() *Validator { return &Validator{} }

// payoutTolerance is the largest acceptable gap between expected and
// actual payout, in cents.
const payoutTolerance = 1

// Net-winnings ratios keyed by area string. Numbered areas (place, buy,
// odds, hard) are resolved through the point-keyed tables below.
var propRatios = map[string]decimal.Decimal{
	"field2":   decimal.NewFromInt(3),
	"field12":  decimal.NewFromInt(3),
	"field":    decimal.NewFromInt(2),
	"anyCraps": decimal.NewFromInt(7),
	"anySeven": decimal.NewFromInt(4),
	"two":      decimal.NewFromInt(30),
	"three":    decimal.NewFromInt(15),
	"eleven":   decimal.NewFromInt(15),
	"twelve":   decimal.NewFromInt(30),
	"horn2":    decimal.RequireFromString("6.75"),
	"horn12":   decimal.RequireFromString("6.75"),
	"horn3":    decimal.NewFromInt(3),
	"horn11":   decimal.NewFromInt(3),
	"c":        decimal.NewFromInt(7),
	"e":        decimal.NewFromInt(15),
	"ce2":      decimal.NewFromInt(3),
	"ce3":      decimal.NewFromInt(3),
	"ce12":     decimal.NewFromInt(3),
	"ce11":     decimal.NewFromInt(7),
	"small":    decimal.NewFromInt(34),
	"tall":     decimal.NewFromInt(34),
	"all":      decimal.NewFromInt(176),
}

var trueOddsRatios = map[int]decimal.Decimal{
	2:  decimal.NewFromInt(6),
	12: decimal.NewFromInt(6),
	3:  decimal.NewFromInt(3),
	11: decimal.NewFromInt(3),
	4:  decimal.NewFromInt(2),
	10: decimal.NewFromInt(2),
	5:  decimal.RequireFromString("1.5"),
	9:  decimal.RequireFromString("1.5"),
	6:  decimal.RequireFromString("1.2"),
	8:  decimal.RequireFromString("1.2"),
}

var placeRatios = map[int]decimal.Decimal{
	4:  decimal.RequireFromString("1.8"),
	10: decimal.RequireFromString("1.8"),
	5:  decimal.RequireFromString("1.4"),
	9:  decimal.RequireFromString("1.4"),
	6:  decimal.RequireFromString("7").Div(decimal.NewFromInt(6)),
	8:  decimal.RequireFromString("7").Div(decimal.NewFromInt(6)),
}

var hardRatios = map[int]decimal.Decimal{
	4:  decimal.NewFromInt(7),
	10: decimal.NewFromInt(7),
	6:  decimal.NewFromInt(9),
	8:  decimal.NewFromInt(9),
}

// Check recomputes the expected winnings and returned stakes for the roll
// and compares them to what the resolver actually produced. Pure: running
// it twice over the same inputs yields the same record (modulo ID and
// timestamp).
func (v *Validator) Check(in Input, discordID int64, actualWinnings, actualReturned int64, nonce uint64) models.RollValidation {
	val := models.RollValidation{
		ID:           uuid.New(),
		DiscordID:    discordID,
		Roll:         in.Roll,
		Phase:        in.Phase,
		Point:        in.Point,
		LedgerBefore: in.Ledger.Bets(),
		ActualPayout: actualWinnings,
		ActualReturn: actualReturned,
		DiceNonce:    nonce,
		CreatedAt:    time.Now().UTC(),
	}

	if err := in.Roll.Validate(); err != nil {
		val.Errors = append(val.Errors, err.Error())
		return val
	}

	expectedWin := decimal.Zero
	expectedRet := decimal.Zero
	for _, bet := range val.LedgerBefore {
		win, ret, err := expectedForBet(bet, in)
		if err != nil {
			val.Errors = append(val.Errors, fmt.Sprintf("%s: %v", bet.Area, err))
			continue
		}
		expectedWin = expectedWin.Add(win)
		expectedRet = expectedRet.Add(ret)
	}

	val.ExpectedPayout = expectedWin.Floor().IntPart()
	val.ExpectedReturn = expectedRet.Floor().IntPart()

	if diff := val.ExpectedPayout - actualWinnings; diff > payoutTolerance || diff < -payoutTolerance {
		val.Errors = append(val.Errors, fmt.Sprintf(
			"payout mismatch: expected %s, resolver paid %s",
			models.FormatCents(val.ExpectedPayout), models.FormatCents(actualWinnings)))
	}
	if diff := val.ExpectedReturn - actualReturned; diff > payoutTolerance || diff < -payoutTolerance {
		val.Errors = append(val.Errors, fmt.Sprintf(
			"stake return mismatch: expected %s, resolver returned %s",
			models.FormatCents(val.ExpectedReturn), models.FormatCents(actualReturned)))
	}
	val.Legit = len(val.Errors) == 0
	return val
}

// expectedForBet recomputes one bet's net winnings and returned stake for
// the roll, independent of the resolver's code path.
func expectedForBet(bet models.Bet, in Input) (win, ret decimal.Decimal, err error) {
	total := in.Roll.Total()
	amount := decimal.NewFromInt(bet.Amount)
	area := bet.Area.String()
	working := in.Phase == models.PhasePoint || in.BonusBetsWorking
	sevenOut := in.Phase == models.PhasePoint && total == 7

	switch {
	case area == "passLine":
		if (in.Phase == models.PhaseComeOut && total == 7) ||
			(in.Phase == models.PhasePoint && total == in.Point) {
			return amount, amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "passLineOdds":
		if in.Phase == models.PhasePoint && total == in.Point {
			ratio, ok := trueOddsRatios[in.Point]
			if !ok {
				return win, ret, fmt.Errorf("no true odds for point %d", in.Point)
			}
			return amount.Mul(ratio).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "come":
		if bet.TravelPoint == nil {
			if total == 7 {
				return amount, amount, nil
			}
			return decimal.Zero, decimal.Zero, nil
		}
		if total == *bet.TravelPoint {
			return amount, amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case strings.HasPrefix(area, "comeOdds"):
		if total == bet.Area.Number {
			ratio, ok := trueOddsRatios[bet.Area.Number]
			if !ok {
				return win, ret, fmt.Errorf("no true odds for %d", bet.Area.Number)
			}
			return amount.Mul(ratio).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "field":
		key := "field"
		if total == 2 || total == 12 {
			key = fmt.Sprintf("field%d", total)
		}
		switch total {
		case 2, 3, 4, 9, 10, 11, 12:
			return amount.Mul(propRatios[key]).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case strings.HasPrefix(area, "place"):
		if working && !sevenOut && total == bet.Area.Number {
			ratio, ok := placeRatios[bet.Area.Number]
			if !ok {
				return win, ret, fmt.Errorf("no place odds for %d", bet.Area.Number)
			}
			return amount.Mul(ratio).Floor(), decimal.Zero, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case strings.HasPrefix(area, "buy"):
		if working && !sevenOut && total == bet.Area.Number {
			ratio, ok := trueOddsRatios[bet.Area.Number]
			if !ok {
				return win, ret, fmt.Errorf("no true odds for buy %d", bet.Area.Number)
			}
			return amount.Mul(ratio).Floor(), decimal.Zero, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case strings.HasPrefix(area, "hard"):
		if working && !sevenOut && total == bet.Area.Number && in.Roll.IsHard() {
			ratio, ok := hardRatios[bet.Area.Number]
			if !ok {
				return win, ret, fmt.Errorf("no hardway odds for %d", bet.Area.Number)
			}
			return amount.Mul(ratio).Floor(), decimal.Zero, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "small" || area == "tall" || area == "all":
		target := models.SmallNumbers
		if area == "tall" {
			target = models.TallNumbers
		} else if area == "all" {
			target = models.AllNumbers
		}
		hits := bet.Hits
		if target.Has(total) {
			hits = hits.Add(total)
		}
		if hits.Covers(target) {
			return amount.Mul(propRatios[area]).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "anyCraps":
		if total == 2 || total == 3 || total == 12 {
			return amount.Mul(propRatios[area]).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "anySeven":
		if total == 7 {
			return amount.Mul(propRatios[area]).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "two" || area == "three" || area == "eleven" || area == "twelve":
		want := map[string]int{"two": 2, "three": 3, "eleven": 11, "twelve": 12}[area]
		if total == want {
			return amount.Mul(propRatios[area]).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "horn":
		if ratio, ok := propRatios[fmt.Sprintf("horn%d", total)]; ok {
			return amount.Mul(ratio).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "c":
		if total == 2 || total == 3 || total == 12 {
			return amount.Mul(propRatios[area]).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "e":
		if total == 11 {
			return amount.Mul(propRatios[area]).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil

	case area == "ce":
		if ratio, ok := propRatios[fmt.Sprintf("ce%d", total)]; ok {
			return amount.Mul(ratio).Floor(), amount, nil
		}
		return decimal.Zero, decimal.Zero, nil
	}

	return win, ret, fmt.Errorf("no expectation rule for area %s", area)
}
