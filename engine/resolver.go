package engine

import (
	"fmt"
	"strings"

	"crapstable/models"
)

// Input is the full pre-roll picture one resolution needs. Resolve never
// mutates any of it; the outcome carries the replacement ledger and phase.
type Input struct {
	Roll             models.Roll
	Ledger           *Ledger
	Phase            models.Phase
	Point            int
	BonusBetsWorking bool
}

// Resolve applies one roll to the table.
//
// Evaluation order is fixed: progressive bets accumulate or pay first, then
// the phase transition decides the line bets, then every remaining category
// is settled against the roll. Each bet is evaluated exactly once. A
// seven-out destroys everything still on the table except bets the same
// pass already resolved (an unsettled come or any-seven wins on the same
// throw, a completed progressive was paid in step one).
//
// All payouts are net winnings; stakes coming back to the player are
// reported separately per bet and summed in TotalReturned.
func Resolve(in Input) (*models.RollOutcome, error) {
	if err := in.Roll.Validate(); err != nil {
		return nil, err
	}

	total := in.Roll.Total()
	newPhase, newPoint, event := Transition(in.Phase, in.Point, total)

	out := &models.RollOutcome{
		Roll:  in.Roll,
		Event: event,
		Phase: newPhase,
		Point: newPoint,
	}

	working := in.Phase == models.PhasePoint || in.BonusBetsWorking
	snapshot := in.Ledger.Clone()
	survivors := NewLedger()
	var lines []string

	settled := make(map[*models.Bet]bool)

	// Progressives first: they can complete on the same throw that would
	// otherwise destroy them, and a completed one pays before anything else.
	for _, bet := range snapshot.bets {
		var target models.NumberSet
		switch bet.Area.Kind {
		case models.BetSmall:
			target = models.SmallNumbers
		case models.BetTall:
			target = models.TallNumbers
		case models.BetAll:
			target = models.AllNumbers
		default:
			continue
		}
		settled[bet] = true
		if target.Has(total) {
			bet.Hits = bet.Hits.Add(total)
		}
		if bet.Hits.Covers(target) {
			ratio := int64(smallTallRatio)
			if bet.Area.Kind == models.BetAll {
				ratio = allRatio
			}
			win := bet.Amount * ratio
			record(out, bet, models.BetOutcomeWin, win, bet.Amount)
			lines = append(lines, fmt.Sprintf("%s completes and pays %s!",
				bet.Area, models.FormatCents(win)))
			continue
		}
		if total == 7 {
			// Destroyed by the natural on a come-out or by the seven-out.
			record(out, bet, models.BetOutcomeLoss, 0, 0)
			lines = append(lines, fmt.Sprintf("%s bet loses.", bet.Area))
			continue
		}
		keep(out, survivors, bet)
	}

	for _, bet := range snapshot.bets {
		if settled[bet] {
			continue
		}
		switch bet.Area.Kind {
		case models.BetPassLine:
			switch event {
			case models.EventNatural:
				record(out, bet, models.BetOutcomeWin, bet.Amount, bet.Amount)
				lines = append(lines, fmt.Sprintf("Seven! Pass line wins %s.",
					models.FormatCents(bet.Amount)))
			case models.EventPointMade:
				record(out, bet, models.BetOutcomeWin, bet.Amount, bet.Amount)
				lines = append(lines, fmt.Sprintf("Point %d made! Pass line wins %s.",
					in.Point, models.FormatCents(bet.Amount)))
			case models.EventSevenOut:
				record(out, bet, models.BetOutcomeLoss, 0, 0)
				lines = append(lines, "Seven out! Pass line loses.")
			default:
				keep(out, survivors, bet)
			}

		case models.BetPassLineOdds:
			switch event {
			case models.EventPointMade:
				num, den := trueOdds(in.Point)
				win := ratioPayout(bet.Amount, num, den)
				record(out, bet, models.BetOutcomeWin, win, bet.Amount)
				lines = append(lines, fmt.Sprintf("Odds pay %s.", models.FormatCents(win)))
			case models.EventSevenOut:
				record(out, bet, models.BetOutcomeLoss, 0, 0)
			default:
				keep(out, survivors, bet)
			}

		case models.BetCome:
			resolveCome(out, survivors, bet, total, &lines)

		case models.BetComeOdds:
			switch total {
			case bet.Area.Number:
				num, den := trueOdds(bet.Area.Number)
				win := ratioPayout(bet.Amount, num, den)
				record(out, bet, models.BetOutcomeWin, win, bet.Amount)
				lines = append(lines, fmt.Sprintf("Come odds on %d pay %s.",
					bet.Area.Number, models.FormatCents(win)))
			case 7:
				record(out, bet, models.BetOutcomeLoss, 0, 0)
			default:
				keep(out, survivors, bet)
			}

		case models.BetField:
			var win int64
			switch total {
			case 2, 12:
				win = bet.Amount * 3
			case 3, 4, 9, 10, 11:
				win = bet.Amount * 2
			}
			if win > 0 {
				record(out, bet, models.BetOutcomeWin, win, bet.Amount)
				lines = append(lines, fmt.Sprintf("Field pays %s.", models.FormatCents(win)))
			} else {
				record(out, bet, models.BetOutcomeLoss, 0, 0)
				lines = append(lines, "Field loses.")
			}

		case models.BetPlace, models.BetBuy:
			if !working {
				keep(out, survivors, bet)
				break
			}
			switch {
			case event == models.EventSevenOut:
				record(out, bet, models.BetOutcomeLoss, 0, 0)
			case total == bet.Area.Number:
				var num, den int64
				if bet.Area.Kind == models.BetPlace {
					num, den = placeOdds(bet.Area.Number)
				} else {
					num, den = trueOdds(bet.Area.Number)
				}
				win := ratioPayout(bet.Amount, num, den)
				// Stake keeps riding on the number.
				recordRiding(out, survivors, bet, win)
				lines = append(lines, fmt.Sprintf("%s hits for %s.",
					bet.Area, models.FormatCents(win)))
			default:
				keep(out, survivors, bet)
			}

		case models.BetHard:
			if !working {
				keep(out, survivors, bet)
				break
			}
			switch {
			case event == models.EventSevenOut:
				record(out, bet, models.BetOutcomeLoss, 0, 0)
			case total == bet.Area.Number && in.Roll.IsHard():
				num, den := hardOdds(bet.Area.Number)
				win := ratioPayout(bet.Amount, num, den)
				recordRiding(out, survivors, bet, win)
				lines = append(lines, fmt.Sprintf("Hard %d hits for %s!",
					bet.Area.Number, models.FormatCents(win)))
			case total == bet.Area.Number:
				record(out, bet, models.BetOutcomeLoss, 0, 0)
				lines = append(lines, fmt.Sprintf("Hard %d loses the easy way.", bet.Area.Number))
			default:
				keep(out, survivors, bet)
			}

		case models.BetAnyCraps, models.BetAnySeven, models.BetTwo, models.BetThree,
			models.BetEleven, models.BetTwelve, models.BetHorn, models.BetC,
			models.BetE, models.BetCE:
			win := propPayout(bet.Area.Kind, bet.Amount, total)
			if win > 0 {
				record(out, bet, models.BetOutcomeWin, win, bet.Amount)
				lines = append(lines, fmt.Sprintf("%s pays %s.",
					bet.Area, models.FormatCents(win)))
			} else {
				record(out, bet, models.BetOutcomeLoss, 0, 0)
			}

		default:
			return nil, fmt.Errorf("resolver cannot settle bet kind %s", bet.Area)
		}
	}

	switch event {
	case models.EventPointEstablished:
		lines = append(lines, fmt.Sprintf("Point is %d.", total))
	case models.EventPointMade:
		lines = append(lines, "New come-out roll.")
	case models.EventSevenOut:
		lines = append(lines, "Seven out. The table is cleared.")
	}

	out.BetsRetained = survivors.Bets()
	out.Message = strings.Join(lines, "\n")
	return out, nil
}

// resolveCome settles one come bet. An unsettled come wins even money on
// any 7, including a seven-out, and travels onto every other total; a
// travelled come wins on its number and loses on any 7 regardless of phase.
func resolveCome(out *models.RollOutcome, survivors *Ledger, bet *models.Bet, total int, lines *[]string) {
	if bet.TravelPoint == nil {
		if total == 7 {
			record(out, bet, models.BetOutcomeWin, bet.Amount, bet.Amount)
			*lines = append(*lines, fmt.Sprintf("Come bet wins %s.",
				models.FormatCents(bet.Amount)))
			return
		}
		tp := total
		bet.TravelPoint = &tp
		keep(out, survivors, bet)
		*lines = append(*lines, fmt.Sprintf("Come bet travels to %d.", total))
		return
	}
	switch total {
	case *bet.TravelPoint:
		record(out, bet, models.BetOutcomeWin, bet.Amount, bet.Amount)
		*lines = append(*lines, fmt.Sprintf("Come bet on %d wins %s.",
			*bet.TravelPoint, models.FormatCents(bet.Amount)))
	case 7:
		record(out, bet, models.BetOutcomeLoss, 0, 0)
		*lines = append(*lines, fmt.Sprintf("Come bet on %d loses.", *bet.TravelPoint))
	default:
		keep(out, survivors, bet)
	}
}

// propPayout returns the net winnings of a one-roll proposition, zero
// meaning the bet lost.
func propPayout(kind models.BetKind, amount int64, total int) int64 {
	switch kind {
	case models.BetAnyCraps:
		if total == 2 || total == 3 || total == 12 {
			return amount * anyCrapsRatio
		}
	case models.BetAnySeven:
		if total == 7 {
			return amount * anySevenRatio
		}
	case models.BetTwo:
		if total == 2 {
			return amount * acesRatio
		}
	case models.BetThree:
		if total == 3 {
			return amount * aceDeuceRatio
		}
	case models.BetEleven:
		if total == 11 {
			return amount * yoRatio
		}
	case models.BetTwelve:
		if total == 12 {
			return amount * boxcarsRatio
		}
	case models.BetHorn:
		return hornPayout(amount, total)
	case models.BetC:
		if total == 2 || total == 3 || total == 12 {
			return amount * anyCrapsRatio
		}
	case models.BetE:
		if total == 11 {
			return amount * yoRatio
		}
	case models.BetCE:
		return cePayout(amount, total)
	}
	return 0
}

// record settles a bet off the table: payout is net winnings, returned is
// the stake coming back with it (zero for a loss).
func record(out *models.RollOutcome, bet *models.Bet, outcome models.BetOutcome, payout, returned int64) {
	out.Results = append(out.Results, models.BetResult{
		Area:        bet.Area,
		TravelPoint: bet.TravelPoint,
		Outcome:     outcome,
		Payout:      payout,
		Returned:    returned,
	})
	out.TotalWinnings += payout
	out.TotalReturned += returned
}

// recordRiding pays a winner whose stake stays on the table.
func recordRiding(out *models.RollOutcome, survivors *Ledger, bet *models.Bet, payout int64) {
	out.Results = append(out.Results, models.BetResult{
		Area:        bet.Area,
		TravelPoint: bet.TravelPoint,
		Outcome:     models.BetOutcomeWin,
		Payout:      payout,
	})
	out.TotalWinnings += payout
	survivors.adopt(bet)
}

// keep carries a bet over to the next roll untouched.
func keep(out *models.RollOutcome, survivors *Ledger, bet *models.Bet) {
	out.Results = append(out.Results, models.BetResult{
		Area:        bet.Area,
		TravelPoint: bet.TravelPoint,
		Outcome:     models.BetOutcomeKeep,
	})
	survivors.adopt(bet)
}

// adopt moves an already-validated bet into the ledger, merging come bets
// that land on the same number.
func (l *Ledger) adopt(bet *models.Bet) {
	if bet.Area.Kind == models.BetCome && bet.TravelPoint != nil {
		if existing := l.travelledCome(*bet.TravelPoint); existing != nil {
			existing.Amount += bet.Amount
			return
		}
	}
	l.bets = append(l.bets, bet)
}
