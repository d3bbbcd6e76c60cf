package engine

import (
	"fmt"

	"crapstable/models"
)

// Ledger owns the set of bets currently placed on one table. Placement and
// removal legality lives here; the money itself lives in the Balance, which
// the caller debits or credits with the cost/refund figures Place and
// Remove return.
type Ledger struct {
	bets []*models.Bet
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// PlacementContext carries the table state the placement rules depend on.
type PlacementContext struct {
	Phase   models.Phase
	Point   int
	Balance int64 // cents available for new bets
}

// Place validates and records a bet, returning the cost to debit from the
// balance: the bet amount, plus the 5% commission for buy bets. A nil
// error means the ledger changed; any rejection leaves it untouched.
func (l *Ledger) Place(area models.Area, amount int64, pc PlacementContext) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if !area.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownArea, area)
	}

	cost := amount
	if area.Kind == models.BetBuy {
		cost += buyCommission(amount)
	}
	if pc.Balance < cost {
		return 0, fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds,
			models.FormatCents(cost), models.FormatCents(pc.Balance))
	}

	switch area.Kind {
	case models.BetPassLine, models.BetSmall, models.BetTall, models.BetAll:
		if pc.Phase != models.PhaseComeOut {
			return 0, fmt.Errorf("%w: %s is a come-out bet", ErrWrongPhase, area)
		}
	case models.BetPassLineOdds, models.BetComeOdds:
		if pc.Phase != models.PhasePoint {
			return 0, fmt.Errorf("%w: %s needs an established point", ErrWrongPhase, area)
		}
	}

	switch area.Kind {
	case models.BetPassLineOdds:
		line := l.find(models.Area{Kind: models.BetPassLine})
		if line == nil {
			return 0, fmt.Errorf("%w: no pass line bet", ErrMissingLineBet)
		}
		if err := l.checkOddsCap(area, amount, line.Amount, pc.Point); err != nil {
			return 0, err
		}
	case models.BetComeOdds:
		come := l.travelledCome(area.Number)
		if come == nil {
			return 0, fmt.Errorf("%w: no come bet on %d", ErrMissingLineBet, area.Number)
		}
		if err := l.checkOddsCap(area, amount, come.Amount, area.Number); err != nil {
			return 0, err
		}
	}

	if area.Kind == models.BetCome {
		if b := l.unsettledCome(); b != nil {
			b.Amount += amount
			return cost, nil
		}
		l.bets = append(l.bets, &models.Bet{Area: area, Amount: amount})
		return cost, nil
	}

	if b := l.find(area); b != nil {
		b.Amount += amount
	} else {
		l.bets = append(l.bets, &models.Bet{Area: area, Amount: amount})
	}
	return cost, nil
}

func (l *Ledger) checkOddsCap(area models.Area, amount, lineAmount int64, point int) error {
	existing := int64(0)
	if b := l.find(area); b != nil {
		existing = b.Amount
	}
	maxTotal := lineAmount * oddsCap(point)
	if existing+amount > maxTotal {
		return fmt.Errorf("%w: max %s on point %d", ErrOddsCapExceeded,
			models.FormatCents(maxTotal), point)
	}
	return nil
}

// Remove takes chips off a bet and returns the refund to credit back.
// Contract bets are locked once they have action: the pass line and the
// progressives once a point is on, and come bets that have travelled.
func (l *Ledger) Remove(area models.Area, chipAmount int64, pc PlacementContext) (int64, error) {
	if chipAmount <= 0 {
		return 0, ErrInvalidAmount
	}

	switch area.Kind {
	case models.BetPassLine, models.BetSmall, models.BetTall, models.BetAll:
		if pc.Phase == models.PhasePoint {
			return 0, fmt.Errorf("%w: %s is locked while the point is on", ErrBetLocked, area)
		}
	}

	var bet *models.Bet
	if area.Kind == models.BetCome {
		bet = l.unsettledCome()
		if bet == nil {
			if l.hasTravelledCome() {
				return 0, fmt.Errorf("%w: come bets on a number stay up", ErrBetLocked)
			}
			return 0, fmt.Errorf("%w: %s", ErrNoSuchBet, area)
		}
	} else {
		bet = l.find(area)
		if bet == nil {
			return 0, fmt.Errorf("%w: %s", ErrNoSuchBet, area)
		}
	}

	refund := chipAmount
	if refund > bet.Amount {
		refund = bet.Amount
	}
	bet.Amount -= refund
	if bet.Amount <= 0 {
		l.delete(bet)
	}
	return refund, nil
}

// Bets returns a snapshot of the ledger contents.
func (l *Ledger) Bets() []models.Bet {
	out := make([]models.Bet, 0, len(l.bets))
	for _, b := range l.bets {
		c := *b
		if b.TravelPoint != nil {
			tp := *b.TravelPoint
			c.TravelPoint = &tp
		}
		out = append(out, c)
	}
	return out
}

// Total returns the sum of all bet amounts riding on the table.
func (l *Ledger) Total() int64 {
	var sum int64
	for _, b := range l.bets {
		sum += b.Amount
	}
	return sum
}

// Len returns the number of bets on the table.
func (l *Ledger) Len() int { return len(l.bets) }

// Clone returns a deep copy, so resolution can work on a snapshot without
// mutating the live table.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{bets: make([]*models.Bet, 0, len(l.bets))}
	for _, b := range l.bets {
		c := *b
		if b.TravelPoint != nil {
			tp := *b.TravelPoint
			c.TravelPoint = &tp
		}
		out.bets = append(out.bets, &c)
	}
	return out
}

// LedgerFromBets rebuilds a ledger from a snapshot, e.g. the surviving bet
// set a resolution returned.
func LedgerFromBets(bets []models.Bet) *Ledger {
	l := &Ledger{bets: make([]*models.Bet, 0, len(bets))}
	for _, b := range bets {
		c := b
		if b.TravelPoint != nil {
			tp := *b.TravelPoint
			c.TravelPoint = &tp
		}
		l.bets = append(l.bets, &c)
	}
	return l
}

func (l *Ledger) find(area models.Area) *models.Bet {
	for _, b := range l.bets {
		if b.Area == area && (b.Area.Kind != models.BetCome || b.TravelPoint == nil) {
			return b
		}
	}
	return nil
}

func (l *Ledger) unsettledCome() *models.Bet {
	for _, b := range l.bets {
		if b.Area.Kind == models.BetCome && b.TravelPoint == nil {
			return b
		}
	}
	return nil
}

func (l *Ledger) travelledCome(n int) *models.Bet {
	for _, b := range l.bets {
		if b.Area.Kind == models.BetCome && b.TravelPoint != nil && *b.TravelPoint == n {
			return b
		}
	}
	return nil
}

func (l *Ledger) hasTravelledCome() bool {
	for _, b := range l.bets {
		if b.Area.Kind == models.BetCome && b.TravelPoint != nil {
			return true
		}
	}
	return false
}

func (l *Ledger) delete(bet *models.Bet) {
	for i, b := range l.bets {
		if b == bet {
			l.bets = append(l.bets[:i], l.bets[i+1:]...)
			return
		}
	}
}
