package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BetKind identifies one of the closed set of bet categories on the table.
// Adding a kind means touching every switch that dispatches on it; resolver
// and validator both fail loudly on a kind they do not know.
type BetKind int

const (
	BetPassLine BetKind = iota
	BetPassLineOdds
	BetCome
	BetComeOdds
	BetField
	BetPlace
	BetBuy
	BetHard
	BetAnyCraps
	BetAnySeven
	BetTwo
	BetThree
	BetEleven
	BetTwelve
	BetHorn
	BetC
	BetE
	BetCE
	BetSmall
	BetTall
	BetAll
)

// Area is a fully-qualified bet location: a kind plus, for numbered
// kinds (place, buy, hard, comeOdds), the point number it sits on.
type Area struct {
	Kind   BetKind
	Number int
}

// String renders the area in the wire form used by the API and audit
// records: "passLine", "place8", "comeOdds5", "hard4", "ce", ...
func (a Area) String() string {
	switch a.Kind {
	case BetPassLine:
		return "passLine"
	case BetPassLineOdds:
		return "passLineOdds"
	case BetCome:
		return "come"
	case BetComeOdds:
		return fmt.Sprintf("comeOdds%d", a.Number)
	case BetField:
		return "field"
	case BetPlace:
		return fmt.Sprintf("place%d", a.Number)
	case BetBuy:
		return fmt.Sprintf("buy%d", a.Number)
	case BetHard:
		return fmt.Sprintf("hard%d", a.Number)
	case BetAnyCraps:
		return "anyCraps"
	case BetAnySeven:
		return "anySeven"
	case BetTwo:
		return "two"
	case BetThree:
		return "three"
	case BetEleven:
		return "eleven"
	case BetTwelve:
		return "twelve"
	case BetHorn:
		return "horn"
	case BetC:
		return "c"
	case BetE:
		return "e"
	case BetCE:
		return "ce"
	case BetSmall:
		return "small"
	case BetTall:
		return "tall"
	case BetAll:
		return "all"
	}
	return fmt.Sprintf("unknown(%d)", int(a.Kind))
}

var plainAreas = map[string]BetKind{
	"passLine":     BetPassLine,
	"passLineOdds": BetPassLineOdds,
	"come":         BetCome,
	"field":        BetField,
	"anyCraps":     BetAnyCraps,
	"anySeven":     BetAnySeven,
	"two":          BetTwo,
	"three":        BetThree,
	"eleven":       BetEleven,
	"twelve":       BetTwelve,
	"horn":         BetHorn,
	"c":            BetC,
	"e":            BetE,
	"ce":           BetCE,
	"small":        BetSmall,
	"tall":         BetTall,
	"all":          BetAll,
}

// ParseArea parses the wire form produced by Area.String. Numbered areas
// are validated against the numbers that exist on a crapless layout.
func ParseArea(s string) (Area, error) {
	if kind, ok := plainAreas[s]; ok {
		return Area{Kind: kind}, nil
	}
	for prefix, kind := range map[string]BetKind{
		"comeOdds": BetComeOdds,
		"place":    BetPlace,
		"buy":      BetBuy,
		"hard":     BetHard,
	} {
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(s, prefix))
		if err != nil {
			return Area{}, fmt.Errorf("invalid bet area %q", s)
		}
		area := Area{Kind: kind, Number: n}
		if !area.validNumber() {
			return Area{}, fmt.Errorf("invalid number %d for %s bet", n, prefix)
		}
		return area, nil
	}
	return Area{}, fmt.Errorf("unknown bet area %q", s)
}

// MarshalJSON renders the area in its wire form.
func (a Area) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON parses the wire form produced by MarshalJSON.
func (a *Area) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseArea(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Valid reports whether the area names a location that exists on the
// crapless layout.
func (a Area) Valid() bool {
	if a.Kind < BetPassLine || a.Kind > BetAll {
		return false
	}
	return a.validNumber()
}

func (a Area) validNumber() bool {
	switch a.Kind {
	case BetPlace:
		switch a.Number {
		case 4, 5, 6, 8, 9, 10:
			return true
		}
		return false
	case BetBuy, BetComeOdds:
		switch a.Number {
		case 2, 3, 4, 5, 6, 8, 9, 10, 11, 12:
			return true
		}
		return false
	case BetHard:
		switch a.Number {
		case 4, 6, 8, 10:
			return true
		}
		return false
	}
	return a.Number == 0
}

// Bet is a single wager sitting on the table.
//
// A come bet starts with TravelPoint nil ("unsettled"); once a roll moves
// it onto a number it behaves as a bet on that number and never returns to
// the come area. Hits is only used by the progressive kinds (small, tall,
// all) to accumulate the numbers rolled so far.
type Bet struct {
	Area        Area      `json:"area"`
	Amount      int64     `json:"amount"` // cents
	TravelPoint *int      `json:"travelPoint,omitempty"`
	Hits        NumberSet `json:"hits,omitempty"`
}

// Key identifies a bet within a ledger: the area string plus the travel
// point for come bets, which lets several come bets coexist on different
// numbers.
func (b *Bet) Key() string {
	if b.Area.Kind == BetCome && b.TravelPoint != nil {
		return fmt.Sprintf("come@%d", *b.TravelPoint)
	}
	return b.Area.String()
}

// NumberSet is a bitmask over dice totals 2..12.
type NumberSet uint16

// Add returns the set with n included.
func (s NumberSet) Add(n int) NumberSet {
	if n < 2 || n > 12 {
		return s
	}
	return s | 1<<uint(n)
}

// Has reports whether n is in the set.
func (s NumberSet) Has(n int) bool {
	if n < 2 || n > 12 {
		return false
	}
	return s&(1<<uint(n)) != 0
}

// Covers reports whether every number in target is in the set.
func (s NumberSet) Covers(target NumberSet) bool {
	return s&target == target
}

// Numbers returns the members in ascending order.
func (s NumberSet) Numbers() []int {
	var out []int
	for n := 2; n <= 12; n++ {
		if s.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// MakeNumberSet builds a set from the given totals.
func MakeNumberSet(nums ...int) NumberSet {
	var s NumberSet
	for _, n := range nums {
		s = s.Add(n)
	}
	return s
}

// Target sets for the progressive bets.
var (
	SmallNumbers = MakeNumberSet(2, 3, 4, 5, 6)
	TallNumbers  = MakeNumberSet(8, 9, 10, 11, 12)
	AllNumbers   = MakeNumberSet(2, 3, 4, 5, 6, 8, 9, 10, 11, 12)
)
