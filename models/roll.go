package models

import "fmt"

// Roll is one two-die throw. Immutable once produced by the dice source.
type Roll struct {
	Die1 int `json:"die1"`
	Die2 int `json:"die2"`
}

// Total returns the combined face value.
func (r Roll) Total() int { return r.Die1 + r.Die2 }

// IsHard reports whether the total was rolled as a double.
func (r Roll) IsHard() bool { return r.Die1 == r.Die2 }

// Validate rejects die values outside [1,6]. A roll that fails validation
// must not be resolved against any table state.
func (r Roll) Validate() error {
	if r.Die1 < 1 || r.Die1 > 6 || r.Die2 < 1 || r.Die2 > 6 {
		return fmt.Errorf("invalid roll (%d, %d): die values must be 1-6", r.Die1, r.Die2)
	}
	return nil
}

func (r Roll) String() string {
	return fmt.Sprintf("%d-%d (total %d)", r.Die1, r.Die2, r.Total())
}
