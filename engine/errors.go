package engine

import "errors"

// Placement and removal rejections. These are recoverable: the service
// layer surfaces them to the caller as a declined request with a reason
// string and no state change.
var (
	ErrInvalidAmount     = errors.New("bet amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWrongPhase        = errors.New("bet not allowed in the current phase")
	ErrOddsCapExceeded   = errors.New("odds bet exceeds the allowed multiple of the line bet")
	ErrMissingLineBet    = errors.New("odds require a matching line bet")
	ErrBetLocked         = errors.New("bet cannot be removed now")
	ErrNoSuchBet         = errors.New("no bet on that area")
	ErrUnknownArea       = errors.New("unknown bet area")
	ErrRollInProgress    = errors.New("roll in progress")
)

// IsRejection reports whether err is one of the placement/removal
// rejections above, as opposed to an infrastructure failure.
func IsRejection(err error) bool {
	for _, e := range []error{
		ErrInvalidAmount, ErrInsufficientFunds, ErrWrongPhase,
		ErrOddsCapExceeded, ErrMissingLineBet, ErrBetLocked,
		ErrNoSuchBet, ErrUnknownArea, ErrRollInProgress,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
