package engine

// Payout ratios for the crapless layout. All figures are net winnings
// relative to the stake; stake handling is the resolver's job.

// trueOdds returns the true-odds ratio paid on passLineOdds, comeOdds and
// buy bets for a given point number.
func trueOdds(n int) (num, den int64) {
	switch n {
	case 2, 12:
		return 6, 1
	case 3, 11:
		return 3, 1
	case 4, 10:
		return 2, 1
	case 5, 9:
		return 3, 2
	case 6, 8:
		return 6, 5
	}
	return 0, 1
}

// placeOdds returns the house-odds ratio paid on place bets.
func placeOdds(n int) (num, den int64) {
	switch n {
	case 4, 10:
		return 9, 5
	case 5, 9:
		return 7, 5
	case 6, 8:
		return 7, 6
	}
	return 0, 1
}

// hardOdds returns the ratio paid on hardway bets.
func hardOdds(n int) (num, den int64) {
	switch n {
	case 4, 10:
		return 7, 1
	case 6, 8:
		return 9, 1
	}
	return 0, 1
}

// oddsCap returns the maximum odds multiple of the line bet for a point.
func oddsCap(point int) int64 {
	switch point {
	case 2, 3, 11, 12:
		return 2
	case 4, 10:
		return 3
	case 5, 9:
		return 4
	case 6, 8:
		return 5
	}
	return 0
}

// One-roll proposition ratios (net, X:1).
const (
	anyCrapsRatio = 7
	anySevenRatio = 4
	acesRatio     = 30 // two
	aceDeuceRatio = 15 // three
	yoRatio       = 15 // eleven
	boxcarsRatio  = 30 // twelve
)

// Progressive ratios (net, X:1).
const (
	smallTallRatio = 34
	allRatio       = 176
)

// ratioPayout computes net winnings for a stake at num:den odds, rounded
// down to whole cents.
func ratioPayout(amount, num, den int64) int64 {
	return amount * num / den
}

// hornPayout is the net result of a horn bet, which splits the stake four
// ways across 2, 3, 11 and 12: the hit quarter pays 30:1 or 15:1 and the
// other three quarters lose.
func hornPayout(amount int64, total int) int64 {
	switch total {
	case 2, 12:
		return amount * 27 / 4 // (30-3)/4
	case 3, 11:
		return amount * 3 // (15-3)/4
	}
	return 0
}

// cePayout is the net result of a craps-eleven split: half the stake on any
// craps at 7:1, half on eleven at 15:1, the losing half forfeited.
func cePayout(amount int64, total int) int64 {
	switch total {
	case 2, 3, 12:
		return amount * 3 // 7/2 - 1/2
	case 11:
		return amount * 7 // 15/2 - 1/2
	}
	return 0
}

// buyCommission is the 5% vig charged when a buy bet is placed, rounded up
// to the next cent.
func buyCommission(amount int64) int64 {
	return (amount*5 + 99) / 100
}
