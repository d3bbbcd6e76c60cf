package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crapstable/models"
)

func TestValidator_AgreesWithResolver(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name  string
		setup func(t *testing.T) Input
	}{
		{"come-out natural pays the line", func(t *testing.T) Input {
			l := NewLedger()
			mustPlace(t, l, models.Area{Kind: models.BetPassLine}, 1000, comeOutCtx(100000))
			return Input{Roll: models.Roll{Die1: 3, Die2: 4}, Ledger: l,
				Phase: models.PhaseComeOut, Point: models.PointOff}
		}},
		{"point made with odds behind", func(t *testing.T) Input {
			l := NewLedger()
			mustPlace(t, l, models.Area{Kind: models.BetPassLine}, 1000, comeOutCtx(100000))
			mustPlace(t, l, models.Area{Kind: models.BetPassLineOdds}, 2000, pointCtx(4, 100000))
			return Input{Roll: models.Roll{Die1: 2, Die2: 2}, Ledger: l,
				Phase: models.PhasePoint, Point: 4}
		}},
		{"seven-out sweeps a loaded table", func(t *testing.T) Input {
			l := NewLedger()
			pc := pointCtx(5, 1000000)
			mustPlace(t, l, models.Area{Kind: models.BetPassLine}, 1000, comeOutCtx(1000000))
			mustPlace(t, l, models.Area{Kind: models.BetPlace, Number: 8}, 3000, pc)
			mustPlace(t, l, models.Area{Kind: models.BetHard, Number: 6}, 500, pc)
			mustPlace(t, l, models.Area{Kind: models.BetCome}, 800, pc)
			mustPlace(t, l, models.Area{Kind: models.BetAnySeven}, 100, pc)
			return Input{Roll: models.Roll{Die1: 1, Die2: 6}, Ledger: l,
				Phase: models.PhasePoint, Point: 5, BonusBetsWorking: true}
		}},
		{"odd-cent place payout floors the same way", func(t *testing.T) Input {
			l := NewLedger()
			// $0.25 on place6 pays 7:6 of 25 cents, floored to 29.
			mustPlace(t, l, models.Area{Kind: models.BetPlace, Number: 6}, 25, pointCtx(9, 100000))
			return Input{Roll: models.Roll{Die1: 2, Die2: 4}, Ledger: l,
				Phase: models.PhasePoint, Point: 9}
		}},
		{"horn on aces pays in quarter ratios", func(t *testing.T) Input {
			l := NewLedger()
			mustPlace(t, l, models.Area{Kind: models.BetHorn}, 101, comeOutCtx(100000))
			return Input{Roll: models.Roll{Die1: 1, Die2: 1}, Ledger: l,
				Phase: models.PhaseComeOut, Point: models.PointOff}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.setup(t)
			out, err := Resolve(in)
			require.NoError(t, err)

			val := v.Check(in, 42, out.TotalWinnings, out.TotalReturned, 1)
			assert.True(t, val.Legit, "errors: %v", val.Errors)
			assert.Empty(t, val.Errors)
			assert.Equal(t, in.Roll, val.Roll)
			assert.Len(t, val.LedgerBefore, in.Ledger.Len())
		})
	}
}

func TestValidator_FlagsInflatedPayout(t *testing.T) {
	l := NewLedger()
	mustPlace(t, l, models.Area{Kind: models.BetPassLine}, 1000, comeOutCtx(100000))
	in := Input{Roll: models.Roll{Die1: 3, Die2: 4}, Ledger: l,
		Phase: models.PhaseComeOut, Point: models.PointOff}

	out, err := Resolve(in)
	require.NoError(t, err)

	v := NewValidator()
	val := v.Check(in, 42, out.TotalWinnings+500, out.TotalReturned, 1)
	assert.False(t, val.Legit)
	require.Len(t, val.Errors, 1)
	assert.Contains(t, val.Errors[0], "payout mismatch")
	assert.Equal(t, out.TotalWinnings, val.ExpectedPayout)
}

func TestValidator_FlagsMissingStakeReturn(t *testing.T) {
	l := NewLedger()
	mustPlace(t, l, models.Area{Kind: models.BetField}, 500, comeOutCtx(100000))
	in := Input{Roll: models.Roll{Die1: 5, Die2: 6}, Ledger: l,
		Phase: models.PhaseComeOut, Point: models.PointOff}

	out, err := Resolve(in)
	require.NoError(t, err)

	v := NewValidator()
	val := v.Check(in, 42, out.TotalWinnings, 0, 1)
	assert.False(t, val.Legit)
	require.Len(t, val.Errors, 1)
	assert.Contains(t, val.Errors[0], "stake return mismatch")
}

func TestValidator_ToleratesOneCent(t *testing.T) {
	l := NewLedger()
	mustPlace(t, l, models.Area{Kind: models.BetPlace, Number: 6}, 1300, pointCtx(9, 100000))
	in := Input{Roll: models.Roll{Die1: 3, Die2: 3}, Ledger: l,
		Phase: models.PhasePoint, Point: 9}

	out, err := Resolve(in)
	require.NoError(t, err)

	v := NewValidator()
	assert.True(t, v.Check(in, 42, out.TotalWinnings+1, out.TotalReturned, 1).Legit)
	assert.True(t, v.Check(in, 42, out.TotalWinnings-1, out.TotalReturned, 1).Legit)
	assert.False(t, v.Check(in, 42, out.TotalWinnings+2, out.TotalReturned, 1).Legit)
}

func TestValidator_InvalidRoll(t *testing.T) {
	v := NewValidator()
	val := v.Check(Input{
		Roll:   models.Roll{Die1: 7, Die2: 1},
		Ledger: NewLedger(),
		Phase:  models.PhaseComeOut,
		Point:  models.PointOff,
	}, 42, 0, 0, 1)
	assert.False(t, val.Legit)
	require.Len(t, val.Errors, 1)
}

func TestValidator_Idempotent(t *testing.T) {
	l := NewLedger()
	mustPlace(t, l, models.Area{Kind: models.BetPassLine}, 1000, comeOutCtx(100000))
	mustPlace(t, l, models.Area{Kind: models.BetHorn}, 400, comeOutCtx(100000))
	in := Input{Roll: models.Roll{Die1: 1, Die2: 2}, Ledger: l,
		Phase: models.PhaseComeOut, Point: models.PointOff}

	v := NewValidator()
	a := v.Check(in, 42, 1200, 400, 9)
	b := v.Check(in, 42, 1200, 400, 9)

	assert.Equal(t, a.ExpectedPayout, b.ExpectedPayout)
	assert.Equal(t, a.ExpectedReturn, b.ExpectedReturn)
	assert.Equal(t, a.Legit, b.Legit)
	assert.Equal(t, a.Errors, b.Errors)
	assert.NotEqual(t, a.ID, b.ID)
}

// Randomized cross-check: whatever the resolver pays over arbitrary bet
// sets and dice, the independent recomputation agrees within tolerance.
func TestValidator_RandomizedAgreement(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	v := NewValidator()
	areas := []models.Area{
		{Kind: models.BetPassLine},
		{Kind: models.BetField},
		{Kind: models.BetCome},
		{Kind: models.BetPlace, Number: 5},
		{Kind: models.BetPlace, Number: 8},
		{Kind: models.BetBuy, Number: 10},
		{Kind: models.BetHard, Number: 6},
		{Kind: models.BetAnyCraps},
		{Kind: models.BetTwelve},
		{Kind: models.BetHorn},
		{Kind: models.BetCE},
		{Kind: models.BetSmall},
		{Kind: models.BetAll},
	}

	for trial := 0; trial < 300; trial++ {
		ledger := NewLedger()
		phase, point := models.PhaseComeOut, models.PointOff

		for step := 0; step < 15; step++ {
			area := areas[rng.Intn(len(areas))]
			amount := int64(rng.Intn(9999) + 1)
			pc := PlacementContext{Phase: phase, Point: point, Balance: 1 << 40}
			_, _ = ledger.Place(area, amount, pc)

			in := Input{
				Roll:             models.Roll{Die1: rng.Intn(6) + 1, Die2: rng.Intn(6) + 1},
				Ledger:           ledger,
				Phase:            phase,
				Point:            point,
				BonusBetsWorking: rng.Intn(2) == 0,
			}
			out, err := Resolve(in)
			require.NoError(t, err)

			val := v.Check(in, 42, out.TotalWinnings, out.TotalReturned, uint64(step))
			require.True(t, val.Legit, "trial %d step %d roll %s: %v",
				trial, step, in.Roll, val.Errors)

			ledger = LedgerFromBets(out.BetsRetained)
			phase, point = out.Phase, out.Point
		}
	}
}
