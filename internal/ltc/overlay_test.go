package ltc

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthpath/retiresim/internal/domain"
)

func certainParams() domain.LTCParams {
	return domain.LTCParams{
		Enabled:             true,
		LifetimeProbability: decimal.NewFromInt(1),
		OnsetAgeMin:         80,
		OnsetAgeMax:         80,
		MeanDurationYears:   decimal.NewFromInt(10),
		MaxDurationYears:    3,
		AnnualCost:          decimal.NewFromInt(100000),
		Insurance:           domain.LTCInsuranceNone,
	}
}

func TestDisabledOverlayCostsNothing(t *testing.T) {
	o := NewOverlay(domain.LTCParams{}, rand.NewPCG(1, 2), false)
	assert.True(t, o.CostForYear(85, 0, 10).IsZero())
	assert.False(t, o.PrimaryEvent().Occurs)
}

func TestCertainEventBounds(t *testing.T) {
	o := NewOverlay(certainParams(), rand.NewPCG(1, 2), false)
	ev := o.PrimaryEvent()
	require.True(t, ev.Occurs)
	assert.Equal(t, 80, ev.OnsetAge)
	assert.GreaterOrEqual(t, ev.DurationYears, 1)
	assert.LessOrEqual(t, ev.DurationYears, 3)
}

func TestZeroProbabilityNeverOccurs(t *testing.T) {
	p := certainParams()
	p.LifetimeProbability = decimal.Zero
	for seed := uint64(0); seed < 20; seed++ {
		o := NewOverlay(p, rand.NewPCG(seed, 0), true)
		assert.False(t, o.PrimaryEvent().Occurs)
		assert.False(t, o.SpouseEvent().Occurs)
	}
}

func TestSeedDeterminism(t *testing.T) {
	p := certainParams()
	p.OnsetAgeMax = 90
	a := NewOverlay(p, rand.NewPCG(7, 9), true)
	b := NewOverlay(p, rand.NewPCG(7, 9), true)
	assert.Equal(t, a.PrimaryEvent(), b.PrimaryEvent())
	assert.Equal(t, a.SpouseEvent(), b.SpouseEvent())
}

func TestCostOnlyDuringEpisode(t *testing.T) {
	o := NewOverlay(certainParams(), rand.NewPCG(1, 2), false)
	dur := o.PrimaryEvent().DurationYears

	assert.True(t, o.CostForYear(79, 0, 0).IsZero())
	assert.True(t, o.CostForYear(80, 0, 0).Equal(decimal.NewFromInt(100000)))
	assert.True(t, o.CostForYear(80+dur, 0, 0).IsZero())
}

func TestCostInflation(t *testing.T) {
	p := certainParams()
	p.CostInflation = decimal.NewFromFloat(0.05)
	o := NewOverlay(p, rand.NewPCG(1, 2), false)

	cost := o.CostForYear(80, 0, 10)
	want := decimal.NewFromInt(100000).Mul(decimal.NewFromFloat(1.05).Pow(decimal.NewFromInt(10)))
	assert.True(t, cost.Equal(want), "got %s want %s", cost, want)
}

func TestTraditionalInsuranceOffset(t *testing.T) {
	p := certainParams()
	p.Insurance = domain.LTCInsuranceTraditional
	p.DailyBenefit = decimal.NewFromInt(200)
	p.CoverageDays = 365
	o := NewOverlay(p, rand.NewPCG(1, 2), false)

	// Year one: 200/day for 365 days reimburses 73000 of the 100000.
	cost := o.CostForYear(80, 0, 0)
	assert.True(t, cost.Equal(decimal.NewFromInt(27000)), "got %s", cost)

	// The pool is exhausted; any further care year pays full freight.
	if o.PrimaryEvent().DurationYears > 1 {
		cost = o.CostForYear(81, 0, 0)
		assert.True(t, cost.Equal(decimal.NewFromInt(100000)), "got %s", cost)
	}
}

func TestHybridInsurancePaysHalf(t *testing.T) {
	p := certainParams()
	p.Insurance = domain.LTCInsuranceHybrid
	p.DailyBenefit = decimal.NewFromInt(200)
	p.CoverageDays = 365
	o := NewOverlay(p, rand.NewPCG(1, 2), false)

	cost := o.CostForYear(80, 0, 0)
	assert.True(t, cost.Equal(decimal.NewFromInt(63500)), "got %s", cost)
}

func TestSpouseEpisodeIndependent(t *testing.T) {
	p := certainParams()
	o := NewOverlay(p, rand.NewPCG(11, 3), true)
	require.True(t, o.PrimaryEvent().Occurs)
	require.True(t, o.SpouseEvent().Occurs)

	// Both in care the same year costs double.
	cost := o.CostForYear(80, 80, 0)
	assert.True(t, cost.Equal(decimal.NewFromInt(200000)), "got %s", cost)
}
