package guardrail

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wealthpath/retiresim/internal/domain"
)

func testParams() domain.GuardrailParams {
	return domain.GuardrailParams{
		BandPct: decimal.NewFromFloat(0.20),
		StepPct: decimal.NewFromFloat(0.10),
	}
}

func TestInitialRate(t *testing.T) {
	p := NewPolicy(testParams(), decimal.NewFromInt(40000), decimal.NewFromInt(1_000_000))
	assert.InDelta(t, 0.04, p.InitialRate().InexactFloat64(), 1e-9)
}

func TestLowerGuardrailCutsSpending(t *testing.T) {
	p := NewPolicy(testParams(), decimal.NewFromInt(40000), decimal.NewFromInt(1_000_000))

	// Portfolio halved: the withdrawal rate 8% breaches the 4.8% ceiling.
	next, action := p.Evaluate(decimal.NewFromInt(40000), decimal.NewFromInt(40000),
		decimal.NewFromInt(500000), decimal.NewFromFloat(0.03))
	assert.Equal(t, domain.GuardrailLower, action)
	assert.True(t, next.Equal(decimal.NewFromInt(36000)), "got %s", next)
}

func TestUpperGuardrailRaisesSpending(t *testing.T) {
	p := NewPolicy(testParams(), decimal.NewFromInt(40000), decimal.NewFromInt(1_000_000))

	// Portfolio doubled: 2% is far below the 3.2% floor, and inflation
	// alone cannot close the gap, so spending gets the step on top of
	// the inflation raise.
	next, action := p.Evaluate(decimal.NewFromInt(40000), decimal.NewFromInt(40000),
		decimal.NewFromInt(2_000_000), decimal.NewFromFloat(0.03))
	assert.Equal(t, domain.GuardrailUpper, action)
	want := decimal.NewFromInt(40000).
		Mul(decimal.NewFromFloat(1.03)).
		Mul(decimal.NewFromFloat(1.10))
	assert.True(t, next.Equal(want), "got %s want %s", next, want)
}

func TestInflationAloneRestoresBand(t *testing.T) {
	p := NewPolicy(testParams(), decimal.NewFromInt(40000), decimal.NewFromInt(1_000_000))

	// A 3.15% rate sits just below the 3.2% floor, but the inflated
	// withdrawal lands at 3.2445%, back inside the band. No step.
	next, action := p.Evaluate(decimal.NewFromInt(31500), decimal.NewFromInt(31500),
		decimal.NewFromInt(1_000_000), decimal.NewFromFloat(0.03))
	assert.Equal(t, domain.GuardrailNone, action)
	assert.True(t, next.Equal(decimal.NewFromInt(32445)), "got %s", next)
}

func TestRateObservesPortfolioWithdrawal(t *testing.T) {
	p := NewPolicy(testParams(), decimal.NewFromInt(40000), decimal.NewFromInt(1_000_000))

	// Guaranteed income now covers most of the spending target: only
	// 10k leaves the portfolio, a 1% rate well below the floor, so the
	// raise fires even though spending itself is unchanged at 4%.
	next, action := p.Evaluate(decimal.NewFromInt(40000), decimal.NewFromInt(10000),
		decimal.NewFromInt(1_000_000), decimal.NewFromFloat(0.03))
	assert.Equal(t, domain.GuardrailUpper, action)
	want := decimal.NewFromInt(40000).
		Mul(decimal.NewFromFloat(1.03)).
		Mul(decimal.NewFromFloat(1.10))
	assert.True(t, next.Equal(want), "got %s want %s", next, want)
}

func TestInsideBandTracksInflation(t *testing.T) {
	p := NewPolicy(testParams(), decimal.NewFromInt(40000), decimal.NewFromInt(1_000_000))

	next, action := p.Evaluate(decimal.NewFromInt(40000), decimal.NewFromInt(40000),
		decimal.NewFromInt(1_000_000), decimal.NewFromFloat(0.03))
	assert.Equal(t, domain.GuardrailNone, action)
	assert.True(t, next.Equal(decimal.NewFromInt(41200)), "got %s", next)
}

func TestStepCappedAtTenPercent(t *testing.T) {
	params := domain.GuardrailParams{
		BandPct: decimal.NewFromFloat(0.20),
		StepPct: decimal.NewFromFloat(0.40),
	}
	p := NewPolicy(params, decimal.NewFromInt(40000), decimal.NewFromInt(1_000_000))

	next, action := p.Evaluate(decimal.NewFromInt(40000), decimal.NewFromInt(40000),
		decimal.NewFromInt(400000), decimal.Zero)
	assert.Equal(t, domain.GuardrailLower, action)
	// A 40% configured step still cuts at most 10% in one year.
	assert.True(t, next.Equal(decimal.NewFromInt(36000)), "got %s", next)
}

func TestMemorylessEvaluation(t *testing.T) {
	p := NewPolicy(testParams(), decimal.NewFromInt(40000), decimal.NewFromInt(1_000_000))

	// A trigger leaves no state behind: the same inputs evaluate
	// identically before and after a breach year.
	first, _ := p.Evaluate(decimal.NewFromInt(40000), decimal.NewFromInt(40000),
		decimal.NewFromInt(1_000_000), decimal.Zero)
	_, _ = p.Evaluate(decimal.NewFromInt(40000), decimal.NewFromInt(40000),
		decimal.NewFromInt(400000), decimal.Zero)
	again, _ := p.Evaluate(decimal.NewFromInt(40000), decimal.NewFromInt(40000),
		decimal.NewFromInt(1_000_000), decimal.Zero)
	assert.True(t, first.Equal(again))
}

func TestInertPolicy(t *testing.T) {
	p := NewPolicy(testParams(), decimal.Zero, decimal.Zero)
	next, action := p.Evaluate(decimal.NewFromInt(40000), decimal.NewFromInt(40000),
		decimal.NewFromInt(500000), decimal.NewFromFloat(0.02))
	assert.Equal(t, domain.GuardrailNone, action)
	assert.True(t, next.Equal(decimal.NewFromInt(40800)))
}

func TestDepletedPortfolioSkipsEvaluation(t *testing.T) {
	p := NewPolicy(testParams(), decimal.NewFromInt(40000), decimal.NewFromInt(1_000_000))
	_, action := p.Evaluate(decimal.NewFromInt(40000), decimal.NewFromInt(40000),
		decimal.Zero, decimal.Zero)
	assert.Equal(t, domain.GuardrailNone, action)
}
