package benefits

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClaimAgeFactor(t *testing.T) {
	// 60 months early against FRA 67: 36 at 5/9% plus 24 at 5/12%.
	f := ClaimAgeFactor(62, 67)
	assert.InDelta(t, 0.70, f.InexactFloat64(), 1e-9)

	// Delayed to 70: 36 months at 2/3%.
	f = ClaimAgeFactor(70, 67)
	assert.InDelta(t, 1.24, f.InexactFloat64(), 1e-9)

	assert.True(t, ClaimAgeFactor(67, 67).Equal(decimal.NewFromInt(1)))

	// Out-of-window ages clamp to the statutory bounds.
	assert.True(t, ClaimAgeFactor(58, 67).Equal(ClaimAgeFactor(62, 67)))
	assert.True(t, ClaimAgeFactor(75, 67).Equal(ClaimAgeFactor(70, 67)))
}

func TestClaimAgeFactorMonotonic(t *testing.T) {
	prev := decimal.Zero
	for age := 62; age <= 70; age++ {
		f := ClaimAgeFactor(age, 67)
		assert.True(t, f.GreaterThan(prev), "factor must rise with claim age, age %d", age)
		prev = f
	}
}

func TestBenefitAtClaimAgeCap(t *testing.T) {
	pia := decimal.NewFromInt(5000)
	maxMonthly := decimal.NewFromInt(5108)

	// 5000 * 1.24 = 6200, capped at the statutory maximum.
	b := BenefitAtClaimAge(70, 67, pia, maxMonthly)
	assert.True(t, b.Equal(maxMonthly), "got %s", b)

	// No cap when zero.
	b = BenefitAtClaimAge(70, 67, pia, decimal.Zero)
	assert.True(t, b.Equal(decimal.NewFromInt(6200)), "got %s", b)
}

func TestLifetimeNPV(t *testing.T) {
	monthly := decimal.NewFromInt(1000)

	// No discounting, no COLA: NPV is just months times benefit.
	npv := LifetimeNPV(67, 70, monthly, decimal.Zero, decimal.Zero)
	assert.True(t, npv.Equal(decimal.NewFromInt(36000)), "got %s", npv)

	// Discounting reduces it; COLA raises it.
	discounted := LifetimeNPV(67, 70, monthly, decimal.NewFromFloat(0.03), decimal.Zero)
	assert.True(t, discounted.LessThan(npv))
	cola := LifetimeNPV(67, 70, monthly, decimal.Zero, decimal.NewFromFloat(0.02))
	assert.True(t, cola.GreaterThan(npv))

	assert.True(t, LifetimeNPV(70, 70, monthly, decimal.Zero, decimal.Zero).IsZero())
}

func TestBreakEvenAge(t *testing.T) {
	pia := decimal.NewFromInt(1000)

	// Undiscounted: 62 pays 700/mo from 62, 70 pays 1240/mo from 70.
	// Cumulative payouts cross between 80 and 81.
	age := BreakEvenAge(62, 70, 67, 95, pia, decimal.Zero, decimal.Zero)
	assert.Equal(t, 81, age)

	// A short life expectancy never breaks even.
	age = BreakEvenAge(62, 70, 67, 75, pia, decimal.Zero, decimal.Zero)
	assert.Equal(t, 0, age)
}

func TestRMDDivisor(t *testing.T) {
	assert.True(t, RMDDivisor(71).IsZero())
	assert.True(t, RMDDivisor(72).Equal(decimal.NewFromFloat(27.4)))
	assert.True(t, RMDDivisor(75).Equal(decimal.NewFromFloat(24.6)))
	assert.True(t, RMDDivisor(120).Equal(decimal.NewFromFloat(2.0)))
	assert.True(t, RMDDivisor(130).Equal(decimal.NewFromFloat(2.0)))
}

func TestRequiredMinimumDistribution(t *testing.T) {
	rmd := RequiredMinimumDistribution(75, decimal.NewFromInt(1_000_000))
	assert.InDelta(t, 1_000_000/24.6, rmd.InexactFloat64(), 0.01)

	assert.True(t, RequiredMinimumDistribution(70, decimal.NewFromInt(1_000_000)).IsZero())
	assert.True(t, RequiredMinimumDistribution(80, decimal.Zero).IsZero())
}
