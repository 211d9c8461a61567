package benefits

import "github.com/shopspring/decimal"

// Claiming-age adjustment factors follow SSA rules: benefits claimed
// early are reduced 5/9 of 1% per month for the first 36 months before
// FRA and 5/12 of 1% per month beyond that; delayed claiming earns 2/3
// of 1% per month up to age 70.

var (
	earlyRateFirst36 = decimal.NewFromInt(5).Div(decimal.NewFromInt(900))  // 5/9 of 1%
	earlyRateBeyond  = decimal.NewFromInt(5).Div(decimal.NewFromInt(1200)) // 5/12 of 1%
	delayedRate      = decimal.NewFromInt(2).Div(decimal.NewFromInt(300))  // 2/3 of 1%
)

// ClaimAgeFactor returns the multiplier applied to PIA for a benefit
// claimed at claimAge given fullRetirementAge. Ages are clamped to the
// statutory [62, 70] window.
func ClaimAgeFactor(claimAge, fullRetirementAge int) decimal.Decimal {
	if claimAge < 62 {
		claimAge = 62
	}
	if claimAge > 70 {
		claimAge = 70
	}
	one := decimal.NewFromInt(1)
	months := (claimAge - fullRetirementAge) * 12
	switch {
	case months < 0:
		early := -months
		first := early
		if first > 36 {
			first = 36
		}
		beyond := early - first
		reduction := earlyRateFirst36.Mul(decimal.NewFromInt(int64(first))).
			Add(earlyRateBeyond.Mul(decimal.NewFromInt(int64(beyond))))
		return one.Sub(reduction)
	case months > 0:
		return one.Add(delayedRate.Mul(decimal.NewFromInt(int64(months))))
	default:
		return one
	}
}

// BenefitAtClaimAge converts a PIA into the monthly benefit payable when
// claimed at claimAge, capped by maxMonthly (the year's maximum benefit).
// A zero maxMonthly means no cap.
func BenefitAtClaimAge(claimAge, fullRetirementAge int, pia, maxMonthly decimal.Decimal) decimal.Decimal {
	benefit := pia.Mul(ClaimAgeFactor(claimAge, fullRetirementAge))
	if maxMonthly.IsPositive() && benefit.GreaterThan(maxMonthly) {
		benefit = maxMonthly
	}
	return benefit
}

// LifetimeNPV integrates the COLA-adjusted, discounted monthly benefit
// from claimAge through lifeExpectancy. Claiming strategies are ranked by
// this value, not raw lifetime total, so that delayed claiming is not
// mechanically favored.
func LifetimeNPV(claimAge, lifeExpectancy int, monthlyBenefit, discountRate, colaRate decimal.Decimal) decimal.Decimal {
	if lifeExpectancy <= claimAge || monthlyBenefit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	one := decimal.NewFromInt(1)
	twelve := decimal.NewFromInt(12)
	monthlyDiscount := one.Add(discountRate.Div(twelve))
	npv := decimal.Zero
	benefit := monthlyBenefit
	discount := one
	totalMonths := (lifeExpectancy - claimAge) * 12
	for m := 0; m < totalMonths; m++ {
		if m > 0 && m%12 == 0 {
			benefit = benefit.Mul(one.Add(colaRate))
		}
		discount = discount.Mul(monthlyDiscount)
		npv = npv.Add(benefit.Div(discount))
	}
	return npv
}

// BreakEvenAge finds the age at which cumulative discounted benefits from
// claiming at lateAge overtake claiming at earlyAge, or 0 if they never
// do before lifeExpectancy.
func BreakEvenAge(earlyAge, lateAge, fullRetirementAge, lifeExpectancy int, pia, discountRate, colaRate decimal.Decimal) int {
	earlyBenefit := pia.Mul(ClaimAgeFactor(earlyAge, fullRetirementAge))
	lateBenefit := pia.Mul(ClaimAgeFactor(lateAge, fullRetirementAge))
	for age := lateAge + 1; age <= lifeExpectancy; age++ {
		earlyNPV := LifetimeNPV(earlyAge, age, earlyBenefit, discountRate, colaRate)
		lateNPV := LifetimeNPV(lateAge, age, lateBenefit, discountRate, colaRate)
		if lateNPV.GreaterThanOrEqual(earlyNPV) {
			return age
		}
	}
	return 0
}
