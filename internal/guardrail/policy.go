// Package guardrail implements the dynamic spending policy: a target
// withdrawal rate is fixed at retirement, and each year the rate
// actually drawn from the portfolio is compared against a band around
// it. A rate outside the band triggers a one-step correction; inside
// the band spending simply tracks inflation.
package guardrail

import (
	"github.com/shopspring/decimal"

	"github.com/wealthpath/retiresim/internal/domain"
)

var (
	one = decimal.NewFromInt(1)

	// maxAnnualStep caps any single-year correction so a deep drawdown
	// cannot halve a retiree's lifestyle in one step.
	maxAnnualStep = decimal.NewFromFloat(0.10)
)

// Policy evaluates the guardrails for one scenario. It is memoryless
// across years: each evaluation depends only on the current year's
// observations and the rate fixed at construction.
type Policy struct {
	initialRate decimal.Decimal
	ceiling     decimal.Decimal // initialRate * (1 + band), breach cuts
	floor       decimal.Decimal // initialRate * (1 - band), breach raises
	step        decimal.Decimal
}

// NewPolicy fixes the target withdrawal rate from the first retirement
// year's net portfolio withdrawal and the portfolio balance entering
// it. A zero withdrawal or portfolio yields an inert policy that only
// applies inflation.
func NewPolicy(params domain.GuardrailParams, initialWithdrawal, initialAssets decimal.Decimal) *Policy {
	p := &Policy{step: params.StepPct}
	if p.step.GreaterThan(maxAnnualStep) {
		p.step = maxAnnualStep
	}
	if initialAssets.IsPositive() && initialWithdrawal.IsPositive() {
		p.initialRate = initialWithdrawal.Div(initialAssets)
		p.ceiling = p.initialRate.Mul(one.Add(params.BandPct))
		p.floor = p.initialRate.Mul(one.Sub(params.BandPct))
	}
	return p
}

// InitialRate returns the target withdrawal rate, zero for inert policies.
func (p *Policy) InitialRate() decimal.Decimal { return p.initialRate }

// Evaluate returns next year's spending from this year's observations.
// The observed rate is netWithdrawal over totalAssets: what actually
// left the portfolio, not the spending target, so guaranteed income
// that covers spending keeps the rate low. Above the ceiling the lower
// guardrail cuts spending one step and skips the inflation raise;
// below the floor the upper guardrail adds one step on top of
// inflation, unless the inflation raise alone brings the rate back
// inside the band; otherwise spending tracks inflation.
func (p *Policy) Evaluate(currentSpending, netWithdrawal, totalAssets, inflation decimal.Decimal) (decimal.Decimal, domain.GuardrailAction) {
	inflated := currentSpending.Mul(one.Add(inflation))
	if p.initialRate.IsZero() || totalAssets.LessThanOrEqual(decimal.Zero) {
		// Depletion is the runner's concern, not the policy's.
		return inflated, domain.GuardrailNone
	}
	if netWithdrawal.IsNegative() {
		netWithdrawal = decimal.Zero
	}
	rate := netWithdrawal.Div(totalAssets)
	switch {
	case rate.GreaterThan(p.ceiling):
		return currentSpending.Mul(one.Sub(p.step)), domain.GuardrailLower
	case rate.LessThan(p.floor):
		inflatedRate := netWithdrawal.Mul(one.Add(inflation)).Div(totalAssets)
		if inflatedRate.GreaterThanOrEqual(p.floor) {
			return inflated, domain.GuardrailNone
		}
		return inflated.Mul(one.Add(p.step)), domain.GuardrailUpper
	default:
		return inflated, domain.GuardrailNone
	}
}
