package tax

import (
	"github.com/shopspring/decimal"

	"github.com/wealthpath/retiresim/internal/domain"
)

// Engine maps income to tax owed using the year-indexed tables. All
// methods are pure; the engine holds only the read-only provider and is
// safe to share across concurrent scenarios.
type Engine struct {
	provider Provider
}

// NewEngine creates a tax engine over the given table provider.
func NewEngine(p Provider) *Engine {
	if p == nil {
		p = NewDefaultProvider()
	}
	return &Engine{provider: p}
}

// FederalTax returns the federal income tax on taxableIncome (already net
// of deductions). Negative income owes nothing.
func (e *Engine) FederalTax(taxableIncome decimal.Decimal, fs domain.FilingStatus, year int) decimal.Decimal {
	cfg := e.provider.ConfigFor(year)
	return cfg.Ordinary[fs].TaxOn(taxableIncome)
}

// CapitalGainsTax returns the preferential-rate tax on gains stacked on
// top of ordinaryTaxable: the gains occupy the taxable-income range above
// ordinary income, so a filer with low ordinary income realizes gains in
// the 0% band first.
func (e *Engine) CapitalGainsTax(gains, ordinaryTaxable decimal.Decimal, fs domain.FilingStatus, year int) decimal.Decimal {
	cfg := e.provider.ConfigFor(year)
	return cfg.CapitalGains[fs].StackedTaxOn(ordinaryTaxable, gains)
}

// IRMAASurcharge returns the monthly Part B and Part D surcharges per
// beneficiary for the given MAGI. MAGI follows the statutory 2-year
// lookback; callers pass the MAGI from two years prior. Age gating
// (65+) is the caller's concern.
func (e *Engine) IRMAASurcharge(magi decimal.Decimal, fs domain.FilingStatus, year int) (partB, partD decimal.Decimal) {
	cfg := e.provider.ConfigFor(year)
	for _, tier := range cfg.IRMAA {
		threshold := tier.ThresholdSingle
		if fs == domain.FilingMarriedJointly {
			threshold = tier.ThresholdJoint
		}
		if magi.GreaterThan(threshold) {
			partB = tier.PartBMonthly
			partD = tier.PartDMonthly
		} else {
			break
		}
	}
	return partB, partD
}

// StandardDeduction returns the deduction for the filing status plus the
// additional senior deduction for each person aged 65+.
func (e *Engine) StandardDeduction(fs domain.FilingStatus, seniors int, year int) decimal.Decimal {
	cfg := e.provider.ConfigFor(year)
	ded := cfg.StandardDeduction[fs]
	for i := 0; i < seniors; i++ {
		ded = ded.Add(cfg.SeniorDeduction)
	}
	return ded
}

// OrdinaryBrackets exposes the ordinary schedule so the withdrawal solver
// can run its closed-form gross-up against the real bracket structure.
func (e *Engine) OrdinaryBrackets(fs domain.FilingStatus, year int) BracketTable {
	return e.provider.ConfigFor(year).Ordinary[fs]
}

// CapitalGainsBrackets exposes the preferential-rate schedule.
func (e *Engine) CapitalGainsBrackets(fs domain.FilingStatus, year int) BracketTable {
	return e.provider.ConfigFor(year).CapitalGains[fs]
}

// MaxMonthlyBenefit returns the Social Security benefit cap for year.
func (e *Engine) MaxMonthlyBenefit(year int) decimal.Decimal {
	return e.provider.ConfigFor(year).MaxMonthlyBenefit
}
