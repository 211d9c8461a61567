package tax

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StateRule approximates one state's income tax as a flat rate with
// carve-outs. Most states exempt Social Security; a few exempt
// retirement-account withdrawals entirely.
type StateRule struct {
	Rate                  decimal.Decimal
	TaxesSocialSecurity   bool
	TaxesRetirementIncome bool
}

// stateRules keys effective flat rates by two-letter state code. States
// absent from the map are treated as no-income-tax.
var stateRules = map[string]StateRule{
	"CA": {Rate: decimal.NewFromFloat(0.0700), TaxesRetirementIncome: true},
	"NY": {Rate: decimal.NewFromFloat(0.0550), TaxesRetirementIncome: true},
	"NJ": {Rate: decimal.NewFromFloat(0.0500), TaxesRetirementIncome: true},
	"MA": {Rate: decimal.NewFromFloat(0.0500), TaxesRetirementIncome: true},
	"VA": {Rate: decimal.NewFromFloat(0.0475), TaxesRetirementIncome: true},
	"NC": {Rate: decimal.NewFromFloat(0.0450), TaxesRetirementIncome: true},
	"OH": {Rate: decimal.NewFromFloat(0.0350), TaxesRetirementIncome: true},
	"AZ": {Rate: decimal.NewFromFloat(0.0250), TaxesRetirementIncome: true},
	"CO": {Rate: decimal.NewFromFloat(0.0440), TaxesRetirementIncome: true},
	// PA exempts retirement income: pensions, IRA/401k withdrawals and
	// Social Security are all untaxed; only earned income is reached.
	"PA": {Rate: decimal.NewFromFloat(0.0307), TaxesRetirementIncome: false},
	"IL": {Rate: decimal.NewFromFloat(0.0495), TaxesRetirementIncome: false},
	"MS": {Rate: decimal.NewFromFloat(0.0470), TaxesRetirementIncome: false},
	// MN is one of the few states taxing Social Security benefits.
	"MN": {Rate: decimal.NewFromFloat(0.0680), TaxesRetirementIncome: true, TaxesSocialSecurity: true},
	"VT": {Rate: decimal.NewFromFloat(0.0600), TaxesRetirementIncome: true, TaxesSocialSecurity: true},
	// No-income-tax states listed explicitly for clarity.
	"FL": {}, "TX": {}, "WA": {}, "NV": {}, "TN": {}, "SD": {}, "WY": {}, "AK": {}, "NH": {},
}

// StateIncome decomposes a year's income for state carve-out purposes.
type StateIncome struct {
	Wages            decimal.Decimal // earned income (part-time work)
	RetirementIncome decimal.Decimal // pensions + tax-deferred withdrawals
	SocialSecurity   decimal.Decimal
	CapitalGains     decimal.Decimal
}

// StateTax returns the state income tax for the given state code. Unknown
// states owe nothing.
func (e *Engine) StateTax(income StateIncome, state string) decimal.Decimal {
	rule, ok := stateRules[strings.ToUpper(state)]
	if !ok || rule.Rate.IsZero() {
		return decimal.Zero
	}
	base := income.Wages
	if rule.TaxesRetirementIncome {
		base = base.Add(income.RetirementIncome).Add(income.CapitalGains)
	}
	if rule.TaxesSocialSecurity {
		base = base.Add(income.SocialSecurity)
	}
	return base.Mul(rule.Rate)
}

// StateRate exposes the effective flat rate for the withdrawal solver's
// gross-up; zero for unknown or no-tax states.
func (e *Engine) StateRate(state string, retirementIncome bool) decimal.Decimal {
	rule, ok := stateRules[strings.ToUpper(state)]
	if !ok {
		return decimal.Zero
	}
	if retirementIncome && !rule.TaxesRetirementIncome {
		return decimal.Zero
	}
	return rule.Rate
}
