package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FilingStatus identifies the federal filing status used for bracket and
// threshold lookups.
type FilingStatus string

const (
	FilingSingle         FilingStatus = "single"
	FilingMarriedJointly FilingStatus = "married_filing_jointly"
)

// LTCInsuranceKind identifies the long-term-care insurance arrangement.
type LTCInsuranceKind string

const (
	LTCInsuranceNone        LTCInsuranceKind = "none"
	LTCInsuranceTraditional LTCInsuranceKind = "traditional"
	LTCInsuranceHybrid      LTCInsuranceKind = "hybrid"
)

// SocialSecurityParams describes one person's Social Security benefit.
// MonthlyPIA is the monthly benefit payable at FullRetirementAge.
type SocialSecurityParams struct {
	MonthlyPIA        decimal.Decimal `yaml:"monthly_pia" json:"monthlyPIA"`
	FullRetirementAge int             `yaml:"full_retirement_age" json:"fullRetirementAge"`
	ClaimAge          int             `yaml:"claim_age" json:"claimAge"`
}

// PensionParams describes a defined-benefit pension income stream.
type PensionParams struct {
	MonthlyBenefit decimal.Decimal `yaml:"monthly_benefit" json:"monthlyBenefit"`
	StartAge       int             `yaml:"start_age" json:"startAge"`
	COLARate       decimal.Decimal `yaml:"cola_rate" json:"colaRate"`
}

// PartTimeParams describes part-time earned income during early retirement.
// EndAge is inclusive; income stops the year after.
type PartTimeParams struct {
	AnnualIncome decimal.Decimal `yaml:"annual_income" json:"annualIncome"`
	StartAge     int             `yaml:"start_age" json:"startAge"`
	EndAge       int             `yaml:"end_age" json:"endAge"`
}

// ExpenseParams describes annual spending, split so healthcare can inflate
// at its own rate.
type ExpenseParams struct {
	AnnualBase          decimal.Decimal `yaml:"annual_base" json:"annualBase"`
	BaseInflation       decimal.Decimal `yaml:"base_inflation" json:"baseInflation"`
	AnnualHealthcare    decimal.Decimal `yaml:"annual_healthcare" json:"annualHealthcare"`
	HealthcareInflation decimal.Decimal `yaml:"healthcare_inflation" json:"healthcareInflation"`
}

// AssetClassAssumption holds the expected compound growth rate and the
// annualized volatility for one asset class.
type AssetClassAssumption struct {
	CAGR       decimal.Decimal `yaml:"cagr" json:"cagr"`
	Volatility decimal.Decimal `yaml:"volatility" json:"volatility"`
}

// MarketAssumptions holds per-class return expectations and the target
// allocation. Allocations must sum to 1.
type MarketAssumptions struct {
	Stocks AssetClassAssumption `yaml:"stocks" json:"stocks"`
	Bonds  AssetClassAssumption `yaml:"bonds" json:"bonds"`
	Cash   AssetClassAssumption `yaml:"cash" json:"cash"`

	StockAllocation decimal.Decimal `yaml:"stock_allocation" json:"stockAllocation"`
	BondAllocation  decimal.Decimal `yaml:"bond_allocation" json:"bondAllocation"`
	CashAllocation  decimal.Decimal `yaml:"cash_allocation" json:"cashAllocation"`

	EnableRegimeSwitching bool `yaml:"enable_regime_switching" json:"enableRegimeSwitching"`
}

// LTCParams configures the stochastic long-term-care overlay for the
// household. The event is drawn once per scenario, per spouse.
type LTCParams struct {
	Enabled             bool             `yaml:"enabled" json:"enabled"`
	LifetimeProbability decimal.Decimal  `yaml:"lifetime_probability" json:"lifetimeProbability"`
	OnsetAgeMin         int              `yaml:"onset_age_min" json:"onsetAgeMin"`
	OnsetAgeMax         int              `yaml:"onset_age_max" json:"onsetAgeMax"`
	MeanDurationYears   decimal.Decimal  `yaml:"mean_duration_years" json:"meanDurationYears"`
	MaxDurationYears    int              `yaml:"max_duration_years" json:"maxDurationYears"`
	AnnualCost          decimal.Decimal  `yaml:"annual_cost" json:"annualCost"`
	CostInflation       decimal.Decimal  `yaml:"cost_inflation" json:"costInflation"`
	Insurance           LTCInsuranceKind `yaml:"insurance" json:"insurance"`
	DailyBenefit        decimal.Decimal  `yaml:"daily_benefit" json:"dailyBenefit"`
	CoverageDays        int              `yaml:"coverage_days" json:"coverageDays"`
}

// GuardrailParams configures the dynamic spending policy. Both knobs are
// configuration rather than constants because published descriptions of
// the policy disagree on the exact band.
type GuardrailParams struct {
	BandPct decimal.Decimal `yaml:"band_pct" json:"bandPct"`
	StepPct decimal.Decimal `yaml:"step_pct" json:"stepPct"`
}

// ScenarioParams is the immutable input to a simulation run. Construct it
// through config parsing or a literal and call Validate before use; the
// simulation core assumes a validated value.
type ScenarioParams struct {
	CurrentAge           int `yaml:"current_age" json:"currentAge"`
	SpouseCurrentAge     int `yaml:"spouse_current_age" json:"spouseCurrentAge"` // 0 when single
	RetirementAge        int `yaml:"retirement_age" json:"retirementAge"`
	LifeExpectancy       int `yaml:"life_expectancy" json:"lifeExpectancy"`
	SpouseLifeExpectancy int `yaml:"spouse_life_expectancy" json:"spouseLifeExpectancy"`

	FilingStatus FilingStatus `yaml:"filing_status" json:"filingStatus"`
	State        string       `yaml:"state" json:"state"`

	InitialBuckets   AssetBuckets    `yaml:"initial_buckets" json:"initialBuckets"`
	TaxableCostBasis decimal.Decimal `yaml:"taxable_cost_basis" json:"taxableCostBasis"`
	AnnualSavings    decimal.Decimal `yaml:"annual_savings" json:"annualSavings"`

	SocialSecurity       SocialSecurityParams  `yaml:"social_security" json:"socialSecurity"`
	SpouseSocialSecurity *SocialSecurityParams `yaml:"spouse_social_security,omitempty" json:"spouseSocialSecurity,omitempty"`
	Pension              *PensionParams        `yaml:"pension,omitempty" json:"pension,omitempty"`
	PartTime             *PartTimeParams       `yaml:"part_time,omitempty" json:"partTime,omitempty"`

	Expenses  ExpenseParams     `yaml:"expenses" json:"expenses"`
	Market    MarketAssumptions `yaml:"market" json:"market"`
	LTC       LTCParams         `yaml:"ltc" json:"ltc"`
	Guardrail GuardrailParams   `yaml:"guardrail" json:"guardrail"`

	GeneralInflation decimal.Decimal `yaml:"general_inflation" json:"generalInflation"`
	LegacyGoal       decimal.Decimal `yaml:"legacy_goal" json:"legacyGoal"`
}

// HasSpouse reports whether the scenario models a couple.
func (p *ScenarioParams) HasSpouse() bool { return p.SpouseCurrentAge > 0 }

// TerminalAge is the later of the two life expectancies; the simulation
// runs through this age.
func (p *ScenarioParams) TerminalAge() int {
	if p.HasSpouse() {
		// Spouse ages are tracked relative to the primary person's age.
		spouseTerminal := p.SpouseLifeExpectancy - p.SpouseCurrentAge + p.CurrentAge
		if spouseTerminal > p.LifeExpectancy {
			return spouseTerminal
		}
	}
	return p.LifeExpectancy
}

// SpouseAgeAt returns the spouse's age when the primary person is age, or
// 0 for single households.
func (p *ScenarioParams) SpouseAgeAt(age int) int {
	if !p.HasSpouse() {
		return 0
	}
	return p.SpouseCurrentAge + (age - p.CurrentAge)
}

// Validate checks the invariants the simulation core depends on. It
// returns a *ValidationError naming the first offending field.
func (p *ScenarioParams) Validate() error {
	if p.CurrentAge <= 0 || p.CurrentAge > 110 {
		return &ValidationError{Field: "current_age", Message: "must be between 1 and 110"}
	}
	if p.RetirementAge < p.CurrentAge {
		return &ValidationError{Field: "retirement_age", Message: "must be at or after current age"}
	}
	if p.LifeExpectancy <= p.RetirementAge {
		return &ValidationError{Field: "life_expectancy", Message: "must be after retirement age"}
	}
	if p.HasSpouse() && p.SpouseLifeExpectancy <= p.SpouseCurrentAge {
		return &ValidationError{Field: "spouse_life_expectancy", Message: "must be after spouse current age"}
	}
	if p.FilingStatus != FilingSingle && p.FilingStatus != FilingMarriedJointly {
		return &ValidationError{Field: "filing_status", Message: "must be 'single' or 'married_filing_jointly'"}
	}
	if err := p.InitialBuckets.Validate(); err != nil {
		return err
	}
	if p.TaxableCostBasis.IsNegative() {
		return &ValidationError{Field: "taxable_cost_basis", Message: "cannot be negative"}
	}
	if p.TaxableCostBasis.GreaterThan(p.InitialBuckets.CapitalGains) {
		return &ValidationError{Field: "taxable_cost_basis", Message: "cannot exceed capital-gains bucket balance"}
	}
	if p.AnnualSavings.IsNegative() {
		return &ValidationError{Field: "annual_savings", Message: "cannot be negative"}
	}
	if err := validateSocialSecurity("social_security", &p.SocialSecurity); err != nil {
		return err
	}
	if p.SpouseSocialSecurity != nil {
		if err := validateSocialSecurity("spouse_social_security", p.SpouseSocialSecurity); err != nil {
			return err
		}
	}
	if p.PartTime != nil && p.PartTime.EndAge < p.PartTime.StartAge {
		return &ValidationError{Field: "part_time.end_age", Message: "must be at or after start age"}
	}
	if p.Expenses.AnnualBase.IsNegative() || p.Expenses.AnnualHealthcare.IsNegative() {
		return &ValidationError{Field: "expenses", Message: "expense amounts cannot be negative"}
	}
	if err := validateMarket(&p.Market); err != nil {
		return err
	}
	if p.LTC.Enabled {
		if p.LTC.LifetimeProbability.IsNegative() || p.LTC.LifetimeProbability.GreaterThan(decimal.NewFromInt(1)) {
			return &ValidationError{Field: "ltc.lifetime_probability", Message: "must be between 0 and 1"}
		}
		if p.LTC.OnsetAgeMax < p.LTC.OnsetAgeMin {
			return &ValidationError{Field: "ltc.onset_age_max", Message: "must be at or after onset_age_min"}
		}
	}
	if p.Guardrail.BandPct.IsNegative() || p.Guardrail.StepPct.IsNegative() {
		return &ValidationError{Field: "guardrail", Message: "band and step percentages cannot be negative"}
	}
	if p.LegacyGoal.IsNegative() {
		return &ValidationError{Field: "legacy_goal", Message: "cannot be negative"}
	}
	return nil
}

func validateSocialSecurity(field string, ss *SocialSecurityParams) error {
	if ss.MonthlyPIA.IsNegative() {
		return &ValidationError{Field: field + ".monthly_pia", Message: "cannot be negative"}
	}
	if ss.MonthlyPIA.IsPositive() {
		if ss.ClaimAge < 62 || ss.ClaimAge > 70 {
			return &ValidationError{Field: field + ".claim_age", Message: "must be between 62 and 70"}
		}
		if ss.FullRetirementAge < 65 || ss.FullRetirementAge > 68 {
			return &ValidationError{Field: field + ".full_retirement_age", Message: "must be between 65 and 68"}
		}
	}
	return nil
}

func validateMarket(m *MarketAssumptions) error {
	for _, c := range []struct {
		field string
		a     AssetClassAssumption
	}{
		{"market.stocks", m.Stocks},
		{"market.bonds", m.Bonds},
		{"market.cash", m.Cash},
	} {
		if c.a.Volatility.IsNegative() {
			return &ValidationError{Field: c.field + ".volatility", Message: "cannot be negative"}
		}
		if c.a.CAGR.LessThan(decimal.NewFromInt(-1)) {
			return &ValidationError{Field: c.field + ".cagr", Message: "cannot be below -100%"}
		}
	}
	allocSum := m.StockAllocation.Add(m.BondAllocation).Add(m.CashAllocation)
	if allocSum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(decimal.NewFromFloat(0.001)) {
		return &ValidationError{Field: "market", Message: "allocations must sum to 1"}
	}
	return nil
}

// Normalize fills defaulted knobs so downstream code never branches on
// zero values: FRA 67, guardrail band 20% / step 10%, 2.5% general
// inflation when unset.
func (p *ScenarioParams) Normalize() {
	if p.SocialSecurity.FullRetirementAge == 0 {
		p.SocialSecurity.FullRetirementAge = 67
	}
	if p.SpouseSocialSecurity != nil && p.SpouseSocialSecurity.FullRetirementAge == 0 {
		p.SpouseSocialSecurity.FullRetirementAge = 67
	}
	if p.Guardrail.BandPct.IsZero() {
		p.Guardrail.BandPct = decimal.NewFromFloat(0.20)
	}
	if p.Guardrail.StepPct.IsZero() {
		p.Guardrail.StepPct = decimal.NewFromFloat(0.10)
	}
	if p.GeneralInflation.IsZero() {
		p.GeneralInflation = decimal.NewFromFloat(0.025)
	}
	if p.Expenses.BaseInflation.IsZero() {
		p.Expenses.BaseInflation = p.GeneralInflation
	}
	if p.Expenses.HealthcareInflation.IsZero() {
		p.Expenses.HealthcareInflation = p.GeneralInflation.Add(decimal.NewFromFloat(0.02))
	}
	if p.LTC.Enabled && p.LTC.CostInflation.IsZero() {
		p.LTC.CostInflation = p.Expenses.HealthcareInflation
	}
}

// ContentHash returns a stable hex digest of the params, suitable as a
// cache key for external persistence sinks. Two equal params values hash
// identically.
func (p *ScenarioParams) ContentHash() string {
	raw, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
