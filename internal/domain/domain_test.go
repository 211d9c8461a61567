package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() *ScenarioParams {
	return &ScenarioParams{
		CurrentAge:     60,
		RetirementAge:  65,
		LifeExpectancy: 90,
		FilingStatus:   FilingSingle,
		InitialBuckets: AssetBuckets{
			TaxDeferred:  decimal.NewFromInt(500000),
			CapitalGains: decimal.NewFromInt(200000),
		},
		TaxableCostBasis: decimal.NewFromInt(100000),
		SocialSecurity: SocialSecurityParams{
			MonthlyPIA:        decimal.NewFromInt(2000),
			FullRetirementAge: 67,
			ClaimAge:          67,
		},
		Market: MarketAssumptions{
			Stocks:          AssetClassAssumption{CAGR: decimal.NewFromFloat(0.07), Volatility: decimal.NewFromFloat(0.15)},
			Bonds:           AssetClassAssumption{CAGR: decimal.NewFromFloat(0.04), Volatility: decimal.NewFromFloat(0.05)},
			Cash:            AssetClassAssumption{CAGR: decimal.NewFromFloat(0.02), Volatility: decimal.NewFromFloat(0.01)},
			StockAllocation: decimal.NewFromFloat(0.6),
			BondAllocation:  decimal.NewFromFloat(0.3),
			CashAllocation:  decimal.NewFromFloat(0.1),
		},
	}
}

func TestValidateAcceptsGoodParams(t *testing.T) {
	p := validParams()
	p.Normalize()
	require.NoError(t, p.Validate())
}

func TestValidateNamesOffendingField(t *testing.T) {
	cases := []struct {
		mutate func(*ScenarioParams)
		field  string
	}{
		{func(p *ScenarioParams) { p.RetirementAge = 50 }, "retirement_age"},
		{func(p *ScenarioParams) { p.LifeExpectancy = 64 }, "life_expectancy"},
		{func(p *ScenarioParams) { p.FilingStatus = "widowed" }, "filing_status"},
		{func(p *ScenarioParams) { p.InitialBuckets.TaxFree = decimal.NewFromInt(-1) }, "initial_buckets.tax_free"},
		{func(p *ScenarioParams) { p.TaxableCostBasis = decimal.NewFromInt(300000) }, "taxable_cost_basis"},
		{func(p *ScenarioParams) { p.SocialSecurity.ClaimAge = 75 }, "social_security.claim_age"},
		{func(p *ScenarioParams) { p.Market.StockAllocation = decimal.NewFromFloat(0.9) }, "market"},
		{func(p *ScenarioParams) { p.LegacyGoal = decimal.NewFromInt(-5) }, "legacy_goal"},
	}
	for _, tc := range cases {
		p := validParams()
		p.Normalize()
		tc.mutate(p)
		err := p.Validate()
		require.Error(t, err, "field %s", tc.field)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, tc.field, verr.Field)
	}
}

func TestTerminalAgeCouple(t *testing.T) {
	p := validParams()
	assert.Equal(t, 90, p.TerminalAge())

	p.SpouseCurrentAge = 55
	p.SpouseLifeExpectancy = 95
	// Spouse reaches 95 when the primary person is 100.
	assert.Equal(t, 100, p.TerminalAge())
	assert.Equal(t, 58, p.SpouseAgeAt(63))
}

func TestNormalizeDefaults(t *testing.T) {
	p := validParams()
	p.SocialSecurity.FullRetirementAge = 0
	p.Normalize()

	assert.Equal(t, 67, p.SocialSecurity.FullRetirementAge)
	assert.True(t, p.Guardrail.BandPct.Equal(decimal.NewFromFloat(0.20)))
	assert.True(t, p.Guardrail.StepPct.Equal(decimal.NewFromFloat(0.10)))
	assert.True(t, p.GeneralInflation.Equal(decimal.NewFromFloat(0.025)))
	assert.True(t, p.Expenses.HealthcareInflation.Equal(decimal.NewFromFloat(0.045)))
}

func TestContentHashStable(t *testing.T) {
	a := validParams()
	b := validParams()
	assert.Equal(t, a.ContentHash(), b.ContentHash())

	b.CurrentAge = 61
	assert.NotEqual(t, a.ContentHash(), b.ContentHash())
}

func TestBucketsDrawClampsAtZero(t *testing.T) {
	b := AssetBuckets{CashEquivalents: decimal.NewFromInt(100)}
	taken := b.Draw(BucketCashEquivalents, decimal.NewFromInt(250))
	assert.True(t, taken.Equal(decimal.NewFromInt(100)))
	assert.True(t, b.CashEquivalents.IsZero())

	assert.True(t, b.Draw(BucketCashEquivalents, decimal.NewFromInt(-5)).IsZero())
}

func TestBucketsGrowFloorsAtTotalLoss(t *testing.T) {
	b := AssetBuckets{TaxDeferred: decimal.NewFromInt(1000)}
	b.Grow(decimal.NewFromFloat(-1.5))
	assert.True(t, b.TaxDeferred.IsZero())

	b = AssetBuckets{TaxDeferred: decimal.NewFromInt(1000)}
	b.Grow(decimal.NewFromFloat(0.10))
	assert.True(t, b.TaxDeferred.Equal(decimal.NewFromInt(1100)))
}

func TestContributeSplit(t *testing.T) {
	var b AssetBuckets
	b.Contribute(decimal.NewFromInt(10000))
	assert.True(t, b.TaxDeferred.Equal(decimal.NewFromInt(6000)))
	assert.True(t, b.TaxFree.Equal(decimal.NewFromInt(2000)))
	assert.True(t, b.CapitalGains.Equal(decimal.NewFromInt(1500)))
	assert.True(t, b.CashEquivalents.Equal(decimal.NewFromInt(500)))
	assert.True(t, b.Total().Equal(decimal.NewFromInt(10000)))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "current_age", Message: "must be between 1 and 110"}
	assert.Equal(t, "invalid parameter current_age: must be between 1 and 110", err.Error())
}

func TestPartialEnsembleErrorUnwraps(t *testing.T) {
	cause := assert.AnError
	err := &PartialEnsembleError{Completed: 10, Requested: 100, Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "10 of 100")
}
