package tax

import (
	"github.com/shopspring/decimal"

	"github.com/wealthpath/retiresim/internal/domain"
)

// IRMAATier is one step of the Medicare income-related surcharge. The
// surcharge is a step function of MAGI, not marginal: crossing a
// threshold applies the whole tier's monthly amounts per beneficiary.
type IRMAATier struct {
	ThresholdSingle decimal.Decimal
	ThresholdJoint  decimal.Decimal
	PartBMonthly    decimal.Decimal
	PartDMonthly    decimal.Decimal
}

// TaxYearConfig is the versioned constant table for one tax year. Looked
// up, never mutated at runtime; safe to share across concurrent
// scenarios.
type TaxYearConfig struct {
	Year int

	Ordinary     map[domain.FilingStatus]BracketTable
	CapitalGains map[domain.FilingStatus]BracketTable

	StandardDeduction map[domain.FilingStatus]decimal.Decimal
	SeniorDeduction   decimal.Decimal // additional, per person 65+

	IRMAA []IRMAATier

	// MaxMonthlyBenefit caps Social Security benefits regardless of
	// claiming-age credits.
	MaxMonthlyBenefit decimal.Decimal
}

// Provider supplies the constant table for a given year. The core only
// depends on this interface; alternative table sources plug in here.
type Provider interface {
	ConfigFor(year int) TaxYearConfig
}

// StaticProvider serves a single base-year table and extrapolates years
// beyond it by compounding an annual inflation rate onto all thresholds.
// Years before the base year get the base table unchanged.
type StaticProvider struct {
	base      TaxYearConfig
	inflation decimal.Decimal
}

// DefaultThresholdInflation is the compounding rate applied to tax
// thresholds for years beyond the tabulated range.
var DefaultThresholdInflation = decimal.NewFromFloat(0.025)

// NewStaticProvider wraps a base-year table. A zero inflation rate falls
// back to DefaultThresholdInflation.
func NewStaticProvider(base TaxYearConfig, inflation decimal.Decimal) *StaticProvider {
	if inflation.IsZero() {
		inflation = DefaultThresholdInflation
	}
	return &StaticProvider{base: base, inflation: inflation}
}

// NewDefaultProvider returns a provider seeded with the 2025 tables.
func NewDefaultProvider() *StaticProvider {
	return NewStaticProvider(Year2025(), DefaultThresholdInflation)
}

// ConfigFor returns the table for year, extrapolated when needed. The
// result is freshly built each call so callers can never alias mutable
// state.
func (sp *StaticProvider) ConfigFor(year int) TaxYearConfig {
	if year <= sp.base.Year {
		return sp.base
	}
	factor := decimal.NewFromInt(1).Add(sp.inflation).Pow(decimal.NewFromInt(int64(year - sp.base.Year)))

	out := TaxYearConfig{
		Year:              year,
		Ordinary:          make(map[domain.FilingStatus]BracketTable, len(sp.base.Ordinary)),
		CapitalGains:      make(map[domain.FilingStatus]BracketTable, len(sp.base.CapitalGains)),
		StandardDeduction: make(map[domain.FilingStatus]decimal.Decimal, len(sp.base.StandardDeduction)),
		SeniorDeduction:   sp.base.SeniorDeduction.Mul(factor).Round(0),
		MaxMonthlyBenefit: sp.base.MaxMonthlyBenefit.Mul(factor).Round(0),
	}
	for fs, bt := range sp.base.Ordinary {
		out.Ordinary[fs] = bt.Inflate(factor)
	}
	for fs, bt := range sp.base.CapitalGains {
		out.CapitalGains[fs] = bt.Inflate(factor)
	}
	for fs, d := range sp.base.StandardDeduction {
		out.StandardDeduction[fs] = d.Mul(factor).Round(0)
	}
	out.IRMAA = make([]IRMAATier, len(sp.base.IRMAA))
	for i, t := range sp.base.IRMAA {
		out.IRMAA[i] = IRMAATier{
			ThresholdSingle: t.ThresholdSingle.Mul(factor).Round(0),
			ThresholdJoint:  t.ThresholdJoint.Mul(factor).Round(0),
			PartBMonthly:    t.PartBMonthly.Mul(factor).Round(2),
			PartDMonthly:    t.PartDMonthly.Mul(factor).Round(2),
		}
	}
	return out
}

// Year2025 returns the 2025 constant tables.
func Year2025() TaxYearConfig {
	d := decimal.NewFromInt
	f := decimal.NewFromFloat
	// Open-ended top brackets use a large sentinel max.
	top := d(1_000_000_000_000)

	return TaxYearConfig{
		Year: 2025,
		Ordinary: map[domain.FilingStatus]BracketTable{
			domain.FilingMarriedJointly: {
				{Min: d(0), Max: d(23850), Rate: f(0.10)},
				{Min: d(23850), Max: d(96950), Rate: f(0.12)},
				{Min: d(96950), Max: d(206700), Rate: f(0.22)},
				{Min: d(206700), Max: d(394600), Rate: f(0.24)},
				{Min: d(394600), Max: d(501050), Rate: f(0.32)},
				{Min: d(501050), Max: d(751600), Rate: f(0.35)},
				{Min: d(751600), Max: top, Rate: f(0.37)},
			},
			domain.FilingSingle: {
				{Min: d(0), Max: d(11925), Rate: f(0.10)},
				{Min: d(11925), Max: d(48475), Rate: f(0.12)},
				{Min: d(48475), Max: d(103350), Rate: f(0.22)},
				{Min: d(103350), Max: d(197300), Rate: f(0.24)},
				{Min: d(197300), Max: d(250525), Rate: f(0.32)},
				{Min: d(250525), Max: d(626350), Rate: f(0.35)},
				{Min: d(626350), Max: top, Rate: f(0.37)},
			},
		},
		CapitalGains: map[domain.FilingStatus]BracketTable{
			domain.FilingMarriedJointly: {
				{Min: d(0), Max: d(96700), Rate: f(0)},
				{Min: d(96700), Max: d(600050), Rate: f(0.15)},
				{Min: d(600050), Max: top, Rate: f(0.20)},
			},
			domain.FilingSingle: {
				{Min: d(0), Max: d(48350), Rate: f(0)},
				{Min: d(48350), Max: d(533400), Rate: f(0.15)},
				{Min: d(533400), Max: top, Rate: f(0.20)},
			},
		},
		StandardDeduction: map[domain.FilingStatus]decimal.Decimal{
			domain.FilingMarriedJointly: d(30000),
			domain.FilingSingle:         d(15000),
		},
		SeniorDeduction: d(1600),
		IRMAA: []IRMAATier{
			{ThresholdSingle: d(106000), ThresholdJoint: d(212000), PartBMonthly: f(74.00), PartDMonthly: f(13.70)},
			{ThresholdSingle: d(133000), ThresholdJoint: d(266000), PartBMonthly: f(185.00), PartDMonthly: f(35.30)},
			{ThresholdSingle: d(167000), ThresholdJoint: d(334000), PartBMonthly: f(295.90), PartDMonthly: f(57.00)},
			{ThresholdSingle: d(200000), ThresholdJoint: d(400000), PartBMonthly: f(406.90), PartDMonthly: f(78.60)},
			{ThresholdSingle: d(500000), ThresholdJoint: d(750000), PartBMonthly: f(443.90), PartDMonthly: f(85.80)},
		},
		MaxMonthlyBenefit: d(5108),
	}
}
