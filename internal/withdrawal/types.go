package withdrawal

import (
	"github.com/shopspring/decimal"

	"github.com/wealthpath/retiresim/internal/domain"
)

// Request carries everything the solver needs for one year's draw. The
// solver owns the guaranteed-income offset, the tax gross-up and the
// bucket waterfall; callers only describe the year.
type Request struct {
	// SpendingNeed is the year's total net spending target, including
	// healthcare, LTC costs and Medicare surcharges.
	SpendingNeed decimal.Decimal

	// Guaranteed income received this year, gross.
	SocialSecurity decimal.Decimal
	Pension        decimal.Decimal
	PartTimeWages  decimal.Decimal

	Age          int
	SpouseAge    int // 0 when single
	Year         int
	FilingStatus domain.FilingStatus
	State        string

	// GainRatio is the embedded-gain fraction of the capital-gains
	// bucket; a draw of G recognizes G×GainRatio of gains.
	GainRatio decimal.Decimal
}

// Result decomposes the solved withdrawal. Taxes are year totals,
// covering guaranteed income as well as the draws.
type Result struct {
	GrossWithdrawal decimal.Decimal
	NetAchieved     decimal.Decimal
	Shortfall       decimal.Decimal

	Draws map[domain.BucketKind]decimal.Decimal

	RMD        decimal.Decimal
	RMDSurplus decimal.Decimal // net RMD proceeds beyond the need, reinvested into cash
	// ExcessIncome is guaranteed income net of tax beyond the spending
	// need; the runner parks it in cash equivalents.
	ExcessIncome decimal.Decimal

	// NetGuaranteedIncome is guaranteed income after the tax owed on it
	// alone. The spending need minus this is the year's net portfolio
	// withdrawal, which the guardrail policy observes.
	NetGuaranteedIncome decimal.Decimal

	FederalTax      decimal.Decimal
	CapitalGainsTax decimal.Decimal
	StateTax        decimal.Decimal

	RecognizedGains decimal.Decimal
}

// TaxableSocialSecurityFraction approximates the taxed share of benefits
// for retirees with meaningful other income; the statutory provisional
// income worksheet tops out at this fraction.
var TaxableSocialSecurityFraction = decimal.NewFromFloat(0.85)
