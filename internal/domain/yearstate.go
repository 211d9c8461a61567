package domain

import "github.com/shopspring/decimal"

// GuardrailAction records which guardrail, if any, fired in a year.
type GuardrailAction string

const (
	GuardrailNone GuardrailAction = "normal"

	// GuardrailUpper fires when the withdrawal rate falls far below the
	// target and spending steps up.
	GuardrailUpper GuardrailAction = "upper_triggered"

	// GuardrailLower fires when the withdrawal rate climbs far above
	// the target and spending steps down.
	GuardrailLower GuardrailAction = "lower_triggered"
)

// YearState is one simulated year's snapshot. It is produced by the
// scenario runner and immutable once recorded; the ordered sequence for
// one scenario is its cash-flow trajectory.
type YearState struct {
	Year int `json:"year"`
	Age  int `json:"age"`

	Buckets     AssetBuckets    `json:"buckets"`
	TotalAssets decimal.Decimal `json:"totalAssets"`

	GrossWithdrawal decimal.Decimal `json:"grossWithdrawal"`
	NetWithdrawal   decimal.Decimal `json:"netWithdrawal"`
	Shortfall       decimal.Decimal `json:"shortfall"`

	FederalTax      decimal.Decimal `json:"federalTax"`
	StateTax        decimal.Decimal `json:"stateTax"`
	CapitalGainsTax decimal.Decimal `json:"capitalGainsTax"`
	IRMAASurcharge  decimal.Decimal `json:"irmaaSurcharge"`

	GuaranteedIncome decimal.Decimal `json:"guaranteedIncome"`
	LTCCost          decimal.Decimal `json:"ltcCost"`
	Spending         decimal.Decimal `json:"spending"`

	Guardrail GuardrailAction `json:"guardrail"`
}

// ScenarioOutcome is the terminal state of one simulated lifetime. It is
// owned exclusively by the scenario that produced it and never shared
// across goroutines.
type ScenarioOutcome struct {
	Index         int             `json:"index"`
	Seed          uint64          `json:"seed"`
	Success       bool            `json:"success"`
	EndingBalance decimal.Decimal `json:"endingBalance"`
	DepletionAge  int             `json:"depletionAge,omitempty"` // 0 when never depleted
	Years         []YearState     `json:"years,omitempty"`

	// MeanPathReturn is the average sampled portfolio return along the
	// scenario's path, kept for the control-variate adjustment.
	MeanPathReturn float64 `json:"-"`
}

// RiskMetrics carries the advanced tail and path statistics computed over
// the ensemble.
type RiskMetrics struct {
	CVaR95          decimal.Decimal `json:"cvar95"`
	MaxDrawdown     decimal.Decimal `json:"maxDrawdown"` // average across scenarios, as a fraction
	UlcerIndex      decimal.Decimal `json:"ulcerIndex"`
	MedianDepletion int             `json:"medianDepletionAge,omitempty"`
}

// YearBand is one year of the percentile cash-flow bands reconstructed
// across scenarios.
type YearBand struct {
	Age int             `json:"age"`
	P10 decimal.Decimal `json:"p10"`
	P50 decimal.Decimal `json:"p50"`
	P90 decimal.Decimal `json:"p90"`
}

// EnsembleResult aggregates all scenario outcomes for one run. It is
// derived, recomputed per run, and never persisted by the core.
type EnsembleResult struct {
	RunID      string `json:"runId"`
	Iterations int    `json:"iterations"`
	Completed  int    `json:"completed"`
	Partial    bool   `json:"partial"`

	// SuccessProbability is on a 0-100 scale.
	SuccessProbability decimal.Decimal            `json:"successProbability"`
	PercentileBalances map[string]decimal.Decimal `json:"percentileBalances"` // p10/p25/p50/p75/p90
	Risk               RiskMetrics                `json:"risk"`

	MedianTrajectory []YearState `json:"medianTrajectory,omitempty"`
	BalanceBands     []YearBand  `json:"balanceBands,omitempty"`
}
