package domain

import "github.com/shopspring/decimal"

// BucketKind names one of the four tax treatments a holding can have.
type BucketKind string

const (
	BucketTaxDeferred     BucketKind = "tax_deferred"
	BucketTaxFree         BucketKind = "tax_free"
	BucketCapitalGains    BucketKind = "capital_gains"
	BucketCashEquivalents BucketKind = "cash_equivalents"
)

// AssetBuckets tracks household holdings by tax treatment. Balances are
// mutated once per simulated year (growth, contributions, withdrawals)
// and must never go negative.
type AssetBuckets struct {
	TaxDeferred     decimal.Decimal `yaml:"tax_deferred" json:"taxDeferred"`
	TaxFree         decimal.Decimal `yaml:"tax_free" json:"taxFree"`
	CapitalGains    decimal.Decimal `yaml:"capital_gains" json:"capitalGains"`
	CashEquivalents decimal.Decimal `yaml:"cash_equivalents" json:"cashEquivalents"`
}

// Total returns the sum of all four balances. Every YearState records
// this sum; the conservation invariant is that it always equals the
// component sum exactly (decimal arithmetic keeps this exact).
func (b AssetBuckets) Total() decimal.Decimal {
	return b.TaxDeferred.Add(b.TaxFree).Add(b.CapitalGains).Add(b.CashEquivalents)
}

// IsDepleted reports whether nothing remains in any bucket.
func (b AssetBuckets) IsDepleted() bool {
	return b.Total().LessThanOrEqual(decimal.Zero)
}

// Validate rejects negative balances.
func (b AssetBuckets) Validate() error {
	switch {
	case b.TaxDeferred.IsNegative():
		return &ValidationError{Field: "initial_buckets.tax_deferred", Message: "cannot be negative"}
	case b.TaxFree.IsNegative():
		return &ValidationError{Field: "initial_buckets.tax_free", Message: "cannot be negative"}
	case b.CapitalGains.IsNegative():
		return &ValidationError{Field: "initial_buckets.capital_gains", Message: "cannot be negative"}
	case b.CashEquivalents.IsNegative():
		return &ValidationError{Field: "initial_buckets.cash_equivalents", Message: "cannot be negative"}
	}
	return nil
}

// Grow applies one year's portfolio return to every bucket. All buckets
// hold the same target allocation, so they share the blended return.
func (b *AssetBuckets) Grow(portfolioReturn decimal.Decimal) {
	factor := decimal.NewFromInt(1).Add(portfolioReturn)
	if factor.IsNegative() {
		factor = decimal.Zero
	}
	b.TaxDeferred = b.TaxDeferred.Mul(factor)
	b.TaxFree = b.TaxFree.Mul(factor)
	b.CapitalGains = b.CapitalGains.Mul(factor)
	b.CashEquivalents = b.CashEquivalents.Mul(factor)
}

// Contribute adds accumulation-phase savings. Contributions follow a
// fixed split: 60% tax-deferred, 20% tax-free, 15% taxable, 5% cash,
// mirroring typical 401k-heavy saving.
func (b *AssetBuckets) Contribute(amount decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	b.TaxDeferred = b.TaxDeferred.Add(amount.Mul(decimal.NewFromFloat(0.60)))
	b.TaxFree = b.TaxFree.Add(amount.Mul(decimal.NewFromFloat(0.20)))
	b.CapitalGains = b.CapitalGains.Add(amount.Mul(decimal.NewFromFloat(0.15)))
	b.CashEquivalents = b.CashEquivalents.Add(amount.Mul(decimal.NewFromFloat(0.05)))
}

// Balance returns the balance of the named bucket.
func (b AssetBuckets) Balance(kind BucketKind) decimal.Decimal {
	switch kind {
	case BucketTaxDeferred:
		return b.TaxDeferred
	case BucketTaxFree:
		return b.TaxFree
	case BucketCapitalGains:
		return b.CapitalGains
	case BucketCashEquivalents:
		return b.CashEquivalents
	}
	return decimal.Zero
}

// Draw removes amount from the named bucket, clamping at zero, and
// returns what was actually removed.
func (b *AssetBuckets) Draw(kind BucketKind, amount decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	bal := b.Balance(kind)
	taken := decimal.Min(bal, amount)
	switch kind {
	case BucketTaxDeferred:
		b.TaxDeferred = b.TaxDeferred.Sub(taken)
	case BucketTaxFree:
		b.TaxFree = b.TaxFree.Sub(taken)
	case BucketCapitalGains:
		b.CapitalGains = b.CapitalGains.Sub(taken)
	case BucketCashEquivalents:
		b.CashEquivalents = b.CashEquivalents.Sub(taken)
	}
	return taken
}

// Deposit adds amount to the named bucket. Used for RMD surplus
// reinvestment into cash equivalents.
func (b *AssetBuckets) Deposit(kind BucketKind, amount decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	switch kind {
	case BucketTaxDeferred:
		b.TaxDeferred = b.TaxDeferred.Add(amount)
	case BucketTaxFree:
		b.TaxFree = b.TaxFree.Add(amount)
	case BucketCapitalGains:
		b.CapitalGains = b.CapitalGains.Add(amount)
	case BucketCashEquivalents:
		b.CashEquivalents = b.CashEquivalents.Add(amount)
	}
}
