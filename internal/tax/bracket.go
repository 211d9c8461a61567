package tax

import "github.com/shopspring/decimal"

// Bracket is one rate band of a piecewise-linear tax schedule.
type Bracket struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Rate decimal.Decimal
}

// BracketTable is an ascending, contiguous bracket schedule. The same
// walker serves federal ordinary tax, capital gains and IRMAA tiering,
// so the bracket math lives in exactly one place.
type BracketTable []Bracket

// TaxOn walks the table and returns the tax on amount, clipped at zero.
func (bt BracketTable) TaxOn(amount decimal.Decimal) decimal.Decimal {
	return bt.StackedTaxOn(decimal.Zero, amount)
}

// StackedTaxOn returns the tax on the income slice [base, base+amount):
// the amount is taxed at the rates it occupies above base. Capital gains
// stacking on top of ordinary income is this operation with base set to
// taxable ordinary income.
func (bt BracketTable) StackedTaxOn(base, amount decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if base.IsNegative() {
		base = decimal.Zero
	}
	top := base.Add(amount)
	tax := decimal.Zero
	for _, b := range bt {
		lo := decimal.Max(base, b.Min)
		hi := decimal.Min(top, b.Max)
		if hi.GreaterThan(lo) {
			tax = tax.Add(hi.Sub(lo).Mul(b.Rate))
		}
	}
	return tax
}

// GrossUp inverts the stacked tax function: it returns the smallest gross
// G such that G - StackedTaxOn(base, G) >= net. The inversion is
// closed-form per bracket segment, so bracket-boundary behavior is exact
// and no root-finder is involved. A zero net returns zero.
func (bt BracketTable) GrossUp(base, net decimal.Decimal) decimal.Decimal {
	if net.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if base.IsNegative() {
		base = decimal.Zero
	}
	one := decimal.NewFromInt(1)
	gross := decimal.Zero
	remaining := net
	level := base
	for _, b := range bt {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if b.Max.LessThanOrEqual(level) {
			continue
		}
		lo := decimal.Max(level, b.Min)
		width := b.Max.Sub(lo)
		keep := one.Sub(b.Rate)
		if keep.LessThanOrEqual(decimal.Zero) {
			// A 100% bracket cannot yield net dollars; skip it.
			level = b.Max
			gross = gross.Add(width)
			continue
		}
		segmentNet := width.Mul(keep)
		if segmentNet.GreaterThanOrEqual(remaining) {
			gross = gross.Add(remaining.Div(keep))
			remaining = decimal.Zero
			break
		}
		gross = gross.Add(width)
		remaining = remaining.Sub(segmentNet)
		level = b.Max
	}
	if remaining.GreaterThan(decimal.Zero) {
		// Income beyond the top tabulated bracket keeps the top rate.
		topKeep := one.Sub(bt[len(bt)-1].Rate)
		gross = gross.Add(remaining.Div(topKeep))
	}
	return gross
}

// MarginalRate returns the rate applying to the next dollar above income.
func (bt BracketTable) MarginalRate(income decimal.Decimal) decimal.Decimal {
	if income.IsNegative() {
		income = decimal.Zero
	}
	for _, b := range bt {
		if income.GreaterThanOrEqual(b.Min) && income.LessThan(b.Max) {
			return b.Rate
		}
	}
	if len(bt) > 0 {
		return bt[len(bt)-1].Rate
	}
	return decimal.Zero
}

// Inflate returns a copy of the table with every threshold compounded by
// factor and rounded to the nearest dollar, the reporting granularity of
// published tables.
func (bt BracketTable) Inflate(factor decimal.Decimal) BracketTable {
	out := make(BracketTable, len(bt))
	for i, b := range bt {
		out[i] = Bracket{
			Min:  b.Min.Mul(factor).Round(0),
			Max:  b.Max.Mul(factor).Round(0),
			Rate: b.Rate,
		}
	}
	return out
}
