package withdrawal

import (
	"github.com/shopspring/decimal"

	"github.com/wealthpath/retiresim/internal/benefits"
	"github.com/wealthpath/retiresim/internal/domain"
	"github.com/wealthpath/retiresim/internal/tax"
)

// RMDStartAge is the age at which required minimum distributions override
// the withdrawal waterfall (SECURE 2.0).
const RMDStartAge = 73

// Solver computes the gross withdrawal and per-bucket draw that satisfy a
// net spending need after tax. The gross-up inverts the bracket structure
// closed-form per segment, so bracket-boundary behavior is exact.
type Solver struct {
	taxes *tax.Engine
}

// NewSolver creates a solver over the given tax engine.
func NewSolver(taxes *tax.Engine) *Solver {
	return &Solver{taxes: taxes}
}

var one = decimal.NewFromInt(1)

// Solve satisfies req.SpendingNeed from guaranteed income first, then
// from the buckets in tax-efficiency order: cash equivalents, then
// capital-gains accounts, then tax-deferred, preserving tax-free balances
// for last. RMDs override the waterfall once age >= RMDStartAge. If the
// buckets are insufficient the solver drains them, records the shortfall
// and returns normally; scenario failure is the runner's call.
func (s *Solver) Solve(req Request, buckets *domain.AssetBuckets) Result {
	res := Result{Draws: make(map[domain.BucketKind]decimal.Decimal, 4)}

	seniors := 0
	if req.Age >= 65 {
		seniors++
	}
	if req.FilingStatus == domain.FilingMarriedJointly && req.SpouseAge >= 65 {
		seniors++
	}
	deduction := s.taxes.StandardDeduction(req.FilingStatus, seniors, req.Year)
	brackets := s.taxes.OrdinaryBrackets(req.FilingStatus, req.Year)
	cgBrackets := s.taxes.CapitalGainsBrackets(req.FilingStatus, req.Year)
	stateRetRate := s.taxes.StateRate(req.State, true)

	// Ordinary income before any draws: pension, wages and the taxable
	// share of Social Security.
	taxableSS := req.SocialSecurity.Mul(TaxableSocialSecurityFraction)
	ordinaryBase := req.Pension.Add(req.PartTimeWages).Add(taxableSS)

	baseFederal := brackets.TaxOn(ordinaryBase.Sub(deduction))
	baseState := s.taxes.StateTax(tax.StateIncome{
		Wages:            req.PartTimeWages,
		RetirementIncome: req.Pension,
		SocialSecurity:   req.SocialSecurity,
	}, req.State)

	guaranteedGross := req.SocialSecurity.Add(req.Pension).Add(req.PartTimeWages)
	netGuaranteed := guaranteedGross.Sub(baseFederal).Sub(baseState)
	res.NetGuaranteedIncome = netGuaranteed
	remaining := req.SpendingNeed.Sub(netGuaranteed)
	if remaining.IsNegative() {
		// Guaranteed income exceeds spending; the excess parks in cash.
		res.ExcessIncome = remaining.Neg()
		remaining = decimal.Zero
	}

	ordinaryLevel := ordinaryBase // cumulative ordinary gross income

	// RMD override: the mandated amount leaves tax-deferred regardless
	// of need, and net proceeds beyond the need reinvest into cash.
	if req.Age >= RMDStartAge {
		rmd := benefits.RequiredMinimumDistribution(req.Age, buckets.TaxDeferred)
		if rmd.IsPositive() {
			drawn := buckets.Draw(domain.BucketTaxDeferred, rmd)
			res.RMD = drawn
			res.Draws[domain.BucketTaxDeferred] = res.Draws[domain.BucketTaxDeferred].Add(drawn)
			res.GrossWithdrawal = res.GrossWithdrawal.Add(drawn)

			incTax := incrementalOrdinaryTax(ordinaryLevel, drawn, deduction, brackets, stateRetRate)
			netRMD := drawn.Sub(incTax)
			ordinaryLevel = ordinaryLevel.Add(drawn)
			if netRMD.GreaterThan(remaining) {
				res.RMDSurplus = res.RMDSurplus.Add(netRMD.Sub(remaining))
				remaining = decimal.Zero
			} else {
				remaining = remaining.Sub(netRMD)
			}
		}
	}

	// Waterfall step 1: cash equivalents carry no tax drag.
	if remaining.IsPositive() {
		drawn := buckets.Draw(domain.BucketCashEquivalents, remaining)
		if drawn.IsPositive() {
			res.Draws[domain.BucketCashEquivalents] = drawn
			res.GrossWithdrawal = res.GrossWithdrawal.Add(drawn)
			remaining = remaining.Sub(drawn)
		}
	}

	// Waterfall step 2: capital-gains accounts at preferential rates.
	if remaining.IsPositive() && buckets.CapitalGains.IsPositive() {
		ordTaxable := decimal.Max(decimal.Zero, ordinaryLevel.Sub(deduction))
		gross, gains := s.solveCapitalGainsDraw(remaining, buckets.CapitalGains, req.GainRatio, ordTaxable, cgBrackets, stateRetRate)
		if gross.IsPositive() {
			drawn := buckets.Draw(domain.BucketCapitalGains, gross)
			res.Draws[domain.BucketCapitalGains] = drawn
			res.GrossWithdrawal = res.GrossWithdrawal.Add(drawn)
			res.RecognizedGains = gains
			cgTax := cgBrackets.StackedTaxOn(ordTaxable, gains).Add(gains.Mul(stateRetRate))
			remaining = remaining.Sub(drawn.Sub(cgTax))
			if remaining.IsNegative() {
				remaining = decimal.Zero
			}
		}
	}

	// Waterfall step 3: tax-deferred at ordinary rates, grossed up.
	if remaining.IsPositive() && buckets.TaxDeferred.IsPositive() {
		gross := grossUpOrdinary(remaining, ordinaryLevel, deduction, brackets, stateRetRate)
		drawn := buckets.Draw(domain.BucketTaxDeferred, gross)
		if drawn.IsPositive() {
			res.Draws[domain.BucketTaxDeferred] = res.Draws[domain.BucketTaxDeferred].Add(drawn)
			res.GrossWithdrawal = res.GrossWithdrawal.Add(drawn)
			incTax := incrementalOrdinaryTax(ordinaryLevel, drawn, deduction, brackets, stateRetRate)
			ordinaryLevel = ordinaryLevel.Add(drawn)
			remaining = remaining.Sub(drawn.Sub(incTax))
			if remaining.IsNegative() {
				remaining = decimal.Zero
			}
		}
	}

	// Waterfall step 4: tax-free balances only when nothing else remains.
	if remaining.IsPositive() {
		drawn := buckets.Draw(domain.BucketTaxFree, remaining)
		if drawn.IsPositive() {
			res.Draws[domain.BucketTaxFree] = drawn
			res.GrossWithdrawal = res.GrossWithdrawal.Add(drawn)
			remaining = remaining.Sub(drawn)
		}
	}

	res.Shortfall = remaining
	res.NetAchieved = req.SpendingNeed.Sub(remaining)

	// Year totals, recomputed over the final income composition so the
	// incremental walk and the reported totals cannot drift apart.
	tdDraws := res.Draws[domain.BucketTaxDeferred]
	res.FederalTax = brackets.TaxOn(ordinaryBase.Add(tdDraws).Sub(deduction))
	ordTaxable := decimal.Max(decimal.Zero, ordinaryBase.Add(tdDraws).Sub(deduction))
	res.CapitalGainsTax = cgBrackets.StackedTaxOn(ordTaxable, res.RecognizedGains)
	res.StateTax = s.taxes.StateTax(tax.StateIncome{
		Wages:            req.PartTimeWages,
		RetirementIncome: req.Pension.Add(tdDraws),
		SocialSecurity:   req.SocialSecurity,
		CapitalGains:     res.RecognizedGains,
	}, req.State)
	return res
}

// incrementalOrdinaryTax returns the extra federal+state tax caused by
// adding amount of ordinary income on top of level, with the standard
// deduction acting as a zero-rate segment below the first bracket.
func incrementalOrdinaryTax(level, amount, deduction decimal.Decimal, bt tax.BracketTable, stateRate decimal.Decimal) decimal.Decimal {
	before := bt.TaxOn(level.Sub(deduction))
	after := bt.TaxOn(level.Add(amount).Sub(deduction))
	return after.Sub(before).Add(amount.Mul(stateRate))
}

// grossUpOrdinary inverts the ordinary tax function: the smallest gross G
// of additional ordinary income at level such that G minus the
// incremental federal and state tax covers net. The walk visits the
// deduction shelf and then each bracket segment, closed-form.
func grossUpOrdinary(net, level, deduction decimal.Decimal, bt tax.BracketTable, stateRate decimal.Decimal) decimal.Decimal {
	if net.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	gross := decimal.Zero
	remaining := net

	// Income below the deduction is federally free.
	if level.LessThan(deduction) {
		keep := one.Sub(stateRate)
		shelf := deduction.Sub(level)
		shelfNet := shelf.Mul(keep)
		if shelfNet.GreaterThanOrEqual(remaining) {
			return remaining.Div(keep)
		}
		gross = shelf
		remaining = remaining.Sub(shelfNet)
		level = deduction
	}

	taxableLevel := level.Sub(deduction)
	for _, b := range bt {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if b.Max.LessThanOrEqual(taxableLevel) {
			continue
		}
		lo := decimal.Max(taxableLevel, b.Min)
		width := b.Max.Sub(lo)
		keep := one.Sub(b.Rate).Sub(stateRate)
		if keep.LessThanOrEqual(decimal.Zero) {
			gross = gross.Add(width)
			taxableLevel = b.Max
			continue
		}
		segmentNet := width.Mul(keep)
		if segmentNet.GreaterThanOrEqual(remaining) {
			return gross.Add(remaining.Div(keep))
		}
		gross = gross.Add(width)
		remaining = remaining.Sub(segmentNet)
		taxableLevel = b.Max
	}
	if remaining.GreaterThan(decimal.Zero) && len(bt) > 0 {
		keep := one.Sub(bt[len(bt)-1].Rate).Sub(stateRate)
		if keep.IsPositive() {
			gross = gross.Add(remaining.Div(keep))
		}
	}
	return gross
}

// solveCapitalGainsDraw finds the gross draw from the taxable account
// that nets need after capital-gains tax, walking the preferential
// brackets segment by segment. Gains stack above ordinary taxable
// income; only the gain share of each gross dollar is taxed.
func (s *Solver) solveCapitalGainsDraw(need, balance, gainRatio, ordTaxable decimal.Decimal, cg tax.BracketTable, stateRate decimal.Decimal) (gross, gains decimal.Decimal) {
	if gainRatio.LessThanOrEqual(decimal.Zero) {
		// No embedded gains: the draw is return of basis, tax-free.
		gross = decimal.Min(need, balance)
		return gross, decimal.Zero
	}
	remaining := need
	gainLevel := ordTaxable
	for _, b := range cg {
		if remaining.LessThanOrEqual(decimal.Zero) || gross.GreaterThanOrEqual(balance) {
			break
		}
		if b.Max.LessThanOrEqual(gainLevel) {
			continue
		}
		lo := decimal.Max(gainLevel, b.Min)
		gainCapacity := b.Max.Sub(lo)
		grossCapacity := gainCapacity.Div(gainRatio)
		keep := one.Sub(gainRatio.Mul(b.Rate.Add(stateRate)))
		if keep.LessThanOrEqual(decimal.Zero) {
			gainLevel = b.Max
			continue
		}
		grossNeeded := remaining.Div(keep)
		take := decimal.Min(grossNeeded, grossCapacity)
		take = decimal.Min(take, balance.Sub(gross))
		if take.LessThanOrEqual(decimal.Zero) {
			break
		}
		gross = gross.Add(take)
		gains = gains.Add(take.Mul(gainRatio))
		remaining = remaining.Sub(take.Mul(keep))
		gainLevel = lo.Add(take.Mul(gainRatio))
	}
	return gross, gains
}
