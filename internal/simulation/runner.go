package simulation

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/wealthpath/retiresim/internal/benefits"
	"github.com/wealthpath/retiresim/internal/domain"
	"github.com/wealthpath/retiresim/internal/guardrail"
	"github.com/wealthpath/retiresim/internal/ltc"
	"github.com/wealthpath/retiresim/internal/returngen"
	"github.com/wealthpath/retiresim/internal/tax"
	"github.com/wealthpath/retiresim/internal/withdrawal"
)

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// runner executes single scenarios. All fields are read-only during a
// run, so one runner serves every worker goroutine.
type runner struct {
	params *domain.ScenarioParams
	taxes  *tax.Engine
	solver *withdrawal.Solver
	cfg    SimConfig
}

func newRunner(params *domain.ScenarioParams, taxes *tax.Engine, cfg SimConfig) *runner {
	return &runner{
		params: params,
		taxes:  taxes,
		solver: withdrawal.NewSolver(taxes),
		cfg:    cfg,
	}
}

// RunScenario simulates one lifetime. The outcome is a pure function of
// the scenario parameters, the run seed and the index: with antithetic
// sampling on, odd indices replay their even partner's shocks negated,
// and the partner's path is regenerated locally so no state crosses
// worker boundaries.
func (r *runner) RunScenario(index int) domain.ScenarioOutcome {
	pairIndex := index
	mirrored := false
	if r.cfg.UseAntithetic {
		pairIndex = index / 2
		mirrored = index%2 == 1
	}
	seed := ScenarioSeed(r.cfg.Seed, pairIndex)

	gen := returngen.New(r.params.Market, r.cfg.Distribution, r.cfg.DegreesOfFreedom, rand.NewPCG(seed, returnStream))
	years := r.params.TerminalAge() - r.params.CurrentAge + 1

	var firstUniform *float64
	if r.cfg.UseStratified {
		strata := r.cfg.Iterations
		if r.cfg.UseAntithetic {
			strata = (r.cfg.Iterations + 1) / 2
		}
		u := (float64(pairIndex) + 0.5) / float64(strata)
		firstUniform = &u
	}
	path := gen.GeneratePath(years, firstUniform)
	if mirrored {
		path = gen.MirrorPath(path.Shocks)
	}

	overlay := ltc.NewOverlay(r.params.LTC, rand.NewPCG(seed, ltcStream), r.params.HasSpouse())

	out := domain.ScenarioOutcome{Index: index, Seed: seed, Years: make([]domain.YearState, 0, years)}
	var meanReturn float64
	for _, ret := range path.PortfolioReturns {
		meanReturn += ret
	}
	out.MeanPathReturn = meanReturn / float64(len(path.PortfolioReturns))

	buckets := r.params.InitialBuckets
	basis := r.params.TaxableCostBasis
	baseExp := r.params.Expenses.AnnualBase
	healthExp := r.params.Expenses.AnnualHealthcare

	var policy *guardrail.Policy
	var spending decimal.Decimal
	action := domain.GuardrailNone
	magiByYear := make(map[int]decimal.Decimal, years)

	for y := 0; y < years; y++ {
		age := r.params.CurrentAge + y
		spouseAge := r.params.SpouseAgeAt(age)
		year := r.cfg.StartYear + y
		ret := decimal.NewFromFloat(path.PortfolioReturns[y])

		if age < r.params.RetirementAge {
			buckets.Contribute(r.params.AnnualSavings)
			// Taxable contributions enter at cost.
			basis = basis.Add(r.params.AnnualSavings.Mul(decimal.NewFromFloat(0.15)))
			buckets.Grow(ret)
			out.Years = append(out.Years, domain.YearState{
				Year: year, Age: age, Buckets: buckets, TotalAssets: buckets.Total(),
				Guardrail: domain.GuardrailNone,
			})
			baseExp = baseExp.Mul(one.Add(r.params.Expenses.BaseInflation))
			healthExp = healthExp.Mul(one.Add(r.params.Expenses.HealthcareInflation))
			continue
		}

		firstRetirementYear := policy == nil
		if firstRetirementYear {
			spending = baseExp.Add(healthExp)
		}
		assetsBefore := buckets.Total()

		ss := r.socialSecurityIncome(&r.params.SocialSecurity, age, year-(age-r.params.SocialSecurity.ClaimAge))
		if sps := r.params.SpouseSocialSecurity; sps != nil && spouseAge > 0 {
			ss = ss.Add(r.socialSecurityIncome(sps, spouseAge, year-(spouseAge-sps.ClaimAge)))
		}
		pension := r.pensionIncome(age)
		wages := r.partTimeIncome(age)

		ltcCost := overlay.CostForYear(age, spouseAge, y)
		irmaa := r.irmaaCost(age, spouseAge, year, magiByYear)
		need := spending.Add(ltcCost).Add(irmaa)

		cgBefore := buckets.CapitalGains
		gainRatio := decimal.Zero
		if cgBefore.IsPositive() {
			gainRatio = decimal.Max(decimal.Zero, cgBefore.Sub(basis)).Div(cgBefore)
		}

		res := r.solver.Solve(withdrawal.Request{
			SpendingNeed:   need,
			SocialSecurity: ss,
			Pension:        pension,
			PartTimeWages:  wages,
			Age:            age,
			SpouseAge:      spouseAge,
			Year:           year,
			FilingStatus:   r.params.FilingStatus,
			State:          r.params.State,
			GainRatio:      gainRatio,
		}, &buckets)

		// The guardrails watch what actually leaves the portfolio, not
		// the spending target: guaranteed income that covers the need
		// keeps the observed withdrawal rate low.
		netWithdrawal := need.Sub(res.NetGuaranteedIncome)
		if netWithdrawal.IsNegative() {
			netWithdrawal = decimal.Zero
		}
		if firstRetirementYear {
			policy = guardrail.NewPolicy(r.params.Guardrail, netWithdrawal, assetsBefore)
		}

		// A taxable draw carries out basis in proportion to the balance.
		if cgDrawn := res.Draws[domain.BucketCapitalGains]; cgDrawn.IsPositive() && cgBefore.IsPositive() {
			basis = basis.Sub(cgDrawn.Mul(basis).Div(cgBefore))
			if basis.IsNegative() {
				basis = decimal.Zero
			}
		}
		buckets.Deposit(domain.BucketCashEquivalents, res.RMDSurplus.Add(res.ExcessIncome))

		tdDraws := res.Draws[domain.BucketTaxDeferred]
		magiByYear[year] = pension.Add(wages).
			Add(ss.Mul(withdrawal.TaxableSocialSecurityFraction)).
			Add(tdDraws).Add(res.RecognizedGains)

		buckets.Grow(ret)

		out.Years = append(out.Years, domain.YearState{
			Year: year, Age: age,
			Buckets: buckets, TotalAssets: buckets.Total(),
			GrossWithdrawal:  res.GrossWithdrawal,
			NetWithdrawal:    res.NetAchieved,
			Shortfall:        res.Shortfall,
			FederalTax:       res.FederalTax,
			StateTax:         res.StateTax,
			CapitalGainsTax:  res.CapitalGainsTax,
			IRMAASurcharge:   irmaa,
			GuaranteedIncome: ss.Add(pension).Add(wages),
			LTCCost:          ltcCost,
			Spending:         need,
			Guardrail:        action,
		})

		if out.DepletionAge == 0 && res.Shortfall.IsPositive() && buckets.IsDepleted() {
			out.DepletionAge = age
		}

		// Year-end guardrail evaluation sets next year's spending. The
		// effective inflation blends the two expense streams at their
		// current weights.
		prevRaw := baseExp.Add(healthExp)
		baseExp = baseExp.Mul(one.Add(r.params.Expenses.BaseInflation))
		healthExp = healthExp.Mul(one.Add(r.params.Expenses.HealthcareInflation))
		infl := decimal.Zero
		if prevRaw.IsPositive() {
			infl = baseExp.Add(healthExp).Div(prevRaw).Sub(one)
		}
		spending, action = policy.Evaluate(spending, netWithdrawal, buckets.Total(), infl)
	}

	out.EndingBalance = buckets.Total()
	out.Success = out.DepletionAge == 0 && out.EndingBalance.GreaterThanOrEqual(r.params.LegacyGoal)
	return out
}

// socialSecurityIncome returns the year's benefit: zero before the claim
// age, otherwise the claim-age-adjusted benefit capped at the claim
// year's statutory maximum and COLA-adjusted since claiming.
func (r *runner) socialSecurityIncome(ss *domain.SocialSecurityParams, age, claimCalendarYear int) decimal.Decimal {
	if ss == nil || ss.MonthlyPIA.IsZero() || age < ss.ClaimAge {
		return decimal.Zero
	}
	monthly := benefits.BenefitAtClaimAge(ss.ClaimAge, ss.FullRetirementAge, ss.MonthlyPIA,
		r.taxes.MaxMonthlyBenefit(claimCalendarYear))
	annual := monthly.Mul(twelve)
	yearsSinceClaim := age - ss.ClaimAge
	if yearsSinceClaim > 0 {
		annual = annual.Mul(one.Add(r.params.GeneralInflation).Pow(decimal.NewFromInt(int64(yearsSinceClaim))))
	}
	return annual
}

func (r *runner) pensionIncome(age int) decimal.Decimal {
	p := r.params.Pension
	if p == nil || age < p.StartAge {
		return decimal.Zero
	}
	annual := p.MonthlyBenefit.Mul(twelve)
	if n := age - p.StartAge; n > 0 {
		annual = annual.Mul(one.Add(p.COLARate).Pow(decimal.NewFromInt(int64(n))))
	}
	return annual
}

func (r *runner) partTimeIncome(age int) decimal.Decimal {
	pt := r.params.PartTime
	if pt == nil || age < pt.StartAge || age > pt.EndAge {
		return decimal.Zero
	}
	annual := pt.AnnualIncome
	if n := age - pt.StartAge; n > 0 {
		annual = annual.Mul(one.Add(r.params.GeneralInflation).Pow(decimal.NewFromInt(int64(n))))
	}
	return annual
}

// irmaaCost returns the year's Medicare surcharges for every beneficiary
// aged 65 or over, keyed off the household MAGI from two years prior.
// Years with no recorded MAGI (the first two retirement years) owe
// nothing, matching a new enrollee's initial determination.
func (r *runner) irmaaCost(age, spouseAge, year int, magiByYear map[int]decimal.Decimal) decimal.Decimal {
	beneficiaries := 0
	if age >= 65 {
		beneficiaries++
	}
	if r.params.FilingStatus == domain.FilingMarriedJointly && spouseAge >= 65 {
		beneficiaries++
	}
	if beneficiaries == 0 {
		return decimal.Zero
	}
	magi, ok := magiByYear[year-2]
	if !ok {
		return decimal.Zero
	}
	partB, partD := r.taxes.IRMAASurcharge(magi, r.params.FilingStatus, year)
	return partB.Add(partD).Mul(twelve).Mul(decimal.NewFromInt(int64(beneficiaries)))
}
