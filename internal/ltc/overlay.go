// Package ltc models the stochastic long-term-care cost overlay. Each
// scenario draws at most one care episode per spouse up front, so a
// single lifetime probability governs whether care ever happens rather
// than a per-year hazard that compounds with longevity.
package ltc

import (
	"math"
	"math/rand/v2"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wealthpath/retiresim/internal/domain"
)

// Event is one person's care episode, fixed for the scenario's lifetime.
type Event struct {
	Occurs        bool
	OnsetAge      int
	DurationYears int
}

// Active reports whether the person is in care at the given age.
func (e Event) Active(age int) bool {
	return e.Occurs && age >= e.OnsetAge && age < e.OnsetAge+e.DurationYears
}

// Overlay carries the drawn episodes and the insurance ledger for one
// scenario. It is not safe for concurrent use; each scenario owns its own.
type Overlay struct {
	params  domain.LTCParams
	primary Event
	spouse  Event

	// Remaining insured days per person, consumed as care years pass.
	primaryDaysLeft int
	spouseDaysLeft  int
}

// NewOverlay draws the episodes from src. Disabled params produce an
// overlay that always costs zero.
func NewOverlay(params domain.LTCParams, src rand.Source, hasSpouse bool) *Overlay {
	o := &Overlay{params: params}
	if !params.Enabled {
		return o
	}
	rng := rand.New(src)
	mean, _ := params.MeanDurationYears.Float64()
	exp := distuv.Exponential{Rate: 1, Src: src}
	if mean > 0 {
		exp.Rate = 1 / mean
	}
	o.primary = drawEvent(params, rng, exp)
	o.primaryDaysLeft = params.CoverageDays
	if hasSpouse {
		o.spouse = drawEvent(params, rng, exp)
		o.spouseDaysLeft = params.CoverageDays
	}
	return o
}

func drawEvent(p domain.LTCParams, rng *rand.Rand, exp distuv.Exponential) Event {
	prob, _ := p.LifetimeProbability.Float64()
	if rng.Float64() >= prob {
		return Event{}
	}
	span := p.OnsetAgeMax - p.OnsetAgeMin
	onset := p.OnsetAgeMin
	if span > 0 {
		onset += rng.IntN(span + 1)
	}
	dur := 1
	if exp.Rate > 0 {
		dur = int(math.Ceil(exp.Rand()))
	}
	if dur < 1 {
		dur = 1
	}
	if p.MaxDurationYears > 0 && dur > p.MaxDurationYears {
		dur = p.MaxDurationYears
	}
	return Event{Occurs: true, OnsetAge: onset, DurationYears: dur}
}

// PrimaryEvent exposes the drawn primary episode for reporting.
func (o *Overlay) PrimaryEvent() Event { return o.primary }

// SpouseEvent exposes the drawn spouse episode for reporting.
func (o *Overlay) SpouseEvent() Event { return o.spouse }

// CostForYear returns the household's out-of-pocket care cost when the
// primary person is age and the spouse spouseAge, with the annual cost
// inflated yearsElapsed years from the scenario start. Insurance
// reimbursements reduce the cost and draw down the coverage-day pool.
func (o *Overlay) CostForYear(age, spouseAge, yearsElapsed int) decimal.Decimal {
	if !o.params.Enabled {
		return decimal.Zero
	}
	cost := o.params.AnnualCost.Mul(
		decimal.NewFromInt(1).Add(o.params.CostInflation).Pow(decimal.NewFromInt(int64(yearsElapsed))))

	total := decimal.Zero
	if o.primary.Active(age) {
		total = total.Add(cost.Sub(o.reimburse(cost, &o.primaryDaysLeft)))
	}
	if o.spouse.Active(spouseAge) {
		total = total.Add(cost.Sub(o.reimburse(cost, &o.spouseDaysLeft)))
	}
	return total
}

// reimburse returns the insurance payout against one person's care year
// and consumes coverage days. Traditional policies pay the daily benefit
// for the covered days; hybrid policies pay half, trading lower benefits
// for the death-benefit rider priced into the premium.
func (o *Overlay) reimburse(cost decimal.Decimal, daysLeft *int) decimal.Decimal {
	if o.params.Insurance == domain.LTCInsuranceNone || *daysLeft <= 0 {
		return decimal.Zero
	}
	days := *daysLeft
	if days > 365 {
		days = 365
	}
	*daysLeft -= days
	payout := o.params.DailyBenefit.Mul(decimal.NewFromInt(int64(days)))
	if o.params.Insurance == domain.LTCInsuranceHybrid {
		payout = payout.Div(decimal.NewFromInt(2))
	}
	if payout.GreaterThan(cost) {
		payout = cost
	}
	return payout
}
