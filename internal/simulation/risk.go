package simulation

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/wealthpath/retiresim/internal/domain"
)

// cvarTail is the tail mass for conditional value at risk: the mean of
// the worst 5% of ending balances.
const cvarTail = 0.05

var percentileLabels = []struct {
	label string
	q     float64
}{
	{"p10", 0.10}, {"p25", 0.25}, {"p50", 0.50}, {"p75", 0.75}, {"p90", 0.90},
}

// aggregate folds completed outcomes into the ensemble statistics.
func (o *Orchestrator) aggregate(runID string, outcomes []domain.ScenarioOutcome) *domain.EnsembleResult {
	res := &domain.EnsembleResult{
		RunID:              runID,
		Iterations:         o.cfg.Iterations,
		Completed:          len(outcomes),
		PercentileBalances: make(map[string]decimal.Decimal, len(percentileLabels)),
	}
	if len(outcomes) == 0 {
		return res
	}

	successes := 0
	endings := make([]float64, len(outcomes))
	for i, out := range outcomes {
		if out.Success {
			successes++
		}
		endings[i] = out.EndingBalance.InexactFloat64()
	}
	res.SuccessProbability = decimal.NewFromInt(int64(successes)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(len(outcomes))))

	if o.cfg.UseControlVariates {
		endings = o.controlVariateAdjust(endings, outcomes)
	}

	sorted := append([]float64(nil), endings...)
	sort.Float64s(sorted)
	for _, p := range percentileLabels {
		res.PercentileBalances[p.label] = decimal.NewFromFloat(stat.Quantile(p.q, stat.LinInterp, sorted, nil)).Round(2)
	}

	res.Risk = riskMetrics(sorted, outcomes)

	if o.cfg.RecordTrajectories {
		res.BalanceBands = balanceBands(outcomes)
		res.MedianTrajectory = medianTrajectory(outcomes, res.PercentileBalances["p50"])
	}
	return res
}

// riskMetrics computes the tail and path statistics: CVaR over sorted
// ending balances, per-scenario max drawdown and Ulcer Index averaged
// across scenarios, and the median depletion age among failures.
func riskMetrics(sortedEndings []float64, outcomes []domain.ScenarioOutcome) domain.RiskMetrics {
	var m domain.RiskMetrics

	tail := int(math.Ceil(cvarTail * float64(len(sortedEndings))))
	if tail < 1 {
		tail = 1
	}
	var tailSum float64
	for _, v := range sortedEndings[:tail] {
		tailSum += v
	}
	m.CVaR95 = decimal.NewFromFloat(tailSum / float64(tail)).Round(2)

	var ddSum, ulcerSum float64
	pathCount := 0
	var depletions []int
	for _, out := range outcomes {
		if out.DepletionAge > 0 {
			depletions = append(depletions, out.DepletionAge)
		}
		if len(out.Years) == 0 {
			continue
		}
		dd, ulcer := pathDrawdown(out.Years)
		ddSum += dd
		ulcerSum += ulcer
		pathCount++
	}
	if pathCount > 0 {
		m.MaxDrawdown = decimal.NewFromFloat(ddSum / float64(pathCount)).Round(4)
		m.UlcerIndex = decimal.NewFromFloat(ulcerSum / float64(pathCount)).Round(4)
	}
	if len(depletions) > 0 {
		sort.Ints(depletions)
		m.MedianDepletion = depletions[len(depletions)/2]
	}
	return m
}

// pathDrawdown walks one trajectory and returns its maximum peak-to-
// trough drawdown fraction and its Ulcer Index, the root mean square of
// the per-year drawdown percentages.
func pathDrawdown(years []domain.YearState) (maxDD, ulcer float64) {
	peak := 0.0
	var sumSq float64
	for _, ys := range years {
		v := ys.TotalAssets.InexactFloat64()
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - v) / peak
		if dd > maxDD {
			maxDD = dd
		}
		sumSq += dd * dd * 10000 // percentage points squared
	}
	if len(years) > 0 {
		ulcer = math.Sqrt(sumSq / float64(len(years)))
	}
	return maxDD, ulcer
}

// balanceBands reconstructs p10/p50/p90 total-asset bands year by year
// across every trajectory.
func balanceBands(outcomes []domain.ScenarioOutcome) []domain.YearBand {
	maxYears := 0
	for _, out := range outcomes {
		if len(out.Years) > maxYears {
			maxYears = len(out.Years)
		}
	}
	if maxYears == 0 {
		return nil
	}
	bands := make([]domain.YearBand, 0, maxYears)
	values := make([]float64, 0, len(outcomes))
	for y := 0; y < maxYears; y++ {
		values = values[:0]
		age := 0
		for _, out := range outcomes {
			if y >= len(out.Years) {
				continue
			}
			values = append(values, out.Years[y].TotalAssets.InexactFloat64())
			age = out.Years[y].Age
		}
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		bands = append(bands, domain.YearBand{
			Age: age,
			P10: decimal.NewFromFloat(stat.Quantile(0.10, stat.LinInterp, values, nil)).Round(2),
			P50: decimal.NewFromFloat(stat.Quantile(0.50, stat.LinInterp, values, nil)).Round(2),
			P90: decimal.NewFromFloat(stat.Quantile(0.90, stat.LinInterp, values, nil)).Round(2),
		})
	}
	return bands
}

// medianTrajectory picks the real trajectory whose ending balance lies
// closest to the median, so the representative path is one that actually
// happened rather than a year-wise composite.
func medianTrajectory(outcomes []domain.ScenarioOutcome, median decimal.Decimal) []domain.YearState {
	var best []domain.YearState
	var bestDist decimal.Decimal
	for _, out := range outcomes {
		if len(out.Years) == 0 {
			continue
		}
		dist := out.EndingBalance.Sub(median).Abs()
		if best == nil || dist.LessThan(bestDist) {
			best = out.Years
			bestDist = dist
		}
	}
	return best
}
