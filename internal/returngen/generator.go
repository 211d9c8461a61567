// Package returngen samples correlated annual market returns for the
// three modeled asset classes. Shocks are drawn standardized and kept
// alongside the realized returns so callers can mirror a path
// (antithetic sampling) or pin the first draw (stratification) without
// the generator knowing why.
package returngen

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wealthpath/retiresim/internal/domain"
)

// Distribution selects the shock distribution.
type Distribution string

const (
	DistNormal   Distribution = "normal"
	DistStudentT Distribution = "student_t"
)

// DefaultDegreesOfFreedom gives the Student-t fat tails heavy enough to
// matter without an undefined variance.
const DefaultDegreesOfFreedom = 5.0

// Asset class indices into the shock and return vectors.
const (
	Stocks = iota
	Bonds
	Cash
	numClasses
)

// Cross-class shock correlations. Long-run US estimates; the stock-bond
// figure is the post-2000 mildly positive value rather than the negative
// one from the disinflation decades.
var correlations = [numClasses][numClasses]float64{
	{1.00, 0.15, 0.00},
	{0.15, 1.00, 0.30},
	{0.00, 0.30, 1.00},
}

// Per-class return floor. A single year cannot lose more than this.
const returnFloor = -0.95

// Bear-regime adjustments: the stock mean drops and volatility widens,
// then the mean reverts toward its bull value the longer the bear lasts.
const (
	bearMeanShift     = -0.06
	bearVolScale      = 1.30
	bearReversionStep = 0.02
)

// Shocks is one year's standardized draws, pre-correlation.
type Shocks [numClasses]float64

// Path is a full scenario's return sequence with its raw shocks.
type Path struct {
	PortfolioReturns []float64
	Shocks           []Shocks
}

// Generator produces return paths. It is not safe for concurrent use;
// the simulation gives each scenario its own seeded generator.
type Generator struct {
	means   [numClasses]float64 // arithmetic means, CAGR + sigma^2/2
	vols    [numClasses]float64
	weights [numClasses]float64

	chol *mat.TriDense

	dist    Distribution
	nu      float64
	tScale  float64 // rescales Student-t draws to unit variance
	normal  distuv.Normal
	student distuv.StudentsT

	regimes   bool
	inBear    bool
	bearYears int
}

// New builds a generator over the market assumptions, drawing from src.
// An unknown distribution falls back to normal.
func New(market domain.MarketAssumptions, dist Distribution, degreesOfFreedom float64, src rand.Source) *Generator {
	g := &Generator{dist: dist, nu: degreesOfFreedom, regimes: market.EnableRegimeSwitching}
	if g.nu <= 2 {
		g.nu = DefaultDegreesOfFreedom
	}
	for i, a := range []domain.AssetClassAssumption{market.Stocks, market.Bonds, market.Cash} {
		cagr, _ := a.CAGR.Float64()
		vol, _ := a.Volatility.Float64()
		g.vols[i] = vol
		// Sampling around the arithmetic mean makes the compound growth
		// of the sampled paths converge to the configured CAGR.
		g.means[i] = cagr + vol*vol/2
	}
	g.weights[Stocks], _ = market.StockAllocation.Float64()
	g.weights[Bonds], _ = market.BondAllocation.Float64()
	g.weights[Cash], _ = market.CashAllocation.Float64()

	sym := mat.NewSymDense(numClasses, nil)
	for i := 0; i < numClasses; i++ {
		for j := i; j < numClasses; j++ {
			sym.SetSym(i, j, correlations[i][j])
		}
	}
	var ch mat.Cholesky
	if ok := ch.Factorize(sym); ok {
		g.chol = mat.NewTriDense(numClasses, mat.Lower, nil)
		ch.LTo(g.chol)
	}

	g.normal = distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	g.student = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: g.nu, Src: src}
	g.tScale = math.Sqrt((g.nu - 2) / g.nu)
	return g
}

// SampleShocks draws one year of independent standardized shocks.
func (g *Generator) SampleShocks() Shocks {
	var s Shocks
	for i := range s {
		s[i] = g.draw()
	}
	return s
}

func (g *Generator) draw() float64 {
	if g.dist == DistStudentT {
		return g.student.Rand() * g.tScale
	}
	return g.normal.Rand()
}

// QuantileShock maps a uniform u in (0,1) to a standardized shock, used
// to pin the first stock draw into a stratum.
func (g *Generator) QuantileShock(u float64) float64 {
	if g.dist == DistStudentT {
		return g.student.Quantile(u) * g.tScale
	}
	return g.normal.Quantile(u)
}

// Returns realizes one year from standardized shocks: correlate, scale
// by class volatility around the class mean, blend by allocation. The
// regime state advances off the realized stock return, so a replayed
// shock sequence reproduces the same regimes.
func (g *Generator) Returns(s Shocks) (portfolio float64, perClass [numClasses]float64) {
	var corr [numClasses]float64
	if g.chol != nil {
		for i := 0; i < numClasses; i++ {
			var v float64
			for j := 0; j <= i; j++ {
				v += g.chol.At(i, j) * s[j]
			}
			corr[i] = v
		}
	} else {
		corr = s
	}

	means, vols := g.means, g.vols
	if g.regimes && g.inBear {
		reversion := bearReversionStep * float64(g.bearYears)
		shift := bearMeanShift + reversion
		if shift > 0 {
			shift = 0
		}
		means[Stocks] += shift
		vols[Stocks] *= bearVolScale
	}

	for i := 0; i < numClasses; i++ {
		r := means[i] + vols[i]*corr[i]
		if r < returnFloor {
			r = returnFloor
		}
		perClass[i] = r
		portfolio += g.weights[i] * r
	}

	if g.regimes {
		g.advanceRegime(perClass[Stocks])
	}
	return portfolio, perClass
}

// advanceRegime flips to bear after a worse-than-one-sigma stock year
// and back to bull once stocks beat their long-run mean again.
func (g *Generator) advanceRegime(stockReturn float64) {
	switch {
	case !g.inBear && stockReturn < g.means[Stocks]-g.vols[Stocks]:
		g.inBear = true
		g.bearYears = 0
	case g.inBear && stockReturn > g.means[Stocks]:
		g.inBear = false
		g.bearYears = 0
	case g.inBear:
		g.bearYears++
	}
}

// Reset clears regime state so one generator can realize several paths.
func (g *Generator) Reset() {
	g.inBear = false
	g.bearYears = 0
}

// GeneratePath samples a fresh path of the given length. When
// firstStockUniform is non-nil the first stock shock is pinned to that
// quantile instead of drawn, which stratified sampling uses to spread
// first-year outcomes evenly.
func (g *Generator) GeneratePath(years int, firstStockUniform *float64) Path {
	g.Reset()
	p := Path{
		PortfolioReturns: make([]float64, years),
		Shocks:           make([]Shocks, years),
	}
	for y := 0; y < years; y++ {
		s := g.SampleShocks()
		if y == 0 && firstStockUniform != nil {
			s[Stocks] = g.QuantileShock(*firstStockUniform)
		}
		p.Shocks[y] = s
		p.PortfolioReturns[y], _ = g.Returns(s)
	}
	return p
}

// MirrorPath replays a recorded shock sequence with every shock negated,
// producing the antithetic partner of the original path.
func (g *Generator) MirrorPath(shocks []Shocks) Path {
	g.Reset()
	p := Path{
		PortfolioReturns: make([]float64, len(shocks)),
		Shocks:           make([]Shocks, len(shocks)),
	}
	for y, s := range shocks {
		var m Shocks
		for i := range s {
			m[i] = -s[i]
		}
		p.Shocks[y] = m
		p.PortfolioReturns[y], _ = g.Returns(m)
	}
	return p
}

// BlendedArithmeticMean is the allocation-weighted arithmetic mean
// return, the known expectation the control variate regresses against.
func (g *Generator) BlendedArithmeticMean() float64 {
	var m float64
	for i := 0; i < numClasses; i++ {
		m += g.weights[i] * g.means[i]
	}
	return m
}
