package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthpath/retiresim/internal/domain"
)

func mfjBrackets() BracketTable {
	return Year2025().Ordinary[domain.FilingMarriedJointly]
}

func TestTaxOn(t *testing.T) {
	bt := mfjBrackets()

	// 100k MFJ: 23850 at 10% + 73100 at 12% + 3050 at 22%
	tax := bt.TaxOn(decimal.NewFromInt(100000))
	assert.True(t, tax.Equal(decimal.NewFromInt(11828)), "got %s", tax)

	assert.True(t, bt.TaxOn(decimal.Zero).IsZero())
	assert.True(t, bt.TaxOn(decimal.NewFromInt(-5000)).IsZero())
}

func TestTaxOnFirstBracketOnly(t *testing.T) {
	bt := mfjBrackets()
	tax := bt.TaxOn(decimal.NewFromInt(10000))
	assert.True(t, tax.Equal(decimal.NewFromInt(1000)), "got %s", tax)
}

func TestStackedTaxOn(t *testing.T) {
	bt := mfjBrackets()

	// The slice [50000, 110000): 46950 in the 12% band, 13050 in 22%.
	tax := bt.StackedTaxOn(decimal.NewFromInt(50000), decimal.NewFromInt(60000))
	want := decimal.NewFromFloat(46950*0.12 + 13050*0.22)
	assert.True(t, tax.Equal(want), "got %s want %s", tax, want)
}

func TestStackedTaxOnMatchesDifference(t *testing.T) {
	bt := mfjBrackets()
	base := decimal.NewFromInt(80000)
	amount := decimal.NewFromInt(150000)

	stacked := bt.StackedTaxOn(base, amount)
	diff := bt.TaxOn(base.Add(amount)).Sub(bt.TaxOn(base))
	assert.True(t, stacked.Equal(diff), "stacked %s diff %s", stacked, diff)
}

func TestGrossUpRoundTrip(t *testing.T) {
	bt := mfjBrackets()
	bases := []int64{0, 20000, 96950, 150000, 400000}
	nets := []int64{100, 5000, 50000, 250000, 900000}

	for _, base := range bases {
		for _, net := range nets {
			b := decimal.NewFromInt(base)
			n := decimal.NewFromInt(net)
			gross := bt.GrossUp(b, n)
			achieved := gross.Sub(bt.StackedTaxOn(b, gross))
			assert.InDelta(t, net, achieved.InexactFloat64(), 0.01,
				"base=%d net=%d gross=%s", base, net, gross)
		}
	}
}

func TestGrossUpZeroNet(t *testing.T) {
	bt := mfjBrackets()
	assert.True(t, bt.GrossUp(decimal.Zero, decimal.Zero).IsZero())
	assert.True(t, bt.GrossUp(decimal.NewFromInt(50000), decimal.NewFromInt(-10)).IsZero())
}

func TestMarginalRate(t *testing.T) {
	bt := mfjBrackets()
	assert.True(t, bt.MarginalRate(decimal.Zero).Equal(decimal.NewFromFloat(0.10)))
	assert.True(t, bt.MarginalRate(decimal.NewFromInt(23850)).Equal(decimal.NewFromFloat(0.12)))
	assert.True(t, bt.MarginalRate(decimal.NewFromInt(2_000_000)).Equal(decimal.NewFromFloat(0.37)))
}

func TestInflate(t *testing.T) {
	bt := mfjBrackets()
	inflated := bt.Inflate(decimal.NewFromFloat(1.025))
	require.Len(t, inflated, len(bt))

	// 23850 * 1.025 = 24446.25, rounded to the dollar.
	assert.True(t, inflated[0].Max.Equal(decimal.NewFromInt(24446)), "got %s", inflated[0].Max)
	assert.True(t, inflated[0].Rate.Equal(bt[0].Rate))
}
