package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/wealthpath/retiresim/internal/domain"
)

// CSVFormatter writes a summary row followed by the per-year balance
// bands, one row per simulated age.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *domain.EnsembleResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"Metric", "Value"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	rows := [][]string{
		{"RunID", result.RunID},
		{"Iterations", strconv.Itoa(result.Iterations)},
		{"Completed", strconv.Itoa(result.Completed)},
		{"SuccessProbability", result.SuccessProbability.StringFixed(2)},
		{"CVaR95", result.Risk.CVaR95.StringFixed(2)},
		{"AvgMaxDrawdown", result.Risk.MaxDrawdown.StringFixed(4)},
		{"UlcerIndex", result.Risk.UlcerIndex.StringFixed(2)},
	}
	for _, label := range sortedPercentileLabels(result.PercentileBalances) {
		rows = append(rows, []string{"Ending_" + label, result.PercentileBalances[label].StringFixed(2)})
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	if len(result.BalanceBands) > 0 {
		if err := w.Write([]string{"Age", "P10", "P50", "P90"}); err != nil {
			return nil, err
		}
		for _, b := range result.BalanceBands {
			row := []string{
				strconv.Itoa(b.Age),
				b.P10.StringFixed(2),
				b.P50.StringFixed(2),
				b.P90.StringFixed(2),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
