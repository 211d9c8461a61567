package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/wealthpath/retiresim/internal/domain"
	"github.com/wealthpath/retiresim/internal/simulation"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// ConsoleFormatter renders the human-readable summary report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.EnsembleResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, titleStyle.Render("RETIREMENT MONTE CARLO ANALYSIS"))
	fmt.Fprintln(&buf, faintStyle.Render(fmt.Sprintf("run %s, %d of %d scenarios", result.RunID, result.Completed, result.Iterations)))
	if result.Partial {
		fmt.Fprintln(&buf, warnStyle.Render("WARNING: partial run, statistics cover completed scenarios only"))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "Success Probability: %s\n", successStyle(result.SuccessProbability).Render(FormatPercent(result.SuccessProbability)))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, sectionStyle.Render("ENDING BALANCE PERCENTILES"))
	for _, label := range []string{"p10", "p25", "p50", "p75", "p90"} {
		if v, ok := result.PercentileBalances[label]; ok {
			fmt.Fprintf(&buf, "  %-4s %18s\n", label, FormatCurrency(v))
		}
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, sectionStyle.Render("RISK"))
	fmt.Fprintf(&buf, "  CVaR (95%%):        %18s\n", FormatCurrency(result.Risk.CVaR95))
	fmt.Fprintf(&buf, "  Avg Max Drawdown:  %17s%%\n", result.Risk.MaxDrawdown.Mul(decimal.NewFromInt(100)).StringFixed(1))
	fmt.Fprintf(&buf, "  Ulcer Index:       %18s\n", result.Risk.UlcerIndex.StringFixed(2))
	if result.Risk.MedianDepletion > 0 {
		fmt.Fprintf(&buf, "  Median Depletion:  %15s %d\n", "age", result.Risk.MedianDepletion)
	}
	fmt.Fprintln(&buf)

	if len(result.BalanceBands) > 0 {
		fmt.Fprintln(&buf, sectionStyle.Render("BALANCE BANDS (p10 / p50 / p90)"))
		step := len(result.BalanceBands) / 10
		if step < 1 {
			step = 1
		}
		for i := 0; i < len(result.BalanceBands); i += step {
			b := result.BalanceBands[i]
			fmt.Fprintf(&buf, "  age %-3d %16s %16s %16s\n",
				b.Age, FormatCurrency(b.P10), FormatCurrency(b.P50), FormatCurrency(b.P90))
		}
		fmt.Fprintln(&buf)
	}
	return buf.Bytes(), nil
}

func successStyle(prob decimal.Decimal) lipgloss.Style {
	switch {
	case prob.GreaterThanOrEqual(decimal.NewFromInt(85)):
		return goodStyle
	case prob.GreaterThanOrEqual(decimal.NewFromInt(70)):
		return warnStyle
	default:
		return badStyle
	}
}

// FormatClaimingTable renders the claiming-age sensitivity analysis.
func FormatClaimingTable(rows []simulation.ClaimingResult) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, titleStyle.Render("SOCIAL SECURITY CLAIMING AGE SENSITIVITY"))
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "  %-5s %14s %10s %18s %18s\n", "Age", "Monthly", "Success", "Median Ending", "Lifetime NPV")
	fmt.Fprintln(&buf, "  "+strings.Repeat("-", 70))

	best := 0
	for i, r := range rows {
		if r.SuccessProbability.GreaterThan(rows[best].SuccessProbability) {
			best = i
		}
	}
	for i, r := range rows {
		line := fmt.Sprintf("  %-5d %14s %9s%% %18s %18s",
			r.ClaimAge, FormatCurrency(r.MonthlyBenefit), r.SuccessProbability.StringFixed(1),
			FormatCurrency(r.MedianEndingBalance), FormatCurrency(r.LifetimeNPV))
		if i == best {
			line = goodStyle.Render(line + "  <- best")
		}
		fmt.Fprintln(&buf, line)
	}
	fmt.Fprintln(&buf)
	return buf.Bytes()
}

// FormatLTCImpact renders the with/without care-overlay comparison.
func FormatLTCImpact(impact *simulation.LTCImpactResult) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, titleStyle.Render("LONG-TERM CARE IMPACT"))
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "  Success without LTC risk: %s\n", FormatPercent(impact.WithoutLTC.SuccessProbability))
	fmt.Fprintf(&buf, "  Success with LTC risk:    %s\n", FormatPercent(impact.WithLTC.SuccessProbability))
	fmt.Fprintf(&buf, "  Success cost:             %s points\n", impact.SuccessDelta.StringFixed(1))
	fmt.Fprintf(&buf, "  Median balance cost:      %s\n", FormatCurrency(impact.MedianDelta))
	fmt.Fprintln(&buf)
	return buf.Bytes()
}

// sortedPercentileLabels keeps machine outputs deterministic.
func sortedPercentileLabels(m map[string]decimal.Decimal) []string {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}
