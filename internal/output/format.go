// Package output renders ensemble results for people and for machines.
// Formatters are pluggable by name so the CLI flag maps straight to an
// implementation.
package output

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wealthpath/retiresim/internal/domain"
)

// Formatter renders one ensemble result.
type Formatter interface {
	Name() string
	Format(result *domain.EnsembleResult) ([]byte, error)
}

// FormatterFor maps a format name to its implementation.
func FormatterFor(name string) (Formatter, error) {
	switch name {
	case "console", "":
		return ConsoleFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", name)
	}
}

// FormatCurrency renders a dollar amount with thousands separators.
func FormatCurrency(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// FormatPercent renders a 0-100 value with one decimal place.
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}
