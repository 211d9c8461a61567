package output

import (
	"encoding/json"

	"github.com/wealthpath/retiresim/internal/domain"
)

// JSONFormatter emits the full result structure for downstream tooling.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.EnsembleResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
