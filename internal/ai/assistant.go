package ai

import (
	"context"

	"github.com/spigell/perf-predictor/internal/report"
)

// Narrator writes a short plain-language summary of a predictions table.
// It never changes the predictions themselves.
type Narrator interface {
	Summarize(ctx context.Context, table *report.Table) (string, error)
}
