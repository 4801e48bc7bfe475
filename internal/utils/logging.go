package utils

import (
	"context"
	"log/slog"

	"github.com/spboyer/knapsack/internal/models"
)

// LogSampleSet writes a debug summary of a solver result. It does nothing
// unless debug logging is enabled.
func LogSampleSet(solver string, set *models.SampleSet) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"solver", solver,
		"samples", set.Len(),
		"feasible", len(set.Feasible()),
	}
	if set != nil {
		attrs = addIf(attrs, "elapsed_ms", lookup(set.Info, "elapsed_ms"))
		attrs = addIf(attrs, "problem_id", lookup(set.Info, "problem_id"))
	}

	slog.Debug("Sample set received", attrs...)
}

// LogSelection writes a debug summary of a decoded selection.
func LogSelection(problem string, sel *models.Selection) {
	if sel == nil || !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	slog.Debug("Selection decoded",
		"problem", problem,
		"items", sel.Indices,
		"total_weight", sel.TotalWeight,
		"total_cost", sel.TotalCost,
		"capacity", sel.Capacity,
	)
}

func lookup(info map[string]any, key string) *any {
	v, ok := info[key]
	if !ok {
		return nil
	}
	return &v
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name)
		attrs = append(attrs, *v)
	}

	return attrs
}
