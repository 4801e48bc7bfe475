package reporting

import (
	"fmt"
	"strings"
)

// InterpretUtilization returns a plain-language label for how much of the
// capacity a selection uses (0 to 1).
func InterpretUtilization(u float64) string {
	pct := u * 100
	switch {
	case pct >= 99.5:
		return "Full (100%)"
	case pct >= 90:
		return fmt.Sprintf("Tight (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("Partial (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Sparse (%.0f%%)", pct)
	}
}

// InterpretFeasibleRatio explains what share of the solver's samples
// respected the capacity (0 to 1).
func InterpretFeasibleRatio(ratio float64) string {
	pct := ratio * 100
	switch {
	case pct >= 100:
		return "All samples were feasible."
	case pct >= 50:
		return fmt.Sprintf("Most samples were feasible (%.0f%%).", pct)
	case pct > 0:
		return fmt.Sprintf("Few samples were feasible (%.0f%%). Consider more reads or a longer time limit.", pct)
	default:
		return "No sample was feasible."
	}
}

// FormatSummary produces a short plain-language summary of a batch.
func FormatSummary(reports []*Report) string {
	var solved, infeasible, failed int
	for _, r := range reports {
		switch r.Status {
		case StatusSolved:
			solved++
		case StatusInfeasible:
			infeasible++
		default:
			failed++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Summary ===\n\n")
	fmt.Fprintf(&b, "Problems: %d solved, %d infeasible, %d errors out of %d total\n",
		solved, infeasible, failed, len(reports))
	for _, r := range reports {
		icon := "✓"
		if r.Status != StatusSolved {
			icon = "✗"
		}
		fmt.Fprintf(&b, "  %s %s: %s", icon, r.Problem, r.Status)
		if r.Selection != nil {
			fmt.Fprintf(&b, ", cost %s, capacity use %s",
				formatNumber(r.Selection.TotalCost), InterpretUtilization(r.Selection.Utilization()))
		}
		b.WriteString("\n")
	}
	return b.String()
}
