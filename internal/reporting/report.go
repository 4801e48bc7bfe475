// Package reporting renders solve results and ships them to sinks.
package reporting

import (
	"errors"
	"time"

	"github.com/spboyer/knapsack/internal/metrics"
	"github.com/spboyer/knapsack/internal/models"
	"github.com/spboyer/knapsack/internal/pipeline"
	"github.com/spboyer/knapsack/internal/sysinfo"
)

// Status is the outcome of one problem.
type Status string

const (
	StatusSolved     Status = "solved"
	StatusInfeasible Status = "infeasible"
	StatusError      Status = "error"
)

// Report is the rendered view of one solved (or failed) problem.
type Report struct {
	Problem   string              `json:"problem"`
	Solver    string              `json:"solver"`
	Status    Status              `json:"status"`
	Items     int                 `json:"items"`
	Capacity  float64             `json:"capacity"`
	Selection *models.Selection   `json:"selection,omitempty"`
	Selected  []models.Item       `json:"selected,omitempty"`
	Stats     metrics.SampleStats `json:"stats"`
	Cached    bool                `json:"cached,omitempty"`
	ElapsedMs int64               `json:"elapsed_ms"`
	Error     string              `json:"error,omitempty"`
	Host      *sysinfo.Info       `json:"host,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// NewReport builds a report for p from a pipeline result and the error, if
// any, returned with it. res may be nil when the run failed early.
func NewReport(solver string, p *models.Problem, res *pipeline.Result, err error) *Report {
	r := &Report{
		Problem:   p.Name,
		Solver:    solver,
		Status:    StatusSolved,
		Items:     len(p.Items),
		Timestamp: time.Now().UTC(),
	}
	if p.Capacity != nil {
		r.Capacity = *p.Capacity
	}

	if res != nil {
		r.Capacity = res.Capacity
		r.Stats = res.Stats
		r.Cached = res.Cached
		r.ElapsedMs = res.Duration.Milliseconds()
		if err == nil {
			err = res.Err
		}
		if sel := res.Selection; sel != nil {
			r.Selection = sel
			r.Selected = make([]models.Item, 0, len(sel.Indices))
			for _, idx := range sel.Indices {
				r.Selected = append(r.Selected, p.Items[idx])
			}
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, models.ErrNoFeasibleSolution):
		r.Status = StatusInfeasible
		r.Error = err.Error()
	default:
		r.Status = StatusError
		r.Error = err.Error()
	}
	return r
}
