// Package pipeline runs knapsack problems through encode, solve and decode.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spboyer/knapsack/internal/cache"
	"github.com/spboyer/knapsack/internal/decoder"
	"github.com/spboyer/knapsack/internal/encoder"
	"github.com/spboyer/knapsack/internal/metrics"
	"github.com/spboyer/knapsack/internal/models"
	"github.com/spboyer/knapsack/internal/solver"
	"github.com/spboyer/knapsack/internal/utils"
	"golang.org/x/sync/errgroup"
)

// Runner solves problems with one solver. It is safe for concurrent use;
// each problem gets its own model, sample set and selection.
type Runner struct {
	solver  solver.Solver
	decoder *decoder.Decoder
	params  map[string]any

	// Result caching
	cache *cache.Cache

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// Result is the outcome of solving one problem. Selection is nil when
// decoding failed; the sample set and its stats are still reported.
type Result struct {
	Problem   *models.Problem     `json:"-"`
	Model     *models.Model       `json:"-"`
	Capacity  float64             `json:"capacity"`
	SampleSet *models.SampleSet   `json:"-"`
	Selection *models.Selection   `json:"selection,omitempty"`
	Stats     metrics.SampleStats `json:"stats"`
	Cached    bool                `json:"cached"`
	Duration  time.Duration       `json:"duration"`

	// Err is set when the problem had no feasible solution. RunAll keeps
	// going in that case; any other error stops the batch.
	Err error `json:"-"`
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

const (
	EventProblemStart    EventType = "problem_start"
	EventProblemComplete EventType = "problem_complete"
	EventProblemCached   EventType = "problem_cached"
	EventProblemFailed   EventType = "problem_failed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType EventType
	Problem   string
	Num       int
	Total     int
	Duration  time.Duration
	Err       error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCache enables sample set caching
func WithCache(c *cache.Cache) RunnerOption {
	return func(r *Runner) {
		r.cache = c
	}
}

// WithDecoder replaces the default decoder.
func WithDecoder(d *decoder.Decoder) RunnerOption {
	return func(r *Runner) {
		r.decoder = d
	}
}

// WithParams records the solver params; they are part of the cache key.
func WithParams(params map[string]any) RunnerOption {
	return func(r *Runner) {
		r.params = params
	}
}

// NewRunner creates a runner for s.
func NewRunner(s solver.Solver, opts ...RunnerOption) *Runner {
	r := &Runner{
		solver:    s,
		decoder:   decoder.New(),
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run initializes the solver, solves p and shuts the solver down.
func (r *Runner) Run(ctx context.Context, p *models.Problem) (*Result, error) {
	if err := r.solver.Initialize(ctx); err != nil {
		return nil, models.NewUpstreamError(r.solver.Name(), err)
	}
	defer r.shutdown()

	return r.solve(ctx, p, 1, 1)
}

// RunAll solves problems concurrently, at most workers at a time, and
// returns results in input order. The first error cancels the remaining
// problems; results that completed are still returned.
func (r *Runner) RunAll(ctx context.Context, problems []*models.Problem, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = 4
	}
	if err := r.solver.Initialize(ctx); err != nil {
		return nil, models.NewUpstreamError(r.solver.Name(), err)
	}
	defer r.shutdown()

	results := make([]*Result, len(problems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range problems {
		g.Go(func() error {
			res, err := r.solve(gctx, p, i+1, len(problems))
			if errors.Is(err, models.ErrNoFeasibleSolution) {
				res.Err = err
				err = nil
			}
			results[i] = res
			if err != nil {
				return fmt.Errorf("problem %s: %w", p.Name, err)
			}
			return nil
		})
	}

	return results, g.Wait()
}

func (r *Runner) shutdown() {
	// the caller's context may already be cancelled
	if err := r.solver.Shutdown(context.Background()); err != nil {
		slog.Warn("solver shutdown failed", "solver", r.solver.Name(), "error", err)
	}
}

func (r *Runner) solve(ctx context.Context, p *models.Problem, num, total int) (*Result, error) {
	start := time.Now()
	r.notifyProgress(ProgressEvent{EventType: EventProblemStart, Problem: p.Name, Num: num, Total: total})

	res, err := r.solveUnnotified(ctx, p)

	event := ProgressEvent{EventType: EventProblemComplete, Problem: p.Name, Num: num, Total: total, Duration: time.Since(start), Err: err}
	switch {
	case err != nil && !errors.Is(err, models.ErrNoFeasibleSolution):
		event.EventType = EventProblemFailed
	case res != nil && res.Cached:
		event.EventType = EventProblemCached
	}
	if res != nil {
		res.Duration = event.Duration
	}
	r.notifyProgress(event)
	return res, err
}

func (r *Runner) solveUnnotified(ctx context.Context, p *models.Problem) (*Result, error) {
	model, capacity, err := encoder.EncodeProblem(p)
	if err != nil {
		return nil, err
	}
	slog.Debug("Encoded problem", "problem", p.Name, "variables", model.NumVariables(), "capacity", capacity)

	set, cached, err := r.sample(ctx, model)
	if err != nil {
		return nil, err
	}
	utils.LogSampleSet(r.solver.Name(), set)

	res := &Result{
		Problem:   p,
		Model:     model,
		Capacity:  capacity,
		SampleSet: set,
		Stats:     metrics.Summarize(set, decoder.EnergyEpsilon),
		Cached:    cached,
	}

	sel, err := r.decoder.Decode(set, p.Costs(), p.Weights(), capacity)
	if err != nil {
		return res, err
	}
	utils.LogSelection(p.Name, sel)
	res.Selection = sel
	return res, nil
}

// sample asks the solver for a sample set, going through the cache when
// one is configured.
func (r *Runner) sample(ctx context.Context, model *models.Model) (*models.SampleSet, bool, error) {
	name := r.solver.Name()
	if r.cache == nil || !cache.Cacheable(name) {
		set, err := r.solver.Sample(ctx, model)
		return set, false, models.NewUpstreamError(name, err)
	}

	key, err := cache.Key(model, name, r.params)
	if err != nil {
		slog.Warn("cache key failed, sampling without cache", "error", err)
		set, err := r.solver.Sample(ctx, model)
		return set, false, models.NewUpstreamError(name, err)
	}
	if set, found := r.cache.Get(key); found {
		slog.Debug("Sample set cache hit", "solver", name, "cache", key)
		return set, true, nil
	}

	set, err := r.solver.Sample(ctx, model)
	if err != nil {
		return nil, false, models.NewUpstreamError(name, err)
	}
	if err := r.cache.Put(key, set); err != nil {
		slog.Warn("failed to write cache", "solver", name, "error", err)
	}
	return set, false, nil
}
