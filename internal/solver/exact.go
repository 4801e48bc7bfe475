package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/spboyer/knapsack/internal/models"
)

// DefaultMaxVariables bounds exact enumeration.
const DefaultMaxVariables = 20

// MaxExactVariables is the hard ceiling on max_variables. The candidate set
// holds 2^N samples.
const MaxExactVariables = 30

// ExactOptions configure [ExactSolver].
type ExactOptions struct {
	MaxVariables int `mapstructure:"max_variables"`
}

// ExactSolver enumerates every assignment of the model. It returns the
// full candidate set, feasible and infeasible, so it is only usable for
// small models.
type ExactSolver struct {
	maxVariables int
}

// Validate rejects a max_variables above MaxExactVariables.
func (o ExactOptions) Validate() error {
	if o.MaxVariables > MaxExactVariables {
		return fmt.Errorf("%w: max_variables %d exceeds the limit of %d", models.ErrInvalidInput, o.MaxVariables, MaxExactVariables)
	}
	return nil
}

func NewExactSolver(opts ExactOptions) *ExactSolver {
	if opts.MaxVariables <= 0 {
		opts.MaxVariables = DefaultMaxVariables
	}
	return &ExactSolver{maxVariables: opts.MaxVariables}
}

func (s *ExactSolver) Name() string { return string(EngineExact) }

func (s *ExactSolver) Initialize(ctx context.Context) error { return nil }

func (s *ExactSolver) Shutdown(ctx context.Context) error { return nil }

func (s *ExactSolver) Sample(ctx context.Context, model *models.Model) (*models.SampleSet, error) {
	start := time.Now()
	n := model.NumVariables()
	if n > s.maxVariables || n > MaxExactVariables {
		return nil, models.NewUpstreamError(s.Name(),
			fmt.Errorf("%d variables exceeds max_variables (%d)", n, min(s.maxVariables, MaxExactVariables)))
	}

	labels := model.Labels()
	total := 1 << n
	set := &models.SampleSet{Samples: make([]models.Sample, 0, total)}
	x := make([]bool, n)

	for mask := 0; mask < total; mask++ {
		if mask%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, models.NewUpstreamError(s.Name(), err)
			}
		}
		for i := range x {
			x[i] = mask&(1<<i) != 0
		}
		set.Samples = append(set.Samples, model.Evaluate(assignmentFromBits(labels, x)))
	}
	return withInfo(set, EngineExact, start), nil
}
