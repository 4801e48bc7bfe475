package solver

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/spboyer/knapsack/internal/models"
	"golang.org/x/sync/errgroup"
)

// Anneal defaults.
const (
	DefaultNumReads  = 32
	DefaultSweeps    = 1000
	DefaultBetaStart = 0.1
	DefaultBetaEnd   = 10.0
)

// AnnealOptions configure [AnnealSolver].
type AnnealOptions struct {
	NumReads  int     `mapstructure:"num_reads"`
	Sweeps    int     `mapstructure:"sweeps"`
	Seed      uint64  `mapstructure:"seed"`
	Workers   int     `mapstructure:"workers"`
	BetaStart float64 `mapstructure:"beta_start"`
	BetaEnd   float64 `mapstructure:"beta_end"`

	// Penalty scales constraint violation in the annealed energy. Zero
	// picks a value larger than the objective's total magnitude.
	Penalty float64 `mapstructure:"penalty"`
}

// AnnealSolver samples a model with simulated annealing. Each read is an
// independent run seeded from Seed and the read number, so results are
// reproducible for a given seed regardless of scheduling.
type AnnealSolver struct {
	opts AnnealOptions
}

func NewAnnealSolver(opts AnnealOptions) *AnnealSolver {
	if opts.NumReads <= 0 {
		opts.NumReads = DefaultNumReads
	}
	if opts.Sweeps <= 0 {
		opts.Sweeps = DefaultSweeps
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.BetaStart <= 0 {
		opts.BetaStart = DefaultBetaStart
	}
	if opts.BetaEnd <= opts.BetaStart {
		opts.BetaEnd = math.Max(DefaultBetaEnd, opts.BetaStart*10)
	}
	return &AnnealSolver{opts: opts}
}

func (s *AnnealSolver) Name() string { return string(EngineAnneal) }

func (s *AnnealSolver) Initialize(ctx context.Context) error { return nil }

func (s *AnnealSolver) Shutdown(ctx context.Context) error { return nil }

func (s *AnnealSolver) Sample(ctx context.Context, model *models.Model) (*models.SampleSet, error) {
	start := time.Now()
	p := compile(model, s.opts.Penalty)

	results := make([]models.Sample, s.opts.NumReads)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for read := 0; read < s.opts.NumReads; read++ {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(s.opts.Seed, uint64(read)))
			x, err := p.anneal(gctx, rng, s.opts.Sweeps, s.opts.BetaStart, s.opts.BetaEnd)
			if err != nil {
				return err
			}
			results[read] = model.Evaluate(assignmentFromBits(p.labels, x))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, models.NewUpstreamError(s.Name(), err)
	}

	set := withInfo(&models.SampleSet{Samples: results}, EngineAnneal, start)
	set.Info["num_reads"] = s.opts.NumReads
	set.Info["sweeps"] = s.opts.Sweeps
	set.Info["seed"] = s.opts.Seed
	return set, nil
}

type weightedIndex struct {
	index int
	coef  float64
}

type compiledConstraint struct {
	relation models.Relation
	rhs      float64
	coefs    []float64 // dense over variables
}

func (c *compiledConstraint) violation(lhs float64) float64 {
	switch c.relation {
	case models.RelationLessEqual:
		return math.Max(0, lhs-c.rhs)
	case models.RelationGreaterEqual:
		return math.Max(0, c.rhs-lhs)
	default:
		return math.Abs(lhs - c.rhs)
	}
}

// compiled is a model flattened into index space for fast flips.
type compiled struct {
	labels      []string
	linear      []float64
	neighbors   [][]weightedIndex
	constraints []compiledConstraint
	penalty     float64
}

func compile(model *models.Model, penalty float64) *compiled {
	labels := model.Labels()
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	p := &compiled{
		labels:    labels,
		linear:    make([]float64, len(labels)),
		neighbors: make([][]weightedIndex, len(labels)),
	}
	magnitude := 0.0
	for _, t := range model.Objective.Linear {
		if i, ok := index[t.Label]; ok {
			p.linear[i] += t.Coefficient
			magnitude += math.Abs(t.Coefficient)
		}
	}
	for _, q := range model.Objective.Quadratic {
		u, okU := index[q.U]
		v, okV := index[q.V]
		if !okU || !okV {
			continue
		}
		magnitude += math.Abs(q.Coefficient)
		if u == v {
			// x*x == x for binaries
			p.linear[u] += q.Coefficient
			continue
		}
		p.neighbors[u] = append(p.neighbors[u], weightedIndex{v, q.Coefficient})
		p.neighbors[v] = append(p.neighbors[v], weightedIndex{u, q.Coefficient})
	}
	for _, c := range model.Constraints {
		cc := compiledConstraint{relation: c.Relation, rhs: c.RHS, coefs: make([]float64, len(labels))}
		for _, t := range c.Linear {
			if i, ok := index[t.Label]; ok {
				cc.coefs[i] += t.Coefficient
			}
		}
		p.constraints = append(p.constraints, cc)
	}

	if penalty <= 0 {
		penalty = 1 + magnitude
	}
	p.penalty = penalty
	return p
}

// delta returns the change in penalized energy from flipping variable i.
func (p *compiled) delta(x []bool, lhs []float64, i int) float64 {
	sign := 1.0
	if x[i] {
		sign = -1.0
	}
	d := sign * p.linear[i]
	for _, nb := range p.neighbors[i] {
		if x[nb.index] {
			d += sign * nb.coef
		}
	}
	for k := range p.constraints {
		c := &p.constraints[k]
		if c.coefs[i] == 0 {
			continue
		}
		next := lhs[k] + sign*c.coefs[i]
		d += p.penalty * (c.violation(next) - c.violation(lhs[k]))
	}
	return d
}

func (p *compiled) flip(x []bool, lhs []float64, i int) {
	sign := 1.0
	if x[i] {
		sign = -1.0
	}
	for k := range p.constraints {
		lhs[k] += sign * p.constraints[k].coefs[i]
	}
	x[i] = !x[i]
}

// anneal runs one read from the empty assignment and returns the lowest
// penalized-energy state it visited.
func (p *compiled) anneal(ctx context.Context, rng *rand.Rand, sweeps int, betaStart, betaEnd float64) ([]bool, error) {
	n := len(p.labels)
	x := make([]bool, n)
	lhs := make([]float64, len(p.constraints))
	best := make([]bool, n)
	energy, bestEnergy := 0.0, 0.0
	for k := range p.constraints {
		energy += p.penalty * p.constraints[k].violation(0)
	}
	bestEnergy = energy

	if n == 0 {
		return best, nil
	}

	ratio := math.Pow(betaEnd/betaStart, 1/math.Max(1, float64(sweeps-1)))
	beta := betaStart
	for sweep := 0; sweep < sweeps; sweep++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, i := range rng.Perm(n) {
			d := p.delta(x, lhs, i)
			if d <= 0 || rng.Float64() < math.Exp(-beta*d) {
				p.flip(x, lhs, i)
				energy += d
				if energy < bestEnergy {
					bestEnergy = energy
					copy(best, x)
				}
			}
		}
		beta *= ratio
	}
	return best, nil
}
