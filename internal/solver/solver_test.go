package solver

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/spboyer/knapsack/internal/encoder"
	"github.com/spboyer/knapsack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	scenarioCosts   = []float64{10, 85, 19, 50, 70, 80, 55}
	scenarioWeights = []float64{11, 27, 13, 17, 20, 10, 15}
)

func scenarioModel(t *testing.T, capacity float64) *models.Model {
	t.Helper()
	model, err := encoder.Encode(scenarioCosts, scenarioWeights, capacity)
	require.NoError(t, err)
	return model
}

func minFeasibleEnergy(set *models.SampleSet) float64 {
	best := math.Inf(1)
	for _, e := range set.Energies(true) {
		best = math.Min(best, e)
	}
	return best
}

// requireSolverContract checks that every sample is total over the model's
// variables and that its energy and feasibility match the model.
func requireSolverContract(t *testing.T, model *models.Model, set *models.SampleSet) {
	t.Helper()
	for i, s := range set.Samples {
		require.Len(t, s.Assignment, model.NumVariables(), "sample %d", i)
		for _, label := range model.Labels() {
			v, ok := s.Assignment[label]
			require.True(t, ok, "sample %d missing %s", i, label)
			require.True(t, v == 0 || v == 1, "sample %d: %s=%v", i, label, v)
		}
		require.InDelta(t, model.Energy(s.Assignment), s.Energy, 1e-9, "sample %d", i)
		require.Equal(t, model.IsFeasible(s.Assignment), s.IsFeasible, "sample %d", i)
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name   string
		engine Engine
		params map[string]any
		check  func(t *testing.T, s Solver)
	}{
		{
			name:   "exact defaults",
			engine: EngineExact,
			check: func(t *testing.T, s Solver) {
				require.Equal(t, DefaultMaxVariables, s.(*ExactSolver).maxVariables)
			},
		},
		{
			name:   "exact max_variables",
			engine: EngineExact,
			params: map[string]any{"max_variables": 8},
			check: func(t *testing.T, s Solver) {
				require.Equal(t, 8, s.(*ExactSolver).maxVariables)
			},
		},
		{
			name:   "anneal params",
			engine: EngineAnneal,
			params: map[string]any{"num_reads": 4, "sweeps": 50, "seed": 7, "workers": 2, "beta_end": 3.5},
			check: func(t *testing.T, s Solver) {
				opts := s.(*AnnealSolver).opts
				assert.Equal(t, 4, opts.NumReads)
				assert.Equal(t, 50, opts.Sweeps)
				assert.Equal(t, uint64(7), opts.Seed)
				assert.Equal(t, 2, opts.Workers)
				assert.Equal(t, 3.5, opts.BetaEnd)
				assert.Equal(t, DefaultBetaStart, opts.BetaStart)
			},
		},
		{
			name:   "remote params",
			engine: EngineRemote,
			params: map[string]any{"endpoint": "http://localhost:9999/solve", "time_limit": "30s", "label": "camping"},
			check: func(t *testing.T, s Solver) {
				opts := s.(*RemoteSolver).opts
				assert.Equal(t, 30*time.Second, opts.TimeLimit)
				assert.Equal(t, "camping", opts.Label)
				assert.Equal(t, AuthToken, opts.Auth)
				assert.Equal(t, DefaultTokenEnv, opts.TokenEnv)
			},
		},
		{
			name:   "replay path",
			engine: EngineReplay,
			params: map[string]any{"path": "samples.json"},
			check: func(t *testing.T, s Solver) {
				require.Equal(t, "samples.json", s.(*ReplaySolver).path)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Create(tt.engine, tt.params)
			require.NoError(t, err)
			require.Equal(t, string(tt.engine), s.Name())
			tt.check(t, s)
		})
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		engine Engine
		params map[string]any
	}{
		{name: "unknown engine", engine: "quantum"},
		{name: "exact max_variables over limit", engine: EngineExact, params: map[string]any{"max_variables": 64}},
		{name: "bad param type", engine: EngineAnneal, params: map[string]any{"num_reads": "many"}},
		{name: "remote without endpoint", engine: EngineRemote},
		{name: "remote unknown auth", engine: EngineRemote, params: map[string]any{"endpoint": "http://x", "auth": "kerberos"}},
		{name: "remote azure without scope", engine: EngineRemote, params: map[string]any{"endpoint": "https://x", "auth": "azure"}},
		{name: "replay without path", engine: EngineReplay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(tt.engine, tt.params)
			require.Error(t, err)
			require.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestExactSolver(t *testing.T) {
	model := scenarioModel(t, 89)
	s := NewExactSolver(ExactOptions{})
	require.NoError(t, s.Initialize(context.Background()))

	set, err := s.Sample(context.Background(), model)
	require.NoError(t, err)
	require.Equal(t, 128, set.Len())
	requireSolverContract(t, model, set)
	require.Equal(t, -340.0, minFeasibleEnergy(set))
	require.Equal(t, "exact", set.Info["engine"])
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestExactSolver_EmptyModel(t *testing.T) {
	model, err := encoder.Encode(nil, nil, 0)
	require.NoError(t, err)

	set, err := NewExactSolver(ExactOptions{}).Sample(context.Background(), model)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	require.True(t, set.Samples[0].IsFeasible)
	require.Empty(t, set.Samples[0].Assignment)
}

func TestExactSolver_TooManyVariables(t *testing.T) {
	model := scenarioModel(t, 89)
	_, err := NewExactSolver(ExactOptions{MaxVariables: 6}).Sample(context.Background(), model)
	require.Error(t, err)
	require.ErrorIs(t, err, models.ErrUpstreamSolver)
	require.Contains(t, err.Error(), "max_variables")
}

func TestExactSolver_HardLimit(t *testing.T) {
	n := MaxExactVariables + 1
	costs := make([]float64, n)
	weights := make([]float64, n)
	for i := range costs {
		costs[i], weights[i] = 1, 1
	}
	model, err := encoder.Encode(costs, weights, 5)
	require.NoError(t, err)

	_, err = NewExactSolver(ExactOptions{MaxVariables: 64}).Sample(context.Background(), model)
	require.ErrorIs(t, err, models.ErrUpstreamSolver)
	require.NotErrorIs(t, err, models.ErrNoFeasibleSolution)
	require.Contains(t, err.Error(), "max_variables (30)")
}

func TestExactSolver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExactSolver(ExactOptions{}).Sample(ctx, scenarioModel(t, 89))
	require.ErrorIs(t, err, models.ErrUpstreamSolver)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnnealSolver(t *testing.T) {
	for _, capacity := range []float64{89, 20, 0} {
		model := scenarioModel(t, capacity)
		exact, err := NewExactSolver(ExactOptions{}).Sample(context.Background(), model)
		require.NoError(t, err)

		s := NewAnnealSolver(AnnealOptions{NumReads: 16, Sweeps: 300, Seed: 42})
		set, err := s.Sample(context.Background(), model)
		require.NoError(t, err)
		require.Equal(t, 16, set.Len())
		requireSolverContract(t, model, set)
		require.Equal(t, minFeasibleEnergy(exact), minFeasibleEnergy(set), "capacity %v", capacity)
	}
}

func TestAnnealSolver_Deterministic(t *testing.T) {
	model := scenarioModel(t, 60)

	serial, err := NewAnnealSolver(AnnealOptions{NumReads: 8, Sweeps: 50, Seed: 3, Workers: 1}).Sample(context.Background(), model)
	require.NoError(t, err)
	parallel, err := NewAnnealSolver(AnnealOptions{NumReads: 8, Sweeps: 50, Seed: 3, Workers: 4}).Sample(context.Background(), model)
	require.NoError(t, err)

	require.Equal(t, serial.Samples, parallel.Samples)
}

func TestAnnealSolver_InfeasibleModel(t *testing.T) {
	model := scenarioModel(t, -5)

	set, err := NewAnnealSolver(AnnealOptions{NumReads: 4, Sweeps: 20}).Sample(context.Background(), model)
	require.NoError(t, err)
	require.Empty(t, set.Feasible())
	requireSolverContract(t, model, set)
}

func TestAnnealSolver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnnealSolver(AnnealOptions{NumReads: 4}).Sample(ctx, scenarioModel(t, 89))
	require.ErrorIs(t, err, models.ErrUpstreamSolver)
	require.ErrorIs(t, err, context.Canceled)
}
