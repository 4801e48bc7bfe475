// Package solver contains the backends that sample encoded knapsack models.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/knapsack/internal/models"
)

//go:generate go tool mockgen -source=solver.go -destination=../pipeline/mock_solver_test.go -package=pipeline

// Engine names a solver backend.
type Engine string

const (
	EngineExact  Engine = "exact"
	EngineAnneal Engine = "anneal"
	EngineRemote Engine = "remote"
	EngineReplay Engine = "replay"
)

// Engines lists the engines accepted by [Create].
var Engines = []Engine{EngineExact, EngineAnneal, EngineRemote, EngineReplay}

// Solver samples a model and returns candidate assignments.
//
// Every returned sample assigns a value to each declared variable, its
// IsFeasible reflects the model's constraints and its Energy equals the
// objective. Failures are returned as *models.UpstreamError.
type Solver interface {
	// Name returns the engine name, used for logging and cache keys
	Name() string

	// Initialize prepares the solver; it is called once before Sample
	Initialize(ctx context.Context) error

	// Sample solves the model
	Sample(ctx context.Context, model *models.Model) (*models.SampleSet, error)

	// Shutdown releases any resources held by the solver
	Shutdown(ctx context.Context) error
}

// Create builds a solver for the engine, decoding its engine-specific
// params (the `solver.params` section of .knapsack.yaml plus CLI overrides).
func Create(engine Engine, params map[string]any) (Solver, error) {
	switch engine {
	case EngineExact:
		var v ExactOptions
		if err := decodeParams(params, &v); err != nil {
			return nil, err
		}
		if err := v.Validate(); err != nil {
			return nil, err
		}
		return NewExactSolver(v), nil
	case EngineAnneal:
		var v AnnealOptions
		if err := decodeParams(params, &v); err != nil {
			return nil, err
		}
		return NewAnnealSolver(v), nil
	case EngineRemote:
		var v RemoteOptions
		if err := decodeParams(params, &v); err != nil {
			return nil, err
		}
		return NewRemoteSolver(v)
	case EngineReplay:
		var v struct {
			Path string `mapstructure:"path"`
		}
		if err := decodeParams(params, &v); err != nil {
			return nil, err
		}
		return NewReplaySolver(v.Path)
	default:
		return nil, fmt.Errorf("%w: '%s' is not a valid solver engine", models.ErrInvalidInput, engine)
	}
}

func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: solver params: %v", models.ErrInvalidInput, err)
	}
	return nil
}

// withInfo records timing and engine details on a sample set.
func withInfo(set *models.SampleSet, engine Engine, start time.Time) *models.SampleSet {
	if set.Info == nil {
		set.Info = map[string]any{}
	}
	set.Info["engine"] = string(engine)
	set.Info["elapsed_ms"] = time.Since(start).Milliseconds()
	return set
}

// assignmentFromBits builds a total assignment over labels from x.
func assignmentFromBits(labels []string, x []bool) map[string]float64 {
	assignment := make(map[string]float64, len(labels))
	for i, label := range labels {
		if x[i] {
			assignment[label] = 1
		} else {
			assignment[label] = 0
		}
	}
	return assignment
}
