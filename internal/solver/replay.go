package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spboyer/knapsack/internal/models"
)

// ReplaySolver returns a sample set saved by an earlier run. It lets a
// result be decoded again without calling a solver.
type ReplaySolver struct {
	path string
	set  *models.SampleSet
}

func NewReplaySolver(path string) (*ReplaySolver, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: replay solver requires a path", models.ErrInvalidInput)
	}
	return &ReplaySolver{path: path}, nil
}

func (s *ReplaySolver) Name() string { return string(EngineReplay) }

func (s *ReplaySolver) Initialize(ctx context.Context) error {
	set, err := LoadSampleSet(s.path)
	if err != nil {
		return models.NewUpstreamError(s.Name(), err)
	}
	s.set = set
	return nil
}

func (s *ReplaySolver) Shutdown(ctx context.Context) error { return nil }

func (s *ReplaySolver) Sample(ctx context.Context, model *models.Model) (*models.SampleSet, error) {
	if s.set == nil {
		if err := s.Initialize(ctx); err != nil {
			return nil, err
		}
	}
	return s.set, nil
}

// LoadSampleSet reads a JSON sample set from path.
func LoadSampleSet(path string) (*models.SampleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sample set: %w", err)
	}
	var set models.SampleSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing sample set %s: %w", path, err)
	}
	return &set, nil
}

// SaveSampleSet writes set to path as indented JSON.
func SaveSampleSet(path string, set *models.SampleSet) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sample set: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing sample set: %w", err)
	}
	return nil
}
