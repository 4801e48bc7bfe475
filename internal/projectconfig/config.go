// Package projectconfig provides the ProjectConfig struct and loader for
// .knapsack.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".knapsack.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultEngine   = "anneal"
	DefaultNumReads = 32
	DefaultWorkers  = 4

	DefaultCostColumn   = "cost"
	DefaultWeightColumn = "weight"

	DefaultTolerance = 1e-6
	DefaultTieBreak  = "first"

	DefaultCacheDir = ".knapsack-cache"

	DefaultOutputFormat = "text"
)

// SolverConfig selects and tunes the solver backend.
type SolverConfig struct {
	Engine    string         `yaml:"engine,omitempty"`
	TimeLimit string         `yaml:"time_limit,omitempty"`
	NumReads  int            `yaml:"num_reads,omitempty"`
	Seed      *uint64        `yaml:"seed,omitempty"`
	Workers   int            `yaml:"workers,omitempty"`
	Params    map[string]any `yaml:"params,omitempty"`
}

// DataConfig names the CSV columns holding item data.
type DataConfig struct {
	CostColumn   string `yaml:"cost_column,omitempty"`
	WeightColumn string `yaml:"weight_column,omitempty"`
}

// DecodeConfig tunes how solver results are read back.
type DecodeConfig struct {
	Tolerance float64 `yaml:"tolerance,omitempty"`
	TieBreak  string  `yaml:"tie_break,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format string `yaml:"format,omitempty"`
}

// ResultsConfig holds remote result upload settings.
type ResultsConfig struct {
	BlobURL string `yaml:"blob_url,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .knapsack.yaml.
type ProjectConfig struct {
	Solver  SolverConfig  `yaml:"solver,omitempty"`
	Data    DataConfig    `yaml:"data,omitempty"`
	Decode  DecodeConfig  `yaml:"decode,omitempty"`
	Cache   CacheConfig   `yaml:"cache,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Results ResultsConfig `yaml:"results,omitempty"`

	// Dir is the directory holding the loaded file, or "" when defaults
	// were used. Relative paths in the file resolve against it.
	Dir string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Solver: SolverConfig{
			Engine:   DefaultEngine,
			NumReads: DefaultNumReads,
			Workers:  DefaultWorkers,
		},
		Data: DataConfig{
			CostColumn:   DefaultCostColumn,
			WeightColumn: DefaultWeightColumn,
		},
		Decode: DecodeConfig{
			Tolerance: DefaultTolerance,
			TieBreak:  DefaultTieBreak,
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
	}
}

// Load finds .knapsack.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .knapsack.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Solver
	if src.Solver.Engine != "" {
		dst.Solver.Engine = src.Solver.Engine
	}
	if src.Solver.TimeLimit != "" {
		dst.Solver.TimeLimit = src.Solver.TimeLimit
	}
	if src.Solver.NumReads != 0 {
		dst.Solver.NumReads = src.Solver.NumReads
	}
	if src.Solver.Seed != nil {
		dst.Solver.Seed = src.Solver.Seed
	}
	if src.Solver.Workers != 0 {
		dst.Solver.Workers = src.Solver.Workers
	}
	if src.Solver.Params != nil {
		dst.Solver.Params = src.Solver.Params
	}

	// Data
	if src.Data.CostColumn != "" {
		dst.Data.CostColumn = src.Data.CostColumn
	}
	if src.Data.WeightColumn != "" {
		dst.Data.WeightColumn = src.Data.WeightColumn
	}

	// Decode
	if src.Decode.Tolerance != 0 {
		dst.Decode.Tolerance = src.Decode.Tolerance
	}
	if src.Decode.TieBreak != "" {
		dst.Decode.TieBreak = src.Decode.TieBreak
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	if src.Output.Format != "" {
		dst.Output.Format = src.Output.Format
	}
	if src.Results.BlobURL != "" {
		dst.Results.BlobURL = src.Results.BlobURL
	}
}

// EngineParams returns the params handed to the solver factory: the
// `params` map plus the shared solver settings. Keys already present in
// `params` win.
func (s SolverConfig) EngineParams() map[string]any {
	params := map[string]any{}
	if s.TimeLimit != "" {
		params["time_limit"] = s.TimeLimit
	}
	if s.NumReads != 0 {
		params["num_reads"] = s.NumReads
	}
	if s.Seed != nil {
		params["seed"] = *s.Seed
	}
	if s.Workers != 0 {
		params["workers"] = s.Workers
	}
	maps.Copy(params, s.Params)
	return params
}

// CacheEnabled reports whether sample set caching is on.
func (c *ProjectConfig) CacheEnabled() bool {
	return c.Cache.Enabled != nil && *c.Cache.Enabled
}

func boolPtr(b bool) *bool {
	return &b
}
