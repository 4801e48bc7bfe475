package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spboyer/knapsack/internal/models"
	"github.com/spboyer/knapsack/internal/problem"
	"github.com/spboyer/knapsack/internal/projectconfig"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// problemFlags are the flags shared by every command that loads problems.
type problemFlags struct {
	costColumn   string
	weightColumn string
	capacity     float64
	start        int
	end          int
}

func (f *problemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.costColumn, "cost-column", "", "CSV column holding item costs (default from .knapsack.yaml, else \"cost\")")
	cmd.Flags().StringVar(&f.weightColumn, "weight-column", "", "CSV column holding item weights (default from .knapsack.yaml, else \"weight\")")
	cmd.Flags().Float64Var(&f.capacity, "capacity", 0, "Knapsack capacity (default: from the problem file, else floor(0.8 * total weight))")
	cmd.Flags().IntVar(&f.start, "start", 0, "First CSV data row to read (1-based)")
	cmd.Flags().IntVar(&f.end, "end", 0, "Last CSV data row to read (inclusive)")
}

// options merges the flags over the project configuration.
func (f *problemFlags) options(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) problem.Options {
	opts := problem.Options{
		CostColumn:   cfg.Data.CostColumn,
		WeightColumn: cfg.Data.WeightColumn,
		Start:        f.start,
		End:          f.end,
	}
	if f.costColumn != "" {
		opts.CostColumn = f.costColumn
	}
	if f.weightColumn != "" {
		opts.WeightColumn = f.weightColumn
	}
	if cmd.Flags().Changed("capacity") {
		c := f.capacity
		opts.Capacity = &c
	}
	return opts
}

func loadProblems(paths []string, opts problem.Options) ([]*models.Problem, error) {
	problems := make([]*models.Problem, 0, len(paths))
	for _, path := range paths {
		p, err := problem.Load(path, opts)
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// loadProjectConfig reads .knapsack.yaml from the working directory or one
// of its parents.
func loadProjectConfig() (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return projectconfig.Load(wd)
}

// parseParams turns repeated key=value flags into a solver params map.
// Values are read as YAML scalars so numbers and booleans keep their type.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --param %q must be key=value", models.ErrInvalidInput, pair)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
			v = raw
		}
		params[key] = v
	}
	return params, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
