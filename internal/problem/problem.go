// Package problem loads knapsack instances from CSV, YAML or JSON files.
package problem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/knapsack/internal/dataset"
	"github.com/spboyer/knapsack/internal/models"
	"github.com/spboyer/knapsack/internal/validation"
	"gopkg.in/yaml.v3"
)

// Options control how a problem file is read.
type Options struct {
	// CostColumn and WeightColumn name the CSV columns. Empty means the
	// dataset defaults.
	CostColumn   string
	WeightColumn string

	// Capacity overrides the capacity stored in the file.
	Capacity *float64

	// Start and End select a 1-based inclusive row range of a CSV file.
	// Zero values read every row.
	Start int
	End   int

	// Name overrides the problem name. Defaults to the file's base name.
	Name string
}

// Load reads the problem at path. The format is chosen by extension.
func Load(path string, opts Options) (*models.Problem, error) {
	var (
		p   *models.Problem
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		p, err = loadCSV(path, opts)
	case ".yaml", ".yml", ".json":
		p, err = loadDocument(path)
	default:
		return nil, fmt.Errorf("%w: unsupported problem file extension %q (want .csv, .yaml, .yml or .json)", models.ErrInvalidInput, ext)
	}
	if err != nil {
		return nil, err
	}

	if opts.Name != "" {
		p.Name = opts.Name
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if opts.Capacity != nil {
		c := *opts.Capacity
		p.Capacity = &c
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("problem %s: %w", path, err)
	}
	return p, nil
}

func loadCSV(path string, opts Options) (*models.Problem, error) {
	var (
		rows []dataset.Row
		err  error
	)
	if opts.Start > 0 || opts.End > 0 {
		start, end := opts.Start, opts.End
		if start == 0 {
			start = 1
		}
		if end == 0 {
			end = int(^uint(0) >> 1)
		}
		rows, err = dataset.LoadCSVRange(path, start, end)
	} else {
		rows, err = dataset.LoadCSV(path)
	}
	if err != nil {
		return nil, err
	}

	costCol := opts.CostColumn
	if costCol == "" {
		costCol = dataset.DefaultCostColumn
	}
	weightCol := opts.WeightColumn
	if weightCol == "" {
		weightCol = dataset.DefaultWeightColumn
	}
	costs, weights, err := dataset.ParseColumns(rows, costCol, weightCol)
	if err != nil {
		return nil, fmt.Errorf("csv: %s: %w", path, err)
	}
	p, err := models.NewProblem("", costs, weights)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		p.Items[i].Name = row["name"]
	}
	return p, nil
}

func loadDocument(path string) (*models.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading problem file: %w", err)
	}
	if errs := validation.ValidateProblemBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s does not match the problem schema:\n  %s",
			models.ErrInvalidInput, path, strings.Join(errs, "\n  "))
	}

	var p models.Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", models.ErrInvalidInput, path, err)
	}
	p.Reindex()
	return &p, nil
}
