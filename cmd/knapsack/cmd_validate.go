package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spboyer/knapsack/internal/models"
	"github.com/spboyer/knapsack/internal/problem"
	"github.com/spboyer/knapsack/internal/validation"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var flags problemFlags

	cmd := &cobra.Command{
		Use:   "validate <problem-file>...",
		Short: "Check problem files without solving them",
		Long: `Validate problem files.

YAML and JSON documents are checked against the problem schema and every
violation is listed with its location. CSV files are checked by reading the
cost and weight columns.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProjectConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg)
			out := cmd.OutOrStdout()

			failed := 0
			for _, path := range args {
				problems, err := validateFile(path, opts)
				if err != nil {
					problems = []string{err.Error()}
				}
				if len(problems) == 0 {
					fmt.Fprintf(out, "✓ %s\n", path) //nolint:errcheck
					continue
				}
				failed++
				fmt.Fprintf(out, "✗ %s\n", path) //nolint:errcheck
				for _, p := range problems {
					fmt.Fprintf(out, "    %s\n", p) //nolint:errcheck
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d file(s) failed validation", models.ErrInvalidInput, failed, len(args))
			}
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

// validateFile returns the schema violations of a problem document, or
// loads a CSV file and reports the first problem found.
func validateFile(path string, opts problem.Options) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		violations, err := validation.ValidateProblemFile(path)
		if err != nil || len(violations) > 0 {
			return violations, err
		}
	}
	// the schema cannot see NaN weights or a capacity override
	_, err := problem.Load(path, opts)
	return nil, err
}
