package main

import (
	"encoding/json"
	"fmt"

	"github.com/spboyer/knapsack/internal/encoder"
	"github.com/spboyer/knapsack/internal/problem"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newEncodeCommand() *cobra.Command {
	var (
		flags  problemFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "encode <problem-file>",
		Short: "Print the binary model built for a problem",
		Long: `Encode a knapsack problem and print the resulting model without solving it.

The model has one binary variable per item, labelled by the item's index, an
objective minimizing the negated total cost and a single "capacity"
constraint. Use it to inspect what a solver receives or to hand the model to
an external solver.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return encodeCommandE(cmd, args[0], &flags, format)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, yaml")

	return cmd
}

func encodeCommandE(cmd *cobra.Command, path string, flags *problemFlags, format string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}

	p, err := problem.Load(path, flags.options(cmd, cfg))
	if err != nil {
		return err
	}
	model, _, err := encoder.EncodeProblem(p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(model)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(model); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
