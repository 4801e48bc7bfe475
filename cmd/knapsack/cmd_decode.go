package main

import (
	"github.com/spboyer/knapsack/internal/reporting"
	"github.com/spboyer/knapsack/internal/solver"
	"github.com/spboyer/knapsack/internal/utils"
	"github.com/spf13/cobra"
)

func newDecodeCommand() *cobra.Command {
	var (
		flags    problemFlags
		samples  string
		tieBreak string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "decode <problem-file> --samples <sample-set.json>",
		Short: "Decode a saved sample set against a problem",
		Long: `Decode a sample set saved with "knapsack solve --save-samples" (or produced
by an external solver) against the problem it was sampled from.

The problem is encoded again so the capacity and item order match; no solver
is called.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProjectConfig()
			if err != nil {
				return err
			}
			cfg.Solver.Engine = string(solver.EngineReplay)
			cfg.Cache.Enabled = utils.Ptr(false)
			if tieBreak != "" {
				cfg.Decode.TieBreak = tieBreak
			}
			if format != "" {
				cfg.Output.Format = format
			}
			outFormat, err := reporting.ParseFormat(cfg.Output.Format)
			if err != nil {
				return err
			}

			p, err := loadProblems(args, flags.options(cmd, cfg))
			if err != nil {
				return err
			}
			runner, s, err := newRunner(cfg, map[string]any{"path": samples})
			if err != nil {
				return err
			}

			res, err := runner.Run(cmd.Context(), p[0])
			report := reporting.NewReport(s.Name(), p[0], res, err)
			if report.Status == reporting.StatusError {
				return err
			}

			reports := []*reporting.Report{report}
			if err := reporting.Render(cmd.OutOrStdout(), reports, outFormat); err != nil {
				return err
			}
			return noSolutionError(reports)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&samples, "samples", "s", "", "Sample set JSON file to decode")
	cmd.Flags().StringVar(&tieBreak, "tie-break", "", "Tie-break among equally good samples: first, lexicographic")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, markdown, html, junit")
	_ = cmd.MarkFlagRequired("samples")

	return cmd
}
