package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spboyer/knapsack/internal/cache"
	"github.com/spboyer/knapsack/internal/decoder"
	"github.com/spboyer/knapsack/internal/models"
	"github.com/spboyer/knapsack/internal/pipeline"
	"github.com/spboyer/knapsack/internal/projectconfig"
	"github.com/spboyer/knapsack/internal/reporting"
	"github.com/spboyer/knapsack/internal/solver"
	"github.com/spboyer/knapsack/internal/sysinfo"
	"github.com/spboyer/knapsack/internal/utils"
	"github.com/spf13/cobra"
)

type solveOptions struct {
	problem problemFlags

	engine    string
	params    []string
	numReads  int
	seed      uint64
	timeLimit string
	workers   int
	jobs      int

	tieBreak  string
	tolerance float64

	enableCache  bool
	disableCache bool
	cacheDir     string

	format      string
	output      string
	upload      string
	hostInfo    bool
	saveSamples string
	verbose     bool
}

func newSolveCommand() *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve <problem-file>...",
		Short: "Solve one or more knapsack problems",
		Long: `Solve knapsack problems read from CSV, YAML or JSON files.

Each problem is encoded as a binary model, sampled by the configured solver
and decoded into the subset of items with the highest total cost whose total
weight fits the capacity. Several problems are solved concurrently.

Settings come from .knapsack.yaml when present; flags override them.

Exit codes: 0 when every problem was solved, 1 when at least one problem had
no feasible solution, 2 on any other error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return solveCommandE(cmd, args, &opts)
		},
	}

	opts.problem.register(cmd)
	cmd.Flags().StringVarP(&opts.engine, "engine", "e", "", "Solver engine: exact, anneal, remote, replay (default from .knapsack.yaml, else anneal)")
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "Engine parameter as key=value (can be repeated)")
	cmd.Flags().IntVar(&opts.numReads, "num-reads", 0, "Number of annealing reads")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed for the annealing solver")
	cmd.Flags().StringVar(&opts.timeLimit, "time-limit", "", "Time limit forwarded to the hosted solver (e.g. 30s)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent reads per problem for the annealing solver")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "Number of problems solved concurrently (default: 4)")
	cmd.Flags().StringVar(&opts.tieBreak, "tie-break", "", "Tie-break among equally good samples: first, lexicographic")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "Tolerance for binary values and energy comparisons")
	cmd.Flags().BoolVar(&opts.enableCache, "cache", false, "Enable sample set caching")
	cmd.Flags().BoolVar(&opts.disableCache, "no-cache", false, "Disable sample set caching")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Cache directory for sample sets (default: .knapsack-cache)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: text, json, markdown, html, junit")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().StringVar(&opts.upload, "upload", "", "Upload a JSON report to this Azure Blob container URL or directory")
	cmd.Flags().BoolVar(&opts.hostInfo, "host-info", false, "Include host details in the report")
	cmd.Flags().StringVar(&opts.saveSamples, "save-samples", "", "Directory to save raw sample sets for `knapsack decode`")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a line per problem as it completes")
	cmd.MarkFlagsMutuallyExclusive("cache", "no-cache")

	return cmd
}

// applySolveFlags overlays the flags that were set onto cfg.
func applySolveFlags(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, opts *solveOptions) {
	flags := cmd.Flags()
	if opts.engine != "" {
		cfg.Solver.Engine = opts.engine
	}
	if flags.Changed("num-reads") {
		cfg.Solver.NumReads = opts.numReads
	}
	if flags.Changed("seed") {
		seed := opts.seed
		cfg.Solver.Seed = &seed
	}
	if opts.timeLimit != "" {
		cfg.Solver.TimeLimit = opts.timeLimit
	}
	if flags.Changed("workers") {
		cfg.Solver.Workers = opts.workers
	}
	if opts.tieBreak != "" {
		cfg.Decode.TieBreak = opts.tieBreak
	}
	if flags.Changed("tolerance") {
		cfg.Decode.Tolerance = opts.tolerance
	}
	if opts.enableCache {
		cfg.Cache.Enabled = utils.Ptr(true)
	}
	if opts.disableCache {
		cfg.Cache.Enabled = utils.Ptr(false)
	}
	if opts.cacheDir != "" {
		// flag paths are relative to the working directory, not the config file
		abs, err := filepath.Abs(opts.cacheDir)
		if err == nil {
			cfg.Cache.Dir = abs
		}
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.upload != "" {
		cfg.Results.BlobURL = opts.upload
	}
}

// newRunner builds the solver and runner described by cfg.
func newRunner(cfg *projectconfig.ProjectConfig, extraParams map[string]any) (*pipeline.Runner, solver.Solver, error) {
	params := cfg.Solver.EngineParams()
	maps.Copy(params, extraParams)

	s, err := solver.Create(solver.Engine(cfg.Solver.Engine), params)
	if err != nil {
		return nil, nil, err
	}

	tieBreak, err := decoder.ParseTieBreak(cfg.Decode.TieBreak)
	if err != nil {
		return nil, nil, err
	}
	dec := &decoder.Decoder{Tolerance: cfg.Decode.Tolerance, TieBreak: tieBreak}

	runnerOpts := []pipeline.RunnerOption{
		pipeline.WithDecoder(dec),
		pipeline.WithParams(params),
	}
	if cfg.CacheEnabled() {
		dir := utils.ResolvePath(cfg.Cache.Dir, cfg.Dir)
		runnerOpts = append(runnerOpts, pipeline.WithCache(cache.New(dir)))
	}
	return pipeline.NewRunner(s, runnerOpts...), s, nil
}

func solveCommandE(cmd *cobra.Command, args []string, opts *solveOptions) error {
	ctx := cmd.Context()

	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	applySolveFlags(cmd, cfg, opts)

	format, err := reporting.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	extraParams, err := parseParams(opts.params)
	if err != nil {
		return err
	}

	problems, err := loadProblems(args, opts.problem.options(cmd, cfg))
	if err != nil {
		return err
	}

	runner, s, err := newRunner(cfg, extraParams)
	if err != nil {
		return err
	}

	progress := newProgressPrinter(cmd.ErrOrStderr(), opts.verbose)
	progress.Attach(runner, len(problems))
	results, err := runner.RunAll(ctx, problems, opts.jobs)
	progress.Stop()
	if err != nil {
		return err
	}

	if opts.saveSamples != "" {
		if err := saveSampleSets(opts.saveSamples, results); err != nil {
			return err
		}
	}

	reports := make([]*reporting.Report, len(results))
	for i, res := range results {
		reports[i] = reporting.NewReport(s.Name(), problems[i], res, nil)
	}
	if opts.hostInfo {
		info := sysinfo.Collect(ctx)
		for _, r := range reports {
			r.Host = &info
		}
	}

	if err := writeReports(cmd, reports, format, opts.output); err != nil {
		return err
	}

	if cfg.Results.BlobURL != "" {
		sink, err := reporting.NewSink(cfg.Results.BlobURL)
		if err != nil {
			return err
		}
		name := "knapsack-" + time.Now().UTC().Format("20060102T150405Z")
		if err := reporting.Publish(ctx, sink, name, reports, reporting.FormatJSON); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Uploaded report %s%s\n", name, reporting.FormatJSON.Extension()) //nolint:errcheck
	}

	return noSolutionError(reports)
}

func writeReports(cmd *cobra.Command, reports []*reporting.Report, format reporting.Format, output string) error {
	if output == "" {
		return reporting.Render(cmd.OutOrStdout(), reports, format)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := reporting.Render(f, reports, format); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", output) //nolint:errcheck
	return nil
}

func saveSampleSets(dir string, results []*pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating sample directory: %w", err)
	}
	for _, res := range results {
		if res == nil || res.SampleSet == nil {
			continue
		}
		path := filepath.Join(dir, res.Problem.Name+".samples.json")
		if err := solver.SaveSampleSet(path, res.SampleSet); err != nil {
			return err
		}
	}
	return nil
}

// noSolutionError returns a *NoSolutionError naming the infeasible
// problems, or nil when every problem was solved.
func noSolutionError(reports []*reporting.Report) error {
	var names []string
	for _, r := range reports {
		if r.Status == reporting.StatusInfeasible {
			names = append(names, r.Problem)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return &NoSolutionError{
		Message: fmt.Sprintf("%s: %d of %d problem(s): %s",
			models.ErrNoFeasibleSolution, len(names), len(reports), strings.Join(names, ", ")),
	}
}
