// Package wizard collects project settings interactively for `knapsack init`.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/knapsack/internal/decoder"
	"github.com/spboyer/knapsack/internal/projectconfig"
	"github.com/spboyer/knapsack/internal/reporting"
	"github.com/spboyer/knapsack/internal/solver"
	"golang.org/x/term"
)

// InitSpec holds all fields collected during the interactive wizard.
type InitSpec struct {
	Engine       string
	NumReads     int
	CostColumn   string
	WeightColumn string
	TieBreak     string
	CacheEnabled bool
	CacheDir     string
	OutputFormat string
}

// DefaultSpec returns the answers pre-filled in the form.
func DefaultSpec() *InitSpec {
	return &InitSpec{
		Engine:       projectconfig.DefaultEngine,
		NumReads:     projectconfig.DefaultNumReads,
		CostColumn:   projectconfig.DefaultCostColumn,
		WeightColumn: projectconfig.DefaultWeightColumn,
		TieBreak:     projectconfig.DefaultTieBreak,
		CacheDir:     projectconfig.DefaultCacheDir,
		OutputFormat: projectconfig.DefaultOutputFormat,
	}
}

const configTemplate = `# knapsack project configuration
solver:
  engine: {{ .Engine }}
{{- if eq .Engine "anneal" }}
  num_reads: {{ .NumReads }}
{{- end }}

data:
  cost_column: {{ .CostColumn }}
  weight_column: {{ .WeightColumn }}

decode:
  tie_break: {{ .TieBreak }}

cache:
  enabled: {{ .CacheEnabled }}
{{- if .CacheEnabled }}
  dir: {{ .CacheDir }}
{{- end }}

output:
  format: {{ .OutputFormat }}
`

// RunInitWizard runs an interactive huh form to collect project settings.
// Fields start from defaults.
func RunInitWizard(in io.Reader, out io.Writer, defaults *InitSpec) (*InitSpec, error) {
	if defaults == nil {
		defaults = DefaultSpec()
	}
	spec := *defaults
	numReads := strconv.Itoa(spec.NumReads)

	engineOpts := make([]huh.Option[string], 0, len(solver.Engines))
	for _, e := range solver.Engines {
		engineOpts = append(engineOpts, huh.NewOption(string(e), string(e)))
	}
	formatOpts := make([]huh.Option[string], 0, len(reporting.Formats))
	for _, f := range reporting.Formats {
		formatOpts = append(formatOpts, huh.NewOption(string(f), string(f)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Solver engine").
				Description("exact enumerates every subset; anneal samples large problems").
				Options(engineOpts...).
				Value(&spec.Engine),
			huh.NewInput().
				Title("Number of reads").
				Description("Independent annealing runs per problem").
				Value(&numReads).
				Validate(validateNumReads),
			huh.NewInput().
				Title("Cost column").
				Value(&spec.CostColumn).
				Validate(requireColumn),
			huh.NewInput().
				Title("Weight column").
				Value(&spec.WeightColumn).
				Validate(requireColumn),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Tie-break").
				Description("Which optimal sample wins when several share the best cost").
				Options(
					huh.NewOption(string(decoder.TieBreakFirst), string(decoder.TieBreakFirst)),
					huh.NewOption(string(decoder.TieBreakLexicographic), string(decoder.TieBreakLexicographic)),
				).
				Value(&spec.TieBreak),
			huh.NewConfirm().
				Title("Cache sample sets?").
				Value(&spec.CacheEnabled),
			huh.NewInput().
				Title("Cache directory").
				Value(&spec.CacheDir),
			huh.NewSelect[string]().
				Title("Output format").
				Options(formatOpts...).
				Value(&spec.OutputFormat),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	spec.NumReads, _ = strconv.Atoi(strings.TrimSpace(numReads))
	spec.CostColumn = strings.TrimSpace(spec.CostColumn)
	spec.WeightColumn = strings.TrimSpace(spec.WeightColumn)
	spec.CacheDir = strings.TrimSpace(spec.CacheDir)
	return &spec, nil
}

// GenerateConfig renders a .knapsack.yaml from the given spec.
func GenerateConfig(spec *InitSpec) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func validateNumReads(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("number of reads must be a positive integer")
	}
	return nil
}

func requireColumn(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("column name is required")
	}
	return nil
}
