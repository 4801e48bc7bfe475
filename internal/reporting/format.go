package reporting

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/knapsack/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format is an output format for reports.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJUnit    Format = "junit"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown, FormatHTML, FormatJUnit}

// ParseFormat validates a format name. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case FormatText, FormatJSON, FormatMarkdown, FormatHTML, FormatJUnit:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q (want one of %v)", models.ErrInvalidInput, s, Formats)
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	case FormatJUnit:
		return ".xml"
	default:
		return ".txt"
	}
}

// numberPrinter formats quantities with digit grouping.
var numberPrinter = message.NewPrinter(language.English)

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return numberPrinter.Sprintf("%d", int64(f))
	}
	return numberPrinter.Sprintf("%.2f", f)
}

// Render writes reports to w in the given format. A single report renders
// as a JSON object; several as an array.
func Render(w io.Writer, reports []*Report, format Format) error {
	switch format {
	case FormatText, "":
		return renderText(w, reports)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(reports))
		return err
	case FormatHTML:
		return renderHTML(w, reports)
	case FormatJUnit:
		data, err := xml.MarshalIndent(ConvertToJUnit(reports), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JUnit XML: %w", err)
		}
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	default:
		return fmt.Errorf("%w: unknown output format %q", models.ErrInvalidInput, format)
	}
}

func renderText(w io.Writer, reports []*Report) error {
	var b strings.Builder
	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		writeTextReport(&b, r)
	}
	if len(reports) > 1 {
		b.WriteString("\n")
		b.WriteString(FormatSummary(reports))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTextReport(b *strings.Builder, r *Report) {
	solver := r.Solver
	if r.Cached {
		solver += " (cached)"
	}
	fmt.Fprintf(b, "Problem:   %s (%d items)\n", r.Problem, r.Items)
	fmt.Fprintf(b, "Solver:    %s\n", solver)
	fmt.Fprintf(b, "Status:    %s\n", r.Status)
	fmt.Fprintf(b, "Capacity:  %s\n", formatNumber(r.Capacity))
	if r.Error != "" {
		fmt.Fprintf(b, "Error:     %s\n", r.Error)
	}

	if sel := r.Selection; sel != nil {
		fmt.Fprintf(b, "Selected:  %d items, weight %s / %s (%s), cost %s\n",
			len(sel.Indices), formatNumber(sel.TotalWeight), formatNumber(r.Capacity),
			InterpretUtilization(sel.Utilization()), formatNumber(sel.TotalCost))
		if len(r.Selected) > 0 {
			b.WriteString("\n")
			writeItemTable(b, r.Selected)
		}
	}

	if r.Stats.Samples > 0 {
		b.WriteString("\n")
		fmt.Fprintf(b, "Samples:   %d, %s\n", r.Stats.Samples, InterpretFeasibleRatio(r.Stats.FeasibleRatio))
		if r.Stats.Feasible > 0 {
			fmt.Fprintf(b, "Energy:    best %s (%d hits), mean %s ± %s\n",
				formatNumber(r.Stats.BestEnergy), r.Stats.BestHits,
				formatNumber(r.Stats.MeanEnergy), formatNumber(r.Stats.StdDevEnergy))
		}
	}
	fmt.Fprintf(b, "Elapsed:   %dms\n", r.ElapsedMs)
	if r.Host != nil {
		fmt.Fprintf(b, "Host:      %s\n", r.Host)
	}
}

// writeItemTable writes an aligned table of items. Names may contain wide
// characters, so widths are measured in terminal cells.
func writeItemTable(b *strings.Builder, items []models.Item) {
	headers := []string{"#", "NAME", "WEIGHT", "COST"}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		name := it.Name
		if name == "" {
			name = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", it.Index),
			name,
			formatNumber(it.Weight),
			formatNumber(it.Cost),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	writeRow := func(cells []string) {
		b.WriteString("  ")
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			// text columns align left, numbers right
			if i == 1 {
				b.WriteString(padRight(cell, widths[i]))
			} else {
				b.WriteString(padLeft(cell, widths[i]))
			}
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}

// Markdown renders reports as a markdown document.
func Markdown(reports []*Report) string {
	var b strings.Builder
	b.WriteString("# Knapsack results\n\n")
	b.WriteString("| Problem | Solver | Status | Items | Capacity | Weight | Cost | Feasible samples |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|---:|\n")
	for _, r := range reports {
		weight, cost := "-", "-"
		if r.Selection != nil {
			weight = formatNumber(r.Selection.TotalWeight)
			cost = formatNumber(r.Selection.TotalCost)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s | %s | %d / %d |\n",
			escapeCell(r.Problem), r.Solver, r.Status, r.Items, formatNumber(r.Capacity),
			weight, cost, r.Stats.Feasible, r.Stats.Samples)
	}

	for _, r := range reports {
		fmt.Fprintf(&b, "\n## %s\n\n", r.Problem)
		if r.Error != "" {
			fmt.Fprintf(&b, "**Error:** %s\n\n", r.Error)
		}
		if len(r.Selected) == 0 {
			b.WriteString("No items selected.\n")
			continue
		}
		b.WriteString("| # | Name | Weight | Cost |\n|---:|---|---:|---:|\n")
		for _, it := range r.Selected {
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", it.Index, escapeCell(it.Name), formatNumber(it.Weight), formatNumber(it.Cost))
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func renderHTML(w io.Writer, reports []*Report) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(reports)), &body); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Knapsack results</title>\n</head>\n<body>\n%s</body>\n</html>\n", body.String())
	return err
}
