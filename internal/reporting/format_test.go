package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/knapsack/internal/models"
	"github.com/spboyer/knapsack/internal/sysinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"html", FormatHTML},
		{"junit", FormatJUnit},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("yaml")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".txt", FormatText.Extension())
	assert.Equal(t, ".json", FormatJSON.Extension())
	assert.Equal(t, ".md", FormatMarkdown.Extension())
	assert.Equal(t, ".html", FormatHTML.Extension())
	assert.Equal(t, ".xml", FormatJUnit.Extension())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "340", formatNumber(340))
	assert.Equal(t, "12,345", formatNumber(12345))
	assert.Equal(t, "-3", formatNumber(-3))
	assert.Equal(t, "2.50", formatNumber(2.5))
}

func TestRender_Text(t *testing.T) {
	r := NewReport("exact", testProblem(), testResult(), nil)
	r.Host = &sysinfo.Info{Hostname: "box", Cores: 4}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, []*Report{r}, FormatText))
	out := buf.String()

	assert.Contains(t, out, "Problem:   camping (3 items)")
	assert.Contains(t, out, "Status:    solved")
	assert.Contains(t, out, "Selected:  2 items, weight 6 / 20 (Sparse (30%)), cost 50")
	assert.Contains(t, out, "Samples:   10, Most samples were feasible (80%).")
	assert.Contains(t, out, "Elapsed:   1500ms")
	assert.Contains(t, out, "Host:")
	assert.NotContains(t, out, "=== Summary ===")
}

func TestRender_TextAlignsWideNames(t *testing.T) {
	p := testProblem()
	p.Items[1].Name = "コンロ"
	r := NewReport("exact", p, testResult(), nil)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, []*Report{r}, FormatText))

	var header, wide string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "NAME") {
			header = line
		}
		if strings.Contains(line, "コンロ") {
			wide = line
		}
	}
	require.NotEmpty(t, header)
	require.NotEmpty(t, wide)
	// every cell is padded to its column width in terminal cells
	assert.Equal(t, runewidth.StringWidth(header), runewidth.StringWidth(wide))
}

func TestRender_TextBatchIncludesSummary(t *testing.T) {
	a := NewReport("exact", testProblem(), testResult(), nil)
	b := NewReport("exact", &models.Problem{Name: "other"}, nil, fmt.Errorf("boom"))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, []*Report{a, b}, FormatText))
	assert.Contains(t, buf.String(), "Error:     boom")
	assert.Contains(t, buf.String(), "=== Summary ===")
}

func TestRender_JSON(t *testing.T) {
	r := NewReport("exact", testProblem(), testResult(), nil)

	var single bytes.Buffer
	require.NoError(t, Render(&single, []*Report{r}, FormatJSON))
	var obj map[string]any
	require.NoError(t, json.Unmarshal(single.Bytes(), &obj))
	assert.Equal(t, "camping", obj["problem"])
	assert.Equal(t, "solved", obj["status"])

	var batch bytes.Buffer
	require.NoError(t, Render(&batch, []*Report{r, r}, FormatJSON))
	var arr []map[string]any
	require.NoError(t, json.Unmarshal(batch.Bytes(), &arr))
	assert.Len(t, arr, 2)
}

func TestRender_Markdown(t *testing.T) {
	p := testProblem()
	p.Name = "a|b"
	r := NewReport("exact", p, testResult(), nil)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, []*Report{r}, FormatMarkdown))
	out := buf.String()
	assert.Contains(t, out, "# Knapsack results")
	assert.Contains(t, out, `| a\|b | exact | solved | 3 | 20 | 6 | 50 | 8 / 10 |`)
	assert.Contains(t, out, "| 1 | stove | 4 | 30 |")
}

func TestRender_MarkdownNoSelection(t *testing.T) {
	r := NewReport("exact", testProblem(), nil, fmt.Errorf("boom"))
	out := Markdown([]*Report{r})
	assert.Contains(t, out, "**Error:** boom")
	assert.Contains(t, out, "No items selected.")
}

func TestRender_HTML(t *testing.T) {
	r := NewReport("exact", testProblem(), testResult(), nil)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, []*Report{r}, FormatHTML))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h1>Knapsack results</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>stove</td>")
}

func TestRender_JUnit(t *testing.T) {
	r := NewReport("exact", testProblem(), testResult(), nil)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, []*Report{r}, FormatJUnit))
	assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))
	assert.Contains(t, buf.String(), `<testcase name="camping" classname="exact"`)
}

func TestRender_UnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, nil, Format("pdf"))
	require.ErrorIs(t, err, models.ErrInvalidInput)
}
