// Package dataset reads item tables from CSV files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spboyer/knapsack/internal/models"
)

// Default column names for item tables.
const (
	DefaultCostColumn   = "cost"
	DefaultWeightColumn = "weight"
)

// Row maps column names to raw cell values for a single CSV row.
type Row map[string]string

// LoadCSV reads a CSV file and returns its rows. The first record is the
// header; header names and cells are trimmed of surrounding whitespace.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv: %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV parses CSV data from r. Lines starting with '#' are skipped.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", models.ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file (no header row)", models.ErrInvalidInput)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		// strip a UTF-8 byte order mark left by spreadsheet exports
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = strings.TrimSpace(record[j])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadCSVRange reads rows in the given range [start, end] (1-based, inclusive).
// Row 1 is the first data row (after headers). The end is clamped to the
// available rows.
func LoadCSVRange(path string, start, end int) ([]Row, error) {
	if start < 1 {
		return nil, fmt.Errorf("csv: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("csv: range end (%d) must be >= start (%d)", end, start)
	}

	allRows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}

	if start > len(allRows) {
		return []Row{}, nil
	}
	if end > len(allRows) {
		end = len(allRows)
	}
	return allRows[start-1 : end], nil
}

// ParseColumns extracts the cost and weight columns as numbers, in row
// order. Missing columns and non-numeric cells fail with
// models.ErrInvalidInput; rows are reported 1-based.
func ParseColumns(rows []Row, costColumn, weightColumn string) (costs, weights []float64, err error) {
	if len(rows) > 0 {
		for _, col := range []string{costColumn, weightColumn} {
			if _, ok := rows[0][col]; !ok {
				return nil, nil, fmt.Errorf("%w: missing column %q", models.ErrInvalidInput, col)
			}
		}
	}

	costs = make([]float64, len(rows))
	weights = make([]float64, len(rows))
	for i, row := range rows {
		if costs[i], err = parseNumber(row[costColumn]); err != nil {
			return nil, nil, fmt.Errorf("%w: row %d column %q: %v", models.ErrInvalidInput, i+1, costColumn, err)
		}
		if weights[i], err = parseNumber(row[weightColumn]); err != nil {
			return nil, nil, fmt.Errorf("%w: row %d column %q: %v", models.ErrInvalidInput, i+1, weightColumn, err)
		}
	}
	return costs, weights, nil
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}
