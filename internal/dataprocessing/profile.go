package dataprocessing

import (
	"strings"

	apperrors "epicli/internal/errors"
)

// SourceProfile describes the shape of a source file before any cleaning:
// its columns, its row count, and how many values each column is missing.
// Diagnostic only; profiling never mutates the source or the pipeline.
type SourceProfile struct {
	Columns       []string       `json:"columns"`
	RowCount      int            `json:"row_count"`
	MissingCounts map[string]int `json:"missing_counts"`
}

// ProfileSource reads a dataset once and reports its columns, row count, and
// per-column missing-value counts.
func ProfileSource(path string) (*SourceProfile, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewSchemaError("source has no header row", nil)
	}

	// On duplicate headers the first occurrence wins, matching the parser's
	// column mapping.
	header := rows[0]
	type column struct {
		name string
		idx  int
	}
	columns := make([]column, 0, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, column{name: name, idx: i})
	}

	profile := &SourceProfile{
		Columns:       make([]string, 0, len(columns)),
		MissingCounts: make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		profile.Columns = append(profile.Columns, c.name)
		profile.MissingCounts[c.name] = 0
	}

	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		profile.RowCount++
		for _, c := range columns {
			if cell(row, c.idx) == "" {
				profile.MissingCounts[c.name]++
			}
		}
	}

	return profile, nil
}
