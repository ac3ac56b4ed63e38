package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "epicli/internal/errors"
	"epicli/pkg/contracts/domain"
)

// dateLayouts are the accepted forms of the date column. The dataset ships
// plain ISO-8601 dates; timestamp variants appear in some re-exports.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseResult holds the raw observations extracted from a source, restricted
// to the requested entities, before cleaning.
type ParseResult struct {
	Observations []domain.Observation
	// DroppedDates counts rows discarded for unparseable date values.
	DroppedDates int
	// SeenEntities records which requested entities appeared anywhere in the
	// source, including rows later dropped for bad dates. Used to tell an
	// empty selection apart from an empty range.
	SeenEntities map[string]bool
	// ExtraColumns lists source columns outside the known schema, in header
	// order. Their values are passed through untouched.
	ExtraColumns []string
}

// ParseSource reads a delimited or spreadsheet dataset and extracts the
// observations for the requested entities. The format is chosen by file
// extension: .xlsx via spreadsheet parsing, anything else as CSV.
func ParseSource(path string, entities []string) (*ParseResult, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	return parseRows(rows, entities)
}

// ParseCSV extracts observations from CSV content on r.
func ParseCSV(r io.Reader, entities []string) (*ParseResult, error) {
	rows, err := readCSVRows(r)
	if err != nil {
		return nil, err
	}
	return parseRows(rows, entities)
}

// readRows loads all rows, header included, from a CSV or XLSX file.
func readRows(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSXRows(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open source file", err).WithContext("path", path)
	}
	defer f.Close()

	return readCSVRows(f)
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV content", err)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook contains no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	return rows, nil
}

// parseRows maps header columns, checks the schema, and extracts observations
// for the requested entities in source order.
func parseRows(rows [][]string, entities []string) (*ParseResult, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewSchemaError("source has no header row", requiredColumnNames())
	}

	columnMap, extraColumns := mapColumns(rows[0])

	if missing := missingRequiredColumns(columnMap); len(missing) > 0 {
		return nil, apperrors.NewSchemaError("required columns missing from source", missing)
	}

	requested := make(map[string]bool, len(entities))
	for _, e := range entities {
		requested[e] = true
	}

	result := &ParseResult{
		SeenEntities: make(map[string]bool, len(entities)),
		ExtraColumns: extraColumns,
	}

	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}

		entity := cell(row, columnMap[domain.ColumnEntity])
		if !requested[entity] {
			continue
		}
		result.SeenEntities[entity] = true

		date, ok := parseDate(cell(row, columnMap[domain.ColumnDate]))
		if !ok {
			result.DroppedDates++
			continue
		}

		obs := domain.Observation{Entity: entity, Date: date}
		for _, col := range domain.NumericColumns() {
			idx, exists := columnMap[col.Name]
			if !exists {
				continue
			}
			col.Set(&obs, parseNumericCell(cell(row, idx)))
		}

		if len(extraColumns) > 0 {
			obs.Extra = make(map[string]string, len(extraColumns))
			for _, name := range extraColumns {
				obs.Extra[name] = cell(row, columnMap[name])
			}
		}

		result.Observations = append(result.Observations, obs)
	}

	return result, nil
}

// mapColumns maps every header name to its position and collects the headers
// outside the known schema. On duplicate headers the first occurrence wins.
func mapColumns(header []string) (map[string]int, []string) {
	known := map[string]bool{
		domain.ColumnEntity: true,
		domain.ColumnDate:   true,
	}
	for _, col := range domain.NumericColumns() {
		known[col.Name] = true
	}

	columnMap := make(map[string]int, len(header))
	var extra []string
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, exists := columnMap[name]; exists {
			continue
		}
		columnMap[name] = i
		if !known[name] {
			extra = append(extra, name)
		}
	}
	return columnMap, extra
}

func requiredColumnNames() []string {
	names := []string{domain.ColumnEntity, domain.ColumnDate}
	for _, col := range domain.NumericColumns() {
		if col.Required {
			names = append(names, col.Name)
		}
	}
	return names
}

func missingRequiredColumns(columnMap map[string]int) []string {
	var missing []string
	for _, name := range requiredColumnNames() {
		if _, exists := columnMap[name]; !exists {
			missing = append(missing, name)
		}
	}
	return missing
}

// parseDate normalizes a date cell to UTC midnight.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseNumericCell converts a cell to a float pointer. Blank and unparseable
// cells are missing values, not zeros.
func parseNumericCell(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
