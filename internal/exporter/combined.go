package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"epicli/internal/dataprocessing"
	"epicli/pkg/contracts/domain"
)

// Exporter writes pipeline results to report files.
type Exporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewExporter creates an exporter writing through the given CSV writer.
func NewExporter(csv *CSVWriter, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{csv: csv, logger: logger}
}

// ExportCombined writes the combined long-format table to one CSV file.
// Unknown source columns ride along after the known and derived columns.
func (e *Exporter) ExportCombined(ctx context.Context, filename string, result *dataprocessing.Result) error {
	e.logger.InfoContext(ctx, "exporting combined table",
		slog.String("filename", filename),
		slog.Int("row_count", len(result.Combined)))

	headers := combinedHeader(result.ExtraColumns)
	sw, err := e.csv.CreateStreamWriter(filename, headers, true)
	if err != nil {
		return err
	}

	for _, obs := range result.Combined {
		if err := sw.WriteRecord(observationRow(&obs, result.ExtraColumns)); err != nil {
			sw.Close()
			return fmt.Errorf("failed to write combined row for %s %s: %w",
				obs.Entity, obs.Date.Format("2006-01-02"), err)
		}
	}

	return sw.Close()
}

// ExportPerEntity writes one CSV per entity series, concurrently. Filenames
// derive from the entity name, lowercased with spaces replaced.
func (e *Exporter) ExportPerEntity(ctx context.Context, result *dataprocessing.Result) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, entity := range result.Entities {
		series, ok := result.Series[entity]
		if !ok {
			continue
		}
		g.Go(func() error {
			filename := entityFilename(series.Entity)
			e.logger.InfoContext(ctx, "exporting entity series",
				slog.String("entity", series.Entity),
				slog.String("filename", filename),
				slog.Int("row_count", series.Len()))
			return e.exportSeries(filename, series)
		})
	}

	return g.Wait()
}

func (e *Exporter) exportSeries(filename string, series *domain.Series) error {
	sw, err := e.csv.CreateStreamWriter(filename, combinedHeader(nil), true)
	if err != nil {
		return err
	}

	for _, obs := range series.Observations {
		if err := sw.WriteRecord(observationRow(&obs, nil)); err != nil {
			sw.Close()
			return fmt.Errorf("failed to write row for %s %s: %w",
				obs.Entity, obs.Date.Format("2006-01-02"), err)
		}
	}

	return sw.Close()
}

// combinedHeader builds the export header: identity columns, known numeric
// columns, derived columns, then any extra source columns.
func combinedHeader(extraColumns []string) []string {
	headers := []string{domain.ColumnEntity, domain.ColumnDate}
	for _, col := range domain.NumericColumns() {
		headers = append(headers, col.Name)
	}
	for _, col := range domain.DerivedColumns() {
		headers = append(headers, col.Name)
	}
	headers = append(headers, extraColumns...)
	return headers
}

func observationRow(obs *domain.Observation, extraColumns []string) []string {
	row := []string{obs.Entity, obs.Date.Format("2006-01-02")}
	for _, col := range domain.NumericColumns() {
		row = append(row, formatValue(col.Get(obs)))
	}
	for _, col := range domain.DerivedColumns() {
		row = append(row, formatValue(col.Get(obs)))
	}
	for _, name := range extraColumns {
		row = append(row, obs.Extra[name])
	}
	return row
}

// formatValue renders a possibly-missing value; missing exports as blank,
// never as zero.
func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func entityFilename(entity string) string {
	name := strings.ToLower(strings.TrimSpace(entity))
	name = strings.ReplaceAll(name, " ", "_")
	return name + ".csv"
}
