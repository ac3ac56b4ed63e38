package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "epicli/internal/errors"
	"epicli/pkg/contracts/domain"
)

// Options are the recognized pipeline configuration options: the entity set
// to retain and an optional inclusive date range. Entities is a set: blank
// names and duplicates are rejected.
type Options struct {
	Entities  []string `validate:"required,min=1,unique,dive,required"`
	DateRange *domain.DateRange
}

// Result holds the cleaned output of one pipeline run. It is immutable once
// returned; the caller releases it by discarding the reference.
type Result struct {
	// Entities preserves the requested entity order for combined output.
	Entities []string
	// Series maps each entity found in the source to its cleaned series.
	// An entity present in the source but with no rows in the requested
	// range maps to an empty series.
	Series map[string]*domain.Series
	// Combined concatenates all series with their entity column, ordered by
	// entity (as requested) then date ascending.
	Combined []domain.Observation
	// ExtraColumns lists source columns outside the known schema, in header
	// order. Their values ride along in Combined via Observation.Extra.
	ExtraColumns []string
	// DroppedDates counts source rows discarded for unparseable dates.
	DroppedDates int
}

// Pipeline loads, cleans, and derives metrics over a tabular epidemiological
// dataset. It holds no state between runs; given the same source and options
// it produces identical results.
type Pipeline struct {
	logger   *slog.Logger
	cleaner  *Cleaner
	validate *validator.Validate
}

// NewPipeline creates a pipeline with the given logger.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:   logger,
		cleaner:  NewCleaner(),
		validate: validator.New(),
	}
}

// LoadAndClean runs the full pipeline against one source file:
//
//  1. filter rows to the requested entities
//  2. parse dates, dropping and counting unparseable rows
//  3. filter to the requested date range
//  4. sort each entity by date, resolving duplicate dates keep-last
//  5. interpolate interior gaps in every numeric column
//  6. compute derived metrics from the cleaned columns
//
// It fails with a schema error when required columns are absent and with an
// empty-selection error when none of the requested entities appear in the
// source. An entity that is present but has no rows inside the date range
// yields an empty series instead.
func (p *Pipeline) LoadAndClean(ctx context.Context, source string, opts Options) (*Result, error) {
	if err := p.validate.Struct(opts); err != nil {
		return nil, apperrors.NewValidationError("invalid pipeline options", err)
	}
	if opts.DateRange != nil && opts.DateRange.End.Before(opts.DateRange.Start) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("date range end %s precedes start %s",
				opts.DateRange.End.Format("2006-01-02"),
				opts.DateRange.Start.Format("2006-01-02")), nil)
	}

	logger := p.logger.With(slog.String("run_id", uuid.NewString()))
	logger.InfoContext(ctx, "pipeline run started",
		slog.String("source", source),
		slog.Int("entity_count", len(opts.Entities)))

	parsed, err := ParseSource(source, opts.Entities)
	if err != nil {
		return nil, err
	}

	if len(parsed.SeenEntities) == 0 {
		return nil, apperrors.NewEmptySelectionError(opts.Entities)
	}

	if parsed.DroppedDates > 0 {
		logger.WarnContext(ctx, "dropped rows with unparseable dates",
			slog.Int("dropped_count", parsed.DroppedDates))
	}

	series := p.cleaner.BuildSeries(parsed.Observations, opts.DateRange)

	// Entities seen in the source but filtered out entirely by the date
	// range still get an empty series.
	for entity := range parsed.SeenEntities {
		if _, ok := series[entity]; !ok {
			series[entity] = &domain.Series{Entity: entity}
		}
	}

	for _, s := range series {
		ComputeDerived(s)
	}

	result := &Result{
		Entities:     opts.Entities,
		Series:       series,
		Combined:     combine(opts.Entities, series),
		ExtraColumns: parsed.ExtraColumns,
		DroppedDates: parsed.DroppedDates,
	}

	logger.InfoContext(ctx, "pipeline run completed",
		slog.Int("series_count", len(result.Series)),
		slog.Int("combined_rows", len(result.Combined)),
		slog.Int("dropped_dates", result.DroppedDates))

	return result, nil
}

// combine concatenates the cleaned series in requested-entity order. Each
// series is already date-ascending.
func combine(entities []string, series map[string]*domain.Series) []domain.Observation {
	var combined []domain.Observation
	for _, entity := range entities {
		s, ok := series[entity]
		if !ok {
			continue
		}
		combined = append(combined, s.Observations...)
	}
	return combined
}
