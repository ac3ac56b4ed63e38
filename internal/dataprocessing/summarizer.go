package dataprocessing

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	apperrors "epicli/internal/errors"
	"epicli/pkg/contracts/domain"
)

// Summarizer generates per-entity snapshot summaries from a pipeline result.
type Summarizer struct {
	logger     *slog.Logger
	dateFormat string
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	DateFormat string // format for date strings in output
}

// DefaultSummarizerConfig returns the configuration for typical use.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{DateFormat: "2006-01-02"}
}

// EntitySummary is the latest-snapshot summary for one entity: the most
// recent cleaned values plus the peak of the derived daily-new-cases metric.
type EntitySummary struct {
	Entity                  string   `json:"entity"`
	Observations            int      `json:"observations"`
	FirstDate               string   `json:"first_date,omitempty"`
	LastDate                string   `json:"last_date,omitempty"`
	LatestTotalCases        *float64 `json:"latest_total_cases,omitempty"`
	LatestTotalDeaths       *float64 `json:"latest_total_deaths,omitempty"`
	LatestTotalVaccinations *float64 `json:"latest_total_vaccinations,omitempty"`
	// VaccinatedPerHundred is the most recent non-missing coverage value,
	// which may come from an earlier date than LastDate.
	VaccinatedPerHundred  *float64 `json:"vaccinated_per_hundred,omitempty"`
	LatestDeathRate       *float64 `json:"latest_death_rate,omitempty"`
	PeakDailyNewCases     *float64 `json:"peak_daily_new_cases,omitempty"`
	PeakDailyNewCasesDate string   `json:"peak_daily_new_cases_date,omitempty"`
}

// NewSummarizer creates an entity summarizer with the given configuration.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.DateFormat == "" {
		config.DateFormat = "2006-01-02"
	}
	return &Summarizer{
		logger:     logger,
		dateFormat: config.DateFormat,
	}
}

// Summarize generates one summary per entity in the result, sorted by entity
// name for stable output. Entities with empty series produce a summary with
// zero observations and no snapshot values.
func (s *Summarizer) Summarize(ctx context.Context, result *Result) []EntitySummary {
	summaries := make([]EntitySummary, 0, len(result.Series))
	for _, series := range result.Series {
		summaries = append(summaries, s.summarizeSeries(series))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Entity < summaries[j].Entity
	})

	s.logger.InfoContext(ctx, "generated entity summaries",
		slog.Int("entity_count", len(summaries)))

	return summaries
}

func (s *Summarizer) summarizeSeries(series *domain.Series) EntitySummary {
	summary := EntitySummary{
		Entity:       series.Entity,
		Observations: series.Len(),
	}
	if series.Len() == 0 {
		return summary
	}

	first := series.Observations[0]
	last := series.Observations[series.Len()-1]
	summary.FirstDate = first.Date.Format(s.dateFormat)
	summary.LastDate = last.Date.Format(s.dateFormat)
	summary.LatestTotalCases = last.TotalCases
	summary.LatestTotalDeaths = last.TotalDeaths
	summary.LatestTotalVaccinations = last.TotalVaccinations
	summary.LatestDeathRate = last.DeathRate
	summary.VaccinatedPerHundred = latestCoverage(series.Observations)

	if peak, date, ok := peakDailyNewCases(series.Observations); ok {
		summary.PeakDailyNewCases = &peak
		summary.PeakDailyNewCasesDate = date.Format(s.dateFormat)
	}

	return summary
}

// latestCoverage walks backwards to the most recent non-missing vaccination
// coverage value. Trailing gaps are never extrapolated by the cleaner, so
// the last observation can legitimately be missing.
func latestCoverage(observations []domain.Observation) *float64 {
	for i := len(observations) - 1; i >= 0; i-- {
		if v := observations[i].PeopleVaccinatedPerHundred; v != nil {
			return v
		}
	}
	return nil
}

func peakDailyNewCases(observations []domain.Observation) (float64, time.Time, bool) {
	var peak float64
	var peakDate time.Time
	found := false
	for _, obs := range observations {
		if obs.DailyNewCases == nil {
			continue
		}
		if !found || *obs.DailyNewCases > peak {
			peak = *obs.DailyNewCases
			peakDate = obs.Date
			found = true
		}
	}
	return peak, peakDate, found
}

// WriteCSV writes entity summaries to a CSV file.
func (s *Summarizer) WriteCSV(ctx context.Context, path string, summaries []EntitySummary) error {
	s.logger.InfoContext(ctx, "writing entity summaries to CSV",
		slog.String("path", path),
		slog.Int("summary_count", len(summaries)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory for CSV output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create CSV file for entity summaries", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Entity", "Observations", "FirstDate", "LastDate",
		"LatestTotalCases", "LatestTotalDeaths", "LatestTotalVaccinations",
		"VaccinatedPerHundred", "LatestDeathRate",
		"PeakDailyNewCases", "PeakDailyNewCasesDate",
	}
	if err := writer.Write(header); err != nil {
		return apperrors.NewStorageError("failed to write CSV header row", err)
	}

	for _, summary := range summaries {
		row := []string{
			summary.Entity,
			strconv.Itoa(summary.Observations),
			summary.FirstDate,
			summary.LastDate,
			formatOptional(summary.LatestTotalCases),
			formatOptional(summary.LatestTotalDeaths),
			formatOptional(summary.LatestTotalVaccinations),
			formatOptional(summary.VaccinatedPerHundred),
			formatOptional(summary.LatestDeathRate),
			formatOptional(summary.PeakDailyNewCases),
			summary.PeakDailyNewCasesDate,
		}
		if err := writer.Write(row); err != nil {
			return apperrors.NewStorageError("failed to write CSV data row", err)
		}
	}

	return nil
}

// WriteJSON writes entity summaries to a JSON file with metadata.
func (s *Summarizer) WriteJSON(ctx context.Context, path string, summaries []EntitySummary) error {
	s.logger.InfoContext(ctx, "writing entity summaries to JSON",
		slog.String("path", path),
		slog.Int("summary_count", len(summaries)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory for JSON output", err)
	}

	jsonData := map[string]interface{}{
		"entities":     summaries,
		"count":        len(summaries),
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"format":       "entity_summary_v1",
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create JSON file for entity summaries", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(jsonData); err != nil {
		return apperrors.NewStorageError("failed to encode entity summaries to JSON", err)
	}

	return nil
}

// formatOptional renders a possibly-missing value; missing stays blank.
func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
