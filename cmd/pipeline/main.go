package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"epicli/internal/config"
	"epicli/internal/dataprocessing"
	"epicli/internal/exporter"
	"epicli/internal/infrastructure"
	"epicli/pkg/contracts"
	"epicli/pkg/contracts/domain"
)

func main() {
	source := flag.String("source", "", "path to the dataset (CSV or XLSX); defaults to the configured pipeline source")
	entities := flag.String("entities", "", "comma-separated entity names to retain; defaults to the configured set")
	start := flag.String("start", "", "inclusive range start (YYYY-MM-DD)")
	end := flag.String("end", "", "inclusive range end (YYYY-MM-DD)")
	profile := flag.Bool("profile", false, "print a source profile (columns, rows, missing counts) before running")
	version := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetVersionString())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		defaults := config.Default()
		cfg = &defaults
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if *source == "" {
		*source = cfg.Pipeline.Source
	}
	if *source == "" {
		logger.Error("No source file given; pass -source or set pipeline.source")
		os.Exit(1)
	}

	opts, err := buildOptions(cfg, *entities, *start, *end)
	if err != nil {
		logger.Error("Invalid pipeline options", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Starting pipeline run",
		slog.String("source", *source),
		slog.String("entities", strings.Join(opts.Entities, ",")),
		slog.String("reports_dir", paths.ReportsDir))

	ctx := context.Background()

	if *profile {
		printProfile(logger, *source)
	}

	pipeline := dataprocessing.NewPipeline(logger)
	result, err := pipeline.LoadAndClean(ctx, *source, opts)
	if err != nil {
		logger.Error("Pipeline run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Cleaned %d entities, %d combined rows (%d rows dropped for bad dates)\n",
		len(result.Series), len(result.Combined), result.DroppedDates)

	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig())
	summaries := summarizer.Summarize(ctx, result)

	exp := exporter.NewExporter(exporter.NewCSVWriter(paths), logger)
	if err := exp.ExportCombined(ctx, "combined.csv", result); err != nil {
		logger.Error("Failed to export combined table", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := exp.ExportPerEntity(ctx, result); err != nil {
		logger.Error("Failed to export entity series", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := summarizer.WriteCSV(ctx, paths.GetReportPath("summaries.csv"), summaries); err != nil {
		logger.Error("Failed to write summary CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := summarizer.WriteJSON(ctx, paths.GetReportPath("summaries.json"), summaries); err != nil {
		logger.Error("Failed to write summary JSON", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Pipeline run completed",
		slog.Int("series_count", len(result.Series)),
		slog.Int("combined_rows", len(result.Combined)),
		slog.Int("dropped_dates", result.DroppedDates))

	fmt.Printf("Reports written to %s\n", paths.ReportsDir)
}

// buildOptions merges CLI flags over the configured pipeline defaults.
func buildOptions(cfg *config.Config, entitiesFlag, startFlag, endFlag string) (dataprocessing.Options, error) {
	opts := dataprocessing.Options{Entities: cfg.Pipeline.Entities}

	if entitiesFlag != "" {
		opts.Entities = nil
		for _, e := range strings.Split(entitiesFlag, ",") {
			if e = strings.TrimSpace(e); e != "" {
				opts.Entities = append(opts.Entities, e)
			}
		}
	}

	startStr := cfg.Pipeline.StartDate
	endStr := cfg.Pipeline.EndDate
	if startFlag != "" {
		startStr = startFlag
	}
	if endFlag != "" {
		endStr = endFlag
	}

	if startStr == "" && endStr == "" {
		return opts, nil
	}

	dateRange := &domain.DateRange{
		// Open ends default to the widest representable bounds.
		Start: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if startStr != "" {
		t, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return opts, fmt.Errorf("invalid start date %q: %w", startStr, err)
		}
		dateRange.Start = t
	}
	if endStr != "" {
		t, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return opts, fmt.Errorf("invalid end date %q: %w", endStr, err)
		}
		dateRange.End = t
	}
	opts.DateRange = dateRange

	return opts, nil
}

func printProfile(logger *slog.Logger, source string) {
	profile, err := dataprocessing.ProfileSource(source)
	if err != nil {
		logger.Warn("Failed to profile source", slog.String("error", err.Error()))
		return
	}

	fmt.Printf("Source columns (%d): %s\n", len(profile.Columns), strings.Join(profile.Columns, ", "))
	fmt.Printf("Rows: %d\n", profile.RowCount)
	for _, col := range profile.Columns {
		if n := profile.MissingCounts[col]; n > 0 {
			fmt.Printf("  %s: %d missing\n", col, n)
		}
	}
}
