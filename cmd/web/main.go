package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"epicli/internal/config"
	"epicli/internal/dataprocessing"
	"epicli/internal/infrastructure"
	"epicli/internal/middleware"
	transporthttp "epicli/internal/transport/http"
	"epicli/pkg/contracts"
	"epicli/pkg/contracts/domain"
)

func main() {
	source := flag.String("source", "", "path to the dataset (CSV or XLSX); defaults to the configured pipeline source")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The pipeline runs once at startup; the server serves the immutable
	// result for its lifetime.
	pipeline := dataprocessing.NewPipeline(logger)
	result, err := pipeline.LoadAndClean(ctx, *source, dataprocessing.Options{
		Entities:  cfg.Pipeline.Entities,
		DateRange: dateRangeFromConfig(cfg.Pipeline),
	})
	if err != nil {
		logger.Error("Pipeline run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig())
	summaries := summarizer.Summarize(ctx, result)

	router := buildRouter(cfg, logger, result, summaries)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Data API listening",
			slog.Int("port", cfg.Server.Port),
			slog.Int("series_count", len(result.Series)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func buildRouter(cfg *config.Config, logger *slog.Logger, result *dataprocessing.Result, summaries []dataprocessing.EntitySummary) chi.Router {
	registry := prometheus.NewRegistry()
	requestCounter := middleware.NewRequestCounter(registry)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	r.Use(middleware.Metrics(requestCounter))

	handler := transporthttp.NewDataHandler(result, summaries, logger)
	r.Mount("/api", handler.Routes())

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]interface{}{
			"status":  "ok",
			"version": contracts.GetVersionInfo(),
		})
	})

	return r
}

// dateRangeFromConfig builds the optional inclusive range from the validated
// config strings. Open ends widen to the representable bounds.
func dateRangeFromConfig(cfg config.PipelineConfig) *domain.DateRange {
	if cfg.StartDate == "" && cfg.EndDate == "" {
		return nil
	}

	dateRange := &domain.DateRange{
		Start: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if cfg.StartDate != "" {
		if t, err := time.Parse("2006-01-02", cfg.StartDate); err == nil {
			dateRange.Start = t
		}
	}
	if cfg.EndDate != "" {
		if t, err := time.Parse("2006-01-02", cfg.EndDate); err == nil {
			dateRange.End = t
		}
	}
	return dateRange
}
