// Package http exposes the cleaned pipeline result over a read-only JSON
// API. Chart frontends consume these endpoints; the server never mutates
// the result.
package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"epicli/internal/dataprocessing"
	"epicli/internal/middleware"
)

// DataHandler serves the in-memory pipeline result.
type DataHandler struct {
	result    *dataprocessing.Result
	summaries []dataprocessing.EntitySummary
	logger    *slog.Logger
}

// NewDataHandler creates a data handler over one pipeline result.
func NewDataHandler(result *dataprocessing.Result, summaries []dataprocessing.EntitySummary, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		result:    result,
		summaries: summaries,
		logger:    logger.With(slog.String("component", "data_handler")),
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/series", h.GetCombined)
	r.Get("/series/{entity}", h.GetSeries)
	r.Get("/summaries", h.GetSummaries)

	return r
}

// GetCombined handles GET /api/series
func (h *DataHandler) GetCombined(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "serving combined table",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("row_count", len(h.result.Combined)))

	render.JSON(w, r, map[string]interface{}{
		"status":        "success",
		"entities":      h.result.Entities,
		"rows":          h.result.Combined,
		"count":         len(h.result.Combined),
		"dropped_dates": h.result.DroppedDates,
	})
}

// GetSeries handles GET /api/series/{entity}
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	if decoded, err := url.PathUnescape(entity); err == nil {
		entity = decoded
	}

	series, ok := h.result.Series[entity]
	if !ok {
		h.logger.WarnContext(r.Context(), "series not found",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("entity", entity))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]interface{}{
			"status": "error",
			"error":  "series not found",
			"entity": entity,
		})
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"series": series,
		"count":  series.Len(),
	})
}

// GetSummaries handles GET /api/summaries
func (h *DataHandler) GetSummaries(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"summaries": h.summaries,
		"count":     len(h.summaries),
	})
}
