package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hoopsight/hoopsight/internal/log"
	"github.com/hoopsight/hoopsight/internal/odds"
	"github.com/hoopsight/hoopsight/internal/prediction"
)

// OddsService is the odds feed as the HTTP layer needs it.
type OddsService interface {
	Predictions(ctx context.Context, sportsbook, model string, kellyCriterion bool) (*odds.FeedPayload, error)
	SupportedSportsbooks(ctx context.Context) []string
	Health(ctx context.Context) bool
}

// OddsHandler exposes the odds feed as mapped, render-ready predictions.
type OddsHandler struct {
	feed   OddsService
	logger log.Logger
}

// NewOddsHandler creates a new odds handler.
func NewOddsHandler(feed OddsService, logger log.Logger) *OddsHandler {
	return &OddsHandler{feed: feed, logger: logger}
}

// RegisterRoutes registers odds routes on the given mux.
func (h *OddsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/odds", h.predictions)
	mux.HandleFunc("GET /api/sportsbooks", h.sportsbooks)
}

// OddsResponse is the mapped odds payload returned to clients.
type OddsResponse struct {
	Sportsbook string                      `json:"sportsbook"`
	Timestamp  string                      `json:"timestamp,omitempty"`
	Games      []prediction.GamePrediction `json:"games"`
}

// predictions fetches the feed and returns it mapped into the render shape.
// Query parameters:
//   - sportsbook: defaults to fanduel; unsupported names are coerced there
//   - model: prediction model, defaults to xgboost
//   - kelly_criterion: include Kelly stakes, defaults to true
func (h *OddsHandler) predictions(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		h.logger.Error("odds feed is nil")
		writeError(w, http.StatusInternalServerError, "internal_error", "odds feed not configured")
		return
	}

	q := r.URL.Query()
	sportsbook := q.Get("sportsbook")
	if sportsbook == "" {
		sportsbook = odds.DefaultSportsbook
	}
	model := q.Get("model")
	if model == "" {
		model = odds.DefaultModel
	}
	kelly := true
	if raw := q.Get("kelly_criterion"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			kelly = parsed
		}
	}

	payload, err := h.feed.Predictions(r.Context(), sportsbook, model, kelly)
	if err != nil {
		h.logger.Error("odds fetch failed", "sportsbook", sportsbook, "error", err)
		writeError(w, http.StatusBadGateway, "feed_unavailable", "odds feed request failed")
		return
	}

	writeJSON(w, http.StatusOK, OddsResponse{
		Sportsbook: payload.Sportsbook,
		Timestamp:  payload.Timestamp,
		Games:      prediction.MapFeedPayload(payload),
	})
}

// sportsbooks returns the supported sportsbook list.
func (h *OddsHandler) sportsbooks(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		h.logger.Error("odds feed is nil")
		writeError(w, http.StatusInternalServerError, "internal_error", "odds feed not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sportsbooks": h.feed.SupportedSportsbooks(r.Context()),
	})
}
