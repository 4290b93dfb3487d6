// Package odds provides the HTTP client for the external odds-and-predictions
// backend, plus the wire types of its /predictions payload.
//
// The backend is an external collaborator: this package never interprets the
// prediction model, it only fetches and decodes. Failures surface as errors
// for the caller (the tool executor) to translate into tool-level error
// payloads.
package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hoopsight/hoopsight/internal/log"
)

const (
	// DefaultSportsbook is used when a request does not name a sportsbook.
	DefaultSportsbook = "fanduel"

	// DefaultModel is the prediction model requested when none is named.
	DefaultModel = "xgboost"

	// maxErrorBodyBytes bounds how much of an upstream error body is kept
	// for the error message.
	maxErrorBodyBytes = 512
)

// fallbackSportsbooks is returned by SupportedSportsbooks when the feed's
// /sportsbooks endpoint is unreachable.
var fallbackSportsbooks = []string{"fanduel", "draftkings", "betmgm"}

// Client is an HTTP client for the odds feed. It is stateless and safe for
// concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  log.Logger
}

// NewClient creates an odds feed client.
// baseURL is the feed's root (e.g. "http://localhost:8000"); timeout bounds
// each request, zero means no client-side timeout.
func NewClient(baseURL string, timeout time.Duration, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Predictions fetches GET /predictions with the given parameters.
// Empty sportsbook or model fall back to the feed defaults. Non-2xx responses
// and malformed bodies are returned as errors, never partial payloads.
func (c *Client) Predictions(ctx context.Context, sportsbook, model string, kellyCriterion bool) (*FeedPayload, error) {
	if sportsbook == "" {
		sportsbook = DefaultSportsbook
	}
	if model == "" {
		model = DefaultModel
	}

	q := url.Values{}
	q.Set("sportsbook", sportsbook)
	q.Set("model", model)
	q.Set("kelly_criterion", strconv.FormatBool(kellyCriterion))
	reqURL := c.baseURL + "/predictions?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building predictions request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching odds feed", "sportsbook", sportsbook, "model", model)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching predictions for %s: %w", sportsbook, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("odds feed returned status %d for %s: %s",
			resp.StatusCode, sportsbook, string(body))
	}

	var payload FeedPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding predictions payload: %w", err)
	}

	c.logger.Debug("odds feed payload received",
		"sportsbook", payload.Sportsbook,
		"predictions", len(payload.Predictions))
	return &payload, nil
}

// SupportedSportsbooks fetches the feed's supported sportsbook list.
// On any failure it returns a fixed fallback list instead of an error, so
// callers can always present something.
func (c *Client) SupportedSportsbooks(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sportsbooks", nil)
	if err != nil {
		return fallbackSportsbooks
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("failed to fetch sportsbooks, using fallback list", "error", err)
		return fallbackSportsbooks
	}
	defer resp.Body.Close() //nolint:errcheck

	var body struct {
		SupportedSportsbooks []string `json:"supported_sportsbooks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || len(body.SupportedSportsbooks) == 0 {
		c.logger.Warn("malformed sportsbooks response, using fallback list", "error", err)
		return fallbackSportsbooks
	}
	return body.SupportedSportsbooks
}

// Health reports whether the feed's /health endpoint answers 2xx.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
