package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopsight/hoopsight/internal/log"
	"github.com/hoopsight/hoopsight/internal/odds"
)

// stubOddsService returns canned feed responses.
type stubOddsService struct {
	payload *odds.FeedPayload
	err     error
	books   []string
	healthy bool

	gotSportsbook string
	gotModel      string
	gotKelly      bool
}

func (s *stubOddsService) Predictions(_ context.Context, sportsbook, model string, kelly bool) (*odds.FeedPayload, error) {
	s.gotSportsbook = sportsbook
	s.gotModel = model
	s.gotKelly = kelly
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

func (s *stubOddsService) SupportedSportsbooks(context.Context) []string { return s.books }

func (s *stubOddsService) Health(context.Context) bool { return s.healthy }

func getOdds(t *testing.T, handler *OddsHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestOddsEndpointMapsPayload(t *testing.T) {
	feed := &stubOddsService{payload: &odds.FeedPayload{
		Sportsbook: "fanduel",
		Timestamp:  "2025-01-15T12:00:00Z",
		Predictions: []odds.FeedPrediction{
			{HomeTeam: "Lakers", AwayTeam: "Warriors", PredictedWinner: "Lakers"},
		},
	}}
	handler := NewOddsHandler(feed, log.NewNop())

	w := getOdds(t, handler, "/api/odds")

	require.Equal(t, http.StatusOK, w.Code)
	var resp OddsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fanduel", resp.Sportsbook)
	require.Len(t, resp.Games, 1)
	assert.Equal(t, "Lakers:Warriors", resp.Games[0].GameIdentifier)

	// Defaults applied when the query names nothing.
	assert.Equal(t, "fanduel", feed.gotSportsbook)
	assert.Equal(t, "xgboost", feed.gotModel)
	assert.True(t, feed.gotKelly)
}

func TestOddsEndpointQueryParameters(t *testing.T) {
	feed := &stubOddsService{payload: &odds.FeedPayload{Sportsbook: "betmgm"}}
	handler := NewOddsHandler(feed, log.NewNop())

	w := getOdds(t, handler, "/api/odds?sportsbook=betmgm&model=lightgbm&kelly_criterion=false")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "betmgm", feed.gotSportsbook)
	assert.Equal(t, "lightgbm", feed.gotModel)
	assert.False(t, feed.gotKelly)
}

func TestOddsEndpointFeedFailure(t *testing.T) {
	feed := &stubOddsService{err: errors.New("connection refused")}
	handler := NewOddsHandler(feed, log.NewNop())

	w := getOdds(t, handler, "/api/odds")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "feed_unavailable", resp.Error)
}

func TestSportsbooksEndpoint(t *testing.T) {
	feed := &stubOddsService{books: []string{"fanduel", "draftkings"}}
	handler := NewOddsHandler(feed, log.NewNop())

	w := getOdds(t, handler, "/api/sportsbooks")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"fanduel", "draftkings"}, resp["sportsbooks"])
}
