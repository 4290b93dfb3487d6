package odds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopsight/hoopsight/internal/log"
)

func TestPredictionsSuccess(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predictions", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"sportsbook":      q.Get("sportsbook"),
			"model":           q.Get("model"),
			"kelly_criterion": q.Get("kelly_criterion"),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sportsbook":  "draftkings",
			"total_games": 1,
			"predictions": []map[string]any{
				{"home_team": "Lakers", "away_team": "Warriors", "predicted_winner": "Lakers"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, log.NewNop())
	payload, err := client.Predictions(context.Background(), "draftkings", "xgboost", true)

	require.NoError(t, err)
	assert.Equal(t, "draftkings", payload.Sportsbook)
	require.Len(t, payload.Predictions, 1)
	assert.Equal(t, "Lakers", payload.Predictions[0].HomeTeam)

	assert.Equal(t, "draftkings", gotQuery["sportsbook"])
	assert.Equal(t, "xgboost", gotQuery["model"])
	assert.Equal(t, "true", gotQuery["kelly_criterion"])
}

func TestPredictionsDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fanduel", r.URL.Query().Get("sportsbook"))
		assert.Equal(t, "xgboost", r.URL.Query().Get("model"))
		_, _ = w.Write([]byte(`{"sportsbook": "fanduel", "predictions": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, log.NewNop())
	_, err := client.Predictions(context.Background(), "", "", false)

	require.NoError(t, err)
}

func TestPredictionsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "feed exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, log.NewNop())
	_, err := client.Predictions(context.Background(), "fanduel", "xgboost", true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "feed exploded")
}

func TestPredictionsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"predictions": [broken`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, log.NewNop())
	_, err := client.Predictions(context.Background(), "fanduel", "xgboost", true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding predictions payload")
}

func TestPredictionsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0, log.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Predictions(ctx, "fanduel", "xgboost", true)
	require.Error(t, err)
}

func TestSupportedSportsbooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sportsbooks", r.URL.Path)
		_, _ = w.Write([]byte(`{"supported_sportsbooks": ["fanduel", "caesars"]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, log.NewNop())
	books := client.SupportedSportsbooks(context.Background())

	assert.Equal(t, []string{"fanduel", "caesars"}, books)
}

func TestSupportedSportsbooksFallback(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond, log.NewNop())

	books := client.SupportedSportsbooks(context.Background())

	assert.Equal(t, fallbackSportsbooks, books)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, log.NewNop())
	assert.True(t, client.Health(context.Background()))

	down := NewClient("http://127.0.0.1:1", 100*time.Millisecond, log.NewNop())
	assert.False(t, down.Health(context.Background()))
}
