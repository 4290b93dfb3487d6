package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPreloadPayload() map[string]any {
	return map[string]any{
		"sportsbook": "fanduel",
		"predictions": []any{
			map[string]any{"home_team": "Lakers", "away_team": "Warriors"},
		},
	}
}

func TestFormatPreloadedSuccess(t *testing.T) {
	narrated := "Lakers at home.\n```json\n" +
		`{"uiGamePrediction": {"game_identifier": "Lakers:Warriors", "ai_prediction_details": {}}}` +
		"\n```"
	model := &scriptedModel{replies: []*Reply{textReply(narrated)}}
	c := newTestChat(t, model, nil, 3)

	result := c.FormatPreloaded(context.Background(), validPreloadPayload(), "tonight's games")

	assert.False(t, result.IsError)
	assert.Equal(t, "Lakers at home.", result.Text)
	require.NotNil(t, result.StructuredData)

	// Preload generates without tools: the data is already in hand.
	require.Len(t, model.withTools, 1)
	assert.False(t, model.withTools[0])
}

func TestFormatPreloadedRejectsBadShape(t *testing.T) {
	model := &scriptedModel{replies: []*Reply{textReply("never called")}}
	c := newTestChat(t, model, nil, 3)

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"nil payload", nil},
		{"missing sportsbook", map[string]any{"predictions": []any{}}},
		{"missing predictions", map[string]any{"sportsbook": "fanduel"}},
		{"predictions not an array", map[string]any{"sportsbook": "fanduel", "predictions": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.FormatPreloaded(context.Background(), tt.payload, "")

			assert.True(t, result.IsError)
			assert.Contains(t, result.Text, "trouble with the initial game data")
		})
	}
	assert.Empty(t, model.calls, "the model must not be invoked for invalid payloads")
}

func TestFormatPreloadedEmptyPredictions(t *testing.T) {
	model := &scriptedModel{replies: []*Reply{textReply("never called")}}
	c := newTestChat(t, model, nil, 3)

	result := c.FormatPreloaded(context.Background(), map[string]any{
		"sportsbook":  "draftkings",
		"predictions": []any{},
	}, "")

	assert.False(t, result.IsError)
	assert.Contains(t, result.Text, "appears to be empty")
	assert.Contains(t, result.Text, "draftkings")
	assert.Empty(t, model.calls)
}

func TestFormatPreloadedSoftFailWithoutStructuredBlock(t *testing.T) {
	model := &scriptedModel{replies: []*Reply{textReply("Just prose, no block.")}}
	c := newTestChat(t, model, nil, 3)

	result := c.FormatPreloaded(context.Background(), validPreloadPayload(), "")

	assert.False(t, result.IsError)
	assert.Contains(t, result.Text, "had some trouble formatting")
	assert.Contains(t, result.Text, "fanduel")
}

func TestFormatPreloadedModelFailureBecomesApology(t *testing.T) {
	model := &scriptedModel{err: errors.New("permission denied")}
	c := newTestChat(t, model, nil, 3)

	result := c.FormatPreloaded(context.Background(), validPreloadPayload(), "")

	assert.True(t, result.IsError)
	assert.Equal(t, ApologyMessage, result.Text)
}
