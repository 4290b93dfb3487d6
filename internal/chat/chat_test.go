package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hoopsight/hoopsight/internal/log"
	"github.com/hoopsight/hoopsight/internal/odds"
)

// scriptedModel returns queued replies in order; the last reply repeats if
// the queue runs out. A non-nil err fails every call.
type scriptedModel struct {
	replies []*Reply
	err     error

	calls     [][]*genai.Content
	withTools []bool
}

func (m *scriptedModel) Generate(_ context.Context, contents []*genai.Content, withTools bool) (*Reply, error) {
	m.calls = append(m.calls, contents)
	m.withTools = append(m.withTools, withTools)
	if m.err != nil {
		return nil, m.err
	}
	i := len(m.calls) - 1
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	return m.replies[i], nil
}

func toolCallReply(name string, args map[string]any) *Reply {
	call := &genai.FunctionCall{Name: name, Args: args}
	return &Reply{
		Content: &genai.Content{
			Role:  roleModel,
			Parts: []*genai.Part{{FunctionCall: call}},
		},
		FunctionCalls: []*genai.FunctionCall{call},
	}
}

func textReply(text string) *Reply {
	return &Reply{
		Text:    text,
		Content: genai.NewContentFromText(text, genai.RoleModel),
	}
}

func newTestChat(t *testing.T, model ModelClient, feed OddsFetcher, maxRounds int) *Chat {
	t.Helper()
	if feed == nil {
		feed = &fakeFeed{payload: &odds.FeedPayload{Sportsbook: "fanduel"}}
	}
	c, err := New(Config{
		Model:         model,
		Tools:         NewToolExecutor(feed, log.NewNop()),
		Logger:        log.NewNop(),
		MaxToolRounds: maxRounds,
	})
	require.NoError(t, err)
	return c
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Model: &scriptedModel{}})
	assert.Error(t, err)
}

func TestSendTurnPlainAnswer(t *testing.T) {
	model := &scriptedModel{replies: []*Reply{textReply("The spread looks generous tonight.")}}
	c := newTestChat(t, model, nil, 3)

	result := c.SendTurn(context.Background(), nil, "Thoughts on the spread?")

	assert.False(t, result.IsError)
	assert.Equal(t, "The spread looks generous tonight.", result.Text)
	assert.Nil(t, result.StructuredData)
	require.Len(t, model.calls, 1)
	assert.True(t, model.withTools[0])
}

func TestSendTurnToolLoop(t *testing.T) {
	final := "Celtics by six.\n```json\n" +
		`{"uiGamePrediction": {"game_identifier": "Celtics:Heat", "ai_prediction_details": {}}}` +
		"\n```"
	model := &scriptedModel{replies: []*Reply{
		toolCallReply(OddsToolName, map[string]any{"sportsbook": "fanduel"}),
		textReply(final),
	}}
	feed := &fakeFeed{payload: &odds.FeedPayload{Sportsbook: "fanduel"}}
	c := newTestChat(t, model, feed, 3)

	result := c.SendTurn(context.Background(), nil, "What are tonight's odds?")

	assert.False(t, result.IsError)
	assert.Equal(t, "Celtics by six.", result.Text)
	require.NotNil(t, result.StructuredData)
	assert.Contains(t, result.StructuredData, "uiGamePrediction")
	assert.Equal(t, "fanduel", feed.gotSportsbook)

	// Second call replays the model's tool-call turn plus the response.
	require.Len(t, model.calls, 2)
	second := model.calls[1]
	require.GreaterOrEqual(t, len(second), 3)
	last := second[len(second)-1]
	assert.Equal(t, roleUser, last.Role)
	require.Len(t, last.Parts, 1)
	require.NotNil(t, last.Parts[0].FunctionResponse)
	assert.Equal(t, OddsToolName, last.Parts[0].FunctionResponse.Name)
}

func TestSendTurnToolRoundCap(t *testing.T) {
	// Model requests tools forever; the loop must stop at the cap.
	model := &scriptedModel{replies: []*Reply{
		toolCallReply(OddsToolName, nil),
	}}
	c := newTestChat(t, model, nil, 2)

	result := c.SendTurn(context.Background(), nil, "odds?")

	// 1 initial call + 2 tool rounds.
	assert.Len(t, model.calls, 3)
	assert.False(t, result.IsError)
	assert.Equal(t, FallbackResponseMessage, result.Text)
}

func TestSendTurnSearchOnlyRoundSettles(t *testing.T) {
	// The model emits a call the executor does not handle; with no results
	// to submit, the reply in hand is final.
	reply := toolCallReply("UNKNOWN_TOOL", nil)
	reply.Text = "Grounded answer from search."
	model := &scriptedModel{replies: []*Reply{reply}}
	c := newTestChat(t, model, nil, 3)

	result := c.SendTurn(context.Background(), nil, "any injury news?")

	assert.Len(t, model.calls, 1)
	assert.Equal(t, "Grounded answer from search.", result.Text)
	assert.False(t, result.IsError)
}

func TestSendTurnModelFailureBecomesApology(t *testing.T) {
	model := &scriptedModel{err: errors.New("invalid argument")}
	c := newTestChat(t, model, nil, 3)

	result := c.SendTurn(context.Background(), nil, "hello")

	assert.True(t, result.IsError)
	assert.Equal(t, ApologyMessage, result.Text)
}

func TestSendTurnEmptyResponseFallback(t *testing.T) {
	model := &scriptedModel{replies: []*Reply{textReply("   ")}}
	c := newTestChat(t, model, nil, 3)

	result := c.SendTurn(context.Background(), nil, "hello")

	assert.False(t, result.IsError)
	assert.Equal(t, FallbackResponseMessage, result.Text)
}

func TestSendTurnNormalizesHistory(t *testing.T) {
	model := &scriptedModel{replies: []*Reply{textReply("ok")}}
	c := newTestChat(t, model, nil, 3)

	history := []*genai.Content{
		modelTurn(Greeting), // dropped
		userTurn("earlier question"),
		modelTurn("earlier answer"),
	}
	c.SendTurn(context.Background(), history, "follow-up")

	require.Len(t, model.calls, 1)
	sent := model.calls[0]
	require.Len(t, sent, 3)
	assert.Equal(t, roleUser, sent[0].Role)
	assert.Equal(t, "follow-up", sent[2].Parts[0].Text)
}

func TestSendTurnPassesGroundingSources(t *testing.T) {
	reply := textReply("sourced answer")
	reply.Sources = []GroundingSource{{URI: "https://example.com", Title: "Example"}}
	model := &scriptedModel{replies: []*Reply{reply}}
	c := newTestChat(t, model, nil, 3)

	result := c.SendTurn(context.Background(), nil, "who's injured?")

	require.Len(t, result.GroundingSources, 1)
	assert.Equal(t, "https://example.com", result.GroundingSources[0].URI)
}
