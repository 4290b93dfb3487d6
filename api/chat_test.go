package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hoopsight/hoopsight/internal/chat"
	"github.com/hoopsight/hoopsight/internal/log"
)

// stubChatService returns a canned result and records the last call.
type stubChatService struct {
	result *chat.Result

	gotHistory []*genai.Content
	gotText    string
	preloads   int
}

func (s *stubChatService) SendTurn(_ context.Context, history []*genai.Content, userText string) *chat.Result {
	s.gotHistory = history
	s.gotText = userText
	return s.result
}

func (s *stubChatService) FormatPreloaded(_ context.Context, _ map[string]any, userQueryHint string) *chat.Result {
	s.preloads++
	s.gotText = userQueryHint
	return s.result
}

func postChat(t *testing.T, handler *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestChatEndpoint(t *testing.T) {
	engine := &stubChatService{result: &chat.Result{
		Text:           "Lakers by six.",
		StructuredData: map[string]any{"uiGamePrediction": map[string]any{"game_identifier": "Lakers:Warriors"}},
	}}
	handler := NewChatHandler(engine, log.NewNop())

	w := postChat(t, handler, `{
		"message": "Who wins tonight?",
		"history": [
			{"role": "model", "parts": [{"text": "Hello!"}]},
			{"role": "user", "parts": [{"text": "hi"}]}
		]
	}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Lakers by six.", resp.Response)
	assert.Contains(t, resp.StructuredGameData, "uiGamePrediction")
	assert.False(t, resp.IsError)

	assert.Equal(t, "Who wins tonight?", engine.gotText)
	require.Len(t, engine.gotHistory, 2)
	assert.Equal(t, string(genai.RoleModel), engine.gotHistory[0].Role)
	assert.Equal(t, string(genai.RoleUser), engine.gotHistory[1].Role)
}

func TestChatEndpointPreloadPath(t *testing.T) {
	engine := &stubChatService{result: &chat.Result{Text: "narrated"}}
	handler := NewChatHandler(engine, log.NewNop())

	w := postChat(t, handler, `{
		"message": "today's games",
		"isInitialOddsQuery": true,
		"rawInitialOddsData": {"sportsbook": "fanduel", "predictions": []}
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, engine.preloads)
}

func TestChatEndpointValidation(t *testing.T) {
	handler := NewChatHandler(&stubChatService{result: &chat.Result{}}, log.NewNop())

	w := postChat(t, handler, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postChat(t, handler, `{"message": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	long := strings.Repeat("x", MaxMessageLength+1)
	w = postChat(t, handler, `{"message": "`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpointErrorResultStaysHTTP200(t *testing.T) {
	// Orchestrator failures settle as apology results, not transport errors.
	engine := &stubChatService{result: &chat.Result{Text: chat.ApologyMessage, IsError: true}}
	handler := NewChatHandler(engine, log.NewNop())

	w := postChat(t, handler, `{"message": "hello"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsError)
	assert.Equal(t, chat.ApologyMessage, resp.Response)
}

func TestToContentsSkipsEmptyAndCoercesRoles(t *testing.T) {
	contents := toContents([]HistoryItem{
		{Role: "model", Parts: []HistoryPart{{Text: "a"}}},
		{Role: "ai", Parts: []HistoryPart{{Text: "b"}}},
		{Role: "user", Parts: []HistoryPart{{Text: "c"}}},
		{Role: "system", Parts: []HistoryPart{{Text: "d"}}},
		{Role: "user", Parts: nil},
	})

	require.Len(t, contents, 4)
	assert.Equal(t, string(genai.RoleModel), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, string(genai.RoleUser), contents[2].Role)
	assert.Equal(t, string(genai.RoleUser), contents[3].Role)
}
