package chat

import (
	"context"

	"google.golang.org/genai"
)

// GroundingSource is an opaque citation or search-suggestion artifact
// attached to an assistant message. It is passed through to the caller
// without interpreting its structure.
type GroundingSource struct {
	URI             string `json:"uri,omitempty"`
	Title           string `json:"title,omitempty"`
	RenderedContent string `json:"renderedContent,omitempty"`
}

// Reply is one model turn as seen by the orchestrator.
type Reply struct {
	// Text is the concatenated text output of the turn.
	Text string

	// Content is the raw model turn, including any function-call parts.
	// It is replayed into the conversation when tool results are sent back.
	Content *genai.Content

	// FunctionCalls are the tool-call requests emitted in this turn.
	FunctionCalls []*genai.FunctionCall

	// Sources carries search-grounding metadata attached to the turn.
	Sources []GroundingSource
}

// ModelClient is the conversational model backend as the orchestrator needs
// it. Defined here, by the consumer; internal/gemini provides the production
// implementation and tests substitute fakes.
type ModelClient interface {
	// Generate submits the conversation and returns the model's next turn.
	// withTools controls whether the odds and search tool declarations are
	// attached (the preload path generates without tools).
	Generate(ctx context.Context, contents []*genai.Content, withTools bool) (*Reply, error)
}
