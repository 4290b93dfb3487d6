package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/hoopsight/hoopsight/internal/log"
)

const (
	// ApologyMessage is returned when a turn fails past all resilience layers.
	// Internal error detail never reaches the user.
	ApologyMessage = "I've encountered an unexpected technical issue. Please try your request again in a moment."

	// FallbackResponseMessage is returned when the model produces an empty response.
	FallbackResponseMessage = "I apologize, but I couldn't generate a response. Please try rephrasing your question."

	// DefaultMaxToolRounds bounds the tool-call loop per turn.
	DefaultMaxToolRounds = 3
)

// Result is the settled outcome of one conversational turn. A turn always
// settles; failures become an apology Result with IsError set rather than an
// error return.
type Result struct {
	Text             string
	StructuredData   map[string]any
	GroundingSources []GroundingSource
	IsError          bool
}

// Config contains all required parameters for the chat orchestrator.
type Config struct {
	Model  ModelClient
	Tools  *ToolExecutor
	Logger log.Logger

	// MaxToolRounds bounds the tool-call loop (zero-value uses the default).
	MaxToolRounds int

	// Resilience configuration
	RetryConfig          RetryConfig          // Model retry settings (zero-value uses defaults)
	CircuitBreakerConfig CircuitBreakerConfig // Circuit breaker settings (zero-value uses defaults)
	RateLimiter          *rate.Limiter        // Optional: proactive rate limiting (nil = use default)
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Model == nil {
		return errors.New("model client is required")
	}
	if cfg.Tools == nil {
		return errors.New("tool executor is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Chat orchestrates conversational turns: history validation, model calls
// behind retry and a circuit breaker, the bounded tool-call loop, and final
// response parsing.
//
// Chat is stateless across turns; all per-conversation state lives with the
// caller. Configuration is captured immutably at construction time so a
// single instance is safe for concurrent use.
type Chat struct {
	maxToolRounds int

	retryConfig    RetryConfig
	circuitBreaker *CircuitBreaker
	rateLimiter    *rate.Limiter

	model  ModelClient
	tools  *ToolExecutor
	logger log.Logger
}

// New creates a chat orchestrator with required configuration.
func New(cfg Config) (*Chat, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	maxRounds := cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}

	retryConfig := cfg.RetryConfig
	if retryConfig.MaxRetries == 0 {
		retryConfig = DefaultRetryConfig()
	}

	cbConfig := cfg.CircuitBreakerConfig
	if cbConfig.FailureThreshold == 0 {
		cbConfig = DefaultCircuitBreakerConfig()
	}

	// Default: 10 requests/sec sustained, burst of 30
	rl := cfg.RateLimiter
	if rl == nil {
		rl = rate.NewLimiter(10, 30)
	}

	c := &Chat{
		maxToolRounds:  maxRounds,
		retryConfig:    retryConfig,
		circuitBreaker: NewCircuitBreaker(cbConfig),
		rateLimiter:    rl,
		model:          cfg.Model,
		tools:          cfg.Tools,
		logger:         cfg.Logger,
	}

	c.logger.Info("chat orchestrator initialized", "maxToolRounds", c.maxToolRounds)
	return c, nil
}

// SendTurn runs one conversational turn: the supplied history is validated,
// the user's message appended, and the model driven through the tool-call
// loop until it settles on a text answer.
//
// SendTurn never returns an error; any failure past the resilience layers
// settles into an apology Result with IsError set, so callers can store and
// render it like any other assistant message.
func (c *Chat) SendTurn(ctx context.Context, history []*genai.Content, userText string) *Result {
	contents := NormalizeHistory(history)
	contents = append(contents, genai.NewContentFromText(userText, genai.RoleUser))

	reply, err := c.converse(ctx, contents)
	if err != nil {
		c.logger.Error("chat turn failed", "error", err)
		return &Result{Text: ApologyMessage, IsError: true}
	}

	text := reply.Text
	if strings.TrimSpace(text) == "" {
		c.logger.Warn("model returned empty response")
		return &Result{Text: FallbackResponseMessage, GroundingSources: reply.Sources}
	}

	parsed := Parse(text)
	return &Result{
		Text:             parsed.ConversationalText,
		StructuredData:   parsed.StructuredData,
		GroundingSources: reply.Sources,
	}
}

// converse drives the model through the bounded tool-call loop and returns
// the settled final reply.
func (c *Chat) converse(ctx context.Context, contents []*genai.Content) (*Reply, error) {
	reply, err := c.generate(ctx, contents, true)
	if err != nil {
		return nil, err
	}

	for round := 0; round < c.maxToolRounds && len(reply.FunctionCalls) > 0; round++ {
		responseParts := make([]*genai.Part, 0, len(reply.FunctionCalls))
		for _, call := range reply.FunctionCalls {
			payload, handled := c.tools.Execute(ctx, call.Name, call.Args)
			if !handled {
				continue
			}
			responseParts = append(responseParts, genai.NewPartFromFunctionResponse(call.Name, payload))
		}

		// No explicit results to submit (search-only round): the reply in
		// hand is already the settled answer.
		if len(responseParts) == 0 {
			break
		}

		if reply.Content != nil {
			contents = append(contents, reply.Content)
		}
		contents = append(contents, &genai.Content{
			Role:  roleUser,
			Parts: responseParts,
		})

		reply, err = c.generate(ctx, contents, true)
		if err != nil {
			return nil, err
		}
	}

	if len(reply.FunctionCalls) > 0 {
		c.logger.Warn("tool round limit reached with calls still pending",
			"maxToolRounds", c.maxToolRounds)
	}
	return reply, nil
}

// generate performs one model call behind the circuit breaker and retry.
func (c *Chat) generate(ctx context.Context, contents []*genai.Content, withTools bool) (*Reply, error) {
	if err := c.circuitBreaker.Allow(); err != nil {
		c.logger.Warn("circuit breaker is open, rejecting request",
			"state", c.circuitBreaker.State().String())
		return nil, fmt.Errorf("service unavailable: %w", err)
	}

	reply, err := c.generateWithRetry(ctx, contents, withTools)
	if err != nil {
		c.circuitBreaker.Failure()
		return nil, err
	}

	c.circuitBreaker.Success()
	return reply, nil
}
