package chat

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hoopsight/hoopsight/internal/log"
	"github.com/hoopsight/hoopsight/internal/odds"
)

// OddsToolName is the function name declared to the model for fetching the
// odds feed.
const OddsToolName = "GET_ODDS"

// SupportedSportsbooks is the fixed allow-list of sportsbooks the odds feed
// serves. Requests naming anything else are silently coerced to the default
// rather than rejected, mirroring the feed's own default-tolerant behavior.
var SupportedSportsbooks = []string{
	"fanduel", "draftkings", "betmgm", "pointsbet", "caesars", "wynn", "bet_rivers_ny",
}

// coerceSportsbook lowercases and validates a requested sportsbook against
// the allow-list, falling back to the default for anything unrecognized.
func coerceSportsbook(requested string) string {
	lowered := strings.ToLower(strings.TrimSpace(requested))
	for _, sb := range SupportedSportsbooks {
		if sb == lowered {
			return lowered
		}
	}
	return odds.DefaultSportsbook
}

// OddsToolDeclaration builds the GET_ODDS function declaration.
func OddsToolDeclaration() *genai.FunctionDeclaration {
	books := strings.Join(SupportedSportsbooks, ", ")
	return &genai.FunctionDeclaration{
		Name: OddsToolName,
		Description: "Fetches current NBA game odds, AI predictions, and potentially live/recent-final " +
			"scores from the backend data feed. Supported sportsbooks include: " + books +
			". If the user specifies a sportsbook, use it. Otherwise, 'fanduel' is the default.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"sportsbook": {
					Type: genai.TypeString,
					Description: "The sportsbook to fetch odds from. Examples: " + books +
						". Defaults to 'fanduel' if not specified or if an unsupported one is requested.",
				},
				"model": {
					Type:        genai.TypeString,
					Description: "Prediction model (e.g., 'xgboost'). Default 'xgboost'.",
				},
				"kelly_criterion": {
					Type:        genai.TypeBoolean,
					Description: "Include Kelly Criterion. Default true.",
				},
			},
		},
	}
}

// Toolset is the full tool declaration list for conversational turns: the
// odds-fetch function plus the backend-resolved web search tool.
func Toolset() []*genai.Tool {
	return []*genai.Tool{
		{FunctionDeclarations: []*genai.FunctionDeclaration{OddsToolDeclaration()}},
		{GoogleSearch: &genai.GoogleSearch{}},
	}
}

// OddsFetcher is the odds feed as the tool executor needs it.
type OddsFetcher interface {
	Predictions(ctx context.Context, sportsbook, model string, kellyCriterion bool) (*odds.FeedPayload, error)
}

// ToolExecutor dispatches the model's tool-call requests. The only tool it
// answers is GET_ODDS; the search tool is resolved inside the model backend
// and produces no application-level result.
type ToolExecutor struct {
	feed   OddsFetcher
	logger log.Logger
}

// NewToolExecutor creates a tool executor over the given odds feed.
func NewToolExecutor(feed OddsFetcher, logger log.Logger) *ToolExecutor {
	if logger == nil {
		logger = log.NewNop()
	}
	return &ToolExecutor{feed: feed, logger: logger}
}

// Execute runs one tool-call request and returns the payload to send back as
// the function response, plus whether the tool was handled at all.
//
// Unhandled tool names return (nil, false): the orchestration loop proceeds
// without fabricating a result for them. Handled calls never return an error;
// feed failures are encoded as {"error": ...} so the model can acknowledge
// the outage conversationally instead of the turn crashing.
func (e *ToolExecutor) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, bool) {
	if name != OddsToolName {
		e.logger.Warn("unhandled tool call ignored", "tool", name)
		return nil, false
	}

	sportsbook := coerceSportsbook(stringArg(args, "sportsbook", odds.DefaultSportsbook))
	model := stringArg(args, "model", odds.DefaultModel)
	kelly := boolArg(args, "kelly_criterion", true)

	payload, err := e.feed.Predictions(ctx, sportsbook, model, kelly)
	if err != nil {
		e.logger.Error("odds tool execution failed",
			"sportsbook", sportsbook, "error", err)
		return map[string]any{
			"error": fmt.Sprintf("Tool execution failed: %v", err),
		}, true
	}

	// The feed occasionally omits the sportsbook it answered for; back-fill
	// from the request so downstream mapping always has it.
	if payload.Sportsbook == "" {
		payload.Sportsbook = sportsbook
	}

	return map[string]any{"content": payload}, true
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func boolArg(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}
