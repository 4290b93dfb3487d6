package chat

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Fixed copy for the preload path. These are user-facing messages, not
// errors; each settles the turn gracefully.
const (
	// preloadGuidanceMessage is returned when the preloaded payload fails
	// shape validation. The model is never invoked.
	preloadGuidanceMessage = "I seem to be having trouble with the initial game data provided for this session. " +
		"You can ask me to fetch fresh odds, for example: \"What are tonight's odds?\""

	// preloadNoGamesFormat is returned when the payload is valid but carries
	// no games.
	preloadNoGamesFormat = "The initial game data for today (from %s) appears to be empty. " +
		"Please ask for 'tonight's odds' and I'll fetch the latest from the feed."

	// preloadSoftFailFormat is returned when the model narrated a non-empty
	// payload but omitted the structured block.
	preloadSoftFailFormat = "I processed the preloaded data from %s but had some trouble formatting the game details. " +
		"You can ask me about specific games, or request fresh odds."
)

// FormatPreloaded narrates an odds payload that the host page fetched before
// the conversation started. The payload shape is validated first; the model
// is asked to restate it under the structured output contract, without tools,
// since the data is already in hand.
//
// Like SendTurn, FormatPreloaded never returns an error: validation failures
// and model failures all settle into a user-facing Result.
func (c *Chat) FormatPreloaded(ctx context.Context, oddsData map[string]any, userQueryHint string) *Result {
	sportsbook, predictions, ok := validatePreload(oddsData)
	if !ok {
		c.logger.Warn("preloaded odds payload failed shape validation")
		return &Result{Text: preloadGuidanceMessage, IsError: true}
	}

	if len(predictions) == 0 {
		return &Result{Text: fmt.Sprintf(preloadNoGamesFormat, sportsbook)}
	}

	prompt := preloadPrompt(oddsData, userQueryHint)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	reply, err := c.generate(ctx, contents, false)
	if err != nil {
		c.logger.Error("preload formatting failed", "error", err)
		return &Result{Text: ApologyMessage, IsError: true}
	}

	if strings.TrimSpace(reply.Text) == "" {
		return &Result{Text: fmt.Sprintf(preloadSoftFailFormat, sportsbook)}
	}

	parsed := Parse(reply.Text)
	if parsed.StructuredData == nil {
		// The narration came back but the structured block did not; keep the
		// session usable rather than surfacing half-rendered output.
		return &Result{Text: fmt.Sprintf(preloadSoftFailFormat, sportsbook)}
	}

	return &Result{
		Text:             parsed.ConversationalText,
		StructuredData:   parsed.StructuredData,
		GroundingSources: reply.Sources,
	}
}

// validatePreload checks the minimal shape the preload path depends on: a
// sportsbook name and a predictions array.
func validatePreload(oddsData map[string]any) (sportsbook string, predictions []any, ok bool) {
	if oddsData == nil {
		return "", nil, false
	}
	sportsbook, ok = oddsData["sportsbook"].(string)
	if !ok || sportsbook == "" {
		return "", nil, false
	}
	predictions, ok = oddsData["predictions"].([]any)
	if !ok {
		return "", nil, false
	}
	return sportsbook, predictions, true
}
