package chat

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonFenceRe matches fenced code blocks tagged json. (?s) lets the body span
// lines; the lazy body keeps multiple blocks separate.
var jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// Parsed is the result of splitting raw model output.
type Parsed struct {
	// ConversationalText is the free-form text with consumed JSON blocks
	// stripped and surrounding whitespace trimmed. When no block was
	// consumed it is the input unchanged.
	ConversationalText string

	// StructuredData is the decoded uiGamePrediction/uiGamePredictions
	// wrapper object, or nil when the output carried none.
	StructuredData map[string]any
}

// Parse splits raw model output into conversational text and the structured
// game-prediction payload, if any.
//
// All fenced json blocks are located and the last one is decoded — models
// sometimes emit a draft block before a corrected final one, so last wins.
// A decoded object is accepted verbatim when it already carries the
// uiGamePrediction or uiGamePredictions wrapper; a bare game record or a bare
// array of game records is tolerated and wrapped. Anything else, including
// malformed JSON, degrades to plain text: the block stays in the output and
// StructuredData is nil.
//
// Parse is pure, deterministic and total; it never panics on any input.
func Parse(raw string) Parsed {
	matches := jsonFenceRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return Parsed{ConversationalText: raw}
	}

	body := matches[len(matches)-1][1]

	var decoded any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		// Malformed block: leave the raw text untouched.
		return Parsed{ConversationalText: raw}
	}

	structured := recognizeStructured(decoded)
	if structured == nil {
		return Parsed{ConversationalText: raw}
	}

	stripped := strings.TrimSpace(jsonFenceRe.ReplaceAllString(raw, ""))
	return Parsed{ConversationalText: stripped, StructuredData: structured}
}

// recognizeStructured classifies a decoded JSON value against the structured
// output contract, wrapping bare game records that lack the wrapper key.
func recognizeStructured(decoded any) map[string]any {
	switch v := decoded.(type) {
	case map[string]any:
		if _, ok := v["uiGamePrediction"]; ok {
			return v
		}
		if _, ok := v["uiGamePredictions"]; ok {
			return v
		}
		// Models occasionally forget the wrapper around a single game.
		if looksLikeGameRecord(v) {
			return map[string]any{"uiGamePrediction": v}
		}
	case []any:
		if len(v) == 0 {
			return nil
		}
		if first, ok := v[0].(map[string]any); ok && looksLikeGameRecord(first) {
			return map[string]any{"uiGamePredictions": v}
		}
	}
	return nil
}

// looksLikeGameRecord reports whether a decoded object has the two fields
// every game record carries.
func looksLikeGameRecord(m map[string]any) bool {
	_, hasID := m["game_identifier"]
	_, hasDetails := m["ai_prediction_details"]
	return hasID && hasDetails
}
