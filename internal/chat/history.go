package chat

import "google.golang.org/genai"

// Conversation roles as they appear on genai.Content.
const (
	roleUser  = string(genai.RoleUser)
	roleModel = string(genai.RoleModel)
)

// NormalizeHistory validates a supplied conversation history before replay to
// the model backend, which requires strict user/model alternation starting
// with a user turn.
//
// Leading model-role messages (the canned greeting, typically) are dropped.
// After that, the sequence is truncated at the first point where alternation
// breaks. The input slice is never modified.
func NormalizeHistory(history []*genai.Content) []*genai.Content {
	start := 0
	for start < len(history) {
		if h := history[start]; h != nil && h.Role == roleUser {
			break
		}
		start++
	}

	validated := make([]*genai.Content, 0, len(history)-start)
	expected := roleUser
	for _, msg := range history[start:] {
		if msg == nil || msg.Role != expected {
			break
		}
		validated = append(validated, msg)
		if expected == roleUser {
			expected = roleModel
		} else {
			expected = roleUser
		}
	}
	return validated
}
