package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func userTurn(text string) *genai.Content {
	return genai.NewContentFromText(text, genai.RoleUser)
}

func modelTurn(text string) *genai.Content {
	return genai.NewContentFromText(text, genai.RoleModel)
}

func TestNormalizeHistoryDropsLeadingModelTurns(t *testing.T) {
	history := []*genai.Content{
		modelTurn(Greeting),
		userTurn("What are tonight's odds?"),
		modelTurn("Here you go."),
	}

	validated := NormalizeHistory(history)

	assert.Len(t, validated, 2)
	assert.Equal(t, roleUser, validated[0].Role)
	assert.Equal(t, roleModel, validated[1].Role)
}

func TestNormalizeHistoryTruncatesAtAlternationBreak(t *testing.T) {
	history := []*genai.Content{
		userTurn("first"),
		modelTurn("reply"),
		modelTurn("duplicate reply"),
		userTurn("second"),
	}

	validated := NormalizeHistory(history)

	assert.Len(t, validated, 2)
	assert.Equal(t, "first", validated[0].Parts[0].Text)
	assert.Equal(t, "reply", validated[1].Parts[0].Text)
}

func TestNormalizeHistoryAllModelTurns(t *testing.T) {
	history := []*genai.Content{modelTurn("a"), modelTurn("b")}

	assert.Empty(t, NormalizeHistory(history))
}

func TestNormalizeHistoryEmpty(t *testing.T) {
	assert.Empty(t, NormalizeHistory(nil))
}

func TestNormalizeHistoryDoesNotMutateInput(t *testing.T) {
	history := []*genai.Content{
		modelTurn(Greeting),
		userTurn("hello"),
	}

	_ = NormalizeHistory(history)

	assert.Len(t, history, 2)
	assert.Equal(t, roleModel, history[0].Role)
}

func TestNormalizeHistoryValidSequencePassesThrough(t *testing.T) {
	history := []*genai.Content{
		userTurn("a"),
		modelTurn("b"),
		userTurn("c"),
		modelTurn("d"),
	}

	validated := NormalizeHistory(history)

	assert.Len(t, validated, 4)
}
