// Package gemini wraps the Google Gemini SDK behind the model interface the
// chat orchestrator consumes.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hoopsight/hoopsight/internal/chat"
	"github.com/hoopsight/hoopsight/internal/log"
)

// Config contains all required parameters for the Gemini client.
type Config struct {
	APIKey            string
	Model             string
	Temperature       float32
	MaxOutputTokens   int32
	SystemInstruction string
	Tools             []*genai.Tool
	Logger            log.Logger
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.APIKey == "" {
		return errors.New("API key is required")
	}
	if cfg.Model == "" {
		return errors.New("model name is required")
	}
	return nil
}

// Client implements chat.ModelClient over the Gemini API.
//
// Configuration is captured at construction and never mutated, so a single
// Client is safe for concurrent use.
type Client struct {
	client *genai.Client

	model             string
	temperature       float32
	maxOutputTokens   int32
	systemInstruction *genai.Content
	tools             []*genai.Tool
	safety            []*genai.SafetySetting
	logger            log.Logger
}

// NewClient creates a Gemini-backed model client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	var system *genai.Content
	if cfg.SystemInstruction != "" {
		system = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}

	return &Client{
		client:            client,
		model:             cfg.Model,
		temperature:       cfg.Temperature,
		maxOutputTokens:   cfg.MaxOutputTokens,
		systemInstruction: system,
		tools:             cfg.Tools,
		safety:            defaultSafetySettings(),
		logger:            cfg.Logger,
	}, nil
}

// defaultSafetySettings blocks medium-and-above harmful content across the
// four standard categories.
func defaultSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}

// Generate submits the conversation and returns the model's next turn.
func (c *Client) Generate(ctx context.Context, contents []*genai.Content, withTools bool) (*chat.Reply, error) {
	temperature := c.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: c.systemInstruction,
		Temperature:       &temperature,
		MaxOutputTokens:   c.maxOutputTokens,
		SafetySettings:    c.safety,
	}
	if withTools {
		config.Tools = c.tools
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		c.logger.Error("gemini request failed", "model", c.model, "error", err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	reply := replyFromResponse(result)
	c.logger.Debug("gemini response received",
		"text_length", len(reply.Text),
		"function_calls", len(reply.FunctionCalls),
		"sources", len(reply.Sources),
	)
	return reply, nil
}

// replyFromResponse flattens the first candidate into the orchestrator's
// reply shape: visible text (thinking parts skipped), function calls, and
// search-grounding sources.
func replyFromResponse(result *genai.GenerateContentResponse) *chat.Reply {
	reply := &chat.Reply{}
	if len(result.Candidates) == 0 {
		return reply
	}
	candidate := result.Candidates[0]

	var text strings.Builder
	if candidate.Content != nil {
		reply.Content = candidate.Content
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.FunctionCall != nil {
				reply.FunctionCalls = append(reply.FunctionCalls, part.FunctionCall)
				continue
			}
			if part.Text != "" && !part.Thought {
				text.WriteString(part.Text)
			}
		}
	}
	reply.Text = text.String()
	reply.Sources = groundingSources(candidate.GroundingMetadata)
	return reply
}

// groundingSources extracts citation artifacts from search-grounded turns.
func groundingSources(metadata *genai.GroundingMetadata) []chat.GroundingSource {
	if metadata == nil {
		return nil
	}

	var sources []chat.GroundingSource
	if metadata.SearchEntryPoint != nil && metadata.SearchEntryPoint.RenderedContent != "" {
		sources = append(sources, chat.GroundingSource{
			RenderedContent: metadata.SearchEntryPoint.RenderedContent,
		})
	}
	for _, chunk := range metadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, chat.GroundingSource{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	return sources
}
