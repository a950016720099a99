package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/tallyhq/tally/internal/model"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini calls the Gemini API through the genai SDK.
type Gemini struct {
	model     string
	apiKey    string
	maxTokens int
}

// NewGemini creates a Gemini provider. A non-Gemini model name selects the default.
func NewGemini(model, apiKey string, maxTokens int) *Gemini {
	if !isGeminiModel(model) {
		model = defaultGeminiModel
	}
	return &Gemini{model: model, apiKey: apiKey, maxTokens: maxTokens}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) CategorizeBatch(ctx context.Context, items []Item, taxonomy []model.Category) ([]Suggestion, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if g.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.maxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(items, taxonomy)), cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty response from model")
	}
	return ParseSuggestions(text)
}

// isGeminiModel guards against a config that switched provider but kept the
// anthropic model name.
func isGeminiModel(name string) bool {
	return strings.HasPrefix(name, "gemini")
}
