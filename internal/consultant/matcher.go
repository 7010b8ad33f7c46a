package consultant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Matcher classifies a free-text inquiry into one expertise category.
type Matcher interface {
	Categorize(ctx context.Context, inquiry string) (string, error)
}

// GeminiMatcher asks Gemini to pick the category; the model is instructed
// to answer with a single JSON object so the reply parses deterministically.
type GeminiMatcher struct {
	client *genai.Client
	model  string
}

func NewGeminiMatcher(ctx context.Context, apiKey, model string) (*GeminiMatcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiMatcher{client: client, model: model}, nil
}

func (m *GeminiMatcher) Categorize(ctx context.Context, inquiry string) (string, error) {
	prompt := fmt.Sprintf(
		"Classify the following business inquiry into exactly one of these categories: %s. "+
			"Respond with a JSON object of the form {\"category\": \"<value>\"} and nothing else.\n\nInquiry: %s",
		strings.Join(Categories(), ", "), inquiry,
	)

	res, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("genai generate failed: %w", err)
	}

	text := strings.TrimSpace(res.Text())
	text = strings.TrimPrefix(text, "```json")
	text = strings.Trim(text, "` \n")

	var out struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return "", fmt.Errorf("genai returned unparseable category: %w", err)
	}
	if out.Category == "" {
		return "", fmt.Errorf("genai returned no category")
	}
	return out.Category, nil
}
