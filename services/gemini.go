package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiGenerator adapts the Gemini client to the TextGenerator contract
// so it can be swapped in for the HTTP generation endpoint via config.
type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator builds a Gemini-backed text generator.
func NewGeminiGenerator(apiKey string) (TextGenerator, error) {
	config := &genai.ClientConfig{}
	if apiKey != "" {
		config.APIKey = apiKey
	}
	client, err := genai.NewClient(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiGenerator{client: client, model: defaultGeminiModel}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, messages []ChatMessage, maxTokens int, temperature float64) (string, error) {
	// Gemini takes a single prompt; flatten the capped conversation into
	// role-labelled lines.
	var prompt strings.Builder
	for _, msg := range capMessages(messages) {
		prompt.WriteString(msg.Role)
		prompt.WriteString(": ")
		prompt.WriteString(msg.Content)
		prompt.WriteString("\n")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt.String()), nil)
	if err != nil {
		return "", err
	}
	text := cleanModelOutput(resp.Text())
	if text == "" {
		return "", fmt.Errorf("unexpected response format: empty content")
	}
	return text, nil
}

func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
