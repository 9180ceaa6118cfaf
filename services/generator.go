package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"speakcoach/config"
)

// maxGenerationMessages is the hard cap the generation endpoint enforces
// on conversation length. Older messages are dropped client-side so a long
// session never trips the server-side rejection.
const maxGenerationMessages = 50

// TextGenerator produces one utterance from a conversation. Implementations
// must be safe to call sequentially from a single session actor.
type TextGenerator interface {
	Generate(ctx context.Context, messages []ChatMessage, maxTokens int, temperature float64) (string, error)
}

type generateRequest struct {
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"maxTokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type generateResponse struct {
	Content string `json:"content"`
	Error   string `json:"error"`
}

// chatGenerator calls the remote discussion-generation endpoint with a
// bearer token and expects {content} or {error} back.
type chatGenerator struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewChatGenerator builds the HTTP-backed text generator.
func NewChatGenerator(cfg *config.Config) TextGenerator {
	return &chatGenerator{
		url:        cfg.AI.GenerateURL,
		token:      cfg.AI.ServiceToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *chatGenerator) Generate(ctx context.Context, messages []ChatMessage, maxTokens int, temperature float64) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Messages:    capMessages(messages),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.url, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API error (status %d): %s", resp.StatusCode, string(body))
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if gr.Error != "" {
		return "", fmt.Errorf("generation API error: %s", gr.Error)
	}
	if gr.Content == "" {
		return "", fmt.Errorf("unexpected response format: empty content")
	}

	return cleanModelOutput(gr.Content), nil
}

func capMessages(messages []ChatMessage) []ChatMessage {
	if len(messages) <= maxGenerationMessages {
		return messages
	}
	return messages[len(messages)-maxGenerationMessages:]
}
