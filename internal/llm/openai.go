package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/synapse/internal/domain"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	chatModel     = "gpt-4o-mini"
)

type OpenAIClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// chat types for OpenAI API
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) complete(ctx context.Context, messages []chatMessage, temp float32) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       chatModel,
		Messages:    messages,
		Temperature: temp,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal chat response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("chat API error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) Generate(ctx context.Context, query string, chunks []domain.Chunk) (*domain.GeneratedAnswer, error) {
	var sb strings.Builder
	for i, ch := range chunks {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, ch.Text)
	}

	text, err := c.complete(ctx, []chatMessage{
		{Role: "user", Content: fmt.Sprintf(generatePrompt, query, sb.String())},
	}, 0.2)
	if err != nil {
		return nil, err
	}

	answer := &domain.GeneratedAnswer{Text: text}
	for _, ch := range chunks {
		answer.Sources = append(answer.Sources, domain.Source{
			SourceID:   ch.ID,
			SourceType: domain.SourceTypeRetrieval,
			ChunkID:    ch.ID,
			Content:    snippet(ch.Text),
			Confidence: ch.Score,
		})
	}
	return answer, nil
}

func (c *OpenAIClient) ClassifyIntent(ctx context.Context, query string) (string, error) {
	return c.complete(ctx, []chatMessage{
		{Role: "user", Content: fmt.Sprintf(intentPrompt, query)},
	}, 0)
}

const maxSnippetLen = 200

func snippet(text string) string {
	if len(text) <= maxSnippetLen {
		return text
	}
	return text[:maxSnippetLen] + "..."
}
