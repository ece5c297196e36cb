package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-menu-assistant/internal/config"
	"ai-menu-assistant/internal/shared"
)

const openAIAPIURL = "https://api.openai.com/v1/chat/completions"

// openAIBackend is a chat-completions backend with strict JSON-schema
// structured output.
type openAIBackend struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewOpenAIBackend creates a new OpenAI API backend.
func NewOpenAIBackend(cfg *config.Config) Backend {
	return &openAIBackend{
		apiKey: cfg.OpenAIAPIKey,
		model:  cfg.OpenAIModel,
		apiURL: openAIAPIURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Complete sends the payload with a strict response schema and returns the
// model's JSON content.
func (b *openAIBackend) Complete(ctx context.Context, system, payload string, schema *Schema) (string, shared.TokenUsage, error) {
	usage := shared.TokenUsage{Model: b.model}

	reqBody := map[string]interface{}{
		"model":       b.model,
		"max_tokens":  2048,
		"temperature": 0.0,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": payload},
		},
		"response_format": map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   "meal_selection",
				"strict": true,
				"schema": schema,
			},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", usage, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", usage, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", usage, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", usage, fmt.Errorf("openai api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", usage, fmt.Errorf("failed to decode response: %w", err)
	}

	usage.PromptTokens = completion.Usage.PromptTokens
	usage.CompletionTokens = completion.Usage.CompletionTokens
	usage.TotalTokens = completion.Usage.TotalTokens

	if len(completion.Choices) == 0 {
		return "", usage, fmt.Errorf("no response from oracle")
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		return "", usage, fmt.Errorf("no content in oracle response")
	}
	return content, usage, nil
}
