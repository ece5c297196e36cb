package oracle

import (
	"context"
	"fmt"

	"ai-menu-assistant/internal/config"
	"ai-menu-assistant/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiBackend is a backend for the Google Gemini API.
type geminiBackend struct {
	client    *genai.Client
	modelName string
}

// NewGeminiBackend creates a new Gemini API backend.
func NewGeminiBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiBackend{client: client, modelName: cfg.GeminiModel}, nil
}

// Complete sends the payload with a converted response schema and returns
// the model's JSON content.
func (b *geminiBackend) Complete(ctx context.Context, system, payload string, schema *Schema) (string, shared.TokenUsage, error) {
	usage := shared.TokenUsage{Model: b.modelName}

	model := b.client.GenerativeModel(b.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = toGenaiSchema(schema)

	resp, err := model.GenerateContent(ctx, genai.Text(payload))
	if err != nil {
		return "", usage, fmt.Errorf("failed to generate content: %w", err)
	}

	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", usage, fmt.Errorf("no content in oracle response")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", usage, fmt.Errorf("oracle response is not text")
	}
	return string(text), usage, nil
}

// Close closes the underlying Gemini client.
func (b *geminiBackend) Close() error {
	return b.client.Close()
}

// toGenaiSchema converts the wire schema into the Gemini schema type. The
// genai schema has no additionalProperties field, so strictness there relies
// on the required property lists.
func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}
