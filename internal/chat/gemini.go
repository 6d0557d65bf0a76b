package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

// GeminiClient uses the Gemini API (API key auth) as the hosted fallback.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Name() string { return "gemini" }

// Complete converts the conversation to Gemini contents and wraps the answer
// in a chat-completion shaped response.
func (c *GeminiClient) Complete(ctx context.Context, req *models.ChatRequest) ([]byte, error) {
	system, contents := toGeminiContents(req.Messages)
	if len(contents) == 0 {
		return nil, ErrMessagesRequired
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.TopP != nil {
		cfg.TopP = ptr(float32(*req.TopP))
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	var answer strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				answer.WriteString(part.Text)
			}
		}
	}
	if strings.TrimSpace(answer.String()) == "" {
		return nil, fmt.Errorf("gemini: empty response")
	}

	var usage models.ChatUsage
	if resp.UsageMetadata != nil {
		usage = models.ChatUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return json.Marshal(wrapAnswer(c.model, answer.String(), usage, time.Now()))
}

// toGeminiContents maps chat roles onto Gemini roles. System messages become
// the system instruction; assistant turns become model turns.
func toGeminiContents(messages []models.ChatMessage) (string, []*genai.Content) {
	system, turns := splitSystem(messages)
	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		var role genai.Role = genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return system, contents
}

// wrapAnswer builds a chat-completion response around a plain answer.
func wrapAnswer(model, answer string, usage models.ChatUsage, now time.Time) models.ChatResponse {
	return models.ChatResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: now.Unix(),
		Model:   model,
		Choices: []models.ChatChoice{{
			Index:        0,
			Message:      models.ChatMessage{Role: "assistant", Content: strings.TrimSpace(answer)},
			FinishReason: "stop",
		}},
		Usage: usage,
	}
}

func ptr[T any](v T) *T { return &v }
