package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/legalassistant/internal/gcp"
	"github.com/Lllllllleong/legalassistant/internal/models"
)

// VertexCompleter uses a Vertex AI Gemini model as the hosted fallback.
type VertexCompleter struct {
	vertex *gcp.VertexClient
}

// NewVertexCompleter wraps a configured Vertex client.
func NewVertexCompleter(vertex *gcp.VertexClient) *VertexCompleter {
	return &VertexCompleter{vertex: vertex}
}

func (c *VertexCompleter) Name() string { return "vertex" }

// Complete replays the earlier turns as chat history and sends the last one.
func (c *VertexCompleter) Complete(ctx context.Context, req *models.ChatRequest) ([]byte, error) {
	system, history, last := toVertexHistory(req.Messages)
	if last == "" {
		return nil, ErrMessagesRequired
	}

	// Copy the shared model so per-request settings don't race.
	model := *c.vertex.ChatModel
	model.SetTemperature(float32(req.Temperature))
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	if req.TopP != nil {
		model.SetTopP(float32(*req.TopP))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	session := model.StartChat()
	session.History = history
	resp, err := session.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return nil, fmt.Errorf("vertex: send message: %w", err)
	}

	answer := extractVertexText(resp)
	if answer == "" {
		return nil, fmt.Errorf("vertex: empty response")
	}

	var usage models.ChatUsage
	if resp.UsageMetadata != nil {
		usage = models.ChatUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return json.Marshal(wrapAnswer(c.vertex.ModelName, answer, usage, time.Now()))
}

func toVertexHistory(messages []models.ChatMessage) (string, []*genai.Content, string) {
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return system, nil, ""
	}
	history := make([]*genai.Content, 0, len(turns)-1)
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return system, history, turns[len(turns)-1].Content
}

// extractVertexText concatenates the text parts of the first candidate.
func extractVertexText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
