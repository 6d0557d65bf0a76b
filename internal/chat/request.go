package chat

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// ParseRequest decodes a chat request body. The messages field must be present
// and be a non-empty JSON array; temperature and max_tokens default when absent.
func ParseRequest(body []byte) (*models.ChatRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	msgs := bytes.TrimSpace(raw["messages"])
	if len(msgs) == 0 || msgs[0] != '[' {
		return nil, ErrMessagesRequired
	}

	req := &models.ChatRequest{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if len(req.Messages) == 0 {
		return nil, ErrMessagesRequired
	}
	return req, nil
}

// splitSystem separates system messages from the conversation turns.
func splitSystem(messages []models.ChatMessage) (string, []models.ChatMessage) {
	var system []string
	turns := make([]models.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return joinNonEmpty(system, "\n\n"), turns
}

func joinNonEmpty(parts []string, sep string) string {
	var b bytes.Buffer
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(p)
	}
	return b.String()
}
