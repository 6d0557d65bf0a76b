package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

const defaultHostedTopP = 0.95

// HostedClient calls an OpenAI-compatible /chat/completions API with an API key.
type HostedClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewHostedClient creates a hosted completion client.
func NewHostedClient(baseURL, apiKey, model string, opts ...Option) *HostedClient {
	return &HostedClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: buildHTTPClient(60*time.Second, opts),
	}
}

func (c *HostedClient) Name() string { return "hosted" }

// Complete sends a non-streaming completion request.
func (c *HostedClient) Complete(ctx context.Context, req *models.ChatRequest) ([]byte, error) {
	if strings.TrimSpace(c.apiKey) == "" || c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	topP := defaultHostedTopP
	if req.TopP != nil {
		topP = *req.TopP
	}
	var frequencyPenalty, presencePenalty float64
	if req.FrequencyPenalty != nil {
		frequencyPenalty = *req.FrequencyPenalty
	}
	if req.PresencePenalty != nil {
		presencePenalty = *req.PresencePenalty
	}

	payload := map[string]any{
		"model":             c.model,
		"messages":          req.Messages,
		"temperature":       req.Temperature,
		"max_tokens":        req.MaxTokens,
		"top_p":             topP,
		"frequency_penalty": frequencyPenalty,
		"presence_penalty":  presencePenalty,
		"stream":            false,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	body, err := postJSON(ctx, c.httpClient, c.Name(), c.baseURL+"/chat/completions", headers, payload)
	if err != nil {
		return nil, err
	}

	var parsed models.ChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("hosted: failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("hosted: no choices in response")
	}
	return body, nil
}
