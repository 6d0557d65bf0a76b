package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

// DefaultBackendTimeout bounds a single call to the primary backend.
const DefaultBackendTimeout = 30 * time.Second

// BackendClient talks to the primary self-hosted completion server.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBackendClient creates a client for the backend at baseURL
// (e.g., "http://localhost:8000"). Requests go to {baseURL}/chat.
func NewBackendClient(baseURL string, opts ...Option) *BackendClient {
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: buildHTTPClient(DefaultBackendTimeout, opts),
	}
}

func (c *BackendClient) Name() string { return "backend" }

// Complete forwards the conversation and returns the backend's JSON unchanged.
func (c *BackendClient) Complete(ctx context.Context, req *models.ChatRequest) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	payload := struct {
		Messages    []models.ChatMessage `json:"messages"`
		Temperature float64              `json:"temperature"`
		MaxTokens   int                  `json:"max_tokens"`
	}{
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	return postJSON(ctx, c.httpClient, c.Name(), c.baseURL+"/chat", nil, payload)
}
