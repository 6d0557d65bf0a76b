package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

// FallbackMessage is the answer returned when no provider could respond.
const FallbackMessage = "I apologize, but I'm having trouble connecting to the AI service right now. Please try again in a moment, or consult with a legal professional for immediate assistance."

// FallbackModel is the model name reported with FallbackMessage.
const FallbackModel = "fallback"

// Completer is a chat-completion provider. Complete returns a chat-completion
// shaped JSON document.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req *models.ChatRequest) ([]byte, error)
}

// Result is the outcome of a proxied completion.
type Result struct {
	Body     []byte
	Provider string
	Fallback bool
}

// Content returns the text of the first choice, or "" when the body has none.
func (r *Result) Content() string {
	var resp models.ChatResponse
	if err := json.Unmarshal(r.Body, &resp); err != nil || len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

// Proxy tries the primary provider, then the secondary one exactly once, and
// finally answers with a canned apology. It never returns an error.
type Proxy struct {
	primary   Completer
	secondary Completer
	logger    *slog.Logger
	now       func() time.Time
}

// NewProxy creates a proxy. Either provider may be nil, meaning "not configured".
func NewProxy(primary, secondary Completer, logger *slog.Logger) *Proxy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Proxy{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		now:       time.Now,
	}
}

// Complete runs the primary-then-secondary chain.
func (p *Proxy) Complete(ctx context.Context, req *models.ChatRequest) *Result {
	for _, c := range []Completer{p.primary, p.secondary} {
		if c == nil {
			continue
		}
		logCtx := p.logger.With("provider", c.Name(), "messages", len(req.Messages))

		body, err := c.Complete(ctx, req)
		if err == nil {
			logCtx.Info("Chat completion served.")
			return &Result{Body: body, Provider: c.Name()}
		}

		var statusErr *StatusError
		switch {
		case errors.Is(err, ErrNotConfigured):
			logCtx.Debug("Provider not configured, skipping.")
		case errors.As(err, &statusErr):
			logCtx.Warn("Provider returned an error status.", "status", statusErr.StatusCode)
		default:
			logCtx.Warn("Provider unavailable.", "error", err)
		}
	}

	p.logger.Error("All chat providers failed, returning canned response.")
	return &Result{Body: FallbackResponse(p.now()), Provider: FallbackModel, Fallback: true}
}

// FallbackResponse renders the canned apology with zeroed usage counters.
func FallbackResponse(now time.Time) []byte {
	resp := models.ChatResponse{
		Created: now.Unix(),
		Model:   FallbackModel,
		Choices: []models.ChatChoice{{
			Message:      models.ChatMessage{Role: "assistant", Content: FallbackMessage},
			FinishReason: "stop",
		}},
		Usage: models.ChatUsage{},
	}
	body, _ := json.Marshal(resp)
	return body
}
