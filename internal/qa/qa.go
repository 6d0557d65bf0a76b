// Package qa answers founders' legal questions and records each exchange as
// a Q&A session.
package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/legalassistant/internal/chat"
	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/store"
)

// ErrEmptyQuestion is returned for a blank question.
var ErrEmptyQuestion = errors.New("question is required")

// Completer is the part of the chat proxy the service needs.
type Completer interface {
	Complete(ctx context.Context, req *models.ChatRequest) *chat.Result
}

// Dispatcher receives the new session.
type Dispatcher interface {
	Dispatch(ctx context.Context, a store.Action) (store.State, error)
}

// Service answers questions.
type Service struct {
	chat   Completer
	store  Dispatcher
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a service. chat may be nil, in which case questions
// outside the answer bank get GenericAnswer.
func NewService(chat Completer, st Dispatcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		chat:   chat,
		store:  st,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Examples returns the popular example questions.
func Examples() []string {
	return slices.Clone(examples)
}

// Ask answers question and records the session. files names documents the
// user attached to the question.
func (s *Service) Ask(ctx context.Context, question string, files []string) (models.QASession, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.QASession{}, ErrEmptyQuestion
	}
	logCtx := s.logger.With("files", len(files))

	answer, source := s.answer(ctx, question, files)
	session := models.QASession{
		ID:        s.newID(),
		Question:  question,
		Answer:    answer,
		Timestamp: s.now().UTC(),
		Category:  Classify(question),
		Files:     slices.Clone(files),
	}

	if _, err := s.store.Dispatch(ctx, store.AddQASession{Session: session}); err != nil {
		return models.QASession{}, fmt.Errorf("failed to record session: %w", err)
	}
	logCtx.Info("Question answered.", "sessionId", session.ID, "category", session.Category, "source", source)
	return session, nil
}

func (s *Service) answer(ctx context.Context, question string, files []string) (string, string) {
	for known, answer := range answerBank {
		if strings.EqualFold(known, question) {
			return answer, "bank"
		}
	}
	if s.chat == nil {
		return GenericAnswer, "generic"
	}

	result := s.chat.Complete(ctx, buildRequest(question, files))
	if result.Fallback {
		return GenericAnswer, "generic"
	}
	content := strings.TrimSpace(result.Content())
	if content == "" {
		return GenericAnswer, "generic"
	}
	return content, result.Provider
}

func buildRequest(question string, files []string) *models.ChatRequest {
	user := question
	if len(files) > 0 {
		user = fmt.Sprintf("%s\n\nAttached documents: %s", question, strings.Join(files, ", "))
	}
	return &models.ChatRequest{
		Messages: []models.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: chat.DefaultTemperature,
		MaxTokens:   chat.DefaultMaxTokens,
	}
}
