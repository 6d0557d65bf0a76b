package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

// Recorder mirrors documents and sessions to durable storage.
type Recorder interface {
	RecordDocument(ctx context.Context, doc models.Document) error
	RecordSession(ctx context.Context, session models.QASession) error
	DeleteSession(ctx context.Context, id string) error
}

// Store serialises actions against one State.
type Store struct {
	mu       sync.RWMutex
	state    State
	recorder Recorder
	logger   *slog.Logger
}

// New creates a store in the initial state. recorder may be nil.
func New(recorder Recorder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{state: Initial(), recorder: recorder, logger: logger}
}

// Dispatch applies a and returns the new state. When a is rejected the state
// is left unchanged. Recorder failures are logged; the in-memory state stays
// authoritative.
func (s *Store) Dispatch(ctx context.Context, a Action) (State, error) {
	s.mu.Lock()
	next, err := Reduce(s.state, a)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("Action rejected.", "action", Name(a), "error", err)
		return s.State(), err
	}
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("Action applied.", "action", Name(a))
	s.record(ctx, a, next)
	return next.clone(), nil
}

// Restore replaces the documents and sessions with previously recorded ones
// without notifying the recorder.
func (s *Store) Restore(docs []models.Document, sessions []models.QASession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Reduce(s.state, SetDocuments{Documents: docs})
	if err != nil {
		return err
	}
	if next, err = Reduce(next, SetQASessions{Sessions: sessions}); err != nil {
		return err
	}
	s.state = next
	return nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Document returns the document with id.
func (s *Store) Document(id string) (models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.state.documentIndex(id); i >= 0 {
		return cloneDocument(s.state.Documents[i]), true
	}
	return models.Document{}, false
}

// SearchSessions returns the sessions whose question, answer or category
// contains query, ignoring case. An empty query matches everything.
func (s *Store) SearchSessions(query string) []models.QASession {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.QASession{}
	for _, session := range s.state.QASessions {
		if q == "" || containsFold(q, session.Question, session.Answer, session.Category) {
			out = append(out, cloneSession(session))
		}
	}
	return out
}

// SearchDocuments returns the documents whose name or summary contains query,
// ignoring case.
func (s *Store) SearchDocuments(query string) []models.Document {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Document{}
	for _, doc := range s.state.Documents {
		if q == "" || containsFold(q, doc.Name, doc.Summary) {
			out = append(out, cloneDocument(doc))
		}
	}
	return out
}

func containsFold(lowerQuery string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), lowerQuery) {
			return true
		}
	}
	return false
}

func (s *Store) record(ctx context.Context, a Action, next State) {
	if s.recorder == nil {
		return
	}

	var err error
	switch a := a.(type) {
	case AddDocument:
		err = s.recorder.RecordDocument(ctx, a.Document)
	case UpdateDocument:
		if i := next.documentIndex(a.ID); i >= 0 {
			err = s.recorder.RecordDocument(ctx, next.Documents[i])
		}
	case SetDocuments:
		for _, doc := range a.Documents {
			if err = s.recorder.RecordDocument(ctx, doc); err != nil {
				break
			}
		}
	case AddQASession:
		err = s.recorder.RecordSession(ctx, a.Session)
	case SetQASessions:
		for _, session := range a.Sessions {
			if err = s.recorder.RecordSession(ctx, session); err != nil {
				break
			}
		}
	case DeleteQASession:
		err = s.recorder.DeleteSession(ctx, a.ID)
	}
	if err != nil {
		s.logger.Error("Failed to record action.", "action", Name(a), "error", err)
	}
}
