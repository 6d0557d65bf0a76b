package store

import (
	"fmt"
	"slices"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

// Action is a state transition. The set of actions is closed.
type Action interface {
	action() string
}

type (
	SetDocuments struct{ Documents []models.Document }
	AddDocument  struct{ Document models.Document }
	// UpdateDocument applies Patch to the document with ID.
	UpdateDocument struct {
		ID    string
		Patch models.DocumentPatch
	}
	// SetCurrentDocument selects a document by ID; an empty ID clears the selection.
	SetCurrentDocument struct{ ID string }
	AddQASession       struct{ Session models.QASession }
	SetQASessions      struct{ Sessions []models.QASession }
	DeleteQASession    struct{ ID string }
	SetLoading         struct{ Loading bool }
	SetActiveTab       struct{ Tab Tab }
)

func (SetDocuments) action() string       { return "SET_DOCUMENTS" }
func (AddDocument) action() string        { return "ADD_DOCUMENT" }
func (UpdateDocument) action() string     { return "UPDATE_DOCUMENT" }
func (SetCurrentDocument) action() string { return "SET_CURRENT_DOCUMENT" }
func (AddQASession) action() string       { return "ADD_QA_SESSION" }
func (SetQASessions) action() string      { return "SET_QA_SESSIONS" }
func (DeleteQASession) action() string    { return "DELETE_QA_SESSION" }
func (SetLoading) action() string         { return "SET_LOADING" }
func (SetActiveTab) action() string       { return "SET_ACTIVE_TAB" }

// Name returns the wire name of an action, e.g. "ADD_DOCUMENT".
func Name(a Action) string {
	return a.action()
}

// Reduce returns the state that results from applying a to s. It never
// modifies s; on error the returned state is s unchanged.
func Reduce(s State, a Action) (State, error) {
	next := s.clone()

	switch a := a.(type) {
	case SetDocuments:
		next.Documents = slices.Clone(a.Documents)
	case AddDocument:
		next.Documents = append(next.Documents, a.Document)
	case UpdateDocument:
		i := next.documentIndex(a.ID)
		if i < 0 {
			return s, fmt.Errorf("document %s: %w", a.ID, ErrNotFound)
		}
		next.Documents[i] = a.Patch.Apply(next.Documents[i])
		if next.CurrentDocument != nil && next.CurrentDocument.ID == a.ID {
			doc := next.Documents[i]
			next.CurrentDocument = &doc
		}
	case SetCurrentDocument:
		if a.ID == "" {
			next.CurrentDocument = nil
			break
		}
		i := next.documentIndex(a.ID)
		if i < 0 {
			return s, fmt.Errorf("document %s: %w", a.ID, ErrNotFound)
		}
		doc := next.Documents[i]
		next.CurrentDocument = &doc
	case AddQASession:
		next.QASessions = append(next.QASessions, a.Session)
	case SetQASessions:
		next.QASessions = slices.Clone(a.Sessions)
	case DeleteQASession:
		i := slices.IndexFunc(next.QASessions, func(q models.QASession) bool { return q.ID == a.ID })
		if i < 0 {
			return s, fmt.Errorf("session %s: %w", a.ID, ErrNotFound)
		}
		next.QASessions = slices.Delete(next.QASessions, i, i+1)
	case SetLoading:
		next.Loading = a.Loading
	case SetActiveTab:
		if _, err := ParseTab(string(a.Tab)); err != nil {
			return s, err
		}
		next.ActiveTab = a.Tab
	default:
		return s, fmt.Errorf("unhandled action %T", a)
	}
	return next, nil
}
