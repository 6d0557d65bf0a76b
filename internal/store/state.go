// Package store holds the application state and the actions that change it.
package store

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

var (
	// ErrNotFound is returned when an action names an unknown document or session.
	ErrNotFound = errors.New("not found")
	// ErrUnknownTab is returned for a tab that does not exist.
	ErrUnknownTab = errors.New("unknown tab")
)

// Tab is one of the UI panels.
type Tab string

const (
	TabQA         Tab = "qa"
	TabDocuments  Tab = "documents"
	TabGenerator  Tab = "generator"
	TabSimulation Tab = "simulation"
)

// Tabs lists the panels in display order.
var Tabs = []Tab{TabQA, TabDocuments, TabGenerator, TabSimulation}

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	t := Tab(s)
	if !slices.Contains(Tabs, t) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
	}
	return t, nil
}

// State is the whole application state. Values returned by the store are
// copies and may be modified freely.
type State struct {
	Documents       []models.Document  `json:"documents"`
	QASessions      []models.QASession `json:"qaSessions"`
	CurrentDocument *models.Document   `json:"currentDocument"`
	Loading         bool               `json:"isLoading"`
	ActiveTab       Tab                `json:"activeTab"`
}

// Initial returns the state of a fresh session.
func Initial() State {
	return State{
		Documents:  []models.Document{},
		QASessions: []models.QASession{},
		ActiveTab:  TabQA,
	}
}

func (s State) clone() State {
	out := s
	if s.Documents != nil {
		out.Documents = make([]models.Document, len(s.Documents))
		for i, d := range s.Documents {
			out.Documents[i] = cloneDocument(d)
		}
	}
	if s.QASessions != nil {
		out.QASessions = make([]models.QASession, len(s.QASessions))
		for i, q := range s.QASessions {
			out.QASessions[i] = cloneSession(q)
		}
	}
	if s.CurrentDocument != nil {
		doc := cloneDocument(*s.CurrentDocument)
		out.CurrentDocument = &doc
	}
	return out
}

func cloneDocument(d models.Document) models.Document {
	d.FilledData = maps.Clone(d.FilledData)
	return d
}

func cloneSession(q models.QASession) models.QASession {
	q.Files = slices.Clone(q.Files)
	return q
}

func (s State) documentIndex(id string) int {
	return slices.IndexFunc(s.Documents, func(d models.Document) bool { return d.ID == id })
}
