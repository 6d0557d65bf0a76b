// Package records mirrors documents, Q&A sessions and template inspections
// to durable storage. The in-memory store stays authoritative; a recorder
// only lets a restarted process pick up where it left off.
package records

import (
	"context"
	"errors"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// Recorder is implemented by every backend. It satisfies store.Recorder.
type Recorder interface {
	RecordDocument(ctx context.Context, doc models.Document) error
	RecordSession(ctx context.Context, session models.QASession) error
	DeleteSession(ctx context.Context, id string) error
	PatchDocument(ctx context.Context, id string, patch models.DocumentPatch) (models.Document, error)

	// Load returns everything recorded so far, in insertion order.
	Load(ctx context.Context) ([]models.Document, []models.QASession, error)

	RecordTemplate(ctx context.Context, rec models.TemplateRecord) error
	FindTemplate(ctx context.Context, fileHash string) (models.TemplateRecord, error)

	Close() error
}
