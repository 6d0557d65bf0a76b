package records

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

const (
	sessionsCollection = "qaSessions"
)

// Firestore records into three collections: documents, qaSessions and templates.
type Firestore struct {
	client    *firestore.Client
	documents string
	templates string
}

// NewFirestore wraps an existing client. Empty collection names fall back to
// "documents" and "templates".
func NewFirestore(client *firestore.Client, documents, templates string) *Firestore {
	if documents == "" {
		documents = "documents"
	}
	if templates == "" {
		templates = "templates"
	}
	return &Firestore{client: client, documents: documents, templates: templates}
}

func (f *Firestore) RecordDocument(ctx context.Context, doc models.Document) error {
	if _, err := f.client.Collection(f.documents).Doc(doc.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to record document %s: %w", doc.ID, err)
	}
	return nil
}

// PatchDocument applies patch to a recorded document inside a transaction.
func (f *Firestore) PatchDocument(ctx context.Context, id string, patch models.DocumentPatch) (models.Document, error) {
	ref := f.client.Collection(f.documents).Doc(id)
	var doc models.Document
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var current models.Document
		if err := snap.DataTo(&current); err != nil {
			return err
		}
		doc = patch.Apply(current)
		return tx.Set(ref, doc)
	})
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to patch document %s: %w", id, err)
	}
	return doc, nil
}

func (f *Firestore) RecordSession(ctx context.Context, session models.QASession) error {
	if _, err := f.client.Collection(sessionsCollection).Doc(session.ID).Set(ctx, session); err != nil {
		return fmt.Errorf("failed to record session %s: %w", session.ID, err)
	}
	return nil
}

func (f *Firestore) DeleteSession(ctx context.Context, id string) error {
	if _, err := f.client.Collection(sessionsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

func (f *Firestore) Load(ctx context.Context) ([]models.Document, []models.QASession, error) {
	docs, err := readAll[models.Document](ctx, f.client.Collection(f.documents).OrderBy("uploadDate", firestore.Asc))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load documents: %w", err)
	}
	sessions, err := readAll[models.QASession](ctx, f.client.Collection(sessionsCollection).OrderBy("timestamp", firestore.Asc))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	return docs, sessions, nil
}

func (f *Firestore) RecordTemplate(ctx context.Context, rec models.TemplateRecord) error {
	if _, err := f.client.Collection(f.templates).Doc(rec.FileHash).Set(ctx, rec); err != nil {
		return fmt.Errorf("failed to record template %s: %w", rec.Name, err)
	}
	return nil
}

// FindTemplate looks up an inspection by the SHA-256 of the template bytes.
func (f *Firestore) FindTemplate(ctx context.Context, fileHash string) (models.TemplateRecord, error) {
	iter := f.client.Collection(f.templates).Where("fileHash", "==", fileHash).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return models.TemplateRecord{}, ErrNotFound
	}
	if err != nil {
		return models.TemplateRecord{}, fmt.Errorf("failed to query templates: %w", err)
	}

	var rec models.TemplateRecord
	if err := snap.DataTo(&rec); err != nil {
		return models.TemplateRecord{}, fmt.Errorf("failed to decode template %s: %w", snap.Ref.ID, err)
	}
	return rec, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func readAll[T any](ctx context.Context, q firestore.Query) ([]T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []T{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", snap.Ref.ID, err)
		}
		out = append(out, v)
	}
}
