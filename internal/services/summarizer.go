package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/legalassistant/internal/app"
	"github.com/Lllllllleong/legalassistant/internal/config"
	"github.com/Lllllllleong/legalassistant/internal/extract"
	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/processing"
	"github.com/Lllllllleong/legalassistant/internal/qa"
)

// DocumentPatcher updates recorded documents.
type DocumentPatcher interface {
	PatchDocument(ctx context.Context, id string, patch models.DocumentPatch) (models.Document, error)
}

// SummarizerFunction is the workflow step that extracts, summarises and
// completes a document uploaded while processing runs in workflow mode.
type SummarizerFunction struct {
	objects   ObjectStore
	extractor *extract.Extractor
	chat      qa.Completer
	documents DocumentPatcher
}

// NewSummarizer creates a SummarizerFunction from the environment. The
// recorder must be configured, since the summary is written back to it.
func NewSummarizer(ctx context.Context) (*SummarizerFunction, error) {
	cfg, err := config.Load(config.GetEnv("CONFIG_FILE", ""))
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Recorder == "none" {
		return nil, fmt.Errorf("RECORDER must be set for the summarizer")
	}
	// The summarizer only completes documents, it never hands them off again.
	cfg.Processing.Mode = "local"

	a, err := app.New(ctx, cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to build services: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return NewSummarizerWith(gcsObjects{client: storageClient}, a.Extractor, a.Chat, a.Recorder), nil
}

// NewSummarizerWith creates a summarizer from explicit dependencies.
func NewSummarizerWith(objects ObjectStore, extractor *extract.Extractor, c qa.Completer, documents DocumentPatcher) *SummarizerFunction {
	return &SummarizerFunction{objects: objects, extractor: extractor, chat: c, documents: documents}
}

// Process handles one document. Extraction failures are recorded on the
// document as an error status and also returned, so the workflow step fails.
func (f *SummarizerFunction) Process(ctx context.Context, req *models.SummarizeRequest) (*models.SummarizeResponse, error) {
	logCtx := slog.With("documentId", req.DocumentID, "executionId", req.ExecutionID)
	logCtx.Info("Starting document summary.")

	if req.DocumentID == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	bucket, object, err := parseGCSURI(req.URL)
	if err != nil {
		return nil, err
	}

	// --- 1. Read the archived upload ---
	data, err := f.readObject(ctx, bucket, object)
	if err != nil {
		return nil, f.fail(ctx, logCtx, req.DocumentID, "Failed to read uploaded file", err)
	}

	// --- 2. Extract its text ---
	name := req.Name
	if name == "" {
		name = object[strings.LastIndexByte(object, '/')+1:]
	}
	result := f.extractor.Extract(ctx, extract.FromBytes(name, req.Type, data))
	if !result.Success() {
		err := result.Err
		if err == nil {
			err = fmt.Errorf("unsupported file type")
		}
		return nil, f.fail(ctx, logCtx, req.DocumentID, "Failed to extract text", err)
	}

	// --- 3. Summarise and detect SAFE terms ---
	summary, source := processing.Summarize(ctx, f.chat, name, result.Text)
	filled := processing.DetectFields(result.Text)

	// --- 4. Complete the document record ---
	status := models.StatusCompleted
	if _, err := f.documents.PatchDocument(ctx, req.DocumentID, models.DocumentPatch{
		Status:     &status,
		Summary:    &summary,
		FilledData: filled,
	}); err != nil {
		logCtx.Error("Failed to record summary", "error", err)
		return nil, fmt.Errorf("failed to record summary: %w", err)
	}

	logCtx.Info("Document summary complete.", "summarySource", source, "fields", len(filled))
	return &models.SummarizeResponse{
		Status:        "success",
		Summary:       summary,
		SummarySource: source,
		FilledData:    filled,
	}, nil
}

// fail marks the document as failed and returns the original error.
func (f *SummarizerFunction) fail(ctx context.Context, logCtx *slog.Logger, id, message string, originalErr error) error {
	logCtx.Error(message, "error", originalErr)
	status := models.StatusError
	details := fmt.Sprintf("%s: %v", message, originalErr)
	if _, err := f.documents.PatchDocument(ctx, id, models.DocumentPatch{Status: &status, ErrorDetails: &details}); err != nil {
		logCtx.Error("Failed to record document error", "error", err)
	}
	return fmt.Errorf("%s: %w", strings.ToLower(message), originalErr)
}

func (f *SummarizerFunction) readObject(ctx context.Context, bucket, object string) ([]byte, error) {
	r, err := f.objects.Open(ctx, bucket, object)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func parseGCSURI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("invalid GCS URI %q", uri)
	}
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid GCS URI %q", uri)
	}
	return bucket, object, nil
}
