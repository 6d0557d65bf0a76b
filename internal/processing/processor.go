// Package processing turns uploaded files into documents and completes them
// in the background: text extraction, a short summary and detected SAFE
// terms.
package processing

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/legalassistant/internal/extract"
	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/qa"
	"github.com/Lllllllleong/legalassistant/internal/store"
)

// Mode selects where documents are processed.
type Mode string

const (
	ModeLocal    Mode = "local"
	ModeWorkflow Mode = "workflow"
)

// Trigger starts a remote workflow execution. *gcp.WorkflowTrigger implements it.
type Trigger interface {
	Trigger(ctx context.Context, payload any) (string, error)
}

// Archiver keeps a copy of uploaded files. *gcp.Archive implements it.
type Archiver interface {
	Put(ctx context.Context, object string, data []byte, contentType string) (string, error)
}

// WorkflowRequest is the argument of a workflow execution.
type WorkflowRequest struct {
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	URL        string `json:"url,omitempty"`
}

// Options configures a Processor.
type Options struct {
	Mode      Mode
	Extractor *extract.Extractor
	Chat      qa.Completer
	Store     *store.Store
	Trigger   Trigger
	Archive   Archiver
	Logger    *slog.Logger
}

// Processor owns the goroutines processing documents.
type Processor struct {
	mode      Mode
	extractor *extract.Extractor
	chat      qa.Completer
	store     *store.Store
	trigger   Trigger
	archive   Archiver
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now   func() time.Time
	newID func() string
}

// New creates a processor. Workflow mode requires a Trigger and an Archive,
// since the workflow reads the upload from the archive.
func New(opts Options) (*Processor, error) {
	if opts.Mode == "" {
		opts.Mode = ModeLocal
	}
	switch opts.Mode {
	case ModeLocal:
		if opts.Extractor == nil {
			return nil, fmt.Errorf("local processing requires an extractor")
		}
	case ModeWorkflow:
		if opts.Trigger == nil {
			return nil, fmt.Errorf("workflow processing requires a trigger")
		}
		if opts.Archive == nil {
			return nil, fmt.Errorf("workflow processing requires an archive")
		}
	default:
		return nil, fmt.Errorf("unknown processing mode %q", opts.Mode)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("processing requires a store")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		mode:      opts.Mode,
		extractor: opts.Extractor,
		chat:      opts.Chat,
		store:     opts.Store,
		trigger:   opts.Trigger,
		archive:   opts.Archive,
		logger:    opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

type upload struct {
	doc  models.Document
	data []byte
}

// Submit reads every supported file, adds it to the store as a processing
// document and starts processing it. Unsupported files are returned by name
// and not added. Files are read before Submit returns, so callers may release
// them afterwards.
func (p *Processor) Submit(ctx context.Context, files []extract.File) ([]models.Document, []string, error) {
	var (
		uploads []upload
		skipped []string
	)
	for _, f := range files {
		if extract.Classify(f.Name, f.ContentType) == extract.KindUnsupported {
			skipped = append(skipped, f.Name)
			continue
		}
		data, err := f.Bytes()
		if err != nil {
			return nil, nil, err
		}
		uploads = append(uploads, upload{
			doc: models.Document{
				ID:         p.newID(),
				Name:       f.Name,
				Type:       contentType(f),
				UploadDate: p.now().UTC(),
				Status:     models.StatusProcessing,
			},
			data: data,
		})
	}

	docs := make([]models.Document, 0, len(uploads))
	for _, u := range uploads {
		if _, err := p.store.Dispatch(ctx, store.AddDocument{Document: u.doc}); err != nil {
			return nil, nil, fmt.Errorf("failed to add document %s: %w", u.doc.Name, err)
		}
		docs = append(docs, u.doc)

		p.wg.Add(1)
		go func(u upload) {
			defer p.wg.Done()
			p.process(u)
		}(u)
	}
	return docs, skipped, nil
}

// Wait blocks until every submitted document has finished processing.
func (p *Processor) Wait() {
	p.wg.Wait()
}

// Close cancels in-flight processing and waits for it to stop.
func (p *Processor) Close() {
	p.cancel()
	p.wg.Wait()
}

func (p *Processor) process(u upload) {
	ctx := p.ctx
	logCtx := p.logger.With("documentId", u.doc.ID, "file", u.doc.Name, "mode", p.mode)
	logCtx.Info("Processing document.")

	var url string
	if p.archive != nil {
		object := path.Join("uploads", u.doc.ID, path.Base(u.doc.Name))
		uri, err := p.archive.Put(ctx, object, u.data, u.doc.Type)
		switch {
		case err != nil && p.mode == ModeWorkflow:
			p.handleError(logCtx, u.doc.ID, "Failed to archive upload", err)
			return
		case err != nil:
			logCtx.Warn("Failed to archive upload.", "error", err)
		default:
			url = uri
		}
	}

	if p.mode == ModeWorkflow {
		p.handoff(ctx, logCtx, u.doc, url)
		return
	}

	res := p.extractor.Extract(ctx, extract.FromBytes(u.doc.Name, u.doc.Type, u.data))
	if !res.Success() {
		p.handleError(logCtx, u.doc.ID, "Failed to extract text", res.Err)
		return
	}
	if ctx.Err() != nil {
		p.handleError(logCtx, u.doc.ID, "Processing cancelled", ctx.Err())
		return
	}

	summary, source := p.summarize(ctx, u.doc.Name, res.Text)
	status := models.StatusCompleted
	patch := models.DocumentPatch{
		Status:     &status,
		Summary:    &summary,
		FilledData: DetectFields(res.Text),
		Text:       &res.Text,
	}
	if url != "" {
		patch.URL = &url
	}
	if _, err := p.store.Dispatch(ctx, store.UpdateDocument{ID: u.doc.ID, Patch: patch}); err != nil {
		logCtx.Error("Failed to complete document.", "error", err)
		return
	}
	logCtx.Info("Document processed.", "summarySource", source, "pages", res.Pages, "fields", len(patch.FilledData))
}

// handoff starts a workflow execution; the document stays processing until
// the workflow reports back.
func (p *Processor) handoff(ctx context.Context, logCtx *slog.Logger, doc models.Document, url string) {
	execution, err := p.trigger.Trigger(ctx, WorkflowRequest{
		DocumentID: doc.ID,
		Name:       doc.Name,
		Type:       doc.Type,
		URL:        url,
	})
	if err != nil {
		p.handleError(logCtx, doc.ID, "Failed to start workflow", err)
		return
	}
	if url != "" {
		if _, err := p.store.Dispatch(ctx, store.UpdateDocument{ID: doc.ID, Patch: models.DocumentPatch{URL: &url}}); err != nil {
			logCtx.Error("Failed to record archive URL.", "error", err)
		}
	}
	logCtx.Info("Workflow execution started.", "executionName", execution)
}

// handleError marks the document as failed.
func (p *Processor) handleError(logCtx *slog.Logger, id, message string, originalErr error) {
	logCtx.Error(message, "error", originalErr)
	status := models.StatusError
	details := message
	if originalErr != nil {
		details = fmt.Sprintf("%s: %v", message, originalErr)
	}
	// The processor context may already be cancelled; the update must still land.
	if _, err := p.store.Dispatch(context.WithoutCancel(p.ctx), store.UpdateDocument{
		ID:    id,
		Patch: models.DocumentPatch{Status: &status, ErrorDetails: &details},
	}); err != nil {
		logCtx.Error("Failed to record document error.", "error", err)
	}
}

func contentType(f extract.File) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	if extract.Classify(f.Name, "") == extract.KindPDF {
		return "application/pdf"
	}
	return "text/plain"
}
