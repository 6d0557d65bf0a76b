package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/legalassistant/internal/app"
	"github.com/Lllllllleong/legalassistant/internal/config"
	"github.com/Lllllllleong/legalassistant/internal/gcp"
	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/pdfdoc"
	"github.com/Lllllllleong/legalassistant/internal/records"
	"github.com/Lllllllleong/legalassistant/internal/safe"
)

// TemplateInspectorConfig holds configuration for the template-inspector function.
type TemplateInspectorConfig struct {
	ProjectID          string
	TemplateCollection string
	OptimizedBucket    string
	MappingPath        string
}

// ObjectStore reads and writes Cloud Storage objects.
type ObjectStore interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
	Create(ctx context.Context, bucket, object, contentType string) io.WriteCloser
}

// TemplateRegistry remembers inspected template revisions by content hash.
type TemplateRegistry interface {
	FindTemplate(ctx context.Context, fileHash string) (models.TemplateRecord, error)
	RecordTemplate(ctx context.Context, rec models.TemplateRecord) error
}

// TemplateInspectorFunction inspects SAFE templates dropped into a bucket and
// records whether they still match the configured field mapping.
type TemplateInspectorFunction struct {
	objects  ObjectStore
	registry TemplateRegistry
	filler   *safe.Filler
	config   TemplateInspectorConfig
	now      func() time.Time
	backoff  time.Duration
}

// GCSEvent is the payload of a Cloud Storage object-finalized event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// NewTemplateInspector creates a TemplateInspectorFunction from the environment.
func NewTemplateInspector(ctx context.Context) (*TemplateInspectorFunction, error) {
	projectID := config.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	cfg := TemplateInspectorConfig{
		ProjectID:          projectID,
		TemplateCollection: config.GetEnv("TEMPLATE_COLLECTION", "templates"),
		OptimizedBucket:    config.GetEnv("OPTIMIZED_TEMPLATE_BUCKET", ""),
		MappingPath:        config.GetEnv("TEMPLATE_MAPPING", ""),
	}

	mapping, err := app.LoadMapping(cfg.MappingPath)
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	f := NewTemplateInspectorWith(
		gcsObjects{client: storageClient},
		records.NewFirestore(firestoreClient, "", cfg.TemplateCollection),
		safe.NewFiller(mapping, slog.Default()),
		cfg,
	)
	slog.Info("Template inspector initialized.", "mapping", mapping.Name, "collection", cfg.TemplateCollection)
	return f, nil
}

// NewTemplateInspectorWith creates an inspector from explicit dependencies.
func NewTemplateInspectorWith(objects ObjectStore, registry TemplateRegistry, filler *safe.Filler, cfg TemplateInspectorConfig) *TemplateInspectorFunction {
	return &TemplateInspectorFunction{
		objects:  objects,
		registry: registry,
		filler:   filler,
		config:   cfg,
		now:      time.Now,
		backoff:  time.Second,
	}
}

// Process inspects one uploaded template. Re-uploads of an already inspected
// revision are skipped. A template that no longer matches the mapping is
// recorded, not treated as a failure.
func (f *TemplateInspectorFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	if !strings.EqualFold(path.Ext(e.Name), ".pdf") {
		logCtx.Info("Ignoring non-PDF object.")
		return nil
	}
	logCtx.Info("Inspecting template.")

	tempDir, err := os.MkdirTemp("", "template-inspector-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePath := filepath.Join(tempDir, "template.pdf")
	if err := f.streamGCSObject(ctx, e.Bucket, e.Name, sourcePath); err != nil {
		logCtx.Error("Failed to download template", "error", err)
		return err
	}

	fileHash, err := calculateFileHash(sourcePath)
	if err != nil {
		logCtx.Error("Failed to calculate file hash", "error", err)
		return fmt.Errorf("failed to calculate file hash: %w", err)
	}
	logCtx = logCtx.With("fileHash", fileHash)

	existing, err := f.registry.FindTemplate(ctx, fileHash)
	switch {
	case err == nil:
		logCtx.Info("Template revision already inspected. Skipping.", "existingName", existing.Name)
		return nil
	case !errors.Is(err, records.ErrNotFound):
		logCtx.Error("Failed to check for duplicate", "error", err)
		return err
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	inspection, err := f.filler.Inspect(data)
	if err != nil {
		return f.handleError(logCtx, "failed to inspect template", err)
	}

	rec := models.TemplateRecord{
		Name:        e.Name,
		Bucket:      e.Bucket,
		FileHash:    fileHash,
		PageCount:   inspection.PageCount,
		FieldNames:  inspection.FieldNames,
		MappingOK:   true,
		InspectedAt: f.now().UTC(),
	}
	if err := f.filler.Check(data); err != nil {
		var mismatch *safe.MismatchError
		if !errors.As(err, &mismatch) {
			return f.handleError(logCtx, "failed to check template against mapping", err)
		}
		rec.MappingOK = false
		rec.Missing = mismatch.Missing
		logCtx.Warn("Template does not match mapping.", "mapping", mismatch.Mapping, "reason", mismatch.Reason, "missing", mismatch.Missing)
	}

	if f.config.OptimizedBucket != "" && rec.MappingOK {
		if err := f.publishOptimized(ctx, logCtx, data, e.Name); err != nil {
			return err
		}
	}

	if err := f.registry.RecordTemplate(ctx, rec); err != nil {
		return f.handleError(logCtx, "failed to record template", err)
	}
	logCtx.Info("Template inspected.", "pageCount", rec.PageCount, "fields", len(rec.FieldNames), "mappingOk", rec.MappingOK)
	return nil
}

// publishOptimized writes a pdfcpu-optimized copy of a matching template.
func (f *TemplateInspectorFunction) publishOptimized(ctx context.Context, logCtx *slog.Logger, data []byte, name string) error {
	optimized, err := pdfdoc.Optimize(data)
	if err != nil {
		return f.handleError(logCtx, "failed to optimize template", err)
	}
	if err := f.uploadFile(ctx, optimized, name); err != nil {
		return f.handleError(logCtx, "failed to publish optimized template", err)
	}
	logCtx.Info("Published optimized template.", "bucket", f.config.OptimizedBucket, "bytes", len(optimized))
	return nil
}

func (f *TemplateInspectorFunction) handleError(logCtx *slog.Logger, message string, originalErr error) error {
	logCtx.Error(message, "error", originalErr)
	return fmt.Errorf("%s: %w", message, originalErr)
}

func (f *TemplateInspectorFunction) streamGCSObject(ctx context.Context, bucket, object, destPath string) error {
	gcsReader, err := f.objects.Open(ctx, bucket, object)
	if err != nil {
		return fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer gcsReader.Close()
	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", destPath, err)
	}
	defer localFile.Close()
	if _, err := io.Copy(localFile, gcsReader); err != nil {
		return fmt.Errorf("failed to copy GCS object to local file: %w", err)
	}
	return nil
}

func (f *TemplateInspectorFunction) uploadFile(ctx context.Context, data []byte, destObject string) error {
	const maxRetries = 4
	backoff := f.backoff
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := func() error {
			writeCtx, cancel := context.WithTimeout(ctx, 50*time.Second)
			defer cancel()

			w := f.objects.Create(writeCtx, f.config.OptimizedBucket, destObject, "application/pdf")
			if _, err := w.Write(data); err != nil {
				_ = w.Close()
				return fmt.Errorf("write to GCS failed: %w", err)
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
			}
			return nil
		}()
		if err == nil {
			return nil
		}

		lastErr = err
		slog.Warn("Upload failed, will retry.",
			"gcsObject", destObject,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("upload for %s failed after all retries: %w", destObject, lastErr)
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

type gcsObjects struct {
	client *storage.Client
}

func (g gcsObjects) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	return g.client.Bucket(bucket).Object(object).NewReader(ctx)
}

func (g gcsObjects) Create(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	return w
}
