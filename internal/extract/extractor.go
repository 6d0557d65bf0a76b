package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

// DefaultConcurrency bounds the number of files extracted at once.
const DefaultConcurrency = 8

// Result is the outcome for one file. Err is set when extraction failed.
type Result struct {
	Name  string
	Kind  Kind
	Text  string
	Pages int
	Err   error
}

// Success reports whether text was extracted.
func (r Result) Success() bool {
	return r.Kind != KindUnsupported && r.Err == nil
}

// Marker renders the result as the inline string returned to clients.
func (r Result) Marker() string {
	switch {
	case r.Kind == KindUnsupported:
		return fmt.Sprintf("[File: %s - Unsupported file type]", r.Name)
	case r.Kind == KindPDF && r.Err != nil:
		return fmt.Sprintf("[PDF: %s - Error parsing file]", r.Name)
	case r.Kind == KindPDF:
		return fmt.Sprintf("[PDF: %s]\n%s", r.Name, r.Text)
	case r.Err != nil:
		return fmt.Sprintf("[Text File: %s - Error reading file]", r.Name)
	default:
		return fmt.Sprintf("[Text File: %s]\n%s", r.Name, r.Text)
	}
}

// FileResult converts the result to its wire form.
func (r Result) FileResult() models.FileResult {
	fr := models.FileResult{Name: r.Name, Kind: string(r.Kind), Success: r.Success(), Pages: r.Pages}
	switch {
	case r.Kind == KindUnsupported:
		fr.Error = "unsupported file type"
	case r.Err != nil:
		fr.Error = r.Err.Error()
	}
	return fr
}

// Extractor extracts a batch of files concurrently.
type Extractor struct {
	pdf    PDFReader
	limit  int
	logger *slog.Logger
}

// New creates an extractor. A limit of zero or less uses DefaultConcurrency.
func New(pdf PDFReader, limit int, logger *slog.Logger) *Extractor {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{pdf: pdf, limit: limit, logger: logger}
}

// ExtractAll extracts every file. Failures are reported per file and never
// fail the batch; results are in input order.
func (e *Extractor) ExtractAll(ctx context.Context, files []File) []Result {
	results := make([]Result, len(files))

	var eg errgroup.Group
	eg.SetLimit(e.limit)
	for i, f := range files {
		eg.Go(func() error {
			results[i] = e.Extract(ctx, f)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

// Extract extracts a single file.
func (e *Extractor) Extract(ctx context.Context, f File) Result {
	res := Result{Name: f.Name, Kind: Classify(f.Name, f.ContentType)}
	logCtx := e.logger.With("file", f.Name, "kind", res.Kind)

	if res.Kind == KindUnsupported {
		logCtx.Info("Skipping unsupported file.", "contentType", f.ContentType)
		return res
	}

	data, err := f.Bytes()
	if err != nil {
		res.Err = err
		logCtx.Warn("Failed to read upload.", "error", err)
		return res
	}

	if res.Kind == KindText {
		res.Text = string(data)
		return res
	}

	if e.pdf == nil {
		res.Err = ErrPDFToolNotFound
		return res
	}
	start := time.Now()
	res.Text, res.Pages, res.Err = e.pdf.ExtractPDF(ctx, data)
	if res.Err != nil {
		logCtx.Warn("Failed to extract PDF text.", "error", res.Err)
		return res
	}
	logCtx.Info("Extracted PDF text.", "pages", res.Pages, "chars", len(res.Text), "duration", time.Since(start).String())
	return res
}

// Response builds the upload endpoint's JSON body.
func Response(results []Result, now time.Time) models.UploadResponse {
	resp := models.UploadResponse{
		FileContents: make([]string, len(results)),
		Results:      make([]models.FileResult, len(results)),
		Count:        len(results),
		Timestamp:    now.UTC().Format(time.RFC3339),
	}
	for i, r := range results {
		resp.FileContents[i] = r.Marker()
		resp.Results[i] = r.FileResult()
	}
	return resp
}
