// Package pdfdoc wraps the pdfcpu operations shared by the upload, layout and
// template services. All entry points work on in-memory documents.
package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// NewConfig returns a pdfcpu configuration in relaxed validation mode, which
// tolerates the small format violations common in real-world uploads.
func NewConfig() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// PageCount returns the number of pages in data.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), NewConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// Validate checks that data parses as a PDF.
func Validate(data []byte) error {
	if err := api.Validate(bytes.NewReader(data), NewConfig()); err != nil {
		return fmt.Errorf("failed to validate PDF: %w", err)
	}
	return nil
}

// Optimize rewrites data with pdfcpu's optimizer, which compresses streams and
// drops redundant objects.
func Optimize(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &out, NewConfig()); err != nil {
		return nil, fmt.Errorf("failed to optimize PDF: %w", err)
	}
	return out.Bytes(), nil
}
