package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Lllllllleong/legalassistant/internal/pdfdoc"
)

// DefaultMaxPages bounds how many pages of a PDF are extracted.
const DefaultMaxPages = 50

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFReader extracts text from a PDF document.
type PDFReader interface {
	ExtractPDF(ctx context.Context, data []byte) (text string, pages int, err error)
}

// Poppler extracts PDF text with poppler's pdftotext after pdfcpu has checked
// that the document parses.
type Poppler struct {
	runner   CommandRunner
	maxPages int
}

// NewPoppler returns a Poppler that runs the real pdftotext binary.
func NewPoppler(maxPages int) *Poppler {
	return NewPopplerWithRunner(execRunner{}, maxPages)
}

// NewPopplerWithRunner returns a Poppler that runs commands through runner.
func NewPopplerWithRunner(runner CommandRunner, maxPages int) *Poppler {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Poppler{runner: runner, maxPages: maxPages}
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return "pdftotext is part of poppler: brew install poppler (macOS) or apt install poppler-utils (Debian/Ubuntu)"
}

// ExtractPDF returns the text of at most maxPages pages and the document's
// total page count.
func (p *Poppler) ExtractPDF(ctx context.Context, data []byte) (string, int, error) {
	pages, err := pdfdoc.PageCount(data)
	if err != nil {
		return "", 0, err
	}

	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	out, err := p.runner.Run(ctx, "pdftotext", "-q", "-l", strconv.Itoa(p.maxPages), "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", pages, ErrPDFToolNotFound
		}
		return "", pages, fmt.Errorf("pdftotext failed: %w", err)
	}
	return strings.TrimSpace(string(out)), pages, nil
}
