package extract

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Lllllllleong/legalassistant/internal/layout"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	mu     sync.Mutex
	output []byte
	err    error
	args   [][]string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.args = append(m.args, append([]string{name}, args...))
	return m.output, m.err
}

// fakePDF is a PDFReader that echoes the payload back as text.
type fakePDF struct {
	inFlight, peak atomic.Int32
	delay          time.Duration
	fail           map[string]bool
}

func (f *fakePDF) ExtractPDF(_ context.Context, data []byte) (string, int, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(f.delay)
	if f.fail[string(data)] {
		return "", 0, errors.New("corrupt xref table")
	}
	return "pdf:" + string(data), 1, nil
}

func samplePDF(t *testing.T, pages int) []byte {
	t.Helper()
	doc := layout.NewDocument(layout.Info{Title: "sample"})
	for i := 0; i < pages; i++ {
		p := doc.AddPage()
		p.DrawText("Page text", layout.Margin, p.Top(), 11, layout.Regular)
	}
	data, err := doc.Bytes()
	require.NoError(t, err)
	return data
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name, contentType string
		want              Kind
	}{
		{"notes.txt", "text/plain", KindText},
		{"notes", "text/plain; charset=utf-8", KindText},
		{"NOTES.TXT", "", KindText},
		{"safe.pdf", "application/pdf", KindPDF},
		{"safe.PDF", "application/octet-stream", KindPDF},
		{"scan", "application/pdf", KindPDF},
		{"deck.pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation", KindUnsupported},
		{"image.png", "image/png", KindUnsupported},
		{"noext", "", KindUnsupported},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Classify(tc.name, tc.contentType), "%s (%s)", tc.name, tc.contentType)
	}
}

func TestExtractAll_UnsupportedFileDoesNotAffectOthers(t *testing.T) {
	pdf := &fakePDF{}
	e := New(pdf, 4, nil)

	files := []File{
		FromBytes("memo.txt", "text/plain", []byte("Board consent attached.")),
		FromBytes("photo.png", "image/png", []byte{0x89, 'P', 'N', 'G'}),
		FromBytes("safe.pdf", "application/pdf", []byte("safe body")),
	}

	results := e.ExtractAll(context.Background(), files)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success())
	assert.Equal(t, "[Text File: memo.txt]\nBoard consent attached.", results[0].Marker())

	assert.False(t, results[1].Success())
	assert.Equal(t, "[File: photo.png - Unsupported file type]", results[1].Marker())
	assert.Equal(t, "unsupported file type", results[1].FileResult().Error)

	assert.True(t, results[2].Success())
	assert.Equal(t, "[PDF: safe.pdf]\npdf:safe body", results[2].Marker())
}

func TestExtractAll_PDFFailureIsInline(t *testing.T) {
	pdf := &fakePDF{fail: map[string]bool{"broken": true}}
	e := New(pdf, 2, nil)

	results := e.ExtractAll(context.Background(), []File{
		FromBytes("a.pdf", "application/pdf", []byte("broken")),
		FromBytes("b.pdf", "application/pdf", []byte("fine")),
	})

	assert.Equal(t, "[PDF: a.pdf - Error parsing file]", results[0].Marker())
	fr := results[0].FileResult()
	assert.False(t, fr.Success)
	assert.Contains(t, fr.Error, "corrupt xref")
	assert.Equal(t, "[PDF: b.pdf]\npdf:fine", results[1].Marker())
}

func TestExtractAll_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	pdf := &fakePDF{delay: 10 * time.Millisecond}
	e := New(pdf, 3, nil)

	var files []File
	for i := 0; i < 12; i++ {
		name := string(rune('a'+i)) + ".pdf"
		files = append(files, FromBytes(name, "application/pdf", []byte(name)))
	}

	results := e.ExtractAll(context.Background(), files)
	require.Len(t, results, len(files))
	for i, r := range results {
		assert.Equal(t, files[i].Name, r.Name)
		assert.Equal(t, "pdf:"+files[i].Name, r.Text)
	}
	assert.LessOrEqual(t, pdf.peak.Load(), int32(3))
}

func TestExtract_OpenFailure(t *testing.T) {
	e := New(&fakePDF{}, 1, nil)
	f := File{Name: "gone.txt", ContentType: "text/plain", Open: func() (io.ReadCloser, error) {
		return nil, errors.New("disk detached")
	}}

	res := e.Extract(context.Background(), f)
	assert.False(t, res.Success())
	assert.Equal(t, "[Text File: gone.txt - Error reading file]", res.Marker())
}

func TestExtract_NoPDFReader(t *testing.T) {
	res := New(nil, 1, nil).Extract(context.Background(), FromBytes("x.pdf", "application/pdf", []byte("x")))
	assert.ErrorIs(t, res.Err, ErrPDFToolNotFound)
}

func TestResponse(t *testing.T) {
	now := time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)
	resp := Response([]Result{
		{Name: "a.txt", Kind: KindText, Text: "hello"},
		{Name: "b.doc", Kind: KindUnsupported},
	}, now)

	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "2026-10-16T08:30:00Z", resp.Timestamp)
	assert.Equal(t, []string{"[Text File: a.txt]\nhello", "[File: b.doc - Unsupported file type]"}, resp.FileContents)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
}

func TestPoppler_ExtractPDF(t *testing.T) {
	runner := &mockRunner{output: []byte("  SAFE text\n\n")}
	p := NewPopplerWithRunner(runner, 5)

	text, pages, err := p.ExtractPDF(context.Background(), samplePDF(t, 3))
	require.NoError(t, err)
	assert.Equal(t, "SAFE text", text)
	assert.Equal(t, 3, pages)

	require.Len(t, runner.args, 1)
	args := runner.args[0]
	assert.Equal(t, "pdftotext", args[0])
	assert.Equal(t, []string{"-q", "-l", "5", "-enc", "UTF-8"}, args[1:6])
	assert.True(t, strings.HasSuffix(args[6], ".pdf"))
	assert.Equal(t, "-", args[7])
}

func TestPoppler_RejectsInvalidPDF(t *testing.T) {
	runner := &mockRunner{}
	p := NewPopplerWithRunner(runner, 0)

	_, _, err := p.ExtractPDF(context.Background(), []byte("%PDF-1.4 truncated"))
	assert.Error(t, err)
	assert.Empty(t, runner.args, "pdftotext is not run for unparseable input")
}

func TestPoppler_RunnerFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("exit status 1")}
	_, pages, err := NewPopplerWithRunner(runner, 0).ExtractPDF(context.Background(), samplePDF(t, 1))
	assert.Error(t, err)
	assert.Equal(t, 1, pages)
}

func TestInstallInstructions(t *testing.T) {
	assert.Contains(t, InstallInstructions(), "pdftotext")
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}
