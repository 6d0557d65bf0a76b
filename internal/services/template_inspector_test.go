package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/legalassistant/internal/pdfdoc"
	"github.com/Lllllllleong/legalassistant/internal/records"
	"github.com/Lllllllleong/legalassistant/internal/safe"
)

// memObjects is an in-memory bucket store. failWrites makes the next n
// writes fail on Close.
type memObjects struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failWrites int
	writes     int
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string][]byte)}
}

func (m *memObjects) put(bucket, object string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+object] = data
}

func (m *memObjects) get(bucket, object string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+object]
	return data, ok
}

func (m *memObjects) Open(_ context.Context, bucket, object string) (io.ReadCloser, error) {
	data, ok := m.get(bucket, object)
	if !ok {
		return nil, errors.New("object doesn't exist")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjects) Create(_ context.Context, bucket, object, _ string) io.WriteCloser {
	return &memWriter{store: m, key: bucket + "/" + object}
}

type memWriter struct {
	store *memObjects
	key   string
	buf   bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memWriter) Close() error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.writes++
	if w.store.failWrites > 0 {
		w.store.failWrites--
		return errors.New("503 backend error")
	}
	w.store.objects[w.key] = w.buf.Bytes()
	return nil
}

func plainTemplate(t *testing.T) []byte {
	t.Helper()
	data, err := safe.NewGenerator().Preview()
	require.NoError(t, err)
	return data
}

func newInspector(t *testing.T, mapping string, cfg TemplateInspectorConfig) (*TemplateInspectorFunction, *memObjects, *records.SQLite) {
	t.Helper()
	m, err := safe.BuiltinMapping(mapping)
	require.NoError(t, err)
	db, err := records.OpenSQLite(filepath.Join(t.TempDir(), "templates.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	objects := newMemObjects()
	f := NewTemplateInspectorWith(objects, db, safe.NewFiller(m, nil), cfg)
	f.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	f.backoff = time.Millisecond
	return f, objects, db
}

func TestTemplateInspector_RecordsMatchingTemplate(t *testing.T) {
	ctx := context.Background()
	f, objects, db := newInspector(t, safe.DefaultMappingName, TemplateInspectorConfig{OptimizedBucket: "optimized"})
	template := plainTemplate(t)
	objects.put("incoming", "safe/yc-safe.pdf", template)

	require.NoError(t, f.Process(ctx, GCSEvent{Bucket: "incoming", Name: "safe/yc-safe.pdf"}))

	hash := sha256Hex(t, template)
	rec, err := db.FindTemplate(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, "safe/yc-safe.pdf", rec.Name)
	assert.Equal(t, "incoming", rec.Bucket)
	assert.True(t, rec.MappingOK)
	assert.Empty(t, rec.Missing)
	assert.Empty(t, rec.FieldNames)

	pages, err := pdfdoc.PageCount(template)
	require.NoError(t, err)
	assert.Equal(t, pages, rec.PageCount)

	optimized, ok := objects.get("optimized", "safe/yc-safe.pdf")
	require.True(t, ok, "optimized copy published")
	assert.NoError(t, pdfdoc.Validate(optimized))
}

func TestTemplateInspector_RecordsMismatch(t *testing.T) {
	ctx := context.Background()
	f, objects, db := newInspector(t, "safe-acroform-v1", TemplateInspectorConfig{OptimizedBucket: "optimized"})
	template := plainTemplate(t)
	objects.put("incoming", "acroform.pdf", template)

	require.NoError(t, f.Process(ctx, GCSEvent{Bucket: "incoming", Name: "acroform.pdf"}))

	rec, err := db.FindTemplate(ctx, sha256Hex(t, template))
	require.NoError(t, err)
	assert.False(t, rec.MappingOK)

	_, ok := objects.get("optimized", "acroform.pdf")
	assert.False(t, ok, "mismatched templates are not published")
}

func TestTemplateInspector_SkipsDuplicateRevision(t *testing.T) {
	ctx := context.Background()
	f, objects, db := newInspector(t, safe.DefaultMappingName, TemplateInspectorConfig{})
	template := plainTemplate(t)
	objects.put("incoming", "first.pdf", template)
	objects.put("incoming", "second.pdf", template)

	require.NoError(t, f.Process(ctx, GCSEvent{Bucket: "incoming", Name: "first.pdf"}))
	require.NoError(t, f.Process(ctx, GCSEvent{Bucket: "incoming", Name: "second.pdf"}))

	rec, err := db.FindTemplate(ctx, sha256Hex(t, template))
	require.NoError(t, err)
	assert.Equal(t, "first.pdf", rec.Name)
}

func TestTemplateInspector_IgnoresNonPDF(t *testing.T) {
	f, _, _ := newInspector(t, safe.DefaultMappingName, TemplateInspectorConfig{})
	assert.NoError(t, f.Process(context.Background(), GCSEvent{Bucket: "incoming", Name: "notes.txt"}))
}

func TestTemplateInspector_Failures(t *testing.T) {
	ctx := context.Background()
	f, objects, db := newInspector(t, safe.DefaultMappingName, TemplateInspectorConfig{})
	objects.put("incoming", "broken.pdf", []byte("not really a pdf"))

	assert.Error(t, f.Process(ctx, GCSEvent{Bucket: "incoming", Name: "missing.pdf"}))
	assert.Error(t, f.Process(ctx, GCSEvent{Bucket: "incoming", Name: "broken.pdf"}))

	_, err := db.FindTemplate(ctx, sha256Hex(t, []byte("not really a pdf")))
	assert.ErrorIs(t, err, records.ErrNotFound)
}

func TestTemplateInspector_UploadRetries(t *testing.T) {
	ctx := context.Background()
	f, objects, _ := newInspector(t, safe.DefaultMappingName, TemplateInspectorConfig{OptimizedBucket: "optimized"})

	objects.failWrites = 2
	require.NoError(t, f.uploadFile(ctx, []byte("%PDF"), "retry.pdf"))
	assert.Equal(t, 3, objects.writes)
	data, ok := objects.get("optimized", "retry.pdf")
	require.True(t, ok)
	assert.Equal(t, []byte("%PDF"), data)

	objects.failWrites = 10
	err := f.uploadFile(ctx, []byte("%PDF"), "gives-up.pdf")
	assert.ErrorContains(t, err, "failed after all retries")
}

func sha256Hex(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hash.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	hash, err := calculateFileHash(path)
	require.NoError(t, err)
	return hash
}
