package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Lllllllleong/legalassistant/internal/chat"
	"github.com/Lllllllleong/legalassistant/internal/extract"
	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/processing"
	"github.com/Lllllllleong/legalassistant/internal/qa"
	"github.com/Lllllllleong/legalassistant/internal/safe"
	"github.com/Lllllllleong/legalassistant/internal/simulation"
	"github.com/Lllllllleong/legalassistant/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeChat struct {
	body []byte
}

func (f fakeChat) Complete(context.Context, *models.ChatRequest) *chat.Result {
	if f.body == nil {
		return &chat.Result{Body: chat.FallbackResponse(time.Unix(0, 0)), Provider: chat.FallbackModel, Fallback: true}
	}
	return &chat.Result{Body: f.body, Provider: "backend"}
}

type fakePDF struct{}

func (fakePDF) ExtractPDF(context.Context, []byte) (string, int, error) {
	return "Company: Acme Inc.\nA SAFE.", 1, nil
}

type fakeArchive struct{ objects []string }

func (f *fakeArchive) Put(_ context.Context, object string, _ []byte, _ string) (string, error) {
	f.objects = append(f.objects, object)
	return "gs://test/" + object, nil
}

type testEnv struct {
	srv     *Server
	handler http.Handler
	store   *store.Store
	proc    *processing.Processor
	archive *fakeArchive
}

func newEnv(t *testing.T, c qa.Completer, mapping string) *testEnv {
	t.Helper()

	st := store.New(nil, nil)
	ext := extract.New(fakePDF{}, 2, nil)
	proc, err := processing.New(processing.Options{Extractor: ext, Chat: c, Store: st})
	require.NoError(t, err)
	t.Cleanup(proc.Close)

	m, err := safe.BuiltinMapping(mapping)
	require.NoError(t, err)
	catalogue := simulation.DefaultCatalogue()
	arch := &fakeArchive{}

	srv := New(Deps{
		Chat:       c,
		Extractor:  ext,
		Store:      st,
		QA:         qa.NewService(c, st, nil),
		Processor:  proc,
		Generator:  safe.NewGenerator(),
		Filler:     safe.NewFiller(m, nil),
		Catalogue:  catalogue,
		Simulation: simulation.NewRunner(catalogue, time.Hour, nil),
		Archive:    arch,
	})
	srv.now = func() time.Time { return time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC) }
	return &testEnv{srv: srv, handler: srv.Handler(), store: st, proc: proc, archive: arch}
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, target, strings.NewReader(body), "application/json")
}

type part struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, parts []part, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func validForm() string {
	return `{"companyName":"Acme Robotics, Inc.","companyState":"Delaware","investorName":"Jane Capital LP",
"purchaseAmount":"250000","valuationCap":"8000000","date":"2026-03-09"}`
}

func TestChat_Validation(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	for _, body := range []string{`{}`, `{"messages":"hi"}`, `{"messages":[]}`} {
		rec := env.doJSON(t, http.MethodPost, "/api/chat", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Messages array is required"}`, rec.Body.String())
	}

	rec := env.doJSON(t, http.MethodPost, "/api/chat", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_PassesThroughProviderBody(t *testing.T) {
	upstream := []byte(`{"id":"abc","choices":[{"message":{"role":"assistant","content":"hi"}}],"custom":true}`)
	env := newEnv(t, fakeChat{body: upstream}, safe.DefaultMappingName)

	rec := env.doJSON(t, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hello"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(upstream), rec.Body.String())
	assert.Equal(t, "backend", rec.Header().Get("X-Chat-Provider"))
}

func TestChat_FallbackIsStill200(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	rec := env.doJSON(t, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hello"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[models.ChatResponse](t, rec)
	assert.Equal(t, chat.FallbackModel, resp.Model)
	assert.Equal(t, chat.FallbackMessage, resp.Choices[0].Message.Content)
}

func TestChat_BodyTooLarge(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	content := strings.Repeat("a", maxJSONBytes)
	rec := env.doJSON(t, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"`+content+`"}]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, rec.Body.String())
}

func TestUpload(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	body, ct := multipartBody(t, nil, map[string]string{"note": "x"})
	rec := env.do(t, http.MethodPost, "/api/upload", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No files provided"}`, rec.Body.String())

	body, ct = multipartBody(t, []part{
		{"files", "terms.txt", []byte("Net 30.")},
		{"files", "logo.png", []byte{0x89, 0x50}},
		{"files", "safe.pdf", []byte("%PDF-1.7")},
	}, nil)
	rec = env.do(t, http.MethodPost, "/api/upload", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.UploadResponse](t, rec)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, []string{
		"[Text File: terms.txt]\nNet 30.",
		"[File: logo.png - Unsupported file type]",
		"[PDF: safe.pdf]\nCompany: Acme Inc.\nA SAFE.",
	}, resp.FileContents)
	assert.False(t, resp.Results[1].Success)
	assert.True(t, resp.Results[2].Success)
	assert.Equal(t, "2026-10-16T08:00:00Z", resp.Timestamp)
}

func TestUpload_TooLarge(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)
	env.srv.MaxUploadBytes = 1024
	handler := env.srv.Handler()

	body, ct := multipartBody(t, []part{{"files", "big.txt", bytes.Repeat([]byte("a"), 4096)}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDocuments_Lifecycle(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	body, ct := multipartBody(t, []part{
		{"files", "safe.pdf", []byte("%PDF-1.7")},
		{"files", "photo.jpg", []byte{0xff}},
	}, nil)
	rec := env.do(t, http.MethodPost, "/api/documents", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	created := decode[createDocumentsResponse](t, rec)
	require.Len(t, created.Documents, 1)
	assert.Equal(t, []string{"photo.jpg"}, created.Skipped)
	id := created.Documents[0].ID

	env.proc.Wait()
	assert.False(t, env.store.State().Loading)

	rec = env.do(t, http.MethodGet, "/api/documents/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[models.Document](t, rec)
	assert.Equal(t, models.StatusCompleted, doc.Status)
	assert.Equal(t, "Company: Acme Inc. A SAFE.", doc.Summary)
	assert.Equal(t, "Acme Inc.", doc.FilledData["companyName"])

	rec = env.do(t, http.MethodGet, "/api/documents?q=SAFE", nil, "")
	assert.Len(t, decode[[]models.Document](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/documents/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.doJSON(t, http.MethodPut, "/api/documents/current", `{"id":"`+id+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode[models.Document](t, rec).ID)
	require.NotNil(t, env.store.State().CurrentDocument)

	rec = env.doJSON(t, http.MethodPut, "/api/documents/current", `{"id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.doJSON(t, http.MethodPut, "/api/documents/current", `{"id":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())
}

func TestDocuments_OnlyUnsupported(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	body, ct := multipartBody(t, []part{{"files", "a.docx", []byte("PK")}}, nil)
	rec := env.do(t, http.MethodPost, "/api/documents", body, ct)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Empty(t, env.store.State().Documents)
}

func TestSafe_Generate(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	rec := env.doJSON(t, http.MethodPost, "/api/safe", validForm())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="YC-SAFE-Acme-Robotics-Inc.-2026-03-09.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	assert.Equal(t, []string{"safe/YC-SAFE-Acme-Robotics-Inc.-2026-03-09.pdf"}, env.archive.objects)
}

func TestSafe_GenerateInvalid(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	rec := env.doJSON(t, http.MethodPost, "/api/safe", `{"companyName":"Acme","investorName":"Jane","purchaseAmount":"-5","valuationCap":"100"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[models.ErrorResponse](t, rec).Error, "invalid SAFE form")

	rec = env.doJSON(t, http.MethodPost, "/api/safe", `{"companyName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.archive.objects)
}

func TestSafe_LivePreviewSkipsValidation(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	rec := env.doJSON(t, http.MethodPost, "/api/safe?preview=live", `{"companyName":"Half typed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	assert.Empty(t, env.archive.objects, "previews are not archived")

	rec = env.do(t, http.MethodGet, "/api/safe/preview", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "YC-SAFE-Preview.pdf")
}

func previewTemplate(t *testing.T) []byte {
	t.Helper()
	data, err := safe.NewGenerator().Preview()
	require.NoError(t, err)
	return data
}

func TestSafe_FillOverlay(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	body, ct := multipartBody(t, []part{{"template", "safe.pdf", previewTemplate(t)}}, map[string]string{"form": validForm()})
	rec := env.do(t, http.MethodPost, "/api/safe/fill", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestSafe_FillMismatchIs422(t *testing.T) {
	env := newEnv(t, fakeChat{}, "safe-acroform-v1")

	body, ct := multipartBody(t, []part{{"template", "safe.pdf", previewTemplate(t)}}, map[string]string{"form": validForm()})
	rec := env.do(t, http.MethodPost, "/api/safe/fill", body, ct)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	resp := decode[map[string]any](t, rec)
	assert.Equal(t, "safe-acroform-v1", resp["mapping"])
	assert.Contains(t, resp["error"], "template does not match mapping")
}

func TestSafe_FillBadInput(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	body, ct := multipartBody(t, nil, map[string]string{"form": validForm()})
	rec := env.do(t, http.MethodPost, "/api/safe/fill", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, []part{{"template", "safe.pdf", previewTemplate(t)}}, map[string]string{"form": "{"})
	rec = env.do(t, http.MethodPost, "/api/safe/fill", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSafe_Inspect(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	body, ct := multipartBody(t, []part{{"template", "safe.pdf", previewTemplate(t)}}, nil)
	rec := env.do(t, http.MethodPost, "/api/safe/inspect", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	inspection := decode[models.TemplateInspection](t, rec)
	assert.False(t, inspection.HasForm)
	assert.Zero(t, inspection.FieldCount)
	assert.GreaterOrEqual(t, inspection.PageCount, 4)

	body, ct = multipartBody(t, []part{{"template", "notes.pdf", []byte("not a pdf")}}, nil)
	rec = env.do(t, http.MethodPost, "/api/safe/inspect", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSafe_Mapping(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	rec := env.do(t, http.MethodGet, "/api/safe/mapping", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, safe.DefaultMappingName, decode[safe.Mapping](t, rec).Name)
}

func TestQA_Sessions(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	rec := env.doJSON(t, http.MethodPost, "/api/qa/sessions", `{"question":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/qa/sessions", `{"question":"What is a vesting schedule?"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[models.QASession](t, rec)
	assert.Equal(t, qa.CategoryEquity, first.Category)

	rec = env.doJSON(t, http.MethodPost, "/api/qa/sessions", `{"question":"Can I use a stock photo?","files":["brand.pdf"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[models.QASession](t, rec)
	assert.Equal(t, qa.GenericAnswer, second.Answer)

	rec = env.do(t, http.MethodGet, "/api/qa/sessions?q=vesting", nil, "")
	got := decode[[]models.QASession](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)

	rec = env.do(t, http.MethodDelete, "/api/qa/sessions/"+first.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/qa/sessions/"+first.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/qa/sessions", nil, "")
	remaining := decode[[]models.QASession](t, rec)
	require.Len(t, remaining, 1)
	assert.Equal(t, second.ID, remaining[0].ID)

	rec = env.do(t, http.MethodGet, "/api/qa/examples", nil, "")
	assert.Len(t, decode[[]string](t, rec), 6)
}

func TestSimulations(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	rec := env.do(t, http.MethodGet, "/api/simulations", nil, "")
	assert.Len(t, decode[[]simulation.Scenario](t, rec), 4)

	rec = env.do(t, http.MethodPost, "/api/simulations/moon-landing/run", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/simulations/ip-dispute/run", nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	run := decode[simulation.Run](t, rec)
	assert.Equal(t, simulation.StateRunning, run.State)

	rec = env.do(t, http.MethodGet, "/api/simulations/run", nil, "")
	assert.Equal(t, "ip-dispute", decode[simulation.Run](t, rec).Scenario.ID)

	rec = env.do(t, http.MethodDelete, "/api/simulations/run", nil, "")
	assert.JSONEq(t, `{"state":"idle"}`, rec.Body.String())
}

func TestState(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	rec := env.do(t, http.MethodGet, "/api/state", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"documents":[],"qaSessions":[],"currentDocument":null,"isLoading":false,"activeTab":"qa"}`, rec.Body.String())

	rec = env.doJSON(t, http.MethodPut, "/api/state/tab", `{"tab":"settings"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, store.TabQA, env.store.State().ActiveTab)

	rec = env.doJSON(t, http.MethodPut, "/api/state/tab", `{"tab":"simulation"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, store.TabSimulation, decode[store.State](t, rec).ActiveTab)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	env := newEnv(t, fakeChat{}, safe.DefaultMappingName)

	rec := env.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/chat", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
