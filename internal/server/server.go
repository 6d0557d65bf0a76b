// Package server exposes the assistant over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lllllllleong/legalassistant/internal/extract"
	"github.com/Lllllllleong/legalassistant/internal/processing"
	"github.com/Lllllllleong/legalassistant/internal/qa"
	"github.com/Lllllllleong/legalassistant/internal/safe"
	"github.com/Lllllllleong/legalassistant/internal/simulation"
	"github.com/Lllllllleong/legalassistant/internal/store"
)

// DefaultMaxUploadBytes bounds multipart request bodies.
const DefaultMaxUploadBytes = 32 << 20

// Deps are the services behind the routes. Processor and Archive may be nil.
type Deps struct {
	Chat       qa.Completer
	Extractor  *extract.Extractor
	Store      *store.Store
	QA         *qa.Service
	Processor  *processing.Processor
	Generator  *safe.Generator
	Filler     *safe.Filler
	Catalogue  *simulation.Catalogue
	Simulation *simulation.Runner
	Archive    processing.Archiver
	Logger     *slog.Logger

	MaxUploadBytes int64
}

// Server holds the route handlers.
type Server struct {
	Deps
	now func() time.Time
}

// New creates a server.
func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Server{Deps: d, now: time.Now}
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/chat", s.HandleChat)
	mux.HandleFunc("POST /api/upload", s.HandleUpload)

	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("POST /api/documents", s.handleCreateDocuments)
	mux.HandleFunc("PUT /api/documents/current", s.handleSetCurrentDocument)
	mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)

	mux.HandleFunc("POST /api/safe", s.HandleGenerateSafe)
	mux.HandleFunc("GET /api/safe/preview", s.handlePreviewSafe)
	mux.HandleFunc("GET /api/safe/mapping", s.handleMapping)
	mux.HandleFunc("POST /api/safe/fill", s.handleFillSafe)
	mux.HandleFunc("POST /api/safe/inspect", s.handleInspectTemplate)

	mux.HandleFunc("GET /api/qa/sessions", s.handleListSessions)
	mux.HandleFunc("POST /api/qa/sessions", s.handleAsk)
	mux.HandleFunc("DELETE /api/qa/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/qa/examples", s.handleExamples)

	mux.HandleFunc("GET /api/simulations", s.handleListScenarios)
	mux.HandleFunc("GET /api/simulations/run", s.handleSimulationStatus)
	mux.HandleFunc("DELETE /api/simulations/run", s.handleResetSimulation)
	mux.HandleFunc("POST /api/simulations/{id}/run", s.handleStartSimulation)

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("PUT /api/state/tab", s.handleSetTab)

	return s.logRequests(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
