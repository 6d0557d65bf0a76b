package server

import (
	"errors"
	"net/http"

	"github.com/Lllllllleong/legalassistant/internal/extract"
	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/store"
)

type createDocumentsResponse struct {
	Documents []models.Document `json:"documents"`
	Skipped   []string          `json:"skipped,omitempty"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.SearchDocuments(r.URL.Query().Get("q")))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.Store.Document(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleCreateDocuments accepts files for background processing and answers
// 202 with the new documents in the processing state.
func (s *Server) handleCreateDocuments(w http.ResponseWriter, r *http.Request) {
	if s.Processor == nil {
		writeError(w, http.StatusServiceUnavailable, "Document processing is not configured")
		return
	}
	if !s.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}
	files := make([]extract.File, len(headers))
	for i, fh := range headers {
		files[i] = extract.FromHeader(fh)
	}

	ctx := r.Context()
	_, _ = s.Store.Dispatch(ctx, store.SetLoading{Loading: true})
	docs, skipped, err := s.Processor.Submit(ctx, files)
	_, _ = s.Store.Dispatch(ctx, store.SetLoading{Loading: false})
	if err != nil {
		s.Logger.Error("Failed to accept upload.", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read uploaded files")
		return
	}
	if len(docs) == 0 {
		writeError(w, http.StatusUnsupportedMediaType, "No supported files provided")
		return
	}
	writeJSON(w, http.StatusAccepted, createDocumentsResponse{Documents: docs, Skipped: skipped})
}

func (s *Server) handleSetCurrentDocument(w http.ResponseWriter, r *http.Request) {
	var req models.CurrentDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	state, err := s.Store.Dispatch(r.Context(), store.SetCurrentDocument{ID: req.ID})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to select document")
		return
	}
	writeJSON(w, http.StatusOK, state.CurrentDocument)
}
