package server

import (
	"errors"
	"net/http"

	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/qa"
	"github.com/Lllllllleong/legalassistant/internal/store"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.SearchSessions(r.URL.Query().Get("q")))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, err := s.QA.Ask(r.Context(), req.Question, req.Files)
	if errors.Is(err, qa.ErrEmptyQuestion) {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if err != nil {
		s.Logger.Error("Failed to answer question.", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to answer question")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	_, err := s.Store.Dispatch(r.Context(), store.DeleteQASession{ID: r.PathValue("id")})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, qa.Examples())
}
