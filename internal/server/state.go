package server

import (
	"errors"
	"net/http"

	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/store"
)

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.State())
}

func (s *Server) handleSetTab(w http.ResponseWriter, r *http.Request) {
	var req models.TabRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	state, err := s.Store.Dispatch(r.Context(), store.SetActiveTab{Tab: store.Tab(req.Tab)})
	if errors.Is(err, store.ErrUnknownTab) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to change tab")
		return
	}
	writeJSON(w, http.StatusOK, state)
}
