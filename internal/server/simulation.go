package server

import (
	"errors"
	"net/http"

	"github.com/Lllllllleong/legalassistant/internal/simulation"
)

func (s *Server) handleListScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalogue.List())
}

func (s *Server) handleStartSimulation(w http.ResponseWriter, r *http.Request) {
	run, err := s.Simulation.Start(r.PathValue("id"))
	if errors.Is(err, simulation.ErrUnknownScenario) {
		writeError(w, http.StatusNotFound, "Scenario not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start simulation")
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

func (s *Server) handleSimulationStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Simulation.Status())
}

func (s *Server) handleResetSimulation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Simulation.Reset())
}
