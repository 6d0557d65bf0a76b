package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/services"
)

var (
	summarizerInstance *services.SummarizerFunction
	once               sync.Once
	initErr            error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleSummarizeDocument", handleSummarizeDocument)
}

func main() {}

// handleSummarizeDocument is the step the document workflow calls for each upload.
func handleSummarizeDocument(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		summarizerInstance, initErr = services.NewSummarizer(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Summarizer initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	res, err := summarizerInstance.Process(r.Context(), &req)
	if err != nil {
		// Already logged with context in Process.
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err, "documentId", req.DocumentID)
	}
}
