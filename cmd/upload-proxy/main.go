package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/legalassistant/internal/app"
	"github.com/Lllllllleong/legalassistant/internal/config"
)

var (
	appInstance *app.App
	once        sync.Once
	initErr     error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleUpload", handleUpload)
}

func main() {}

// handleUpload extracts the text of every uploaded file.
func handleUpload(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		var cfg *config.Config
		cfg, initErr = config.Load(config.GetEnv("CONFIG_FILE", ""))
		if initErr != nil {
			return
		}
		appInstance, initErr = app.New(context.Background(), cfg, cfg.Logging.NewLogger(os.Stdout))
	})
	if initErr != nil {
		slog.Error("Critical: HandleUpload initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	appInstance.Server.HandleUpload(w, r)
}
