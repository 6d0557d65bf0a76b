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

	functions.HTTP("HandleGenerateSafe", generateSafe)
}

func main() {}

// generateSafe renders a SAFE agreement from the submitted form.
func generateSafe(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		var cfg *config.Config
		cfg, initErr = config.Load(config.GetEnv("CONFIG_FILE", ""))
		if initErr != nil {
			return
		}
		appInstance, initErr = app.New(context.Background(), cfg, cfg.Logging.NewLogger(os.Stdout))
	})
	if initErr != nil {
		slog.Error("Critical: HandleGenerateSafe initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	appInstance.Server.HandleGenerateSafe(w, r)
}
