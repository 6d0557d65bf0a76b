package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/legalassistant/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	inspectorInstance *services.TemplateInspectorFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("InspectTemplate", inspectTemplate)
}

func main() {}

// inspectTemplate runs for every object finalized in the template bucket.
func inspectTemplate(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		inspectorInstance, initErr = services.NewTemplateInspector(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Errors are logged with context inside Process.
	return inspectorInstance.Process(ctx, gcsEvent)
}
