// Package app builds the service graph from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/legalassistant/internal/chat"
	"github.com/Lllllllleong/legalassistant/internal/config"
	"github.com/Lllllllleong/legalassistant/internal/extract"
	"github.com/Lllllllleong/legalassistant/internal/gcp"
	"github.com/Lllllllleong/legalassistant/internal/processing"
	"github.com/Lllllllleong/legalassistant/internal/qa"
	"github.com/Lllllllleong/legalassistant/internal/records"
	"github.com/Lllllllleong/legalassistant/internal/safe"
	"github.com/Lllllllleong/legalassistant/internal/server"
	"github.com/Lllllllleong/legalassistant/internal/simulation"
	"github.com/Lllllllleong/legalassistant/internal/store"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived client.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Chat      *chat.Proxy
	Extractor *extract.Extractor
	Recorder  records.Recorder // nil when RECORDER=none
	Store     *store.Store
	Processor *processing.Processor
	Server    *server.Server

	closers []io.Closer
}

// New wires the application described by cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	proxy, err := a.chatProxy(ctx)
	if err != nil {
		return err
	}
	a.Chat = proxy

	if err := extract.CheckAvailable(); err != nil {
		a.Logger.Warn("PDF text extraction unavailable; PDF uploads will report parse errors.",
			"error", err, "install", extract.InstallInstructions())
	}
	extractor := extract.New(extract.NewPoppler(cfg.Upload.PDFMaxPages), cfg.Upload.Concurrency, a.Logger)
	a.Extractor = extractor

	recorder, err := records.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open recorder: %w", err)
	}
	var storeRecorder store.Recorder
	if recorder != nil {
		a.closers = append(a.closers, recorder)
		a.Recorder = recorder
		storeRecorder = recorder
	}
	a.Store = store.New(storeRecorder, a.Logger)
	if recorder != nil {
		docs, sessions, err := recorder.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to restore recorded state: %w", err)
		}
		if err := a.Store.Restore(docs, sessions); err != nil {
			return err
		}
		a.Logger.Info("Restored recorded state.", "recorder", cfg.Storage.Recorder, "documents", len(docs), "sessions", len(sessions))
	}

	var archive processing.Archiver
	if cfg.Storage.ArchiveBucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		a.closers = append(a.closers, client)
		archive = gcp.NewArchive(client, cfg.Storage.ArchiveBucket)
	}

	opts := processing.Options{
		Mode:      processing.Mode(cfg.Processing.Mode),
		Extractor: extractor,
		Chat:      proxy,
		Store:     a.Store,
		Archive:   archive,
		Logger:    a.Logger,
	}
	if opts.Mode == processing.ModeWorkflow {
		trigger, err := gcp.NewWorkflowTrigger(ctx, cfg.ProjectID, cfg.Processing.WorkflowLocation, cfg.Processing.WorkflowID)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, trigger)
		opts.Trigger = trigger
	}
	if a.Processor, err = processing.New(opts); err != nil {
		return err
	}

	mapping, err := LoadMapping(cfg.Templates.MappingPath)
	if err != nil {
		return err
	}

	catalogue := simulation.DefaultCatalogue()
	a.Server = server.New(server.Deps{
		Chat:           proxy,
		Extractor:      extractor,
		Store:          a.Store,
		QA:             qa.NewService(proxy, a.Store, a.Logger),
		Processor:      a.Processor,
		Generator:      safe.NewGenerator(),
		Filler:         safe.NewFiller(mapping, a.Logger),
		Catalogue:      catalogue,
		Simulation:     simulation.NewRunner(catalogue, 0, a.Logger),
		Archive:        archive,
		Logger:         a.Logger,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	})
	return nil
}

// chatProxy builds the primary backend and the configured secondary provider.
func (a *App) chatProxy(ctx context.Context) (*chat.Proxy, error) {
	cfg := a.Config.Chat
	primary := chat.NewBackendClient(cfg.BackendURL, chat.WithTimeout(cfg.BackendTimeout))

	var secondary chat.Completer
	switch a.Config.Chat.SecondaryProvider {
	case "openai":
		secondary = chat.NewHostedClient(cfg.HostedBaseURL, cfg.HostedAPIKey, cfg.HostedModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			a.Logger.Warn("GEMINI_API_KEY is not set; the secondary chat provider is disabled.")
			break
		}
		client, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		secondary = client
	case "vertex":
		vertex, err := gcp.NewVertexClient(ctx, a.Config.ProjectID, a.Config.VertexAIRegion, cfg.VertexModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		a.closers = append(a.closers, vertex)
		secondary = chat.NewVertexCompleter(vertex)
	}
	return chat.NewProxy(primary, secondary, a.Logger), nil
}

// LoadMapping reads the template mapping at path. An empty path selects the
// built-in default and the name of a built-in mapping selects that mapping.
func LoadMapping(path string) (*safe.Mapping, error) {
	if path == "" {
		return safe.BuiltinMapping(safe.DefaultMappingName)
	}
	if slices.Contains(safe.BuiltinMappingNames(), path) {
		return safe.BuiltinMapping(path)
	}
	return safe.LoadMapping(path)
}

// ListenAndServe serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Listening.", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	<-errCh
	return nil
}

// Close stops background processing and releases clients.
func (a *App) Close() {
	if a.Processor != nil {
		a.Processor.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.Logger.Warn("Failed to close client.", "error", err)
		}
	}
	a.closers = nil
}
