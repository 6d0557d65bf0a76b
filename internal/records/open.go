package records

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/legalassistant/internal/config"
	"github.com/Lllllllleong/legalassistant/internal/gcp"
)

// Open returns the recorder selected by cfg, or nil when recording is off.
func Open(ctx context.Context, cfg *config.Config) (Recorder, error) {
	switch cfg.Storage.Recorder {
	case "", "none":
		return nil, nil
	case "sqlite":
		return OpenSQLite(cfg.Storage.SQLitePath)
	case "firestore":
		client, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		return NewFirestore(client, cfg.Storage.FirestoreCollection, cfg.Storage.TemplateCollection), nil
	default:
		return nil, fmt.Errorf("unknown recorder %q", cfg.Storage.Recorder)
	}
}
