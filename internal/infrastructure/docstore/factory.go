package docstore

import (
	"context"
	"fmt"

	"github.com/storeadmin/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New creates the Store selected by cfg.Driver
func New(ctx context.Context, cfg *config.DocStoreConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "firestore":
		return NewFirestoreStore(ctx, cfg, logger)
	case "", "memory":
		logger.Warn("Using in-memory document store; data is lost on restart")
		return NewMemoryStore(logger), nil
	}
	return nil, fmt.Errorf("unsupported docstore driver: %s", cfg.Driver)
}
