package analytics

import (
	"context"
	"fmt"

	"github.com/storeadmin/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New creates the ReportRunner selected by cfg.Driver
func New(ctx context.Context, cfg *config.AnalyticsConfig, logger *zap.Logger) (ReportRunner, error) {
	switch cfg.Driver {
	case "ga4":
		return NewGA4Runner(ctx, cfg, logger)
	case "", "static":
		logger.Info("Using static analytics sample data")
		return NewStaticRunner(), nil
	}
	return nil, fmt.Errorf("unsupported analytics driver: %s", cfg.Driver)
}
