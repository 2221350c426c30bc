package event

import (
	"context"

	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per domain event.
// It subscribes to every event type.
type AuditLogHandler struct {
	fallback *zap.Logger
}

// NewAuditLogHandler creates an audit handler
func NewAuditLogHandler(fallback *zap.Logger) *AuditLogHandler {
	if fallback == nil {
		fallback = zap.NewNop()
	}
	return &AuditLogHandler{fallback: fallback.With(zap.String("component", "audit"))}
}

func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.fallback.Info("domain event",
		zap.String("request_id", logger.GetRequestID(ctx)),
		zap.String("admin_id", logger.GetAdminID(ctx)),
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.Any("event", event),
	)
	return nil
}

// EventTypes returns nil so the handler receives every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
