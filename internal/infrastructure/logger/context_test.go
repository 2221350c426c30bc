package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	base := zap.NewExample()

	assert.NotNil(t, FromContext(context.Background()))
	assert.Same(t, base, FromContext(WithContext(context.Background(), base)))

	wrong := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotNil(t, FromContext(wrong))
}

func TestContextIDs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetAdminID(ctx))

	ctx, _ = WithRequestID(ctx, base, "req-1")
	ctx, l := WithAdminID(ctx, FromContext(ctx), "admin-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "admin-1", GetAdminID(ctx))
	assert.Same(t, l, FromContext(ctx))

	l.Info("category created")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "admin-1", fields["admin_id"])
	assert.NotContains(t, fields, "trace_id", "no span in context")
}

func TestWithTraceContext(t *testing.T) {
	base := zap.NewExample()
	assert.Same(t, base, WithTraceContext(context.Background(), base))

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	core, logs := observer.New(zap.DebugLevel)
	WithTraceContext(ctx, zap.New(core)).Info("traced")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
}
