package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storeadmin/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const (
	attrHTTPMethod     = attribute.Key("http.method")
	attrHTTPRoute      = attribute.Key("http.route")
	attrHTTPStatusCode = attribute.Key("http.status_code")
	attrStreamKind     = attribute.Key("stream.kind")
)

var responseSizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000}

type httpMetrics struct {
	requests      *telemetry.Counter
	duration      *telemetry.Histogram
	responseSize  *telemetry.Histogram
	inFlight      metric.Int64UpDownCounter
	liveStreams   metric.Int64UpDownCounter
	streamSeconds *telemetry.Histogram
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	m := &httpMetrics{}
	var err error
	if m.requests, err = telemetry.NewCounter(meter, "http_server_request_total", "HTTP requests served", "{request}"); err != nil {
		return nil, err
	}
	if m.duration, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "Latency of non-streaming requests",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.responseSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "Response body size",
		Unit:        "By",
		Boundaries:  responseSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Requests currently being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.liveStreams, err = meter.Int64UpDownCounter("store_admin_live_streams",
		metric.WithDescription("Open SSE and WebSocket streams"),
		metric.WithUnit("{stream}"),
	); err != nil {
		return nil, err
	}
	if m.streamSeconds, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "store_admin_live_stream_duration_seconds",
		Description: "How long live streams stayed open",
		Unit:        "s",
		Boundaries:  []float64{1, 10, 60, 300, 900, 3600, 14400},
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// HTTPMetrics records request count, latency and size per route pattern.
// Live streams are tracked on their own instruments since they stay open
// for as long as an admin keeps a page on screen.
func HTTPMetrics(mp *telemetry.MeterProvider, logger *zap.Logger) gin.HandlerFunc {
	if mp == nil || !mp.IsEnabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return HTTPMetricsWithMeter(mp.Meter("store-admin/http"), logger)
}

func HTTPMetricsWithMeter(meter metric.Meter, logger *zap.Logger) gin.HandlerFunc {
	m, err := newHTTPMetrics(meter)
	if err != nil {
		logger.Warn("HTTP metrics disabled", zap.Error(err))
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		route := routePattern(c)

		kind := streamKind(c)
		gauge := m.inFlight
		var kindAttr []attribute.KeyValue
		if kind != "" {
			gauge = m.liveStreams
			kindAttr = []attribute.KeyValue{attrStreamKind.String(kind), attrHTTPRoute.String(route)}
		}
		gauge.Add(ctx, 1, metric.WithAttributes(kindAttr...))
		c.Next()
		// the request context is canceled once a stream ends
		ctx = context.WithoutCancel(ctx)
		gauge.Add(ctx, -1, metric.WithAttributes(kindAttr...))

		m.record(ctx, c.Request.Method, route, kind, c.Writer.Status(), time.Since(start), c.Writer.Size())
	}
}

func (m *httpMetrics) record(ctx context.Context, method, route, kind string, status int, elapsed time.Duration, size int) {
	m.requests.Inc(ctx,
		attrHTTPMethod.String(method),
		attrHTTPRoute.String(route),
		attrHTTPStatusCode.Int(status),
	)
	if kind != "" {
		m.streamSeconds.Record(ctx, elapsed.Seconds(), attrStreamKind.String(kind), attrHTTPRoute.String(route))
		return
	}
	// status stays off the histograms to bound cardinality
	base := []attribute.KeyValue{attrHTTPMethod.String(method), attrHTTPRoute.String(route)}
	m.duration.Record(ctx, elapsed.Seconds(), base...)
	if size > 0 {
		m.responseSize.Record(ctx, float64(size), base...)
	}
}

// streamKind is "sse" or "websocket" for live endpoints and "" otherwise
func streamKind(c *gin.Context) string {
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return "websocket"
	}
	if strings.HasSuffix(c.FullPath(), "/live") {
		return "sse"
	}
	return ""
}

// routePattern returns the matched route, e.g. /api/v1/orders/:id
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
