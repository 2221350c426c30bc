package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storeadmin/backend/internal/domain/report"
	"github.com/storeadmin/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// GA4Runner runs reports through the Google Analytics Data API
type GA4Runner struct {
	reports  *analyticsdata.PropertiesService
	property string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewGA4Runner creates the Data API client for cfg.PropertyID
func NewGA4Runner(ctx context.Context, cfg *config.AnalyticsConfig, logger *zap.Logger) (*GA4Runner, error) {
	if cfg.PropertyID == "" {
		return nil, errors.New("analytics property id is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics data client: %w", err)
	}
	return &GA4Runner{
		reports:  svc.Properties,
		property: "properties/" + cfg.PropertyID,
		timeout:  cfg.Timeout,
		logger:   logger,
	}, nil
}

// RunReport runs one report and flattens its rows
func (r *GA4Runner) RunReport(ctx context.Context, req ReportRequest) ([]report.AnalyticsRow, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	body := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: req.StartDate, EndDate: req.EndDate}},
	}
	for _, d := range req.Dimensions {
		body.Dimensions = append(body.Dimensions, &analyticsdata.Dimension{Name: d})
	}
	for _, m := range req.Metrics {
		body.Metrics = append(body.Metrics, &analyticsdata.Metric{Name: m})
	}

	resp, err := r.reports.RunReport(r.property, body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to run analytics report: %w", err)
	}
	r.logger.Debug("Analytics report",
		zap.Strings("dimensions", req.Dimensions),
		zap.Strings("metrics", req.Metrics),
		zap.Int64("row_count", resp.RowCount))

	return convertRows(resp.Rows), nil
}

func convertRows(rows []*analyticsdata.Row) []report.AnalyticsRow {
	out := make([]report.AnalyticsRow, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		r := report.AnalyticsRow{
			Dimensions: make([]string, 0, len(row.DimensionValues)),
			Metrics:    make([]string, 0, len(row.MetricValues)),
		}
		for _, d := range row.DimensionValues {
			if d != nil {
				r.Dimensions = append(r.Dimensions, d.Value)
			}
		}
		for _, m := range row.MetricValues {
			if m != nil {
				r.Metrics = append(r.Metrics, m.Value)
			}
		}
		out = append(out, r)
	}
	return out
}
