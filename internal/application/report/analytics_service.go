package report

import (
	"context"
	"fmt"
	"time"

	"github.com/storeadmin/backend/internal/domain/report"
	"github.com/storeadmin/backend/internal/infrastructure/analytics"
	"github.com/storeadmin/backend/internal/infrastructure/cache"
	"github.com/storeadmin/backend/internal/infrastructure/config"
	"github.com/storeadmin/backend/internal/infrastructure/scheduler"
	"github.com/storeadmin/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Analytics report names, also used as cache keys
const (
	ReportTotalUsers             = "total-users"
	ReportPageViews              = "page-views"
	ReportUserEngagementDuration = "user-engagement-duration"
	ReportUsersByCountry         = "users-by-country"
	ReportUsersByPlatform        = "users-by-platform"
)

// AnalyticsLookback is the range of the daily charts and the country breakdown
const AnalyticsLookback = 14 * 24 * time.Hour

const (
	defaultAnalyticsTimeout  = 15 * time.Second
	defaultPlatformStartDate = "2022-05-01"
)

// AnalyticsService proxies the web analytics reports used by the dashboard
// charts. Results are cached for CacheTTL and refreshed by a scheduled job.
type AnalyticsService struct {
	runner        analytics.ReportRunner
	cache         cache.ReportCache
	ttl           time.Duration
	timeout       time.Duration
	platformStart string
	now           func() time.Time
	logger        *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(runner analytics.ReportRunner, reportCache cache.ReportCache, cfg config.AnalyticsConfig, logger *zap.Logger) *AnalyticsService {
	s := &AnalyticsService{
		runner:        runner,
		cache:         reportCache,
		ttl:           cfg.CacheTTL,
		timeout:       cfg.Timeout,
		platformStart: cfg.PlatformStartDate,
		now:           time.Now,
		logger:        logger,
	}
	if s.timeout <= 0 {
		s.timeout = defaultAnalyticsTimeout
	}
	if s.platformStart == "" {
		s.platformStart = defaultPlatformStartDate
	}
	return s
}

// TotalUsers returns daily total users of the last two weeks
func (s *AnalyticsService) TotalUsers(ctx context.Context) ([]report.SeriesPoint, error) {
	return s.series(ctx, ReportTotalUsers, "totalUsers")
}

// PageViews returns daily screen and page views of the last two weeks
func (s *AnalyticsService) PageViews(ctx context.Context) ([]report.SeriesPoint, error) {
	return s.series(ctx, ReportPageViews, "screenPageViews")
}

// UserEngagementDuration returns the daily engagement seconds of the last two weeks
func (s *AnalyticsService) UserEngagementDuration(ctx context.Context) ([]report.SeriesPoint, error) {
	return s.series(ctx, ReportUserEngagementDuration, "userEngagementDuration")
}

// UsersByCountry returns total users per country of the last two weeks
func (s *AnalyticsService) UsersByCountry(ctx context.Context) ([]report.CountryValue, error) {
	return cachedReport(ctx, s, ReportUsersByCountry, s.buildUsersByCountry)
}

// UsersByPlatform returns total users per platform since the platform start date
func (s *AnalyticsService) UsersByPlatform(ctx context.Context) ([]report.PlatformValue, error) {
	return cachedReport(ctx, s, ReportUsersByPlatform, s.buildUsersByPlatform)
}

func (s *AnalyticsService) series(ctx context.Context, name, metric string) ([]report.SeriesPoint, error) {
	return cachedReport(ctx, s, name, func(ctx context.Context) ([]report.SeriesPoint, error) {
		return s.buildSeries(ctx, metric)
	})
}

func (s *AnalyticsService) window() (time.Time, time.Time) {
	now := s.now()
	return report.StartOfDay(now.Add(-AnalyticsLookback)), now
}

func (s *AnalyticsService) buildSeries(ctx context.Context, metric string) ([]report.SeriesPoint, error) {
	start, now := s.window()
	rows, err := s.run(ctx, analytics.ReportRequest{
		StartDate:  start.Format(analytics.DateLayout),
		EndDate:    now.Format(analytics.DateLayout),
		Dimensions: []string{"date"},
		Metrics:    []string{metric},
	})
	if err != nil {
		return nil, err
	}
	return report.BuildDailySeries(start, now, rows), nil
}

func (s *AnalyticsService) buildUsersByCountry(ctx context.Context) ([]report.CountryValue, error) {
	start, now := s.window()
	rows, err := s.run(ctx, analytics.ReportRequest{
		StartDate:  start.Format(analytics.DateLayout),
		EndDate:    now.Format(analytics.DateLayout),
		Dimensions: []string{"country"},
		Metrics:    []string{"totalUsers"},
	})
	if err != nil {
		return nil, err
	}
	return report.BuildCountryBreakdown(rows), nil
}

func (s *AnalyticsService) buildUsersByPlatform(ctx context.Context) ([]report.PlatformValue, error) {
	rows, err := s.run(ctx, analytics.ReportRequest{
		StartDate:  s.platformStart,
		EndDate:    s.now().Format(analytics.DateLayout),
		Dimensions: []string{"platform"},
		Metrics:    []string{"totalUsers"},
	})
	if err != nil {
		return nil, err
	}
	return report.BuildPlatformBreakdown(rows), nil
}

func (s *AnalyticsService) run(ctx context.Context, req analytics.ReportRequest) ([]report.AnalyticsRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rows, err := s.runner.RunReport(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to run analytics report: %w", err)
	}
	return rows, nil
}

// cachedReport returns the cached report, building and storing it on a miss.
// Cache failures are logged and never fail the request.
func cachedReport[T any](ctx context.Context, s *AnalyticsService, name string, build func(context.Context) (T, error)) (T, error) {
	var out T
	hit, err := s.cache.Get(ctx, name, &out)
	if err != nil {
		s.logger.Warn("Report cache read failed", zap.String("report", name), zap.Error(err))
	}
	if hit && err == nil {
		return out, nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "build", telemetry.SpanAttrReport, name)
	defer span.End()

	out, err = build(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return out, err
	}
	if err := s.cache.Set(ctx, name, out, s.ttl); err != nil {
		s.logger.Warn("Report cache write failed", zap.String("report", name), zap.Error(err))
	}
	return out, nil
}

// Refresh rebuilds every report and overwrites the cache. Reports are built
// concurrently and the first failure is returned after all have finished.
func (s *AnalyticsService) Refresh(ctx context.Context) error {
	builders := map[string]func(context.Context) (any, error){
		ReportTotalUsers: func(ctx context.Context) (any, error) {
			return s.buildSeries(ctx, "totalUsers")
		},
		ReportPageViews: func(ctx context.Context) (any, error) {
			return s.buildSeries(ctx, "screenPageViews")
		},
		ReportUserEngagementDuration: func(ctx context.Context) (any, error) {
			return s.buildSeries(ctx, "userEngagementDuration")
		},
		ReportUsersByCountry: func(ctx context.Context) (any, error) {
			return s.buildUsersByCountry(ctx)
		},
		ReportUsersByPlatform: func(ctx context.Context) (any, error) {
			return s.buildUsersByPlatform(ctx)
		},
	}

	var g errgroup.Group
	for name, build := range builders {
		g.Go(func() error {
			value, err := build(ctx)
			if err != nil {
				s.logger.Warn("Analytics refresh failed", zap.String("report", name), zap.Error(err))
				return fmt.Errorf("%s: %w", name, err)
			}
			return s.cache.Set(ctx, name, value, s.ttl)
		})
	}
	return g.Wait()
}

// RefreshJob returns the scheduled job that keeps the report cache warm
func (s *AnalyticsService) RefreshJob() scheduler.Job {
	return scheduler.JobFunc{JobName: "analytics-refresh", Fn: s.Refresh}
}
