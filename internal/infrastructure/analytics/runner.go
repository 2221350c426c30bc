// Package analytics runs reports against the web analytics API
package analytics

import (
	"context"

	"github.com/storeadmin/backend/internal/domain/report"
)

// DateLayout is the date format of report ranges
const DateLayout = "2006-01-02"

// ReportRequest describes a single-range report
type ReportRequest struct {
	StartDate  string
	EndDate    string
	Dimensions []string
	Metrics    []string
}

// ReportRunner runs analytics reports
type ReportRunner interface {
	RunReport(ctx context.Context, req ReportRequest) ([]report.AnalyticsRow, error)
}
