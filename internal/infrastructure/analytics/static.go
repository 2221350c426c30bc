package analytics

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/storeadmin/backend/internal/domain/report"
)

// StaticRunner returns deterministic sample rows for development
type StaticRunner struct {
	now func() time.Time
}

// NewStaticRunner creates a sample data runner
func NewStaticRunner() *StaticRunner {
	return &StaticRunner{now: time.Now}
}

var (
	sampleCountries = []string{"United States", "Germany", "India", "Brazil", "Netherlands"}
	samplePlatforms = []string{"Android", "iOS", "web"}
)

// RunReport supports the date, country and platform dimensions
func (r *StaticRunner) RunReport(_ context.Context, req ReportRequest) ([]report.AnalyticsRow, error) {
	if len(req.Dimensions) != 1 || len(req.Metrics) != 1 {
		return nil, fmt.Errorf("static runner supports one dimension and one metric")
	}
	metric := req.Metrics[0]

	switch req.Dimensions[0] {
	case "date":
		start, err := time.Parse(DateLayout, req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date: %w", err)
		}
		end := r.now()
		rows := make([]report.AnalyticsRow, 0, 16)
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			key := day.Format("20060102")
			rows = append(rows, row(key, sample(metric+key, 500)))
		}
		return rows, nil
	case "country":
		return keyedRows(sampleCountries, metric), nil
	case "platform":
		return keyedRows(samplePlatforms, metric), nil
	}
	return nil, fmt.Errorf("static runner does not support dimension %q", req.Dimensions[0])
}

func keyedRows(keys []string, metric string) []report.AnalyticsRow {
	rows := make([]report.AnalyticsRow, len(keys))
	for i, k := range keys {
		rows[i] = row(k, sample(metric+k, 1000))
	}
	return rows
}

func row(dimension string, value int) report.AnalyticsRow {
	return report.AnalyticsRow{Dimensions: []string{dimension}, Metrics: []string{strconv.Itoa(value)}}
}

func sample(seed string, max int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return int(h.Sum32()%uint32(max)) + 1
}
