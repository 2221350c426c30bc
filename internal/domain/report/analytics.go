package report

import (
	"strconv"
	"time"
)

// AnalyticsRow is one row of a reporting API response
type AnalyticsRow struct {
	Dimensions []string
	Metrics    []string
}

// SeriesPoint is one day of a time series chart
type SeriesPoint struct {
	Name  string    `json:"name"`
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// CountryValue is one entry of the users-by-country breakdown
type CountryValue struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

// PlatformValue is one entry of the users-by-platform breakdown
type PlatformValue struct {
	Platform string  `json:"platform"`
	Value    float64 `json:"value"`
}

// analyticsDateLayout is the format of the "date" dimension
const analyticsDateLayout = "20060102"

// BuildDailySeries zero-fills one point per day from start up to (not
// including) now's instant, then copies metric values of rows whose date
// dimension matches a day. Rows without a usable value are skipped.
func BuildDailySeries(start, now time.Time, rows []AnalyticsRow) []SeriesPoint {
	points := make([]SeriesPoint, 0, 16)
	index := make(map[string]int)
	for day := start; day.Before(now); day = day.AddDate(0, 0, 1) {
		key := day.Format(analyticsDateLayout)
		index[key] = len(points)
		points = append(points, SeriesPoint{Name: day.Format("2 Jan"), Date: day, Value: 0})
	}

	for _, row := range rows {
		if len(row.Dimensions) == 0 || len(row.Metrics) == 0 {
			continue
		}
		i, ok := index[row.Dimensions[0]]
		if !ok {
			continue
		}
		v, ok := parseMetric(row.Metrics[0])
		if !ok {
			continue
		}
		points[i].Value = v
	}
	return points
}

// BuildCountryBreakdown maps rows of the country dimension
func BuildCountryBreakdown(rows []AnalyticsRow) []CountryValue {
	out := make([]CountryValue, 0, len(rows))
	for _, row := range rows {
		key, v, ok := keyedValue(row)
		if !ok {
			continue
		}
		out = append(out, CountryValue{Country: key, Value: v})
	}
	return out
}

// BuildPlatformBreakdown maps rows of the platform dimension
func BuildPlatformBreakdown(rows []AnalyticsRow) []PlatformValue {
	out := make([]PlatformValue, 0, len(rows))
	for _, row := range rows {
		key, v, ok := keyedValue(row)
		if !ok {
			continue
		}
		out = append(out, PlatformValue{Platform: key, Value: v})
	}
	return out
}

func keyedValue(row AnalyticsRow) (string, float64, bool) {
	if len(row.Dimensions) == 0 || row.Dimensions[0] == "" || len(row.Metrics) == 0 {
		return "", 0, false
	}
	v, ok := parseMetric(row.Metrics[0])
	if !ok {
		return "", 0, false
	}
	return row.Dimensions[0], v, true
}

func parseMetric(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
