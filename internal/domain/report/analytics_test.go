package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySeries(t *testing.T) {
	start := time.Date(2024, time.March, 1, 14, 30, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 4, 14, 30, 0, 0, time.UTC)

	rows := []AnalyticsRow{
		{Dimensions: []string{"20240302"}, Metrics: []string{"12"}},
		{Dimensions: []string{"20240303"}, Metrics: []string{"3.5"}},
		{Dimensions: []string{"20240301"}, Metrics: nil},
		{Dimensions: []string{"20240301"}, Metrics: []string{""}},
		{Dimensions: []string{"20240310"}, Metrics: []string{"99"}},
		{Dimensions: nil, Metrics: []string{"1"}},
	}

	series := BuildDailySeries(start, end, rows)
	require.Len(t, series, 3)
	assert.Equal(t, "1 Mar", series[0].Name)
	assert.Equal(t, 0.0, series[0].Value)
	assert.Equal(t, 12.0, series[1].Value)
	assert.Equal(t, 3.5, series[2].Value)
}

func TestBuildBreakdowns(t *testing.T) {
	rows := []AnalyticsRow{
		{Dimensions: []string{"Germany"}, Metrics: []string{"10"}},
		{Dimensions: []string{""}, Metrics: []string{"4"}},
		{Dimensions: []string{"France"}, Metrics: []string{"x"}},
		{Dimensions: []string{"Japan"}, Metrics: []string{"2"}},
	}

	countries := BuildCountryBreakdown(rows)
	assert.Equal(t, []CountryValue{{Country: "Germany", Value: 10}, {Country: "Japan", Value: 2}}, countries)

	platforms := BuildPlatformBreakdown([]AnalyticsRow{{Dimensions: []string{"Android"}, Metrics: []string{"7"}}})
	assert.Equal(t, []PlatformValue{{Platform: "Android", Value: 7}}, platforms)

	assert.Empty(t, BuildCountryBreakdown(nil))
}
