package report

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/domain/trade"
)

// RevenueBasis selects the period size of the revenue chart
type RevenueBasis string

const (
	RevenueBasisDaily   RevenueBasis = "daily"
	RevenueBasisMonthly RevenueBasis = "monthly"
	RevenueBasisYearly  RevenueBasis = "yearly"
)

// RevenuePeriods is how many full periods precede the current one in the chart
const RevenuePeriods = 10

// ParseRevenueBasis converts a request value into a RevenueBasis. Empty means daily.
func ParseRevenueBasis(value string) (RevenueBasis, error) {
	switch RevenueBasis(value) {
	case "":
		return RevenueBasisDaily, nil
	case RevenueBasisDaily, RevenueBasisMonthly, RevenueBasisYearly:
		return RevenueBasis(value), nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", "basis must be one of daily, monthly, yearly")
}

// labelLayout is the bucket caption layout for the basis
func (b RevenueBasis) labelLayout() string {
	switch b {
	case RevenueBasisMonthly:
		return "Jan"
	case RevenueBasisYearly:
		return "2006"
	}
	return "2 Jan"
}

// truncate returns the start of the period containing t
func (b RevenueBasis) truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	switch b {
	case RevenueBasisMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	case RevenueBasisYearly:
		return time.Date(y, 1, 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// add moves a period start by n periods
func (b RevenueBasis) add(t time.Time, n int) time.Time {
	switch b {
	case RevenueBasisMonthly:
		return t.AddDate(0, n, 0)
	case RevenueBasisYearly:
		return t.AddDate(n, 0, 0)
	}
	return t.AddDate(0, 0, n)
}

// RevenueBucket is one bar of the revenue chart
type RevenueBucket struct {
	Name  string          `json:"name"`
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// RevenueWindowStart is the earliest order date that can land in a bucket
func RevenueWindowStart(basis RevenueBasis, now time.Time) time.Time {
	return basis.add(basis.truncate(now), -RevenuePeriods)
}

// BuildRevenueBuckets returns empty buckets for the last RevenuePeriods
// periods plus the current one, oldest first.
func BuildRevenueBuckets(basis RevenueBasis, now time.Time) []RevenueBucket {
	start := RevenueWindowStart(basis, now)
	buckets := make([]RevenueBucket, 0, RevenuePeriods+1)
	for i := 0; i <= RevenuePeriods; i++ {
		day := basis.add(start, i)
		buckets = append(buckets, RevenueBucket{
			Name:  day.Format(basis.labelLayout()),
			Date:  day,
			Value: decimal.Zero,
		})
	}
	return buckets
}

// AggregateRevenue folds order totals into fresh buckets. Orders outside
// the window are skipped. The result depends only on the arguments.
func AggregateRevenue(basis RevenueBasis, orders []trade.Order, now time.Time) []RevenueBucket {
	buckets := BuildRevenueBuckets(basis, now)
	index := make(map[time.Time]int, len(buckets))
	for i, b := range buckets {
		index[b.Date] = i
	}

	for _, o := range orders {
		if o.Date.IsZero() {
			continue
		}
		period := basis.truncate(o.Date.In(now.Location()))
		i, ok := index[period]
		if !ok {
			continue
		}
		buckets[i].Value = buckets[i].Value.Add(o.Total)
	}
	return buckets
}
