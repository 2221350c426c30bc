package report

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storeadmin/backend/internal/domain/trade"
)

// Overview is the headline figures of the dashboard
type Overview struct {
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	NewOrdersToday int             `json:"new_orders_today"`
	TotalProducts  int             `json:"total_products"`
}

// StartOfDay returns midnight of the day containing t
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ComputeOverview derives the headline figures from the full order set
func ComputeOverview(orders []trade.Order, productCount int, now time.Time) Overview {
	today := StartOfDay(now)
	o := Overview{
		TotalOrders:   len(orders),
		TotalRevenue:  decimal.Zero,
		TotalProducts: productCount,
	}
	for _, order := range orders {
		o.TotalRevenue = o.TotalRevenue.Add(order.Total)
		if !order.Date.Before(today) {
			o.NewOrdersToday++
		}
	}
	return o
}
