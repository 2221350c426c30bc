package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storeadmin/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
)

func TestComputeOverview(t *testing.T) {
	orders := []trade.Order{
		order(now.Add(-time.Hour), 10),
		order(StartOfDay(now), 5),
		order(StartOfDay(now).Add(-time.Second), 20),
	}

	o := ComputeOverview(orders, 42, now)
	assert.Equal(t, 3, o.TotalOrders)
	assert.Equal(t, 2, o.NewOrdersToday)
	assert.Equal(t, 42, o.TotalProducts)
	assert.True(t, decimal.NewFromInt(35).Equal(o.TotalRevenue))

	empty := ComputeOverview(nil, 0, now)
	assert.True(t, empty.TotalRevenue.IsZero())
}
