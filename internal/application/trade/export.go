package trade

import (
	"strings"

	"github.com/storeadmin/backend/internal/domain/trade"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// OrderCSVRow is one line of the orders export
type OrderCSVRow struct {
	OrderNumber   string `csv:"Order ID"`
	Date          string `csv:"Date"`
	Status        string `csv:"Status"`
	CustomerEmail string `csv:"Customer Email"`
	Country       string `csv:"Country"`
	Address       string `csv:"Address"`
	Items         int    `csv:"Items"`
	Total         string `csv:"Total Paid"`
}

// exportDateLayout renders order dates the way the dashboard tables do
const exportDateLayout = "2 Jan 2006 15:04"

var (
	moneyPrinter = message.NewPrinter(language.English)
	titleCaser   = cases.Title(language.English)
)

// formatMoney renders an amount with grouping and two decimals, e.g. "1,234.50"
func formatMoney(amount float64) string {
	return moneyPrinter.Sprintf("%.2f", amount)
}

func toOrderCSVRow(o *trade.Order) OrderCSVRow {
	quantity := 0
	for _, item := range o.Items {
		quantity += item.Quantity
	}
	return OrderCSVRow{
		OrderNumber:   o.OrderNumber,
		Date:          o.Date.Format(exportDateLayout),
		Status:        o.Status.String(),
		CustomerEmail: o.CustomerEmail,
		Country:       titleCaser.String(strings.ToLower(o.Shipping.Country)),
		Address:       o.Shipping.String(),
		Items:         quantity,
		Total:         formatMoney(o.Total.InexactFloat64()),
	}
}

// ExportFilename names the orders export of a status ("" means all)
func ExportFilename(status string) string {
	if status == "" {
		return "orders.csv"
	}
	return "orders-" + strings.ToLower(status) + ".csv"
}
