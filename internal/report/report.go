// Package report aggregates the persisted order log for dashboards,
// sales reports and CSV export. It is strictly read-only: nothing here
// writes to the store.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/enum"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// Summary is the headline metrics block over a set of paid orders.
type Summary struct {
	TotalRevenue   decimal.Decimal
	OrderCount     int
	AvgOrderValue  decimal.Decimal
	TotalDiscounts decimal.Decimal
	UPISales       decimal.Decimal
	CashSales      decimal.Decimal
	// OtherSales is the remainder bucket: revenue not taken via UPI or
	// cash (card and split payments land here).
	OtherSales decimal.Decimal
}

// DayRevenue is one point of the per-day revenue series.
type DayRevenue struct {
	Date    string // calendar date, 2006-01-02
	Revenue decimal.Decimal
}

// ItemSales is one row of the top-items ranking.
type ItemSales struct {
	ID      string
	Name    string
	Qty     int
	Revenue decimal.Decimal
}

// Paid filters to paid orders created within [start, end). The input's
// newest-first ordering is preserved.
func Paid(orders []store.Order, start, end time.Time) []store.Order {
	out := make([]store.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != enum.OrderStatusPaid {
			continue
		}
		if o.CreatedAt.Before(start) || !o.CreatedAt.Before(end) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Summarize computes the headline metrics. The average is zero, not a
// division error, when there are no orders.
func Summarize(orders []store.Order) Summary {
	var s Summary
	s.TotalRevenue = decimal.Zero
	s.AvgOrderValue = decimal.Zero
	s.TotalDiscounts = decimal.Zero
	s.UPISales = decimal.Zero
	s.CashSales = decimal.Zero

	for _, o := range orders {
		s.TotalRevenue = s.TotalRevenue.Add(o.Total)
		s.TotalDiscounts = s.TotalDiscounts.Add(o.Discount)
		switch o.PaymentMethod {
		case enum.PaymentMethodUPI:
			s.UPISales = s.UPISales.Add(o.Total)
		case enum.PaymentMethodCash:
			s.CashSales = s.CashSales.Add(o.Total)
		}
	}
	s.OrderCount = len(orders)
	if s.OrderCount > 0 {
		s.AvgOrderValue = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.OrderCount)))
	}
	s.OtherSales = s.TotalRevenue.Sub(s.UPISales).Sub(s.CashSales)
	return s
}

// DailySeries buckets revenue by the calendar date of createdAt,
// oldest day first.
func DailySeries(orders []store.Order) []DayRevenue {
	byDay := make(map[string]decimal.Decimal)
	for _, o := range orders {
		day := o.CreatedAt.Format("2006-01-02")
		byDay[day] = byDay[day].Add(o.Total)
	}

	series := make([]DayRevenue, 0, len(byDay))
	for day, revenue := range byDay {
		series = append(series, DayRevenue{Date: day, Revenue: revenue})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// TopItems ranks items by total quantity sold across the orders,
// descending, limited to n rows. Ties break by name so the ranking is
// stable.
func TopItems(orders []store.Order, n int) []ItemSales {
	byID := make(map[string]*ItemSales)
	var ranked []*ItemSales
	for _, o := range orders {
		for _, line := range o.Items {
			row, ok := byID[line.ID]
			if !ok {
				row = &ItemSales{ID: line.ID, Name: line.Name, Revenue: decimal.Zero}
				byID[line.ID] = row
				ranked = append(ranked, row)
			}
			row.Qty += line.Qty
			row.Revenue = row.Revenue.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Qty))))
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Qty != ranked[j].Qty {
			return ranked[i].Qty > ranked[j].Qty
		}
		return ranked[i].Name < ranked[j].Name
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]ItemSales, len(ranked))
	for i, row := range ranked {
		out[i] = *row
	}
	return out
}

// csvHeader is the column set of the sales export.
var csvHeader = []string{"Order ID", "Table", "Date", "Items Count", "Payment", "Subtotal", "Discount", "Total"}

// WriteCSV streams the orders as a CSV report.
func WriteCSV(w io.Writer, orders []store.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range orders {
		record := []string{
			o.ID,
			o.TableName,
			o.CreatedAt.Format(time.RFC3339),
			fmt.Sprintf("%d", len(o.Items)),
			o.PaymentMethod,
			o.Subtotal.StringFixed(2),
			o.Discount.StringFixed(2),
			o.Total.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row for order %s: %w", o.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
