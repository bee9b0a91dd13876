package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/enum"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

func paidOrder(id string, total int64, method string, at time.Time) store.Order {
	return store.Order{
		ID:            id,
		TableName:     "T1",
		Total:         decimal.NewFromInt(total),
		Subtotal:      decimal.NewFromInt(total),
		Status:        enum.OrderStatusPaid,
		PaymentMethod: method,
		CreatedAt:     at,
	}
}

var day = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

// --- Paid ---

func TestPaid_FiltersStatusAndRange(t *testing.T) {
	start := day
	end := day.AddDate(0, 0, 1)
	orders := []store.Order{
		paidOrder("in", 100, enum.PaymentMethodCash, day.Add(2*time.Hour)),
		{ID: "pending", Status: enum.OrderStatusPending, CreatedAt: day.Add(time.Hour)},
		paidOrder("before", 100, enum.PaymentMethodCash, day.Add(-time.Hour)),
		paidOrder("at-end", 100, enum.PaymentMethodCash, end),
	}

	got := Paid(orders, start, end)
	if len(got) != 1 || got[0].ID != "in" {
		t.Errorf("got %+v, want only order 'in'", got)
	}
}

// --- Summarize ---

func TestSummarize_HeadlineMetrics(t *testing.T) {
	orders := []store.Order{
		paidOrder("1", 100, enum.PaymentMethodUPI, day),
		paidOrder("2", 200, enum.PaymentMethodCash, day),
		paidOrder("3", 300, enum.PaymentMethodCard, day),
	}
	orders[1].Discount = decimal.NewFromInt(20)

	s := Summarize(orders)
	if !s.TotalRevenue.Equal(decimal.NewFromInt(600)) {
		t.Errorf("revenue: got %s, want 600", s.TotalRevenue)
	}
	if s.OrderCount != 3 {
		t.Errorf("count: got %d, want 3", s.OrderCount)
	}
	if !s.AvgOrderValue.Equal(decimal.NewFromInt(200)) {
		t.Errorf("avg: got %s, want 200", s.AvgOrderValue)
	}
	if !s.TotalDiscounts.Equal(decimal.NewFromInt(20)) {
		t.Errorf("discounts: got %s, want 20", s.TotalDiscounts)
	}
	if !s.UPISales.Equal(decimal.NewFromInt(100)) || !s.CashSales.Equal(decimal.NewFromInt(200)) {
		t.Errorf("splits: upi=%s cash=%s", s.UPISales, s.CashSales)
	}
	if !s.OtherSales.Equal(decimal.NewFromInt(300)) {
		t.Errorf("other: got %s, want 300 (card)", s.OtherSales)
	}
}

func TestSummarize_EmptyHasZeroAverage(t *testing.T) {
	s := Summarize(nil)
	if s.OrderCount != 0 || !s.AvgOrderValue.IsZero() || !s.TotalRevenue.IsZero() {
		t.Errorf("empty summary: %+v", s)
	}
}

func TestSummarize_SplitPaymentLandsInOther(t *testing.T) {
	s := Summarize([]store.Order{paidOrder("1", 150, enum.PaymentMethodSplit, day)})
	if !s.OtherSales.Equal(decimal.NewFromInt(150)) {
		t.Errorf("split revenue in other: got %s, want 150", s.OtherSales)
	}
}

// --- DailySeries ---

func TestDailySeries_BucketsByCalendarDayAscending(t *testing.T) {
	orders := []store.Order{
		paidOrder("1", 100, enum.PaymentMethodCash, day.AddDate(0, 0, 2)),
		paidOrder("2", 200, enum.PaymentMethodCash, day),
		paidOrder("3", 50, enum.PaymentMethodCash, day.Add(5*time.Hour)),
	}

	series := DailySeries(orders)
	if len(series) != 2 {
		t.Fatalf("series: got %d points, want 2", len(series))
	}
	if series[0].Date != "2026-08-01" || !series[0].Revenue.Equal(decimal.NewFromInt(250)) {
		t.Errorf("first point: %+v", series[0])
	}
	if series[1].Date != "2026-08-03" || !series[1].Revenue.Equal(decimal.NewFromInt(100)) {
		t.Errorf("second point: %+v", series[1])
	}
}

// --- TopItems ---

func TestTopItems_RanksByQuantity(t *testing.T) {
	orders := []store.Order{
		{
			Status: enum.OrderStatusPaid,
			Items: []store.OrderItem{
				{ID: "1", Name: "Veggie Wrap", Price: decimal.NewFromInt(149), Qty: 3},
				{ID: "2", Name: "Arancini balls", Price: decimal.NewFromInt(249), Qty: 1},
			},
		},
		{
			Status: enum.OrderStatusPaid,
			Items: []store.OrderItem{
				{ID: "1", Name: "Veggie Wrap", Price: decimal.NewFromInt(149), Qty: 2},
			},
		},
	}

	top := TopItems(orders, 5)
	if len(top) != 2 {
		t.Fatalf("rows: got %d, want 2", len(top))
	}
	if top[0].ID != "1" || top[0].Qty != 5 {
		t.Errorf("top row: %+v", top[0])
	}
	if !top[0].Revenue.Equal(decimal.NewFromInt(745)) {
		t.Errorf("top revenue: got %s, want 745", top[0].Revenue)
	}
}

func TestTopItems_LimitAndNameTiebreak(t *testing.T) {
	orders := []store.Order{
		{
			Status: enum.OrderStatusPaid,
			Items: []store.OrderItem{
				{ID: "b", Name: "Schezwan Maggi", Price: decimal.NewFromInt(110), Qty: 2},
				{ID: "a", Name: "Chicken Maggi", Price: decimal.NewFromInt(149), Qty: 2},
				{ID: "c", Name: "Potato Wedges", Price: decimal.NewFromInt(129), Qty: 1},
			},
		},
	}

	top := TopItems(orders, 2)
	if len(top) != 2 {
		t.Fatalf("rows: got %d, want 2", len(top))
	}
	// Equal quantities rank alphabetically by name.
	if top[0].Name != "Chicken Maggi" || top[1].Name != "Schezwan Maggi" {
		t.Errorf("tiebreak order: %q then %q", top[0].Name, top[1].Name)
	}
}

// --- CSV ---

func TestWriteCSV(t *testing.T) {
	o := paidOrder("ord-1", 323, enum.PaymentMethodCash, day)
	o.Items = []store.OrderItem{
		{ID: "1", Name: "Veggie Wrap", Price: decimal.NewFromInt(149), Qty: 2},
		{ID: enum.MiscLineID, Name: "MISC / Seating Charge (10 min)", Price: decimal.NewFromInt(25), Qty: 1},
	}
	o.Discount = decimal.NewFromInt(0)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []store.Order{o}); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want header + 1 row", len(lines))
	}
	if lines[0] != "Order ID,Table,Date,Items Count,Payment,Subtotal,Discount,Total" {
		t.Errorf("header: %q", lines[0])
	}
	row := lines[1]
	for _, want := range []string{"ord-1", "T1", "2026-08-01T10:00:00Z", "2", "Cash", "323.00"} {
		if !strings.Contains(row, want) {
			t.Errorf("row missing %q: %q", want, row)
		}
	}
}
