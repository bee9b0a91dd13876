package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/report"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/service"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// ReportsHandler handles report endpoints: aggregations over paid
// orders in a date range.
type ReportsHandler struct {
	state *service.State
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(state *service.State) *ReportsHandler {
	return &ReportsHandler{state: state}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
	r.Get("/daily-sales", h.DailySales)
	r.Get("/top-items", h.TopItems)
	r.Get("/export", h.Export)
}

// --- Response types ---

type summaryResponse struct {
	TotalRevenue   string `json:"total_revenue"`
	OrderCount     int    `json:"order_count"`
	AvgOrderValue  string `json:"avg_order_value"`
	TotalDiscounts string `json:"total_discounts"`
	UPISales       string `json:"upi_sales"`
	CashSales      string `json:"cash_sales"`
	OtherSales     string `json:"other_sales"`
}

type dailySalesResponse struct {
	Date    string `json:"date"`
	Revenue string `json:"revenue"`
}

type topItemResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	QuantitySold int    `json:"quantity_sold"`
	TotalRevenue string `json:"total_revenue"`
}

// --- Handlers ---

// Summary returns the headline metrics for the date range.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	orders, ok := h.paidOrders(w, r)
	if !ok {
		return
	}
	s := report.Summarize(orders)
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalRevenue:   s.TotalRevenue.StringFixed(2),
		OrderCount:     s.OrderCount,
		AvgOrderValue:  s.AvgOrderValue.StringFixed(2),
		TotalDiscounts: s.TotalDiscounts.StringFixed(2),
		UPISales:       s.UPISales.StringFixed(2),
		CashSales:      s.CashSales.StringFixed(2),
		OtherSales:     s.OtherSales.StringFixed(2),
	})
}

// DailySales returns the per-day revenue series, oldest day first.
func (h *ReportsHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	orders, ok := h.paidOrders(w, r)
	if !ok {
		return
	}
	series := report.DailySeries(orders)
	resp := make([]dailySalesResponse, len(series))
	for i, day := range series {
		resp[i] = dailySalesResponse{Date: day.Date, Revenue: day.Revenue.StringFixed(2)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// TopItems returns the best-selling items by quantity.
func (h *ReportsHandler) TopItems(w http.ResponseWriter, r *http.Request) {
	orders, ok := h.paidOrders(w, r)
	if !ok {
		return
	}

	limit := 5
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	items := report.TopItems(orders, limit)
	resp := make([]topItemResponse, len(items))
	for i, item := range items {
		resp[i] = topItemResponse{
			ID:           item.ID,
			Name:         item.Name,
			QuantitySold: item.Qty,
			TotalRevenue: item.Revenue.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Export streams the date range's paid orders as a CSV download.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	orders := report.Paid(h.state.Orders(), start, end)

	filename := fmt.Sprintf("report_%s_to_%s.csv",
		start.Format("2006-01-02"), end.AddDate(0, 0, -1).Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := report.WriteCSV(w, orders); err != nil {
		log.Printf("ERROR: write csv export: %v", err)
	}
}

func (h *ReportsHandler) paidOrders(w http.ResponseWriter, r *http.Request) ([]store.Order, bool) {
	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return report.Paid(h.state.Orders(), start, end), true
}
