package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/floor"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/service"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// DineInHandler exposes the table-session lifecycle: loading the
// in-flight cart and punching, billing or settling it. The cart draft
// itself is client-held; every request carries the full line set, and
// the server owns the state machine.
type DineInHandler struct {
	state     *service.State
	lifecycle *service.Lifecycle
	miscRate  decimal.Decimal
}

// NewDineInHandler creates a new DineInHandler.
func NewDineInHandler(state *service.State, lc *service.Lifecycle, miscRate decimal.Decimal) *DineInHandler {
	return &DineInHandler{state: state, lifecycle: lc, miscRate: miscRate}
}

// RegisterRoutes registers dine-in endpoints on the given Chi router.
// Expected to be mounted on the tables subrouter, alongside the
// registry routes, so sessions live at /tables/{id}/...
func (h *DineInHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{id}/cart", h.Cart)
	r.Post("/{id}/misc", h.Misc)
	r.Post("/{id}/punch", h.Punch)
	r.Post("/{id}/bill", h.Bill)
	r.Post("/{id}/settle", h.Settle)
}

// --- Request / Response types ---

type cartLineRequest struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
	Kind  string          `json:"kind,omitempty"`
}

type cartRequest struct {
	Items    []cartLineRequest `json:"items"`
	Discount decimal.Decimal   `json:"discount"`
}

type settleRequest struct {
	cartRequest
	PaymentMethod string          `json:"paymentMethod"`
	CashAmount    decimal.Decimal `json:"cashAmount"`
	UPIAmount     decimal.Decimal `json:"upiAmount"`
}

type cartLineResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Qty   int    `json:"qty"`
	Kind  string `json:"kind,omitempty"`
}

type cartResponse struct {
	TableID         string             `json:"tableId"`
	TableName       string             `json:"tableName"`
	OrderID         string             `json:"orderId,omitempty"`
	Items           []cartLineResponse `json:"items"`
	Subtotal        string             `json:"subtotal"`
	Discount        string             `json:"discount"`
	Total           string             `json:"total"`
	DurationMinutes int                `json:"durationMinutes,omitempty"`
}

type orderResponse struct {
	ID            string             `json:"id"`
	TableID       string             `json:"tableId"`
	TableName     string             `json:"tableName"`
	Items         []cartLineResponse `json:"items"`
	Subtotal      string             `json:"subtotal"`
	Tax           string             `json:"tax"`
	Discount      string             `json:"discount"`
	Total         string             `json:"total"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"paymentMethod"`
	CreatedAt     time.Time          `json:"createdAt"`
	CashAmount    string             `json:"cashAmount"`
	UPIAmount     string             `json:"upiAmount"`
}

func toCartLineResponses(lines []store.OrderItem) []cartLineResponse {
	out := make([]cartLineResponse, len(lines))
	for i, l := range lines {
		out[i] = cartLineResponse{
			ID:    l.ID,
			Name:  l.Name,
			Price: l.Price.StringFixed(2),
			Qty:   l.Qty,
			Kind:  l.Kind,
		}
	}
	return out
}

func toCartResponse(c *service.Cart, now time.Time) cartResponse {
	t := c.Table()
	totals := c.Totals()
	resp := cartResponse{
		TableID:   t.ID,
		TableName: t.Name,
		OrderID:   c.OrderID(),
		Items:     toCartLineResponses(c.Lines()),
		Subtotal:  totals.Subtotal.StringFixed(2),
		Discount:  totals.Discount.StringFixed(2),
		Total:     totals.Total.StringFixed(2),
	}
	if !t.SessionStart.IsZero() {
		resp.DurationMinutes = floor.DurationMinutes(t.SessionStart, now)
	}
	return resp
}

func toOrderResponse(o store.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		TableID:       o.TableID,
		TableName:     o.TableName,
		Items:         toCartLineResponses(o.Items),
		Subtotal:      o.Subtotal.StringFixed(2),
		Tax:           o.Tax.StringFixed(2),
		Discount:      o.Discount.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
		CashAmount:    o.CashAmount.StringFixed(2),
		UPIAmount:     o.UPIAmount.StringFixed(2),
	}
}

// --- Handlers ---

// openCart loads the table's cart like a terminal selecting the table.
func (h *DineInHandler) openCart(r *http.Request) (*service.Cart, bool) {
	t, ok := h.state.Table(chi.URLParam(r, "id"))
	if !ok {
		return nil, false
	}
	return service.SelectTable(t, h.state.Orders()), true
}

// Cart returns the in-flight cart for a table, empty for vacant tables.
func (h *DineInHandler) Cart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.openCart(r)
	if !ok {
		writeError(w, http.StatusNotFound, "table not found")
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c, time.Now()))
}

// Misc applies the time-based service charge to the submitted cart and
// returns the recomputed draft. Nothing is persisted; the single misc
// line's price is replaced, never accumulated.
func (h *DineInHandler) Misc(w http.ResponseWriter, r *http.Request) {
	c, ok := h.openCart(r)
	if !ok {
		writeError(w, http.StatusNotFound, "table not found")
		return
	}

	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now := time.Now()
	c.ReplaceLines(toOrderItems(req.Items), req.Discount)
	c.ApplyMiscCharge(h.miscRate, now)
	writeJSON(w, http.StatusOK, toCartResponse(c, now))
}

// Punch commits the submitted cart as the table's pending order.
func (h *DineInHandler) Punch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(c *service.Cart, _ settleRequest) (store.Order, error) {
		return h.lifecycle.Punch(r.Context(), c)
	})
}

// Bill marks the table's order as billed for printing.
func (h *DineInHandler) Bill(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(c *service.Cart, _ settleRequest) (store.Order, error) {
		return h.lifecycle.Bill(r.Context(), c)
	})
}

// Settle finalizes payment and frees the table.
func (h *DineInHandler) Settle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(c *service.Cart, req settleRequest) (store.Order, error) {
		return h.lifecycle.Settle(r.Context(), c, req.PaymentMethod, req.CashAmount, req.UPIAmount)
	})
}

// transition runs one lifecycle event with the submitted cart and maps
// the error taxonomy onto HTTP statuses.
func (h *DineInHandler) transition(w http.ResponseWriter, r *http.Request, run func(*service.Cart, settleRequest) (store.Order, error)) {
	c, ok := h.openCart(r)
	if !ok {
		writeError(w, http.StatusNotFound, "table not found")
		return
	}

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ReplaceLines(toOrderItems(req.Items), req.Discount)

	order, err := run(c, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toOrderResponse(order))
	case service.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusConflict, "table or order no longer exists")
	default:
		log.Printf("ERROR: order transition on table %s: %v", c.Table().ID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toOrderItems(lines []cartLineRequest) []store.OrderItem {
	out := make([]store.OrderItem, len(lines))
	for i, l := range lines {
		out[i] = store.OrderItem{ID: l.ID, Name: l.Name, Price: l.Price, Qty: l.Qty, Kind: l.Kind}
	}
	return out
}
