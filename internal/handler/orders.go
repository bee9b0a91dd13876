package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/service"
)

// OrderHandler serves the order history: a read-only view over the
// persisted order log, newest first.
type OrderHandler struct {
	state *service.State
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(state *service.State) *OrderHandler {
	return &OrderHandler{state: state}
}

// RegisterRoutes registers order history endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// List returns the order log, optionally filtered by ?status= and a
// ?q= search over order id and table name.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	q := strings.ToLower(r.URL.Query().Get("q"))

	resp := []orderResponse{}
	for _, o := range h.state.Orders() {
		if status != "" && status != "all" && o.Status != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(o.ID), q) &&
			!strings.Contains(strings.ToLower(o.TableName), q) {
			continue
		}
		resp = append(resp, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one order by id.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, ok := h.state.Order(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
