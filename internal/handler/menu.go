package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/catalog"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/enum"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/idgen"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/service"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// MenuStore defines the store methods needed by menu handlers.
// Satisfied by store.Store; narrow interface for testability.
type MenuStore interface {
	PutMenuItems(ctx context.Context, items ...store.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error
}

// MenuHandler handles menu catalog and menu management endpoints.
type MenuHandler struct {
	state *service.State
	store MenuStore
	ids   idgen.Generator
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(state *service.State, st MenuStore, ids idgen.Generator) *MenuHandler {
	return &MenuHandler{state: state, store: st, ids: ids}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/categories", h.Categories)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type menuItemRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	FoodType string          `json:"foodType"`
}

type menuItemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	FoodType string `json:"foodType"`
}

func toMenuItemResponse(item store.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:       item.ID,
		Name:     item.Name,
		Category: item.Category,
		Price:    item.Price.StringFixed(2),
		FoodType: item.FoodType,
	}
}

func (req menuItemRequest) validate() string {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	case strings.TrimSpace(req.Category) == "":
		return "category is required"
	case req.Price.IsNegative():
		return "price must not be negative"
	case !enum.ValidFoodType(req.FoodType):
		return "foodType must be veg or non-veg"
	}
	return ""
}

// --- Handlers ---

// List returns the menu, optionally filtered by ?category= and ?q=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items := catalog.Filter(h.state.Menu(), r.URL.Query().Get("category"), r.URL.Query().Get("q"))

	resp := make([]menuItemResponse, len(items))
	for i, item := range items {
		resp[i] = toMenuItemResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Categories returns the distinct categories in discovery order,
// prefixed with the "All" sentinel.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Categories(h.state.Menu()))
}

// Create adds a menu item.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item := store.MenuItem{
		ID:       h.ids.NewID(),
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		FoodType: req.FoodType,
	}

	if err := h.store.PutMenuItems(r.Context(), item); err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update replaces a menu item's editable fields. Prices already copied
// into order lines are unaffected.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := catalog.Get(h.state.Menu(), id); !ok {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item := store.MenuItem{
		ID:       id,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		FoodType: req.FoodType,
	}
	if err := h.store.PutMenuItems(r.Context(), item); err != nil {
		log.Printf("ERROR: update menu item: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete removes a menu item from the catalog.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
