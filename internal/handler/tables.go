package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/enum"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/floor"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/idgen"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/service"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// TableStore defines the store methods needed by floor-setup handlers.
// Satisfied by store.Store; narrow interface for testability.
type TableStore interface {
	PutTables(ctx context.Context, tables ...store.Table) error
	DeleteTable(ctx context.Context, id string) error
}

// TableHandler handles floor-plan display and table setup endpoints.
type TableHandler struct {
	state *service.State
	store TableStore
	ids   idgen.Generator
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(state *service.State, st TableStore, ids idgen.Generator) *TableHandler {
	return &TableHandler{state: state, store: st, ids: ids}
}

// RegisterRoutes registers table endpoints on the given Chi router.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createTableRequest struct {
	Name    string `json:"name"`
	Section string `json:"section"`
}

type updateTableRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section"`
}

type tableResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Section         string `json:"section"`
	Status          string `json:"status"`
	CurrentOrderID  string `json:"currentOrderId,omitempty"`
	OrderValue      string `json:"orderValue"`
	SessionStart    string `json:"sessionStartTime,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

type sectionResponse struct {
	Section string          `json:"section"`
	Tables  []tableResponse `json:"tables"`
}

func toTableResponse(t store.Table, now time.Time) tableResponse {
	resp := tableResponse{
		ID:             t.ID,
		Name:           t.Name,
		Section:        t.Section,
		Status:         t.Status,
		CurrentOrderID: t.CurrentOrderID,
		OrderValue:     t.OrderValue.StringFixed(2),
	}
	if !t.SessionStart.IsZero() {
		resp.SessionStart = t.SessionStart.Format(time.RFC3339)
		resp.DurationMinutes = floor.DurationMinutes(t.SessionStart, now)
	}
	return resp
}

// --- Handlers ---

// List returns the floor plan grouped by section, in section discovery
// order, with live session durations.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	sections := floor.BySection(h.state.Tables())

	resp := make([]sectionResponse, len(sections))
	for i, s := range sections {
		tables := make([]tableResponse, len(s.Tables))
		for j, t := range s.Tables {
			tables[j] = toTableResponse(t, now)
		}
		resp[i] = sectionResponse{Section: s.Name, Tables: tables}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a vacant table to the floor plan.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Section) == "" {
		writeError(w, http.StatusBadRequest, "name and section are required")
		return
	}

	t := store.Table{
		ID:      h.ids.NewID(),
		Name:    req.Name,
		Section: req.Section,
		Status:  enum.TableStatusVacant,
	}
	if err := h.store.PutTables(r.Context(), t); err != nil {
		log.Printf("ERROR: create table: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toTableResponse(t, time.Now()))
}

// Update renames tables and reassigns sections in bulk. Session fields
// (status, order, timings) are carried over from the current floor plan.
func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req []updateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now()
	tables := make([]store.Table, 0, len(req))
	for _, u := range req {
		if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Section) == "" {
			writeError(w, http.StatusBadRequest, "name and section are required")
			return
		}
		t, ok := h.state.Table(u.ID)
		if !ok {
			writeError(w, http.StatusNotFound, "table not found: "+u.ID)
			return
		}
		t.Name = u.Name
		t.Section = u.Section
		tables = append(tables, t)
	}

	if err := h.store.PutTables(r.Context(), tables...); err != nil {
		log.Printf("ERROR: update tables: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t, now)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a table. Tables with an open session cannot be removed.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if t, ok := h.state.Table(id); ok && t.Status != enum.TableStatusVacant {
		writeError(w, http.StatusConflict, "table has an open session")
		return
	}

	if err := h.store.DeleteTable(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "table not found")
			return
		}
		log.Printf("ERROR: delete table: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
