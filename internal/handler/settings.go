package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/service"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// SettingsStore defines the store methods needed by settings handlers.
// Satisfied by store.Store; narrow interface for testability.
type SettingsStore interface {
	PutSettings(ctx context.Context, s store.AppSettings) error
	Profile(ctx context.Context) (store.BusinessProfile, error)
	PutProfile(ctx context.Context, p store.BusinessProfile) error
}

// SettingsHandler handles app settings and business profile endpoints.
type SettingsHandler struct {
	state *service.State
	store SettingsStore
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(state *service.State, st SettingsStore) *SettingsHandler {
	return &SettingsHandler{state: state, store: st}
}

// RegisterRoutes registers settings endpoints on the given Chi router.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.PutSettings)
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.PutProfile)
}

// GetSettings handles GET /settings.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Settings())
}

// PutSettings handles PUT /settings. The body replaces the stored
// settings wholesale.
func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req store.AppSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GSTPercentage < 0 || req.GSTPercentage > 100 {
		writeError(w, http.StatusUnprocessableEntity, "gstPercentage must be between 0 and 100")
		return
	}
	if err := h.store.PutSettings(r.Context(), req); err != nil {
		log.Printf("ERROR: save settings: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// GetProfile handles GET /profile.
func (h *SettingsHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.store.Profile(r.Context())
	if err != nil {
		log.Printf("ERROR: load profile: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// PutProfile handles PUT /profile.
func (h *SettingsHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req store.BusinessProfile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.store.PutProfile(r.Context(), req); err != nil {
		log.Printf("ERROR: save profile: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, req)
}
