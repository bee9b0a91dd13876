package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/config"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/handler"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/idgen"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/service"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, st store.Store, state *service.State, hub *ws.Hub, ids idgen.Generator) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route: live menu/table/order/settings updates
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Menu catalog and management
	menuHandler := handler.NewMenuHandler(state, st, ids)
	r.Route("/menu", menuHandler.RegisterRoutes)

	// Tables: registry plus the dine-in session under each table
	tableHandler := handler.NewTableHandler(state, st, ids)
	dineInHandler := handler.NewDineInHandler(state, service.NewLifecycle(st, ids, nil), cfg.MiscRatePerMin)
	r.Route("/tables", func(r chi.Router) {
		tableHandler.RegisterRoutes(r)
		dineInHandler.RegisterRoutes(r)
	})

	// Order history
	orderHandler := handler.NewOrderHandler(state)
	r.Route("/orders", orderHandler.RegisterRoutes)

	// Reports
	reportsHandler := handler.NewReportsHandler(state)
	r.Route("/reports", reportsHandler.RegisterRoutes)

	// Settings and business profile
	settingsHandler := handler.NewSettingsHandler(state, st)
	settingsHandler.RegisterRoutes(r)

	log.Println("Router initialized with all handlers")
	return r
}
