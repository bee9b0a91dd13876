package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/config"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/idgen"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/router"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/service"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	cfg := config.Load()

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Unable to open store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		log.Fatalf("Store is not reachable: %v", err)
	}

	// Live in-memory mirror of the store, kept current via subscriptions.
	state := service.WatchStore(st)
	defer state.Close()

	hub := ws.NewHub()
	go hub.Run()
	bridge := ws.NewBridge(st, hub)
	defer bridge.Stop()

	r := router.New(cfg, st, state, hub, idgen.UUID{})

	log.Printf("Starting server on :%s (store=%s)", cfg.Port, cfg.StoreBackend)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return store.NewPostgres(ctx, cfg.DatabaseURL)
	case "memory":
		return store.OpenFile(cfg.StateFile)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
