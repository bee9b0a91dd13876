package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/config"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/enum"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// Seeds the configured store with the cafe's starting data: the menu,
// the floor plan, the business profile, and default app settings.
// Idempotent: puts overwrite by id, so re-running refreshes the data.
func main() {
	backend := flag.String("store", "", "Store backend (memory or postgres); overrides STORE_BACKEND")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	cfg := config.Load()
	if *backend != "" {
		cfg.StoreBackend = *backend
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Unable to open store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := st.PutMenuItems(ctx, initialMenu()...); err != nil {
		log.Fatalf("Seed menu: %v", err)
	}
	if err := st.PutTables(ctx, initialTables()...); err != nil {
		log.Fatalf("Seed tables: %v", err)
	}
	if err := st.PutProfile(ctx, initialProfile()); err != nil {
		log.Fatalf("Seed profile: %v", err)
	}
	if err := st.PutSettings(ctx, initialSettings()); err != nil {
		log.Fatalf("Seed settings: %v", err)
	}

	log.Printf("Seeded %s store: %d menu items, %d tables", cfg.StoreBackend, len(initialMenu()), len(initialTables()))
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

func initialMenu() []store.MenuItem {
	type row struct {
		name     string
		category string
		price    int64
		foodType string
	}
	rows := []row{
		{"Veggie Wrap", "San", 149, enum.FoodTypeVeg},
		{"Mexican Elote (Cheese Corn Balls)", "STARTERS", 199, enum.FoodTypeVeg},
		{"Arancini balls", "STARTERS", 249, enum.FoodTypeVeg},
		{"One Pan Garlic mushroom", "STARTERS", 199, enum.FoodTypeVeg},
		{"One Pan Garlic chicken", "STARTERS", 299, enum.FoodTypeNonVeg},
		{"Honey Chili potato", "STARTERS", 309, enum.FoodTypeVeg},
		{"Melting paneer", "STARTERS", 249, enum.FoodTypeVeg},
		{"Malaysian mango chicken", "STARTERS", 339, enum.FoodTypeNonVeg},
		{"Potato Wedges", "STARTERS", 129, enum.FoodTypeVeg},
		{"Cajun Potato Veggies", "STARTERS", 149, enum.FoodTypeVeg},
		{"Paneer Popcorn", "STARTERS", 269, enum.FoodTypeVeg},
		{"Chicken Popcorn", "STARTERS", 220, enum.FoodTypeNonVeg},
		{"Lemon Garlic chicken", "STARTERS", 310, enum.FoodTypeNonVeg},
		{"Chicken Florentine", "STARTERS", 349, enum.FoodTypeNonVeg},
		{"Chicken Demi-Glace", "STARTERS", 310, enum.FoodTypeNonVeg},
		{"Paneer Chimichurri", "STARTERS", 249, enum.FoodTypeVeg},
		{"Chicken Chimichurri", "STARTERS", 269, enum.FoodTypeNonVeg},
		{"Chicken Nuggets", "STARTERS", 149, enum.FoodTypeNonVeg},
		{"Punjabi Tadka Maggi", "MAGGI", 139, enum.FoodTypeVeg},
		{"Veggie-Soupy Maggi", "MAGGI", 119, enum.FoodTypeVeg},
		{"Cheese Corn Maggi", "MAGGI", 119, enum.FoodTypeVeg},
		{"Chicken Maggi", "MAGGI", 149, enum.FoodTypeNonVeg},
		{"Double Masala Maggi", "MAGGI", 99, enum.FoodTypeVeg},
		{"Schezwan Maggi", "MAGGI", 110, enum.FoodTypeVeg},
		{"Paneer Schezwan Maggi", "MAGGI", 129, enum.FoodTypeVeg},
	}
	items := make([]store.MenuItem, len(rows))
	for i, r := range rows {
		items[i] = store.MenuItem{
			ID:       fmt.Sprintf("%d", i+1),
			Name:     r.name,
			Category: r.category,
			Price:    decimal.NewFromInt(r.price),
			FoodType: r.foodType,
		}
	}
	return items
}

func initialTables() []store.Table {
	type row struct {
		id      string
		name    string
		section string
	}
	rows := []row{
		{"t1", "T1", "Main Floor"},
		{"t2", "T2", "Main Floor"},
		{"t3", "T3", "Main Floor"},
		{"t4", "T4", "Main Floor"},
		{"t5", "T5", "Terrace"},
		{"t6", "T6", "Terrace"},
		{"t7", "T7", "Terrace"},
		{"t8", "T8", "Terrace"},
		{"c1", "C1", "Lounge"},
		{"c2", "C2", "Lounge"},
	}
	tables := make([]store.Table, len(rows))
	for i, r := range rows {
		tables[i] = store.Table{
			ID:      r.id,
			Name:    r.name,
			Section: r.section,
			Status:  enum.TableStatusVacant,
		}
	}
	return tables
}

func initialProfile() store.BusinessProfile {
	return store.BusinessProfile{
		OwnerName:   "Cafe Rock Bottom",
		OwnerNumber: "+91 98765 43210",
		FSSAI:       "12345678901234",
		Address:     "41, Mangalmurti Sq, Jaitala Road, Nagpur-440022",
	}
}

func initialSettings() store.AppSettings {
	return store.AppSettings{
		Theme:             "Rock Bottom",
		ShowLogoOnBill:    true,
		ShowAddressOnBill: true,
		InvoiceHeader:     "Cafe Rock Bottom",
		InvoiceFooter:     "Visit Again! Follow us @caferockbottom",
		GSTEnabled:        false,
		GSTPercentage:     5,
	}
}
