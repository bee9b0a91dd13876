package service

import (
	"context"
	"testing"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/enum"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

func TestWatchStore_ReadableImmediately(t *testing.T) {
	st := store.NewMemory()
	if err := st.PutMenuItems(context.Background(), menuItem("1", "Veggie Wrap", 149)); err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	if err := st.PutTables(context.Background(), store.Table{ID: "t1", Status: enum.TableStatusVacant}); err != nil {
		t.Fatalf("seed table: %v", err)
	}

	state := WatchStore(st)
	defer state.Close()

	if got := len(state.Menu()); got != 1 {
		t.Errorf("menu: got %d items, want 1", got)
	}
	if _, ok := state.Table("t1"); !ok {
		t.Errorf("table t1 not visible in fresh mirror")
	}
}

func TestWatchStore_TracksWrites(t *testing.T) {
	st := store.NewMemory()
	state := WatchStore(st)
	defer state.Close()

	if err := st.PutMenuItems(context.Background(), menuItem("2", "Arancini balls", 249)); err != nil {
		t.Fatalf("put menu: %v", err)
	}
	if err := st.PutSettings(context.Background(), store.AppSettings{Theme: "Rock Bottom"}); err != nil {
		t.Fatalf("put settings: %v", err)
	}

	if got := len(state.Menu()); got != 1 {
		t.Errorf("menu write not mirrored: got %d items, want 1", got)
	}
	if got := state.Settings().Theme; got != "Rock Bottom" {
		t.Errorf("settings theme: got %q, want Rock Bottom", got)
	}
}

func TestStateClose_StopsUpdates(t *testing.T) {
	st := store.NewMemory()
	state := WatchStore(st)
	state.Close()

	if err := st.PutMenuItems(context.Background(), menuItem("1", "Veggie Wrap", 149)); err != nil {
		t.Fatalf("put menu: %v", err)
	}
	if got := len(state.Menu()); got != 0 {
		t.Errorf("closed mirror still updating: %d items", got)
	}
}

func TestStateOrder_LookupByID(t *testing.T) {
	st := store.NewMemory()
	if err := st.PutTables(context.Background(), store.Table{ID: "t1", Status: enum.TableStatusVacant}); err != nil {
		t.Fatalf("seed table: %v", err)
	}
	state := WatchStore(st)
	defer state.Close()

	if err := st.SaveOrder(context.Background(), store.Order{ID: "ord-1", TableID: "t1", Status: enum.OrderStatusPending}); err != nil {
		t.Fatalf("save order: %v", err)
	}

	if _, ok := state.Order("ord-1"); !ok {
		t.Errorf("order ord-1 not found in mirror")
	}
	if _, ok := state.Order("ord-404"); ok {
		t.Errorf("unknown order id unexpectedly found")
	}
}
