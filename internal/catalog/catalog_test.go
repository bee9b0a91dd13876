package catalog

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

var testMenu = []store.MenuItem{
	{ID: "1", Name: "Veggie Wrap", Category: "San", Price: decimal.NewFromInt(149), FoodType: "veg"},
	{ID: "2", Name: "Arancini balls", Category: "STARTERS", Price: decimal.NewFromInt(249), FoodType: "veg"},
	{ID: "3", Name: "Chicken Maggi", Category: "MAGGI", Price: decimal.NewFromInt(149), FoodType: "non-veg"},
	{ID: "4", Name: "Schezwan Maggi", Category: "MAGGI", Price: decimal.NewFromInt(110), FoodType: "veg"},
}

func TestFilter_ByCategory(t *testing.T) {
	got := Filter(testMenu, "MAGGI", "")
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	for _, item := range got {
		if item.Category != "MAGGI" {
			t.Errorf("wrong category in result: %+v", item)
		}
	}
}

func TestFilter_AllCategoryDisablesFiltering(t *testing.T) {
	if got := Filter(testMenu, AllCategories, ""); len(got) != len(testMenu) {
		t.Errorf("got %d items, want %d", len(got), len(testMenu))
	}
	if got := Filter(testMenu, "", ""); len(got) != len(testMenu) {
		t.Errorf("empty category: got %d items, want %d", len(got), len(testMenu))
	}
}

func TestFilter_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := Filter(testMenu, "", "maggi")
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}

	got = Filter(testMenu, "MAGGI", "chicken")
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("combined filter: got %+v", got)
	}
}

func TestFilter_NoMatchReturnsEmptyNotNil(t *testing.T) {
	got := Filter(testMenu, "DESSERTS", "")
	if got == nil {
		t.Fatalf("want empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("got %d items, want 0", len(got))
	}
}

func TestGet(t *testing.T) {
	if item, ok := Get(testMenu, "2"); !ok || item.Name != "Arancini balls" {
		t.Errorf("Get(2): got %+v ok=%v", item, ok)
	}
	if _, ok := Get(testMenu, "404"); ok {
		t.Errorf("Get(404): expected not found")
	}
}

func TestCategories_AllFirstThenDiscoveryOrder(t *testing.T) {
	got := Categories(testMenu)
	want := []string{"All", "San", "STARTERS", "MAGGI"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
