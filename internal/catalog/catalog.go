// Package catalog provides read-only lookups over the menu.
package catalog

import (
	"strings"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// AllCategories is the sentinel that disables category filtering.
const AllCategories = "All"

// Filter returns the menu items matching the category and search text.
// Category matching is exact (or the "All" sentinel); the search is a
// case-insensitive substring match on the item name. Returns an empty
// slice, never nil, so handlers encode [] rather than null.
func Filter(items []store.MenuItem, category, search string) []store.MenuItem {
	search = strings.ToLower(search)
	out := make([]store.MenuItem, 0, len(items))
	for _, item := range items {
		if category != "" && category != AllCategories && item.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Get returns the item with the given id.
func Get(items []store.MenuItem, id string) (store.MenuItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return store.MenuItem{}, false
}

// Categories returns "All" followed by the distinct categories in
// discovery order.
func Categories(items []store.MenuItem) []string {
	seen := make(map[string]bool)
	cats := []string{AllCategories}
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			cats = append(cats, item.Category)
		}
	}
	return cats
}
