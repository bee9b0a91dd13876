// Package floor provides read-side helpers over the table registry:
// section grouping for the floor plan and session duration math.
package floor

import (
	"time"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// Section is one group of tables on the floor plan.
type Section struct {
	Name   string
	Tables []store.Table
}

// BySection groups tables by section, preserving the order sections are
// first seen in. Display grouping only, not an ordering guarantee.
func BySection(tables []store.Table) []Section {
	index := make(map[string]int)
	var sections []Section
	for _, t := range tables {
		i, ok := index[t.Section]
		if !ok {
			i = len(sections)
			index[t.Section] = i
			sections = append(sections, Section{Name: t.Section})
		}
		sections[i].Tables = append(sections[i].Tables, t)
	}
	return sections
}

// Get returns the table with the given id.
func Get(tables []store.Table, id string) (store.Table, bool) {
	for _, t := range tables {
		if t.ID == id {
			return t, true
		}
	}
	return store.Table{}, false
}

// DurationMinutes is the elapsed session time in whole minutes, floored
// at 1 so a freshly seated table never shows "0 min".
func DurationMinutes(start, now time.Time) int {
	mins := int(now.Sub(start) / time.Minute)
	if mins < 1 {
		return 1
	}
	return mins
}
