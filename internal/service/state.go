package service

import (
	"slices"
	"sync"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// State is a live in-memory mirror of the store, fed by its
// subscriptions. The initial subscription handshake populates every
// entity synchronously, so a freshly constructed State is immediately
// readable. Readers get copies; the mirror itself never writes back.
type State struct {
	mu       sync.RWMutex
	menu     []store.MenuItem
	tables   []store.Table
	orders   []store.Order
	settings store.AppSettings
	profile  store.BusinessProfile

	cancels []func()
}

// WatchStore subscribes to every entity feed of st and returns the
// mirror. Close releases the subscriptions.
func WatchStore(st store.Store) *State {
	s := &State{}
	s.cancels = []func(){
		st.SubscribeMenu(func(items []store.MenuItem) {
			s.mu.Lock()
			s.menu = items
			s.mu.Unlock()
		}),
		st.SubscribeTables(func(tables []store.Table) {
			s.mu.Lock()
			s.tables = tables
			s.mu.Unlock()
		}),
		st.SubscribeOrders(func(orders []store.Order) {
			s.mu.Lock()
			s.orders = orders
			s.mu.Unlock()
		}),
		st.SubscribeSettings(func(settings store.AppSettings) {
			s.mu.Lock()
			s.settings = settings
			s.mu.Unlock()
		}),
		st.SubscribeProfile(func(profile store.BusinessProfile) {
			s.mu.Lock()
			s.profile = profile
			s.mu.Unlock()
		}),
	}
	return s
}

// Close cancels the store subscriptions. The mirror stops updating but
// remains readable.
func (s *State) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

// Menu returns a copy of the current menu.
func (s *State) Menu() []store.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.menu)
}

// Tables returns a copy of the current floor plan.
func (s *State) Tables() []store.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tables)
}

// Orders returns a copy of the order log, newest first.
func (s *State) Orders() []store.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

// Settings returns the current app settings.
func (s *State) Settings() store.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Profile returns the current business profile.
func (s *State) Profile() store.BusinessProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Table looks up one table by id.
func (s *State) Table(id string) (store.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tables {
		if t.ID == id {
			return t, true
		}
	}
	return store.Table{}, false
}

// Order looks up one order by id.
func (s *State) Order(id string) (store.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return store.Order{}, false
}
