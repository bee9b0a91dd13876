package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
)

// Memory is the in-process Store. With a backing file the full state is
// serialized to JSON after every successful write, so a restart picks up
// where the last session left off. Without one it is purely ephemeral,
// which is what the tests use.
type Memory struct {
	mu       sync.Mutex
	menu     []MenuItem
	tables   []Table
	orders   []Order // newest first
	settings AppSettings
	profile  BusinessProfile

	path string // empty for ephemeral stores

	menuFeed     feed[[]MenuItem]
	tableFeed    feed[[]Table]
	orderFeed    feed[[]Order]
	settingsFeed feed[AppSettings]
	profileFeed  feed[BusinessProfile]
}

// memoryState is the on-disk shape of a file-backed Memory store.
type memoryState struct {
	Menu     []MenuItem      `json:"menu"`
	Tables   []Table         `json:"tables"`
	Orders   []Order         `json:"orders"`
	Settings AppSettings     `json:"settings"`
	Profile  BusinessProfile `json:"profile"`
}

// NewMemory creates an ephemeral in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

// OpenFile creates a store persisted to the JSON file at path, loading
// any existing state. A missing file is not an error; it is created on
// the first write.
func OpenFile(path string) (*Memory, error) {
	m := &Memory{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var st memoryState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}
	m.menu = st.Menu
	m.tables = st.Tables
	m.orders = st.Orders
	m.settings = st.Settings
	m.profile = st.Profile
	return m, nil
}

// persistLocked writes the current state to the backing file, if any.
// Called with mu held, before listeners are notified, so a failed write
// is reported without having published stale state.
func (m *Memory) persistLocked() error {
	if m.path == "" {
		return nil
	}
	st := memoryState{
		Menu:     m.menu,
		Tables:   m.tables,
		Orders:   m.orders,
		Settings: m.settings,
		Profile:  m.profile,
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// --- Subscriptions ---
//
// The snapshot is taken and the listener registered while mu is held, and
// writers publish before releasing mu, so every write lands either in the
// handshake snapshot or in a later delivery. Nothing can fall between.

func (m *Memory) SubscribeMenu(fn func([]MenuItem)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.menuFeed.subscribe(fn, slices.Clone(m.menu))
}

func (m *Memory) SubscribeTables(fn func([]Table)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tableFeed.subscribe(fn, slices.Clone(m.tables))
}

func (m *Memory) SubscribeOrders(fn func([]Order)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orderFeed.subscribe(fn, slices.Clone(m.orders))
}

func (m *Memory) SubscribeSettings(fn func(AppSettings)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settingsFeed.subscribe(fn, m.settings)
}

func (m *Memory) SubscribeProfile(fn func(BusinessProfile)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profileFeed.subscribe(fn, m.profile)
}

// --- Menu ---

func (m *Memory) PutMenuItems(_ context.Context, items ...MenuItem) error {
	m.mu.Lock()
	prev := m.menu
	m.menu = slices.Clone(m.menu)
	for _, item := range items {
		idx := slices.IndexFunc(m.menu, func(e MenuItem) bool { return e.ID == item.ID })
		if idx >= 0 {
			m.menu[idx] = item
		} else {
			m.menu = append(m.menu, item)
		}
	}
	if err := m.persistLocked(); err != nil {
		m.menu = prev
		m.mu.Unlock()
		return err
	}
	m.menuFeed.publish(slices.Clone(m.menu))
	m.mu.Unlock()
	return nil
}

func (m *Memory) DeleteMenuItem(_ context.Context, id string) error {
	m.mu.Lock()
	prev := m.menu
	m.menu = slices.DeleteFunc(slices.Clone(m.menu), func(e MenuItem) bool { return e.ID == id })
	if len(m.menu) == len(prev) {
		m.menu = prev
		m.mu.Unlock()
		return ErrNotFound
	}
	if err := m.persistLocked(); err != nil {
		m.menu = prev
		m.mu.Unlock()
		return err
	}
	m.menuFeed.publish(slices.Clone(m.menu))
	m.mu.Unlock()
	return nil
}

// --- Tables ---

func (m *Memory) PutTables(_ context.Context, tables ...Table) error {
	m.mu.Lock()
	prev := m.tables
	m.tables = slices.Clone(m.tables)
	for _, t := range tables {
		idx := slices.IndexFunc(m.tables, func(e Table) bool { return e.ID == t.ID })
		if idx >= 0 {
			m.tables[idx] = t
		} else {
			m.tables = append(m.tables, t)
		}
	}
	if err := m.persistLocked(); err != nil {
		m.tables = prev
		m.mu.Unlock()
		return err
	}
	m.tableFeed.publish(slices.Clone(m.tables))
	m.mu.Unlock()
	return nil
}

func (m *Memory) DeleteTable(_ context.Context, id string) error {
	m.mu.Lock()
	prev := m.tables
	m.tables = slices.DeleteFunc(slices.Clone(m.tables), func(e Table) bool { return e.ID == id })
	if len(m.tables) == len(prev) {
		m.tables = prev
		m.mu.Unlock()
		return ErrNotFound
	}
	if err := m.persistLocked(); err != nil {
		m.tables = prev
		m.mu.Unlock()
		return err
	}
	m.tableFeed.publish(slices.Clone(m.tables))
	m.mu.Unlock()
	return nil
}

func (m *Memory) UpdateTable(_ context.Context, id string, patch TablePatch) error {
	m.mu.Lock()
	idx := slices.IndexFunc(m.tables, func(e Table) bool { return e.ID == id })
	if idx < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	prev := m.tables
	m.tables = slices.Clone(m.tables)
	patch.Apply(&m.tables[idx])
	if err := m.persistLocked(); err != nil {
		m.tables = prev
		m.mu.Unlock()
		return err
	}
	m.tableFeed.publish(slices.Clone(m.tables))
	m.mu.Unlock()
	return nil
}

// --- Orders ---

func (m *Memory) SaveOrder(_ context.Context, o Order) error {
	m.mu.Lock()
	prev := m.orders
	m.orders = upsertOrder(slices.Clone(m.orders), o)
	if err := m.persistLocked(); err != nil {
		m.orders = prev
		m.mu.Unlock()
		return err
	}
	m.orderFeed.publish(slices.Clone(m.orders))
	m.mu.Unlock()
	return nil
}

func (m *Memory) SaveOrderAndTable(_ context.Context, o Order, tableID string, patch TablePatch) error {
	m.mu.Lock()
	tIdx := slices.IndexFunc(m.tables, func(e Table) bool { return e.ID == tableID })
	if tIdx < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	prevOrders, prevTables := m.orders, m.tables
	m.orders = upsertOrder(slices.Clone(m.orders), o)
	m.tables = slices.Clone(m.tables)
	patch.Apply(&m.tables[tIdx])
	if err := m.persistLocked(); err != nil {
		m.orders, m.tables = prevOrders, prevTables
		m.mu.Unlock()
		return err
	}
	m.orderFeed.publish(slices.Clone(m.orders))
	m.tableFeed.publish(slices.Clone(m.tables))
	m.mu.Unlock()
	return nil
}

// upsertOrder replaces the order with a matching id, or prepends so the
// log stays newest-first.
func upsertOrder(orders []Order, o Order) []Order {
	idx := slices.IndexFunc(orders, func(e Order) bool { return e.ID == o.ID })
	if idx >= 0 {
		orders[idx] = o
		return orders
	}
	return append([]Order{o}, orders...)
}

// --- Settings / profile ---

func (m *Memory) Settings(_ context.Context) (AppSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

func (m *Memory) PutSettings(_ context.Context, s AppSettings) error {
	m.mu.Lock()
	prev := m.settings
	m.settings = s
	if err := m.persistLocked(); err != nil {
		m.settings = prev
		m.mu.Unlock()
		return err
	}
	m.settingsFeed.publish(s)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Profile(_ context.Context) (BusinessProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile, nil
}

func (m *Memory) PutProfile(_ context.Context, p BusinessProfile) error {
	m.mu.Lock()
	prev := m.profile
	m.profile = p
	if err := m.persistLocked(); err != nil {
		m.profile = prev
		m.mu.Unlock()
		return err
	}
	m.profileFeed.publish(p)
	m.mu.Unlock()
	return nil
}

// Ping always succeeds for the in-process store.
func (m *Memory) Ping(_ context.Context) error { return nil }

var _ Store = (*Memory)(nil)
