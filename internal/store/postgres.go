package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// loadTimeout bounds the snapshot reads a subscription performs.
const loadTimeout = 5 * time.Second

// Postgres is the Store backed by a Postgres database, for deployments
// where several terminals share one state. Change notification is
// in-process: after every successful write the affected entity set is
// re-read and pushed to subscribers, matching the single-writer
// assumption of the core (last write wins across terminals).
type Postgres struct {
	pool *pgxpool.Pool

	// pubMu serializes the subscription handshake against the re-read
	// that follows every write: a commit lands either in the handshake
	// snapshot or in a later delivery, never between the two.
	pubMu sync.Mutex

	menuFeed     feed[[]MenuItem]
	tableFeed    feed[[]Table]
	orderFeed    feed[[]Order]
	settingsFeed feed[AppSettings]
	profileFeed  feed[BusinessProfile]
}

const schema = `
CREATE TABLE IF NOT EXISTS menu_items (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT NOT NULL,
	price      NUMERIC(12,2) NOT NULL,
	food_type  TEXT NOT NULL,
	position   SERIAL
);
CREATE TABLE IF NOT EXISTS floor_tables (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	section          TEXT NOT NULL,
	status           TEXT NOT NULL,
	current_order_id TEXT NOT NULL DEFAULT '',
	order_value      NUMERIC(12,2) NOT NULL DEFAULT 0,
	session_start    TIMESTAMPTZ,
	position         SERIAL
);
CREATE TABLE IF NOT EXISTS orders (
	id             TEXT PRIMARY KEY,
	table_id       TEXT NOT NULL,
	table_name     TEXT NOT NULL,
	items          JSONB NOT NULL,
	subtotal       NUMERIC(12,2) NOT NULL,
	tax            NUMERIC(12,2) NOT NULL,
	discount       NUMERIC(12,2) NOT NULL,
	total          NUMERIC(12,2) NOT NULL,
	status         TEXT NOT NULL,
	payment_method TEXT NOT NULL,
	cash_amount    NUMERIC(12,2) NOT NULL DEFAULT 0,
	upi_amount     NUMERIC(12,2) NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS app_state (
	key  TEXT PRIMARY KEY,
	data JSONB NOT NULL
);
`

// NewPostgres connects to databaseURL and ensures the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() { p.pool.Close() }

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

// --- Subscriptions ---

func (p *Postgres) SubscribeMenu(fn func([]MenuItem)) func() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	items, err := p.loadMenu(ctx)
	if err != nil {
		log.Printf("ERROR: load menu snapshot: %v", err)
	}
	return p.menuFeed.subscribe(fn, items)
}

func (p *Postgres) SubscribeTables(fn func([]Table)) func() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	tables, err := p.loadTables(ctx)
	if err != nil {
		log.Printf("ERROR: load tables snapshot: %v", err)
	}
	return p.tableFeed.subscribe(fn, tables)
}

func (p *Postgres) SubscribeOrders(fn func([]Order)) func() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	orders, err := p.loadOrders(ctx)
	if err != nil {
		log.Printf("ERROR: load orders snapshot: %v", err)
	}
	return p.orderFeed.subscribe(fn, orders)
}

func (p *Postgres) SubscribeSettings(fn func(AppSettings)) func() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	s, err := p.Settings(ctx)
	if err != nil {
		log.Printf("ERROR: load settings snapshot: %v", err)
	}
	return p.settingsFeed.subscribe(fn, s)
}

func (p *Postgres) SubscribeProfile(fn func(BusinessProfile)) func() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	bp, err := p.Profile(ctx)
	if err != nil {
		log.Printf("ERROR: load profile snapshot: %v", err)
	}
	return p.profileFeed.subscribe(fn, bp)
}

// --- Menu ---

func (p *Postgres) PutMenuItems(ctx context.Context, items ...MenuItem) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO menu_items (id, name, category, price, food_type)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET name = $2, category = $3, price = $4, food_type = $5`,
			item.ID, item.Name, item.Category, decimalToNumeric(item.Price), item.FoodType)
		if err != nil {
			return fmt.Errorf("upsert menu item %s: %w", item.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	p.publishMenu(ctx)
	return nil
}

func (p *Postgres) DeleteMenuItem(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.publishMenu(ctx)
	return nil
}

func (p *Postgres) loadMenu(ctx context.Context) ([]MenuItem, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, category, price, food_type
		FROM menu_items ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		var item MenuItem
		var price pgtype.Numeric
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &price, &item.FoodType); err != nil {
			return nil, err
		}
		item.Price = numericToDecimal(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (p *Postgres) publishMenu(ctx context.Context) {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	items, err := p.loadMenu(ctx)
	if err != nil {
		log.Printf("ERROR: reload menu after write: %v", err)
		return
	}
	p.menuFeed.publish(items)
}

// --- Tables ---

func (p *Postgres) PutTables(ctx context.Context, tables ...Table) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, t := range tables {
		if err := upsertTable(ctx, tx, t); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	p.publishTables(ctx)
	return nil
}

func (p *Postgres) DeleteTable(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM floor_tables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.publishTables(ctx)
	return nil
}

func (p *Postgres) UpdateTable(ctx context.Context, id string, patch TablePatch) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := patchTable(ctx, tx, id, patch); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	p.publishTables(ctx)
	return nil
}

// patchTable merges patch into the stored row under a row lock.
func patchTable(ctx context.Context, tx pgx.Tx, id string, patch TablePatch) error {
	t, err := scanTable(tx.QueryRow(ctx, `
		SELECT id, name, section, status, current_order_id, order_value, session_start
		FROM floor_tables WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load table %s: %w", id, err)
	}
	patch.Apply(&t)
	return upsertTable(ctx, tx, t)
}

func upsertTable(ctx context.Context, tx pgx.Tx, t Table) error {
	var sessionStart *time.Time
	if !t.SessionStart.IsZero() {
		sessionStart = &t.SessionStart
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO floor_tables (id, name, section, status, current_order_id, order_value, session_start)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, section = $3, status = $4,
		    current_order_id = $5, order_value = $6, session_start = $7`,
		t.ID, t.Name, t.Section, t.Status, t.CurrentOrderID,
		decimalToNumeric(t.OrderValue), sessionStart)
	if err != nil {
		return fmt.Errorf("upsert table %s: %w", t.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTable(row rowScanner) (Table, error) {
	var t Table
	var orderValue pgtype.Numeric
	var sessionStart *time.Time
	err := row.Scan(&t.ID, &t.Name, &t.Section, &t.Status, &t.CurrentOrderID, &orderValue, &sessionStart)
	if err != nil {
		return Table{}, err
	}
	t.OrderValue = numericToDecimal(orderValue)
	if sessionStart != nil {
		t.SessionStart = *sessionStart
	}
	return t, nil
}

func (p *Postgres) loadTables(ctx context.Context) ([]Table, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, section, status, current_order_id, order_value, session_start
		FROM floor_tables ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (p *Postgres) publishTables(ctx context.Context) {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	tables, err := p.loadTables(ctx)
	if err != nil {
		log.Printf("ERROR: reload tables after write: %v", err)
		return
	}
	p.tableFeed.publish(tables)
}

// --- Orders ---

func (p *Postgres) SaveOrder(ctx context.Context, o Order) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := upsertOrderRow(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	p.publishOrders(ctx)
	return nil
}

// SaveOrderAndTable writes the order and the table patch in a single
// transaction: both land or neither does.
func (p *Postgres) SaveOrderAndTable(ctx context.Context, o Order, tableID string, patch TablePatch) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := upsertOrderRow(ctx, tx, o); err != nil {
		return err
	}
	if err := patchTable(ctx, tx, tableID, patch); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	p.publishOrders(ctx)
	p.publishTables(ctx)
	return nil
}

func upsertOrderRow(ctx context.Context, tx pgx.Tx, o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, table_id, table_name, items, subtotal, tax, discount,
		                    total, status, payment_method, cash_amount, upi_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE
		SET table_id = $2, table_name = $3, items = $4, subtotal = $5, tax = $6,
		    discount = $7, total = $8, status = $9, payment_method = $10,
		    cash_amount = $11, upi_amount = $12, created_at = $13`,
		o.ID, o.TableID, o.TableName, items,
		decimalToNumeric(o.Subtotal), decimalToNumeric(o.Tax),
		decimalToNumeric(o.Discount), decimalToNumeric(o.Total),
		o.Status, o.PaymentMethod,
		decimalToNumeric(o.CashAmount), decimalToNumeric(o.UPIAmount),
		o.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", o.ID, err)
	}
	return nil
}

func (p *Postgres) loadOrders(ctx context.Context) ([]Order, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, table_id, table_name, items, subtotal, tax, discount,
		       total, status, payment_method, cash_amount, upi_amount, created_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		var items []byte
		var subtotal, tax, discount, total, cash, upi pgtype.Numeric
		err := rows.Scan(&o.ID, &o.TableID, &o.TableName, &items, &subtotal, &tax,
			&discount, &total, &o.Status, &o.PaymentMethod, &cash, &upi, &o.CreatedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items of order %s: %w", o.ID, err)
		}
		o.Subtotal = numericToDecimal(subtotal)
		o.Tax = numericToDecimal(tax)
		o.Discount = numericToDecimal(discount)
		o.Total = numericToDecimal(total)
		o.CashAmount = numericToDecimal(cash)
		o.UPIAmount = numericToDecimal(upi)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (p *Postgres) publishOrders(ctx context.Context) {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	orders, err := p.loadOrders(ctx)
	if err != nil {
		log.Printf("ERROR: reload orders after write: %v", err)
		return
	}
	p.orderFeed.publish(orders)
}

// --- Settings / profile ---

func (p *Postgres) Settings(ctx context.Context) (AppSettings, error) {
	var s AppSettings
	err := p.readState(ctx, "settings", &s)
	return s, err
}

func (p *Postgres) PutSettings(ctx context.Context, s AppSettings) error {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	if err := p.writeState(ctx, "settings", s); err != nil {
		return err
	}
	p.settingsFeed.publish(s)
	return nil
}

func (p *Postgres) Profile(ctx context.Context) (BusinessProfile, error) {
	var bp BusinessProfile
	err := p.readState(ctx, "profile", &bp)
	return bp, err
}

func (p *Postgres) PutProfile(ctx context.Context, bp BusinessProfile) error {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	if err := p.writeState(ctx, "profile", bp); err != nil {
		return err
	}
	p.profileFeed.publish(bp)
	return nil
}

// readState loads one app_state document; a missing row leaves v at its
// zero value, mirroring the file store's defaults behavior.
func (p *Postgres) readState(ctx context.Context, key string, v any) error {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM app_state WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	return json.Unmarshal(data, v)
}

func (p *Postgres) writeState(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO app_state (key, data) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET data = $2`, key, data)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// --- Numeric helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

var _ Store = (*Postgres)(nil)
