package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/enum"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/floor"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// DefaultMiscRate is the time-based service charge per minute of seating.
var DefaultMiscRate = decimal.NewFromFloat(2.5)

// Totals is the computed money summary of a cart.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Cart is the in-progress order draft for one selected table. It lives
// entirely in memory; only Punch/Bill/Settle on the Lifecycle persist it.
// Dirty tracks edits since the last persisted punch so the caller can
// guard against silently discarding work.
type Cart struct {
	table    store.Table
	orderID  string // in-flight order id, empty until first punch
	lines    []store.OrderItem
	discount decimal.Decimal
	dirty    bool
}

// SelectTable opens the cart for a table. A non-vacant table's in-flight
// order is loaded into the draft: looked up by currentOrderId, falling
// back to a scan for a pending or billed order on that table (covers
// tables written before currentOrderId existed).
func SelectTable(t store.Table, orders []store.Order) *Cart {
	c := &Cart{table: t}
	if t.Status == enum.TableStatusVacant {
		return c
	}
	o, ok := inFlightOrder(t, orders)
	if !ok {
		return c
	}
	c.orderID = o.ID
	c.lines = slices.Clone(o.Items)
	c.discount = o.Discount
	return c
}

func inFlightOrder(t store.Table, orders []store.Order) (store.Order, bool) {
	if t.CurrentOrderID != "" {
		for _, o := range orders {
			if o.ID == t.CurrentOrderID {
				return o, true
			}
		}
	}
	for _, o := range orders {
		if o.TableID == t.ID && (o.Status == enum.OrderStatusPending || o.Status == enum.OrderStatusBilled) {
			return o, true
		}
	}
	return store.Order{}, false
}

// Table returns the table this cart is bound to.
func (c *Cart) Table() store.Table { return c.table }

// OrderID returns the in-flight order id, or "" before the first punch.
func (c *Cart) OrderID() string { return c.orderID }

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []store.OrderItem { return slices.Clone(c.lines) }

// Discount returns the current flat discount.
func (c *Cart) Discount() decimal.Decimal { return c.discount }

// Dirty reports whether the draft changed since the last persisted punch.
func (c *Cart) Dirty() bool { return c.dirty }

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Add puts one unit of a menu item in the cart: an existing line's
// quantity is incremented, otherwise a new qty=1 line is appended with
// the price copied from the menu item.
func (c *Cart) Add(item store.MenuItem) {
	c.dirty = true
	for i := range c.lines {
		if c.lines[i].ID == item.ID {
			c.lines[i].Qty++
			return
		}
	}
	c.lines = append(c.lines, store.OrderItem{
		ID:    item.ID,
		Name:  item.Name,
		Price: item.Price,
		Qty:   1,
		Kind:  enum.LineKindRegular,
	})
}

// SetQuantity sets a line's quantity, clamped at zero; zero removes the
// line. Unknown ids are ignored.
func (c *Cart) SetQuantity(itemID string, qty int) {
	c.dirty = true
	if qty < 0 {
		qty = 0
	}
	for i := range c.lines {
		if c.lines[i].ID != itemID {
			continue
		}
		if qty == 0 {
			c.lines = slices.Delete(c.lines, i, i+1)
		} else {
			c.lines[i].Qty = qty
		}
		return
	}
}

// SetDiscount sets the flat discount, clamped at zero.
func (c *Cart) SetDiscount(d decimal.Decimal) {
	c.dirty = true
	if d.IsNegative() {
		d = decimal.Zero
	}
	c.discount = d
}

// ApplyMiscCharge upserts the single time-based service-charge line,
// priced at the session duration times rate. Re-applying recomputes the
// price in place rather than accumulating a second line.
func (c *Cart) ApplyMiscCharge(rate decimal.Decimal, now time.Time) {
	c.dirty = true
	start := c.table.SessionStart
	if start.IsZero() {
		start = now
	}
	mins := floor.DurationMinutes(start, now)
	price := rate.Mul(decimal.NewFromInt(int64(mins)))
	name := fmt.Sprintf("MISC / Seating Charge (%d min)", mins)

	for i := range c.lines {
		if c.lines[i].Kind == enum.LineKindTimeBased {
			c.lines[i].Name = name
			c.lines[i].Price = price
			c.lines[i].Qty = 1
			return
		}
	}
	c.lines = append(c.lines, store.OrderItem{
		ID:    enum.MiscLineID,
		Name:  name,
		Price: price,
		Qty:   1,
		Kind:  enum.LineKindTimeBased,
	})
}

// ReplaceLines swaps the whole draft, used when the cart is edited
// client-side and submitted in one piece. Lines with a non-positive
// quantity are dropped, and at most one time-based line is kept (the
// last one in the payload, the same invariant ApplyMiscCharge holds).
func (c *Cart) ReplaceLines(lines []store.OrderItem, discount decimal.Decimal) {
	c.dirty = true
	c.lines = c.lines[:0]
	timeBasedIdx := -1
	for _, l := range lines {
		if l.Qty <= 0 {
			continue
		}
		if l.Kind == "" {
			if l.ID == enum.MiscLineID {
				l.Kind = enum.LineKindTimeBased
			} else {
				l.Kind = enum.LineKindRegular
			}
		}
		if l.Kind == enum.LineKindTimeBased {
			if timeBasedIdx >= 0 {
				c.lines[timeBasedIdx] = l
				continue
			}
			timeBasedIdx = len(c.lines)
		}
		c.lines = append(c.lines, l)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	c.discount = discount
}

// Clear empties the draft. The caller is responsible for the explicit
// confirmation step; nothing is persisted here.
func (c *Cart) Clear() {
	c.lines = nil
	c.dirty = true
}

// Totals computes subtotal = sum of price*qty and total = subtotal minus
// discount. The total is not floored at zero: a discount larger than the
// subtotal yields a negative total, which reports surface as-is.
func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	for _, l := range c.lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return Totals{
		Subtotal: subtotal,
		Discount: c.discount,
		Total:    subtotal.Sub(c.discount),
	}
}

// NeedsConfirm reports whether abandoning this cart would discard
// unsaved work: a dirty, non-empty draft. Empty or clean carts may be
// discarded silently.
func (c *Cart) NeedsConfirm() bool {
	return c.dirty && len(c.lines) > 0
}

// markSaved records a successful persist of the draft under orderID.
func (c *Cart) markSaved(orderID string) {
	c.orderID = orderID
	c.dirty = false
}
