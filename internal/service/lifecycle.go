// Package service holds the POS core: the cart draft for a selected
// table, the lifecycle state machine that moves a table through
// vacant → occupied → billed → vacant, and a live mirror of the store.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/enum"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/idgen"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

// Lifecycle executes the punch / bill / settle transitions. Each
// transition persists the rebuilt order and the table update as one
// logical store operation; on failure nothing is committed and the
// in-memory cart draft stays editable for a retry.
type Lifecycle struct {
	store store.Store
	ids   idgen.Generator
	now   func() time.Time
}

// NewLifecycle creates a Lifecycle. now defaults to time.Now when nil.
func NewLifecycle(st store.Store, ids idgen.Generator, now func() time.Time) *Lifecycle {
	if now == nil {
		now = time.Now
	}
	return &Lifecycle{store: st, ids: ids, now: now}
}

// Punch commits the cart as the table's pending order without closing
// the session: the table becomes (or stays) occupied, the session clock
// is anchored if it was not already, and the order id is reused across
// repeated punches so they overwrite rather than duplicate. Punching a
// billed table's edited cart legally returns it to occupied.
func (l *Lifecycle) Punch(ctx context.Context, c *Cart) (store.Order, error) {
	return l.commit(ctx, c, enum.OrderStatusPending, enum.PaymentMethodNone, decimal.Zero, decimal.Zero)
}

// Bill marks the table's order as billed: the session stays open, the
// table shows as billed on the floor plan.
func (l *Lifecycle) Bill(ctx context.Context, c *Cart) (store.Order, error) {
	return l.commit(ctx, c, enum.OrderStatusBilled, enum.PaymentMethodNone, decimal.Zero, decimal.Zero)
}

// Settle finalizes payment: the order becomes an immutable paid record
// and the table reverts to vacant with its session metadata cleared.
// Split payments must cover the total or the whole operation fails with
// ErrSplitShort before anything is persisted.
func (l *Lifecycle) Settle(ctx context.Context, c *Cart, method string, cash, upi decimal.Decimal) (store.Order, error) {
	if !enum.ValidPaymentMethod(method) || method == enum.PaymentMethodNone {
		return store.Order{}, fmt.Errorf("%w: %q", ErrInvalidPayment, method)
	}

	total := c.Totals().Total
	switch method {
	case enum.PaymentMethodCash:
		cash, upi = total, decimal.Zero
	case enum.PaymentMethodUPI:
		cash, upi = decimal.Zero, total
	case enum.PaymentMethodCard:
		cash, upi = decimal.Zero, decimal.Zero
	case enum.PaymentMethodSplit:
		if cash.Add(upi).LessThan(total) {
			return store.Order{}, ErrSplitShort
		}
	}
	return l.commit(ctx, c, enum.OrderStatusPaid, method, cash, upi)
}

// commit builds the order record from the cart and writes it together
// with the matching table transition.
func (l *Lifecycle) commit(ctx context.Context, c *Cart, orderStatus, method string, cash, upi decimal.Decimal) (store.Order, error) {
	if c == nil || c.table.ID == "" {
		return store.Order{}, ErrNoTable
	}
	if c.Empty() {
		return store.Order{}, ErrEmptyCart
	}

	now := l.now()
	totals := c.Totals()

	orderID := c.orderID
	if orderID == "" {
		orderID = c.table.CurrentOrderID
	}
	if orderID == "" {
		orderID = l.ids.NewID()
	}

	sessionStart := c.table.SessionStart
	if sessionStart.IsZero() {
		sessionStart = now
	}

	order := store.Order{
		ID:            orderID,
		TableID:       c.table.ID,
		TableName:     c.table.Name,
		Items:         c.Lines(),
		Subtotal:      totals.Subtotal,
		Tax:           decimal.Zero,
		Discount:      totals.Discount,
		Total:         totals.Total,
		Status:        orderStatus,
		PaymentMethod: method,
		CreatedAt:     now,
		CashAmount:    cash,
		UPIAmount:     upi,
	}

	patch := tablePatchFor(orderStatus, orderID, totals.Total, sessionStart)
	if err := l.store.SaveOrderAndTable(ctx, order, c.table.ID, patch); err != nil {
		return store.Order{}, fmt.Errorf("persist order %s: %w", orderID, err)
	}

	// Keep the draft's view of the table in step with what was written,
	// so further edits against the same selection behave correctly.
	patch.Apply(&c.table)
	if orderStatus == enum.OrderStatusPaid {
		c.lines = nil
		c.discount = decimal.Zero
		c.markSaved("")
	} else {
		c.markSaved(orderID)
	}
	return order, nil
}

// tablePatchFor is the transition table: which table fields each order
// status writes.
func tablePatchFor(orderStatus, orderID string, total decimal.Decimal, sessionStart time.Time) store.TablePatch {
	var (
		status string
		start  = sessionStart
		oid    = orderID
		value  = total
	)
	switch orderStatus {
	case enum.OrderStatusPaid:
		status = enum.TableStatusVacant
		start = time.Time{}
		oid = ""
		value = decimal.Zero
	case enum.OrderStatusBilled:
		status = enum.TableStatusBilled
	default:
		status = enum.TableStatusOccupied
	}
	return store.TablePatch{
		Status:         &status,
		CurrentOrderID: &oid,
		OrderValue:     &value,
		SessionStart:   &start,
	}
}
