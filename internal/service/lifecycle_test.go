package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/enum"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/idgen"
	"github.com/rockbottomcafe/RBPOS-APP-NEW/internal/store"
)

var testClock = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }

// testSetup seeds a fresh in-process store with one vacant table and
// returns a lifecycle with deterministic ids and a fixed clock.
func testSetup(t *testing.T) (*store.Memory, *Lifecycle) {
	t.Helper()
	st := store.NewMemory()
	err := st.PutTables(context.Background(), store.Table{
		ID: "t1", Name: "T1", Section: "Main Floor", Status: enum.TableStatusVacant,
	})
	if err != nil {
		t.Fatalf("seed table: %v", err)
	}
	return st, NewLifecycle(st, &idgen.Sequential{}, fixedNow)
}

func storedTable(t *testing.T, st store.Store, id string) store.Table {
	t.Helper()
	var tables []store.Table
	cancel := st.SubscribeTables(func(snapshot []store.Table) { tables = snapshot })
	cancel()
	for _, tab := range tables {
		if tab.ID == id {
			return tab
		}
	}
	t.Fatalf("table %s not in store", id)
	return store.Table{}
}

func storedOrders(t *testing.T, st store.Store) []store.Order {
	t.Helper()
	var orders []store.Order
	cancel := st.SubscribeOrders(func(snapshot []store.Order) { orders = snapshot })
	cancel()
	return orders
}

// --- Punch ---

func TestPunch_EmptyCartRejected(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)

	_, err := lc.Punch(context.Background(), c)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err: got %v, want ErrEmptyCart", err)
	}
	if len(storedOrders(t, st)) != 0 {
		t.Errorf("nothing should have been persisted")
	}
}

func TestPunch_NoTableRejected(t *testing.T) {
	_, lc := testSetup(t)

	_, err := lc.Punch(context.Background(), &Cart{})
	if !errors.Is(err, ErrNoTable) {
		t.Fatalf("err: got %v, want ErrNoTable", err)
	}
}

func TestPunch_OccupiesTableAndAnchorsSession(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))
	c.Add(menuItem("1", "Veggie Wrap", 149))

	order, err := lc.Punch(context.Background(), c)
	if err != nil {
		t.Fatalf("punch: %v", err)
	}
	if order.Status != enum.OrderStatusPending {
		t.Errorf("status: got %q, want pending", order.Status)
	}
	if order.PaymentMethod != enum.PaymentMethodNone {
		t.Errorf("paymentMethod: got %q, want -", order.PaymentMethod)
	}
	if !order.Total.Equal(decimal.NewFromInt(298)) {
		t.Errorf("total: got %s, want 298", order.Total)
	}

	tab := storedTable(t, st, "t1")
	if tab.Status != enum.TableStatusOccupied {
		t.Errorf("table status: got %q, want occupied", tab.Status)
	}
	if tab.CurrentOrderID != order.ID {
		t.Errorf("currentOrderId: got %q, want %q", tab.CurrentOrderID, order.ID)
	}
	if !tab.SessionStart.Equal(testClock) {
		t.Errorf("sessionStart: got %v, want %v", tab.SessionStart, testClock)
	}
	if !tab.OrderValue.Equal(order.Total) {
		t.Errorf("orderValue: got %s, want %s", tab.OrderValue, order.Total)
	}
	if c.Dirty() {
		t.Errorf("cart should be clean after a successful punch")
	}
}

func TestPunch_ReusesOrderIDAcrossPunches(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))

	first, err := lc.Punch(context.Background(), c)
	if err != nil {
		t.Fatalf("first punch: %v", err)
	}

	c.Add(menuItem("2", "Arancini balls", 249))
	second, err := lc.Punch(context.Background(), c)
	if err != nil {
		t.Fatalf("second punch: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("order id changed across punches: %q then %q", first.ID, second.ID)
	}
	orders := storedOrders(t, st)
	if len(orders) != 1 {
		t.Fatalf("orders in store: got %d, want 1 (overwrite, not duplicate)", len(orders))
	}
	if !orders[0].Total.Equal(decimal.NewFromInt(398)) {
		t.Errorf("stored total: got %s, want 398", orders[0].Total)
	}
}

func TestPunch_PreservesSessionStartAcrossPunches(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))
	if _, err := lc.Punch(context.Background(), c); err != nil {
		t.Fatalf("first punch: %v", err)
	}

	// Second punch twenty minutes later must not re-anchor the session.
	later := testClock.Add(20 * time.Minute)
	lc.now = func() time.Time { return later }
	c.Add(menuItem("2", "Arancini balls", 249))
	if _, err := lc.Punch(context.Background(), c); err != nil {
		t.Fatalf("second punch: %v", err)
	}

	tab := storedTable(t, st, "t1")
	if !tab.SessionStart.Equal(testClock) {
		t.Errorf("sessionStart: got %v, want original anchor %v", tab.SessionStart, testClock)
	}
}

// --- Bill ---

func TestBill_MarksTableBilled(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))
	if _, err := lc.Punch(context.Background(), c); err != nil {
		t.Fatalf("punch: %v", err)
	}

	order, err := lc.Bill(context.Background(), c)
	if err != nil {
		t.Fatalf("bill: %v", err)
	}
	if order.Status != enum.OrderStatusBilled {
		t.Errorf("order status: got %q, want billed", order.Status)
	}
	if got := storedTable(t, st, "t1").Status; got != enum.TableStatusBilled {
		t.Errorf("table status: got %q, want billed", got)
	}
}

func TestPunch_AfterBillReturnsTableToOccupied(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))
	if _, err := lc.Punch(context.Background(), c); err != nil {
		t.Fatalf("punch: %v", err)
	}
	if _, err := lc.Bill(context.Background(), c); err != nil {
		t.Fatalf("bill: %v", err)
	}

	// The guest ordered another round after the bill was printed.
	c.Add(menuItem("2", "Arancini balls", 249))
	order, err := lc.Punch(context.Background(), c)
	if err != nil {
		t.Fatalf("re-punch: %v", err)
	}
	if order.Status != enum.OrderStatusPending {
		t.Errorf("order status: got %q, want pending", order.Status)
	}
	if got := storedTable(t, st, "t1").Status; got != enum.TableStatusOccupied {
		t.Errorf("table status: got %q, want occupied", got)
	}
}

// --- Settle ---

func TestSettle_CashFillsCashAmountAndFreesTable(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))
	c.Add(menuItem("1", "Veggie Wrap", 149))
	if _, err := lc.Punch(context.Background(), c); err != nil {
		t.Fatalf("punch: %v", err)
	}

	order, err := lc.Settle(context.Background(), c, enum.PaymentMethodCash, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if order.Status != enum.OrderStatusPaid {
		t.Errorf("status: got %q, want paid", order.Status)
	}
	if !order.CashAmount.Equal(decimal.NewFromInt(298)) || !order.UPIAmount.IsZero() {
		t.Errorf("amounts: got cash=%s upi=%s, want cash=298 upi=0", order.CashAmount, order.UPIAmount)
	}

	tab := storedTable(t, st, "t1")
	if tab.Status != enum.TableStatusVacant {
		t.Errorf("table status: got %q, want vacant", tab.Status)
	}
	if tab.CurrentOrderID != "" || !tab.SessionStart.IsZero() || !tab.OrderValue.IsZero() {
		t.Errorf("session metadata not cleared: %+v", tab)
	}
	if !c.Empty() || c.OrderID() != "" {
		t.Errorf("cart should be reset after settling")
	}
}

func TestSettle_UPIFillsUPIAmount(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))
	if _, err := lc.Punch(context.Background(), c); err != nil {
		t.Fatalf("punch: %v", err)
	}

	order, err := lc.Settle(context.Background(), c, enum.PaymentMethodUPI, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !order.UPIAmount.Equal(decimal.NewFromInt(149)) || !order.CashAmount.IsZero() {
		t.Errorf("amounts: got cash=%s upi=%s, want cash=0 upi=149", order.CashAmount, order.UPIAmount)
	}
}

func TestSettle_SplitMustCoverTotal(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))
	c.Add(menuItem("1", "Veggie Wrap", 149))
	if _, err := lc.Punch(context.Background(), c); err != nil {
		t.Fatalf("punch: %v", err)
	}

	_, err := lc.Settle(context.Background(), c, enum.PaymentMethodSplit, decimal.NewFromInt(100), decimal.NewFromInt(100))
	if !errors.Is(err, ErrSplitShort) {
		t.Fatalf("err: got %v, want ErrSplitShort", err)
	}

	// Nothing moved: the order is still pending, the table still occupied.
	orders := storedOrders(t, st)
	if len(orders) != 1 || orders[0].Status != enum.OrderStatusPending {
		t.Errorf("order after failed split: %+v", orders)
	}
	if got := storedTable(t, st, "t1").Status; got != enum.TableStatusOccupied {
		t.Errorf("table status: got %q, want occupied", got)
	}
}

func TestSettle_SplitCoveringTotalSucceeds(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))
	c.Add(menuItem("1", "Veggie Wrap", 149))
	if _, err := lc.Punch(context.Background(), c); err != nil {
		t.Fatalf("punch: %v", err)
	}

	order, err := lc.Settle(context.Background(), c, enum.PaymentMethodSplit, decimal.NewFromInt(200), decimal.NewFromInt(98))
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !order.CashAmount.Equal(decimal.NewFromInt(200)) || !order.UPIAmount.Equal(decimal.NewFromInt(98)) {
		t.Errorf("amounts: got cash=%s upi=%s", order.CashAmount, order.UPIAmount)
	}
}

func TestSettle_CardLeavesSplitAmountsZero(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))
	if _, err := lc.Punch(context.Background(), c); err != nil {
		t.Fatalf("punch: %v", err)
	}

	order, err := lc.Settle(context.Background(), c, enum.PaymentMethodCard, decimal.NewFromInt(999), decimal.NewFromInt(999))
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !order.CashAmount.IsZero() || !order.UPIAmount.IsZero() {
		t.Errorf("card settle should zero the split amounts, got cash=%s upi=%s", order.CashAmount, order.UPIAmount)
	}
}

func TestSettle_RejectsUnknownAndNoneMethods(t *testing.T) {
	st, lc := testSetup(t)
	c := SelectTable(storedTable(t, st, "t1"), nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))

	for _, method := range []string{"Bitcoin", enum.PaymentMethodNone, ""} {
		_, err := lc.Settle(context.Background(), c, method, decimal.Zero, decimal.Zero)
		if !errors.Is(err, ErrInvalidPayment) {
			t.Errorf("method %q: got %v, want ErrInvalidPayment", method, err)
		}
	}
}

// --- Persistence failure ---

// failingStore delegates to Memory but refuses the combined write.
type failingStore struct {
	*store.Memory
	err error
}

func (f *failingStore) SaveOrderAndTable(context.Context, store.Order, string, store.TablePatch) error {
	return f.err
}

func TestPunch_StoreFailureLeavesDraftEditable(t *testing.T) {
	mem := store.NewMemory()
	if err := mem.PutTables(context.Background(), store.Table{ID: "t1", Name: "T1", Status: enum.TableStatusVacant}); err != nil {
		t.Fatalf("seed table: %v", err)
	}
	boom := errors.New("disk full")
	lc := NewLifecycle(&failingStore{Memory: mem, err: boom}, &idgen.Sequential{}, fixedNow)

	c := SelectTable(store.Table{ID: "t1", Name: "T1", Status: enum.TableStatusVacant}, nil)
	c.Add(menuItem("1", "Veggie Wrap", 149))

	_, err := lc.Punch(context.Background(), c)
	if !errors.Is(err, boom) {
		t.Fatalf("err: got %v, want wrapped store failure", err)
	}
	if IsValidation(err) {
		t.Errorf("store failure must not look like a validation error")
	}
	if c.Empty() || !c.Dirty() {
		t.Errorf("draft should survive a failed persist for retry")
	}
	if got := c.Table().Status; got != enum.TableStatusVacant {
		t.Errorf("cart table status mutated on failure: %q", got)
	}
}
