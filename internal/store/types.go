package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a catalog entry. Immutable once referenced by an order line:
// the price is copied into the OrderItem at add time, never re-read live.
type MenuItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	FoodType string          `json:"foodType"`
}

// Table is a physical table on the floor plan. A vacant table carries no
// session metadata; an occupied or billed table references its in-flight
// order and the session clock anchor.
type Table struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Section        string          `json:"section"`
	Status         string          `json:"status"`
	CurrentOrderID string          `json:"currentOrderId,omitempty"`
	OrderValue     decimal.Decimal `json:"orderValue"`
	SessionStart   time.Time       `json:"sessionStartTime,omitzero"`
}

// TablePatch is a partial table update. Nil fields are left untouched;
// the store merges blindly and performs no validation (the lifecycle
// state machine owns the invariants).
type TablePatch struct {
	Name           *string
	Section        *string
	Status         *string
	CurrentOrderID *string
	OrderValue     *decimal.Decimal
	SessionStart   *time.Time
}

// Apply merges the patch into t.
func (p TablePatch) Apply(t *Table) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Section != nil {
		t.Section = *p.Section
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CurrentOrderID != nil {
		t.CurrentOrderID = *p.CurrentOrderID
	}
	if p.OrderValue != nil {
		t.OrderValue = *p.OrderValue
	}
	if p.SessionStart != nil {
		t.SessionStart = *p.SessionStart
	}
}

// OrderItem is one cart line. Kind distinguishes regular menu lines from
// the single synthetic time-based service-charge line.
type OrderItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
	Kind  string          `json:"kind,omitempty"`
}

// Order is a punched, billed or paid order. One order id spans a whole
// table session: repeated punches overwrite the same record, and the
// record becomes an immutable historical fact once status is paid.
type Order struct {
	ID            string          `json:"id"`
	TableID       string          `json:"tableId"`
	TableName     string          `json:"tableName"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
	CashAmount    decimal.Decimal `json:"cashAmount"`
	UPIAmount     decimal.Decimal `json:"upiAmount"`
}

// AppSettings holds display and print formatting preferences. The core
// reads these for invoice rendering only and never mutates them itself.
type AppSettings struct {
	Theme             string  `json:"theme"`
	LogoURL           string  `json:"logoUrl,omitempty"`
	ShowLogoOnBill    bool    `json:"showLogoOnBill"`
	ShowAddressOnBill bool    `json:"showAddressOnBill"`
	InvoiceHeader     string  `json:"invoiceHeader"`
	InvoiceFooter     string  `json:"invoiceFooter"`
	GSTEnabled        bool    `json:"gstEnabled"`
	GSTPercentage     float64 `json:"gstPercentage"`
}

// BusinessProfile identifies the restaurant on printed bills.
type BusinessProfile struct {
	OwnerName   string `json:"ownerName"`
	OwnerNumber string `json:"ownerNumber"`
	FSSAI       string `json:"fssai"`
	Address     string `json:"address"`
}
