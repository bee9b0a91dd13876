package enum

// ── Group A: State machines ──

const (
	TableStatusVacant   = "vacant"
	TableStatusOccupied = "occupied"
	TableStatusBilled   = "billed"
)

const (
	OrderStatusPending = "pending"
	OrderStatusBilled  = "billed"
	OrderStatusPaid    = "paid"
)

// ── Group B: Configurable labels ──

const (
	PaymentMethodUPI   = "UPI"
	PaymentMethodCash  = "Cash"
	PaymentMethodCard  = "Card"
	PaymentMethodSplit = "Split"
	PaymentMethodNone  = "-"
)

const (
	FoodTypeVeg    = "veg"
	FoodTypeNonVeg = "non-veg"
)

// ── Group C: Cart line kinds ──

const (
	LineKindRegular   = "regular"
	LineKindTimeBased = "time_based"
)

// MiscLineID is the reserved id of the single time-based service-charge
// line a cart may carry. Kept stable so historical orders remain readable.
const MiscLineID = "MISC_TIME_BASED"

// ValidTableStatus reports whether s is a known table status.
func ValidTableStatus(s string) bool {
	switch s {
	case TableStatusVacant, TableStatusOccupied, TableStatusBilled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether s is a known payment method.
func ValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodUPI, PaymentMethodCash, PaymentMethodCard,
		PaymentMethodSplit, PaymentMethodNone:
		return true
	}
	return false
}

// ValidFoodType reports whether s is a known food type.
func ValidFoodType(s string) bool {
	switch s {
	case FoodTypeVeg, FoodTypeNonVeg:
		return true
	}
	return false
}
