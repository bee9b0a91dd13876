package service

import "errors"

// Validation errors: the action is rejected before anything is persisted,
// so the caller's draft is untouched and can be corrected and retried.
var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNoTable        = errors.New("no table selected")
	ErrInvalidPayment = errors.New("invalid payment method")
	ErrSplitShort     = errors.New("split amounts do not cover total")
	ErrUnsavedCart    = errors.New("cart has unsaved changes")
)

// IsValidation reports whether err is one of the pre-persistence
// validation failures, as opposed to a store or not-found error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrNoTable) ||
		errors.Is(err, ErrInvalidPayment) ||
		errors.Is(err, ErrSplitShort) ||
		errors.Is(err, ErrUnsavedCart)
}
