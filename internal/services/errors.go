package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Checkout and coupon failures reported back to the customer.
var (
	ErrCouponNotFound       = errors.New("coupon not found")
	ErrCouponExpired        = errors.New("coupon has expired")
	ErrCouponExhausted      = errors.New("coupon usage limit has been reached")
	ErrCouponMinSpendNotMet = errors.New("order subtotal does not reach the coupon minimum spend")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrProductNotFound      = errors.New("product not found")
	ErrVariantNotFound      = errors.New("variant not found")
)

// ValidationError reports a malformed checkout or coupon payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError names the variant that could not cover the requested quantity.
type InsufficientStockError struct {
	VariantID uuid.UUID
	Label     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.VariantID.String()
	if e.Label != "" {
		name = fmt.Sprintf("%s (%s)", e.Label, name)
	}
	return fmt.Sprintf("insufficient stock for variant %s: requested %d, available %d", name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// PersistenceError wraps an unexpected database failure during checkout.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist order: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err should be shown to the customer as a 400.
func IsUserError(err error) bool {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return true
	}
	for _, target := range []error{
		ErrCouponNotFound,
		ErrCouponExpired,
		ErrCouponExhausted,
		ErrCouponMinSpendNotMet,
		ErrInsufficientStock,
		ErrProductNotFound,
		ErrVariantNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
