package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrValidation          = errors.New("validation")
	ErrNotFound            = errors.New("not found")
	ErrNotInCart           = fmt.Errorf("%w: product not in cart", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("%w: user", ErrNotFound)
	ErrConflict            = errors.New("conflict")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrInvalidToken        = fmt.Errorf("%w: invalid or expired token", ErrValidation)
)

// InsufficientStockError carries the stock that was available when a
// reservation was rejected.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// AvailableStock extracts the available quantity from err.
func AvailableStock(err error) (int, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise.Available, true
	}
	return 0, false
}

// PaymentNotConfirmedError reports the gateway status of a session that
// has not been paid.
type PaymentNotConfirmedError struct {
	SessionID string
	Status    string
}

func (e *PaymentNotConfirmedError) Error() string {
	return fmt.Sprintf("payment not confirmed: session %s is %q", e.SessionID, e.Status)
}

func (e *PaymentNotConfirmedError) Is(target error) bool {
	return target == ErrPaymentNotConfirmed
}

// PaymentStatus extracts the gateway payment status from err.
func PaymentStatus(err error) (string, bool) {
	var pe *PaymentNotConfirmedError
	if errors.As(err, &pe) {
		return pe.Status, true
	}
	return "", false
}
