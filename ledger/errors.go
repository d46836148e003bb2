/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All recoverable failure kinds in one place. Engines validate preconditions,
  run their writes inside one atomic unit, and surface exactly these kinds to
  the caller. None of them is process-fatal; retry is a caller decision.

ERROR CATEGORIES:
  1. Stock errors - a debit would drive a (product, warehouse) balance negative
  2. Shift errors - cash-shift state machine violations
  3. Payment errors - over-paying an invoice
  4. Identity errors - barcode/SKU uniqueness violations
  5. Validation errors - malformed input caught before any ledger write

USAGE:
  if errors.Is(err, ledger.ErrInsufficientStock) { ... }

  var stockErr *ledger.InsufficientStockError
  if errors.As(err, &stockErr) {
      // stockErr.Available, stockErr.Requested carry message context
  }
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientStock is returned when a debit would leave a
	// (product, warehouse) balance negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidTransfer is returned when transfer source and destination match.
	ErrInvalidTransfer = errors.New("invalid transfer: source equals destination")

	// ErrShiftAlreadyOpen is returned when opening a shift while one is open.
	ErrShiftAlreadyOpen = errors.New("a cash shift is already open")

	// ErrNoOpenShift is returned when closing with no open shift.
	ErrNoOpenShift = errors.New("no cash shift is open")

	// ErrOverPayment is returned when a payment would exceed the invoice balance.
	ErrOverPayment = errors.New("payment exceeds invoice balance")

	// ErrDuplicateIdentity is returned when a barcode/SKU uniqueness
	// constraint is violated on insert.
	ErrDuplicateIdentity = errors.New("duplicate barcode or sku")

	// ErrValidation is returned for malformed or missing required input,
	// always before any ledger write.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry enough context to render an actionable message
// =============================================================================

// InsufficientStockError details a rejected stock debit.
type InsufficientStockError struct {
	ProductID   ProductID
	WarehouseID WarehouseID
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d in warehouse %d: available %s, requested %s",
		e.ProductID, e.WarehouseID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// OverPaymentError details a rejected invoice payment.
type OverPaymentError struct {
	PayableID PayableID
	Balance   decimal.Decimal
	Attempted decimal.Decimal
}

func (e *OverPaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds balance %s on payable %d",
		e.Attempted, e.Balance, e.PayableID)
}

func (e *OverPaymentError) Unwrap() error { return ErrOverPayment }

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalidf builds a ValidationError in one call.
func Invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the failure is caused by the caller's input
// or a business-rule rejection, as opposed to a store fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidTransfer) ||
		errors.Is(err, ErrShiftAlreadyOpen) ||
		errors.Is(err, ErrNoOpenShift) ||
		errors.Is(err, ErrOverPayment) ||
		errors.Is(err, ErrDuplicateIdentity) ||
		errors.Is(err, ErrValidation)
}

// IsConflict reports state-machine and uniqueness rejections (HTTP 409).
func IsConflict(err error) bool {
	return errors.Is(err, ErrShiftAlreadyOpen) ||
		errors.Is(err, ErrNoOpenShift) ||
		errors.Is(err, ErrDuplicateIdentity)
}

// IsNotFound reports a missing-entity failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
