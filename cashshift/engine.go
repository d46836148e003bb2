/*
Package cashshift implements the cash drawer lifecycle and movement ledger.

STATE MACHINE (per shift):
  NONE -> OPEN -> CLOSED (terminal)

INVARIANT:
  At most one shift is OPEN system-wide. The open shift is a queryable store
  row (closed_at IS NULL), never package-level state; every engine reads it
  through the same accessor.

SHIFT TOTALS:
  ShiftTotal sums every cash movement ever recorded, not just the open
  shift's window. Once a shift closes its movements are indistinguishable
  from later ones. This mirrors the drawer's historical behavior; a
  time-window scope would be a product change, not a bug fix.
*/
package cashshift

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/desger/pos-engine/ledger"
)

// Engine drives the drawer lifecycle.
type Engine struct {
	store ledger.TxStore
}

func New(store ledger.TxStore) *Engine {
	return &Engine{store: store}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// OpenShift starts a new shift with the counted opening float. Fails with
// ShiftAlreadyOpen when one is open. The check and the insert share one
// atomic unit; the store's partial unique index backs the invariant.
func (e *Engine) OpenShift(ctx context.Context, openingAmount decimal.Decimal) (ledger.ShiftID, error) {
	if openingAmount.IsNegative() {
		return 0, ledger.Invalidf("opening_amount", "must not be negative")
	}

	var id ledger.ShiftID
	err := e.store.RunAtomic(ctx, func(st ledger.Store) error {
		open, err := st.OpenShift(ctx)
		if err != nil {
			return err
		}
		if open != nil {
			return ledger.ErrShiftAlreadyOpen
		}
		id, err = st.InsertShift(ctx, time.Now(), openingAmount)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CloseShift marks the open shift closed and returns a human label plus the
// final drawer total. Movements are neither deleted nor archived; they stay
// queryable. Fails with NoOpenShift when nothing is open.
func (e *Engine) CloseShift(ctx context.Context) (string, decimal.Decimal, error) {
	var (
		label string
		total decimal.Decimal
	)
	err := e.store.RunAtomic(ctx, func(st ledger.Store) error {
		open, err := st.OpenShift(ctx)
		if err != nil {
			return err
		}
		if open == nil {
			return ledger.ErrNoOpenShift
		}

		closedAt := time.Now()
		if err := st.CloseShift(ctx, open.ID, closedAt); err != nil {
			return err
		}
		total, err = st.CashTotal(ctx)
		if err != nil {
			return err
		}
		label = fmt.Sprintf("Shift #%d closed %s", open.ID, closedAt.Format("2006-01-02 15:04"))
		return nil
	})
	if err != nil {
		return "", decimal.Zero, err
	}
	return label, total, nil
}

// Current returns the open shift, or nil when the drawer is closed.
func (e *Engine) Current(ctx context.Context) (*ledger.CashShift, error) {
	return e.store.OpenShift(ctx)
}

// =============================================================================
// MOVEMENTS
// =============================================================================

// AddMovement appends a cash ledger entry. Sign encodes direction: positive
// inflow, negative outflow.
func (e *Engine) AddMovement(ctx context.Context, concept string, amount decimal.Decimal) error {
	if concept == "" {
		return ledger.Invalidf("concept", "must not be empty")
	}
	if amount.IsZero() {
		return ledger.Invalidf("amount", "must be non-zero")
	}
	_, err := e.store.AppendCashMovement(ctx, ledger.CashMovement{Concept: concept, Amount: amount})
	return err
}

// Movements lists cash entries newest first.
func (e *Engine) Movements(ctx context.Context) ([]ledger.CashMovement, error) {
	return e.store.CashMovements(ctx)
}

// ShiftTotal is the running drawer total (see the package note on scope).
func (e *Engine) ShiftTotal(ctx context.Context) (decimal.Decimal, error) {
	return e.store.CashTotal(ctx)
}

// Reconcile reports the declared-vs-counted variance: counted - total.
// Read-only; recording an adjustment is the caller's decision.
func (e *Engine) Reconcile(ctx context.Context, countedCash decimal.Decimal) (decimal.Decimal, error) {
	total, err := e.store.CashTotal(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return countedCash.Sub(total), nil
}
