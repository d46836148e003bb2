/*
store.go - Persistence interfaces and the atomic-unit contract

PURPOSE:
  Defines the boundary between the engines and the embedded store. The Store
  is the single owner of all write access to stock movements, cash movements
  and payables; engines never mutate derived fields (client balance, cached
  product stock) outside an atomic unit that also writes the originating entry.

APPEND-ONLY CONTRACT:
  Stock and cash movements expose Append* only. No Update or Delete methods
  exist for them, anywhere.

ATOMIC UNITS:
  RunAtomic executes a unit of work such that either every write inside it
  becomes visible together or none does. A failure inside the unit discards
  all partial writes and surfaces the triggering error unchanged. This is the
  only mechanism by which multiple tables may be mutated together: no partial
  sale, transfer or payment is ever observable.

CONCURRENCY:
  Single logical writer: the store serializes mutating calls, so two engine
  calls never interleave their writes. Reads may run concurrently but never
  observe a half-committed unit.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store (WAL, mutex-serialized writer)

SEE ALSO:
  - inventory, sales, cashshift, payables: the engines built on this contract
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE - Ledger persistence, usable directly or inside an atomic unit
// =============================================================================

// Store is the operation set available to engines. The same interface is
// served by the root store (auto-commit, one unit per call) and by the
// transactional view handed to a RunAtomic callback.
type Store interface {
	// --- Stock ledger (append-only) ---

	// AppendStockMovement records an immutable stock ledger entry.
	AppendStockMovement(ctx context.Context, m StockMovement) (MovementID, error)

	// StockSum returns the signed quantity sum for a product. A nil warehouse
	// sums across all warehouses (global stock).
	StockSum(ctx context.Context, product ProductID, warehouse *WarehouseID) (decimal.Decimal, error)

	// StockMovements lists entries newest first, all products when nil.
	StockMovements(ctx context.Context, product *ProductID) ([]StockMovementRow, error)

	// AdjustProductStock moves the cached stock projection by delta. Must only
	// be called in the same unit as the movement that justifies it.
	AdjustProductStock(ctx context.Context, product ProductID, delta decimal.Decimal) error

	// SetProductStock overwrites the cached projection (reconciliation only).
	SetProductStock(ctx context.Context, product ProductID, qty decimal.Decimal) error

	// --- Sales ---

	InsertSale(ctx context.Context, s Sale) (SaleID, error)
	InsertSaleLine(ctx context.Context, l SaleLine) error
	ListSales(ctx context.Context) ([]Sale, error)
	SaleLines(ctx context.Context, sale SaleID) ([]SaleLine, error)

	// AdjustClientBalance moves a client's accounts-receivable balance.
	// Same atomic-unit rule as AdjustProductStock.
	AdjustClientBalance(ctx context.Context, client ClientID, delta decimal.Decimal) error

	// --- Cash ledger (append-only) ---

	AppendCashMovement(ctx context.Context, m CashMovement) (int64, error)

	// CashTotal sums every cash movement ever recorded. Shift reconciliation
	// deliberately uses this full sum rather than a per-shift window.
	CashTotal(ctx context.Context) (decimal.Decimal, error)

	// CashMovements lists entries newest first.
	CashMovements(ctx context.Context) ([]CashMovement, error)

	// --- Cash shifts ---

	InsertShift(ctx context.Context, openedAt time.Time, openingAmount decimal.Decimal) (ShiftID, error)

	// OpenShift returns the currently open shift, or nil when none is open.
	// This is the single accessor for "current shift" state.
	OpenShift(ctx context.Context) (*CashShift, error)

	CloseShift(ctx context.Context, id ShiftID, closedAt time.Time) error

	// --- Payables ---

	InsertPayable(ctx context.Context, p Payable) (PayableID, error)
	GetPayable(ctx context.Context, id PayableID) (*Payable, error)

	// AddPayablePayment increments paid. The over-payment guard lives in the
	// payables engine, inside the same unit as this write.
	AddPayablePayment(ctx context.Context, id PayableID, amount decimal.Decimal) error

	ListPayables(ctx context.Context, pendingOnly bool) ([]PayableRow, error)
}

// =============================================================================
// TRANSACTIONAL STORE - Atomic multi-table units
// =============================================================================

// TxStore is what engines hold. RunAtomic executes fn against a transactional
// Store view; fn returning an error rolls back every write it made and that
// error is returned to the caller untouched.
type TxStore interface {
	Store

	RunAtomic(ctx context.Context, fn func(Store) error) error
}
