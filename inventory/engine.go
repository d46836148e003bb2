/*
Package inventory implements the stock engine: queries, single-warehouse
movements and cross-warehouse transfers over the append-only stock ledger.

INVARIANTS:
  1. stockOf(product, warehouse) is always the signed sum of the movement
     ledger for that pair; the cached products.stock column is a projection.
  2. No movement may drive a (product, warehouse) balance negative. The guard
     and the append run inside one atomic unit, so there is no window between
     the check and the write.
  3. A transfer commits both legs or neither.

SEE ALSO:
  - ledger/store.go: atomic-unit contract
  - sales: debits stock through the same movement path
*/
package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/desger/pos-engine/ledger"
)

// Engine answers stock queries and records movements.
type Engine struct {
	store ledger.TxStore
}

func New(store ledger.TxStore) *Engine {
	return &Engine{store: store}
}

// =============================================================================
// QUERIES (read-only, no side effects)
// =============================================================================

// StockOf sums the movement ledger for a product. A nil warehouse sums across
// all warehouses (global stock).
func (e *Engine) StockOf(ctx context.Context, product ledger.ProductID, warehouse *ledger.WarehouseID) (decimal.Decimal, error) {
	return e.store.StockSum(ctx, product, warehouse)
}

// Movements lists stock ledger entries newest first; nil product lists all.
func (e *Engine) Movements(ctx context.Context, product *ledger.ProductID) ([]ledger.StockMovementRow, error) {
	return e.store.StockMovements(ctx, product)
}

// =============================================================================
// MOVEMENTS
// =============================================================================

// Move appends a signed stock movement (positive = in, negative = out) and
// updates the cached product stock in the same atomic unit. A debit that
// would leave the warehouse balance negative fails with InsufficientStock
// and writes nothing.
func (e *Engine) Move(ctx context.Context, product ledger.ProductID, warehouse ledger.WarehouseID, qty decimal.Decimal, reason string) error {
	if qty.IsZero() {
		return ledger.Invalidf("quantity", "must be non-zero")
	}
	return e.store.RunAtomic(ctx, func(st ledger.Store) error {
		return move(ctx, st, product, warehouse, qty, reason)
	})
}

// move is the single-leg primitive shared by Move, Transfer and the sale
// engine's stock debit. It must run inside an atomic unit.
func move(ctx context.Context, st ledger.Store, product ledger.ProductID, warehouse ledger.WarehouseID, qty decimal.Decimal, reason string) error {
	if qty.IsNegative() {
		available, err := st.StockSum(ctx, product, &warehouse)
		if err != nil {
			return err
		}
		if available.Add(qty).IsNegative() {
			return &ledger.InsufficientStockError{
				ProductID:   product,
				WarehouseID: warehouse,
				Available:   available,
				Requested:   qty.Neg(),
			}
		}
	}

	if _, err := st.AppendStockMovement(ctx, ledger.StockMovement{
		ProductID:   product,
		WarehouseID: warehouse,
		Quantity:    qty,
		Reason:      reason,
	}); err != nil {
		return err
	}
	return st.AdjustProductStock(ctx, product, qty)
}

// Debit is the sale engine's entry point: an outflow of qty units inside an
// already-running atomic unit.
func Debit(ctx context.Context, st ledger.Store, product ledger.ProductID, warehouse ledger.WarehouseID, qty decimal.Decimal, reason string) error {
	return move(ctx, st, product, warehouse, qty.Neg(), reason)
}

// Transfer moves qty units from source to destination as one unit: both legs
// commit or neither does. The ledger keeps one "out" and one "in" entry.
func (e *Engine) Transfer(ctx context.Context, product ledger.ProductID, source, destination ledger.WarehouseID, qty decimal.Decimal, reason string) error {
	if source == destination {
		return ledger.ErrInvalidTransfer
	}
	if !qty.IsPositive() {
		return ledger.Invalidf("quantity", "must be positive")
	}

	return e.store.RunAtomic(ctx, func(st ledger.Store) error {
		available, err := st.StockSum(ctx, product, &source)
		if err != nil {
			return err
		}
		if available.LessThan(qty) {
			return &ledger.InsufficientStockError{
				ProductID:   product,
				WarehouseID: source,
				Available:   available,
				Requested:   qty,
			}
		}
		if err := move(ctx, st, product, source, qty.Neg(), reason+" out"); err != nil {
			return err
		}
		return move(ctx, st, product, destination, qty, reason+" in")
	})
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// Recompute rebuilds the cached global stock projection from the movement
// ledger and returns the recomputed value. The ledger is the ground truth;
// this exists for verification and for repairing a drifted cache.
func (e *Engine) Recompute(ctx context.Context, product ledger.ProductID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := e.store.RunAtomic(ctx, func(st ledger.Store) error {
		sum, err := st.StockSum(ctx, product, nil)
		if err != nil {
			return err
		}
		total = sum
		return st.SetProductStock(ctx, product, sum)
	})
	return total, err
}
