/*
Package payables implements supplier invoice issuance and payment
application.

INVARIANT:
  0 <= paid <= amount for every invoice, always. The over-payment guard and
  the paid increment run in one atomic unit so concurrent payments cannot
  push paid past amount. balance = amount - paid and is never negative.
*/
package payables

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/desger/pos-engine/ledger"
)

// Engine manages supplier accounts-payable.
type Engine struct {
	store ledger.TxStore
}

func New(store ledger.TxStore) *Engine {
	return &Engine{store: store}
}

// AddInvoice records a supplier invoice. Amount must be positive.
func (e *Engine) AddInvoice(ctx context.Context, supplier ledger.SupplierID, concept string, amount decimal.Decimal) (ledger.PayableID, error) {
	if concept == "" {
		return 0, ledger.Invalidf("concept", "must not be empty")
	}
	if !amount.IsPositive() {
		return 0, ledger.Invalidf("amount", "must be positive")
	}
	return e.store.InsertPayable(ctx, ledger.Payable{
		SupplierID: supplier,
		Concept:    concept,
		Amount:     amount,
		Paid:       decimal.Zero,
	})
}

// Pay applies a partial or full payment. Fails with OverPayment when the
// payment would exceed the remaining balance; the guard and the increment
// share one atomic unit.
func (e *Engine) Pay(ctx context.Context, id ledger.PayableID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ledger.Invalidf("amount", "must be positive")
	}

	return e.store.RunAtomic(ctx, func(st ledger.Store) error {
		p, err := st.GetPayable(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return ledger.ErrNotFound
		}
		if p.Paid.Add(amount).GreaterThan(p.Amount) {
			return &ledger.OverPaymentError{
				PayableID: id,
				Balance:   p.Balance(),
				Attempted: amount,
			}
		}
		return st.AddPayablePayment(ctx, id, amount)
	})
}

// Get returns one invoice, or ErrNotFound.
func (e *Engine) Get(ctx context.Context, id ledger.PayableID) (*ledger.Payable, error) {
	p, err := e.store.GetPayable(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ledger.ErrNotFound
	}
	return p, nil
}

// List returns invoices newest first, each with its supplier name and
// remaining balance. pendingOnly filters to balance > 0.
func (e *Engine) List(ctx context.Context, pendingOnly bool) ([]ledger.PayableRow, error) {
	return e.store.ListPayables(ctx, pendingOnly)
}
