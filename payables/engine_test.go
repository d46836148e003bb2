package payables_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desger/pos-engine/ledger"
	"github.com/desger/pos-engine/payables"
	"github.com/desger/pos-engine/store/sqlite"
)

func newTestEngine(t *testing.T) (*payables.Engine, ledger.SupplierID) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	supplier, err := store.CreateSupplier(context.Background(), ledger.Supplier{Name: "Acme Distribution"})
	require.NoError(t, err)
	return payables.New(store), supplier
}

func assertDec(t *testing.T, expected float64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, ledger.Dec(expected).Equal(actual),
		"expected %v, got %s", expected, actual)
}

// =============================================================================
// PAYMENT APPLICATION
// =============================================================================

func TestPay_PartialUntilSettled_ThenOverPayment(t *testing.T) {
	// GIVEN: an invoice of 100
	// WHEN: paying 60, then 40, then 1 more
	// THEN: the first two land, the third fails with OverPayment and
	//       paid stays exactly at amount

	engine, supplier := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.AddInvoice(ctx, supplier, "September delivery", ledger.Dec(100))
	require.NoError(t, err)

	require.NoError(t, engine.Pay(ctx, id, ledger.Dec(60)))
	require.NoError(t, engine.Pay(ctx, id, ledger.Dec(40)))

	err = engine.Pay(ctx, id, ledger.Dec(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrOverPayment)

	var overErr *ledger.OverPaymentError
	require.ErrorAs(t, err, &overErr)
	assertDec(t, 0, overErr.Balance)
	assertDec(t, 1, overErr.Attempted)

	p, err := engine.Get(ctx, id)
	require.NoError(t, err)
	assertDec(t, 100, p.Paid)
	assertDec(t, 0, p.Balance())
}

func TestPay_ExceedingBalance_Rejected(t *testing.T) {
	// Paying 80 against a 30 balance must not land even partially.

	engine, supplier := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.AddInvoice(ctx, supplier, "freight", ledger.Dec(100))
	require.NoError(t, err)
	require.NoError(t, engine.Pay(ctx, id, ledger.Dec(70)))

	err = engine.Pay(ctx, id, ledger.Dec(80))
	assert.ErrorIs(t, err, ledger.ErrOverPayment)

	p, err := engine.Get(ctx, id)
	require.NoError(t, err)
	assertDec(t, 70, p.Paid)
	assertDec(t, 30, p.Balance())
}

func TestPay_UnknownInvoice(t *testing.T) {
	engine, _ := newTestEngine(t)

	err := engine.Pay(context.Background(), 999, ledger.Dec(10))
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

// =============================================================================
// LISTING
// =============================================================================

func TestList_PendingOnlyFiltersSettled(t *testing.T) {
	// GIVEN: one settled and one half-paid invoice
	// THEN: pendingOnly lists only the half-paid one; the full list has both

	engine, supplier := newTestEngine(t)
	ctx := context.Background()

	settled, err := engine.AddInvoice(ctx, supplier, "boxes", ledger.Dec(50))
	require.NoError(t, err)
	require.NoError(t, engine.Pay(ctx, settled, ledger.Dec(50)))

	open, err := engine.AddInvoice(ctx, supplier, "pallets", ledger.Dec(80))
	require.NoError(t, err)
	require.NoError(t, engine.Pay(ctx, open, ledger.Dec(30)))

	pending, err := engine.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, open, pending[0].ID)
	assert.Equal(t, "Acme Distribution", pending[0].SupplierName)
	assertDec(t, 50, pending[0].Balance())

	all, err := engine.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidation(t *testing.T) {
	engine, supplier := newTestEngine(t)
	ctx := context.Background()

	t.Run("empty concept", func(t *testing.T) {
		_, err := engine.AddInvoice(ctx, supplier, "", ledger.Dec(10))
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("non-positive invoice amount", func(t *testing.T) {
		_, err := engine.AddInvoice(ctx, supplier, "misc", decimal.Zero)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("non-positive payment", func(t *testing.T) {
		id, err := engine.AddInvoice(ctx, supplier, "misc", ledger.Dec(10))
		require.NoError(t, err)
		err = engine.Pay(ctx, id, ledger.Dec(-5))
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})
}
