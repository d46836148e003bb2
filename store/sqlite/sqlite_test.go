package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desger/pos-engine/ledger"
	"github.com/desger/pos-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// ATOMIC UNITS
// =============================================================================

func TestRunAtomic_RollsBackOnError(t *testing.T) {
	// GIVEN: an atomic unit that appends a movement and then fails
	// THEN: the movement is not observable afterwards

	store := newStore(t)
	ctx := context.Background()

	product, err := store.CreateProduct(ctx, ledger.Product{Name: "Coffee 500g", Unit: "pz"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.RunAtomic(ctx, func(st ledger.Store) error {
		_, err := st.AppendStockMovement(ctx, ledger.StockMovement{
			ProductID:   product,
			WarehouseID: ledger.DefaultWarehouse,
			Quantity:    ledger.Dec(5),
			Reason:      "load",
		})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	movements, err := store.StockMovements(ctx, &product)
	require.NoError(t, err)
	assert.Empty(t, movements)

	sum, err := store.StockSum(ctx, product, nil)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestRunAtomic_WritesVisibleInsideAndCommitted(t *testing.T) {
	// Writes made through the transactional view are readable within the
	// same unit and survive the commit.

	store := newStore(t)
	ctx := context.Background()

	product, err := store.CreateProduct(ctx, ledger.Product{Name: "Sugar 1kg", Unit: "pz"})
	require.NoError(t, err)

	err = store.RunAtomic(ctx, func(st ledger.Store) error {
		if _, err := st.AppendStockMovement(ctx, ledger.StockMovement{
			ProductID:   product,
			WarehouseID: ledger.DefaultWarehouse,
			Quantity:    ledger.Dec(7),
			Reason:      "load",
		}); err != nil {
			return err
		}
		sum, err := st.StockSum(ctx, product, nil)
		if err != nil {
			return err
		}
		assert.True(t, ledger.Dec(7).Equal(sum), "uncommitted write visible in-unit")
		return nil
	})
	require.NoError(t, err)

	sum, err := store.StockSum(ctx, product, nil)
	require.NoError(t, err)
	assert.True(t, ledger.Dec(7).Equal(sum))
}

// =============================================================================
// SHIFT UNIQUENESS AT THE SCHEMA LEVEL
// =============================================================================

func TestInsertShift_SecondOpenRejectedBySchema(t *testing.T) {
	// Even bypassing the engine guard, the partial unique index keeps a
	// second open shift out.

	store := newStore(t)
	ctx := context.Background()

	_, err := store.InsertShift(ctx, time.Now(), ledger.Dec(100))
	require.NoError(t, err)

	_, err = store.InsertShift(ctx, time.Now(), ledger.Dec(50))
	assert.ErrorIs(t, err, ledger.ErrShiftAlreadyOpen)
}

func TestCloseShift_AlreadyClosed(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id, err := store.InsertShift(ctx, time.Now(), ledger.Dec(100))
	require.NoError(t, err)
	require.NoError(t, store.CloseShift(ctx, id, time.Now()))

	err = store.CloseShift(ctx, id, time.Now())
	assert.ErrorIs(t, err, ledger.ErrNoOpenShift)
}

// =============================================================================
// DECIMAL FIDELITY
// =============================================================================

func TestDecimalColumns_NoFloatDrift(t *testing.T) {
	// Classic float trap: 0.1 + 0.2. Stored as text and summed as decimals,
	// the total is exactly 0.3.

	store := newStore(t)
	ctx := context.Background()

	_, err := store.AppendCashMovement(ctx, ledger.CashMovement{Concept: "a", Amount: ledger.MustParseDecimal("0.1")})
	require.NoError(t, err)
	_, err = store.AppendCashMovement(ctx, ledger.CashMovement{Concept: "b", Amount: ledger.MustParseDecimal("0.2")})
	require.NoError(t, err)

	total, err := store.CashTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.3", total.String())
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

func TestTimestamps_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	_, err := store.AppendCashMovement(ctx, ledger.CashMovement{Concept: "sale", Amount: ledger.Dec(10)})
	require.NoError(t, err)

	movements, err := store.CashMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].At.After(before))
	assert.False(t, movements[0].At.IsZero())
}
