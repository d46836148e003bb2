package cashshift_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desger/pos-engine/cashshift"
	"github.com/desger/pos-engine/ledger"
	"github.com/desger/pos-engine/store/sqlite"
)

func newTestEngine(t *testing.T) *cashshift.Engine {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return cashshift.New(store)
}

func assertDec(t *testing.T, expected float64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, ledger.Dec(expected).Equal(actual),
		"expected %v, got %s", expected, actual)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestOpenShift_OnlyOneOpenAtATime(t *testing.T) {
	// GIVEN: an open shift
	// WHEN: opening a second one
	// THEN: ShiftAlreadyOpen

	engine := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.OpenShift(ctx, ledger.Dec(100))
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = engine.OpenShift(ctx, ledger.Dec(50))
	assert.ErrorIs(t, err, ledger.ErrShiftAlreadyOpen)

	current, err := engine.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, id, current.ID)
	assert.True(t, current.Open())
	assertDec(t, 100, current.OpeningAmount)
}

func TestCloseShift_WithoutOpen_Fails(t *testing.T) {
	engine := newTestEngine(t)

	_, _, err := engine.CloseShift(context.Background())
	assert.ErrorIs(t, err, ledger.ErrNoOpenShift)
}

func TestCloseShift_ThenReopen(t *testing.T) {
	// GIVEN: a closed shift
	// WHEN: opening a fresh one
	// THEN: allowed; closed shifts never block the drawer

	engine := newTestEngine(t)
	ctx := context.Background()

	first, err := engine.OpenShift(ctx, ledger.Dec(100))
	require.NoError(t, err)

	label, _, err := engine.CloseShift(ctx)
	require.NoError(t, err)
	assert.Contains(t, label, "closed")

	current, err := engine.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	second, err := engine.OpenShift(ctx, ledger.Dec(80))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

// =============================================================================
// MOVEMENTS AND TOTALS
// =============================================================================

func TestShiftTotal_SumsAllMovementsEver(t *testing.T) {
	// Movements from a previous, already-closed shift still count: the total
	// is a running drawer figure, not a per-shift window.

	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.OpenShift(ctx, ledger.Dec(100))
	require.NoError(t, err)
	require.NoError(t, engine.AddMovement(ctx, "sale #1", ledger.Dec(40)))
	_, _, err = engine.CloseShift(ctx)
	require.NoError(t, err)

	_, err = engine.OpenShift(ctx, ledger.Dec(100))
	require.NoError(t, err)
	require.NoError(t, engine.AddMovement(ctx, "sale #2", ledger.Dec(25)))
	require.NoError(t, engine.AddMovement(ctx, "supplier payment", ledger.Dec(-15)))

	total, err := engine.ShiftTotal(ctx)
	require.NoError(t, err)
	assertDec(t, 50, total)
}

func TestMovements_NewestFirst(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AddMovement(ctx, "first", ledger.Dec(10)))
	require.NoError(t, engine.AddMovement(ctx, "second", ledger.Dec(-3)))

	movements, err := engine.Movements(ctx)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, "second", movements[0].Concept)
	assertDec(t, -3, movements[0].Amount)
	assert.Equal(t, "first", movements[1].Concept)
}

func TestReconcile_ReportsVariance(t *testing.T) {
	// Declared total 35, counted 30: variance -5. Reconcile is read-only.

	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AddMovement(ctx, "sale", ledger.Dec(35)))

	variance, err := engine.Reconcile(ctx, ledger.Dec(30))
	require.NoError(t, err)
	assertDec(t, -5, variance)

	total, err := engine.ShiftTotal(ctx)
	require.NoError(t, err)
	assertDec(t, 35, total)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidation(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	t.Run("negative opening amount", func(t *testing.T) {
		_, err := engine.OpenShift(ctx, ledger.Dec(-1))
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("empty concept", func(t *testing.T) {
		err := engine.AddMovement(ctx, "", ledger.Dec(10))
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("zero amount", func(t *testing.T) {
		err := engine.AddMovement(ctx, "noop", decimal.Zero)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})
}
