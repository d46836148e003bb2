package sales_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desger/pos-engine/inventory"
	"github.com/desger/pos-engine/ledger"
	"github.com/desger/pos-engine/sales"
	"github.com/desger/pos-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	store     *sqlite.Store
	sales     *sales.Engine
	inventory *inventory.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return &fixture{
		store:     store,
		sales:     sales.New(store),
		inventory: inventory.New(store),
	}
}

// stockedProduct creates a product and loads qty units into the default
// warehouse.
func (f *fixture) stockedProduct(t *testing.T, name string, qty float64) ledger.ProductID {
	t.Helper()
	ctx := context.Background()
	id, err := f.store.CreateProduct(ctx, ledger.Product{Name: name, Unit: "pz"})
	require.NoError(t, err)
	require.NoError(t, f.inventory.Move(ctx, id, ledger.DefaultWarehouse, ledger.Dec(qty), "initial load"))
	return id
}

func (f *fixture) client(t *testing.T, name string) ledger.ClientID {
	t.Helper()
	id, err := f.store.CreateClient(context.Background(), ledger.Client{Name: name})
	require.NoError(t, err)
	return id
}

func assertDec(t *testing.T, expected float64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, ledger.Dec(expected).Equal(actual),
		"expected %v, got %s", expected, actual)
}

// =============================================================================
// TOTALS AND PAYMENT CLASSIFICATION
// =============================================================================

func TestTotal_GlobalDiscountOnly(t *testing.T) {
	// 2 x 10.00 + 1 x 5.00 = 25.00, minus 10% global = 22.50. Per-line
	// discount and tax are snapshots and do not enter the total.

	in := sales.Input{
		Lines: []sales.Line{
			{ProductID: 1, Quantity: ledger.Dec(2), Price: ledger.Dec(10), Discount: ledger.Dec(50), Tax: ledger.Dec(16)},
			{ProductID: 2, Quantity: ledger.Dec(1), Price: ledger.Dec(5)},
		},
		GlobalDiscount: ledger.Dec(10),
	}
	assertDec(t, 22.5, in.Total())
}

func TestCreateSale_CashWhenPaidCoversTotal(t *testing.T) {
	// GIVEN: a cart totalling 20.00
	// WHEN: paid = 20.00
	// THEN: the stored sale is a cash sale

	f := newFixture(t)
	ctx := context.Background()
	product := f.stockedProduct(t, "Coffee 500g", 10)

	id, err := f.sales.CreateSale(ctx, sales.Input{
		Lines: []sales.Line{{ProductID: product, Quantity: ledger.Dec(2), Price: ledger.Dec(10)}},
		Paid:  ledger.Dec(20),
	})
	require.NoError(t, err)

	all, err := f.sales.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
	assert.Equal(t, ledger.PaymentCash, all[0].PaymentType)
	assertDec(t, 20, all[0].Total)
	assertDec(t, 20, all[0].Paid)
}

func TestCreateSale_CreditGrowsClientBalance(t *testing.T) {
	// GIVEN: a client and a cart totalling 30.00
	// WHEN: paid = 10.00
	// THEN: credit sale, and the client balance grows by 20.00

	f := newFixture(t)
	ctx := context.Background()
	product := f.stockedProduct(t, "Sugar 1kg", 10)
	client := f.client(t, "Ana")

	_, err := f.sales.CreateSale(ctx, sales.Input{
		ClientID: &client,
		Lines:    []sales.Line{{ProductID: product, Quantity: ledger.Dec(3), Price: ledger.Dec(10)}},
		Paid:     ledger.Dec(10),
	})
	require.NoError(t, err)

	all, err := f.sales.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ledger.PaymentCredit, all[0].PaymentType)

	c, err := f.store.GetClient(ctx, client)
	require.NoError(t, err)
	assertDec(t, 20, c.Balance)
}

func TestCreateSale_OverpaidIsStillCash(t *testing.T) {
	// paid > total classifies as cash; change is the cashier's concern.

	f := newFixture(t)
	product := f.stockedProduct(t, "Rice 1kg", 5)

	_, err := f.sales.CreateSale(context.Background(), sales.Input{
		Lines: []sales.Line{{ProductID: product, Quantity: ledger.Dec(1), Price: ledger.Dec(10)}},
		Paid:  ledger.Dec(50),
	})
	require.NoError(t, err)

	all, err := f.sales.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ledger.PaymentCash, all[0].PaymentType)
}

// =============================================================================
// ATOMICITY
// =============================================================================

func TestCreateSale_InsufficientStock_RollsBackEverything(t *testing.T) {
	// GIVEN: line 1 has stock, line 2 would drive stock negative
	// WHEN: the cart commits
	// THEN: no header, no lines, no stock debit, no balance change survive

	f := newFixture(t)
	ctx := context.Background()
	stocked := f.stockedProduct(t, "Flour 1kg", 10)
	scarce := f.stockedProduct(t, "Honey jar", 1)
	client := f.client(t, "Luis")

	_, err := f.sales.CreateSale(ctx, sales.Input{
		ClientID: &client,
		Lines: []sales.Line{
			{ProductID: stocked, Quantity: ledger.Dec(2), Price: ledger.Dec(10)},
			{ProductID: scarce, Quantity: ledger.Dec(5), Price: ledger.Dec(8)},
		},
		Paid: ledger.Dec(0),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	all, err := f.sales.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	stock, err := f.inventory.StockOf(ctx, stocked, nil)
	require.NoError(t, err)
	assertDec(t, 10, stock)

	c, err := f.store.GetClient(ctx, client)
	require.NoError(t, err)
	assertDec(t, 0, c.Balance)
}

func TestCreateSale_DebitsStockPerLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.stockedProduct(t, "Pasta 500g", 10)

	_, err := f.sales.CreateSale(ctx, sales.Input{
		Lines: []sales.Line{{ProductID: product, Quantity: ledger.Dec(4), Price: ledger.Dec(3)}},
		Paid:  ledger.Dec(12),
	})
	require.NoError(t, err)

	stock, err := f.inventory.StockOf(ctx, product, nil)
	require.NoError(t, err)
	assertDec(t, 6, stock)

	movements, err := f.inventory.Movements(ctx, &product)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, "sale", movements[0].Reason)
	assertDec(t, -4, movements[0].Quantity)
}

// =============================================================================
// LINE SNAPSHOTS
// =============================================================================

func TestLines_KeepPriceDiscountTaxSnapshots(t *testing.T) {
	// The line stores what was quoted at sale time, not the catalog row.

	f := newFixture(t)
	ctx := context.Background()
	product := f.stockedProduct(t, "Tea box", 10)

	id, err := f.sales.CreateSale(ctx, sales.Input{
		Lines: []sales.Line{{
			ProductID: product,
			Quantity:  ledger.Dec(2),
			Price:     ledger.Dec(7.5),
			Discount:  ledger.Dec(5),
			Tax:       ledger.Dec(16),
		}},
		Paid: ledger.Dec(15),
	})
	require.NoError(t, err)

	lines, err := f.sales.Lines(ctx, id)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, product, lines[0].ProductID)
	assertDec(t, 2, lines[0].Quantity)
	assertDec(t, 7.5, lines[0].Price)
	assertDec(t, 5, lines[0].Discount)
	assertDec(t, 16, lines[0].Tax)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestCreateSale_Validation(t *testing.T) {
	f := newFixture(t)
	product := f.stockedProduct(t, "Salt", 10)
	ctx := context.Background()

	t.Run("empty cart", func(t *testing.T) {
		_, err := f.sales.CreateSale(ctx, sales.Input{Paid: ledger.Dec(1)})
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := f.sales.CreateSale(ctx, sales.Input{
			Lines: []sales.Line{{ProductID: product, Quantity: decimal.Zero, Price: ledger.Dec(1)}},
		})
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("discount above 100", func(t *testing.T) {
		_, err := f.sales.CreateSale(ctx, sales.Input{
			Lines:          []sales.Line{{ProductID: product, Quantity: ledger.Dec(1), Price: ledger.Dec(1)}},
			GlobalDiscount: ledger.Dec(101),
		})
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("negative paid", func(t *testing.T) {
		_, err := f.sales.CreateSale(ctx, sales.Input{
			Lines: []sales.Line{{ProductID: product, Quantity: ledger.Dec(1), Price: ledger.Dec(1)}},
			Paid:  ledger.Dec(-1),
		})
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})
}
