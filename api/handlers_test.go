/*
handlers_test.go - HTTP-level tests for the REST surface

Tests exercise the full router (middleware included) against an in-memory
store, asserting status codes and the domain-error mapping.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/desger/pos-engine/api"
	"github.com/desger/pos-engine/store/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := api.NewHandler(store, zap.NewNop())
	srv := httptest.NewServer(api.NewRouter(handler, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// createProduct makes a product and returns its id.
func createProduct(t *testing.T, srv *httptest.Server, name, price string) int64 {
	t.Helper()
	resp := postJSON(t, srv, "/api/products", api.CreateProductRequest{
		Name:  name,
		Price: price,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[api.ProductDTO](t, resp).ID
}

// loadStock moves qty units of product into the default warehouse.
func loadStock(t *testing.T, srv *httptest.Server, product int64, qty string) {
	t.Helper()
	resp := postJSON(t, srv, "/api/inventory/movements", api.MoveStockRequest{
		ProductID: product,
		Quantity:  qty,
		Reason:    "initial load",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// SALE FLOW
// =============================================================================

func TestSaleFlow_EndToEnd(t *testing.T) {
	// GIVEN: a stocked product
	// WHEN: committing a cart over HTTP
	// THEN: the sale lands, stock drops, and the lines are queryable

	srv := newTestServer(t)
	product := createProduct(t, srv, "Coffee 500g", "10")
	loadStock(t, srv, product, "10")

	resp := postJSON(t, srv, "/api/sales", api.CreateSaleRequest{
		Lines: []api.SaleLineRequest{{ProductID: product, Quantity: "2", Price: "10"}},
		Paid:  "20",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/sales")
	require.NoError(t, err)
	salesList := decode[[]api.SaleDTO](t, resp)
	require.Len(t, salesList, 1)
	assert.Equal(t, "cash", salesList[0].PaymentType)
	assert.Equal(t, "20", salesList[0].Total)

	resp, err = http.Get(srv.URL + "/api/inventory/stock?product_id=" + itoa(product))
	require.NoError(t, err)
	stock := decode[api.StockDTO](t, resp)
	assert.Equal(t, "8", stock.Stock)
}

func TestSale_InsufficientStock_Is409(t *testing.T) {
	srv := newTestServer(t)
	product := createProduct(t, srv, "Sugar 1kg", "5")
	loadStock(t, srv, product, "1")

	resp := postJSON(t, srv, "/api/sales", api.CreateSaleRequest{
		Lines: []api.SaleLineRequest{{ProductID: product, Quantity: "5", Price: "5"}},
		Paid:  "25",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestSale_EmptyCart_Is400(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/sales", api.CreateSaleRequest{Paid: "0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// CASH FLOW
// =============================================================================

func TestShiftLifecycle_OverHTTP(t *testing.T) {
	srv := newTestServer(t)

	// No shift yet
	resp, err := http.Get(srv.URL + "/api/cash/shifts/current")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Open
	resp = postJSON(t, srv, "/api/cash/shifts/open", api.OpenShiftRequest{OpeningAmount: "100"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Second open conflicts
	resp = postJSON(t, srv, "/api/cash/shifts/open", api.OpenShiftRequest{OpeningAmount: "50"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Close
	resp = postJSON(t, srv, "/api/cash/shifts/close", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closed := decode[api.CloseShiftResponse](t, resp)
	assert.Contains(t, closed.Label, "closed")

	// Close again conflicts
	resp = postJSON(t, srv, "/api/cash/shifts/close", struct{}{})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// PAYABLES
// =============================================================================

func TestPayables_OverPayment_Is409(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/suppliers", api.CreateSupplierRequest{Name: "Acme Distribution"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	supplier := decode[api.SupplierDTO](t, resp)

	resp = postJSON(t, srv, "/api/payables", api.CreatePayableRequest{
		SupplierID: supplier.ID,
		Concept:    "freight",
		Amount:     "100",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]int64](t, resp)
	id := itoa(created["id"])

	resp = postJSON(t, srv, "/api/payables/"+id+"/payments", api.PayPayableRequest{Amount: "60"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paid := decode[api.PayableDTO](t, resp)
	assert.Equal(t, "40", paid.Balance)

	resp = postJSON(t, srv, "/api/payables/"+id+"/payments", api.PayPayableRequest{Amount: "50"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestPayables_Unknown_Is404(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/payables/999/payments", api.PayPayableRequest{Amount: "1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// CATALOG
// =============================================================================

func TestProducts_DuplicateBarcode_Is409(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/products", api.CreateProductRequest{
		Name: "First", Barcode: "123", Price: "1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv, "/api/products", api.CreateProductRequest{
		Name: "Second", Barcode: "123", Price: "1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestWarehouses_DefaultPresent(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/warehouses")
	require.NoError(t, err)
	warehouses := decode[[]api.WarehouseDTO](t, resp)
	require.Len(t, warehouses, 1)
	assert.Equal(t, "Principal", warehouses[0].Name)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
