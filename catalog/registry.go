/*
Package catalog is the registry for products, clients, suppliers and
warehouses: creation with validation, search, and identity existence checks.

Barcode/SKU generation is a collaborator concern; callers must hand in codes
that are already unique. The registry only offers BarcodeExists/SKUExists as
building blocks, and the store surfaces DuplicateIdentity when a constraint
is violated anyway.
*/
package catalog

import (
	"context"

	"github.com/desger/pos-engine/ledger"
)

// Store is the registry slice of the sqlite store.
type Store interface {
	CreateProduct(ctx context.Context, p ledger.Product) (ledger.ProductID, error)
	GetProduct(ctx context.Context, id ledger.ProductID) (*ledger.Product, error)
	SearchProducts(ctx context.Context, text string) ([]ledger.Product, error)
	BarcodeExists(ctx context.Context, barcode string) (bool, error)
	SKUExists(ctx context.Context, sku string) (bool, error)

	CreateClient(ctx context.Context, c ledger.Client) (ledger.ClientID, error)
	GetClient(ctx context.Context, id ledger.ClientID) (*ledger.Client, error)
	ListClients(ctx context.Context) ([]ledger.Client, error)

	CreateSupplier(ctx context.Context, s ledger.Supplier) (ledger.SupplierID, error)
	ListSuppliers(ctx context.Context) ([]ledger.Supplier, error)

	CreateWarehouse(ctx context.Context, w ledger.Warehouse) (ledger.WarehouseID, error)
	ListWarehouses(ctx context.Context) ([]ledger.Warehouse, error)
}

// Registry validates input before it reaches the store. All failures are
// typed: ValidationError before any write, DuplicateIdentity from the store.
type Registry struct {
	store Store
}

func New(store Store) *Registry {
	return &Registry{store: store}
}

var hundred = ledger.Dec(100)

// =============================================================================
// PRODUCTS
// =============================================================================

// AddProduct validates and inserts a product. The initial Stock value only
// seeds the cached projection; receiving actual units is an inventory move.
func (r *Registry) AddProduct(ctx context.Context, p ledger.Product) (ledger.ProductID, error) {
	if p.Name == "" {
		return 0, ledger.Invalidf("name", "must not be empty")
	}
	if p.Price.IsNegative() {
		return 0, ledger.Invalidf("price", "must not be negative")
	}
	if p.Discount.IsNegative() || p.Discount.GreaterThan(hundred) {
		return 0, ledger.Invalidf("discount", "must be between 0 and 100")
	}
	if p.Tax.IsNegative() || p.Tax.GreaterThan(hundred) {
		return 0, ledger.Invalidf("tax", "must be between 0 and 100")
	}
	if p.Unit == "" {
		p.Unit = "pz"
	}
	return r.store.CreateProduct(ctx, p)
}

// Product returns one product or ErrNotFound.
func (r *Registry) Product(ctx context.Context, id ledger.ProductID) (*ledger.Product, error) {
	p, err := r.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ledger.ErrNotFound
	}
	return p, nil
}

// Search matches text over barcode, name and sku, name-ordered. Empty text
// lists the whole catalog.
func (r *Registry) Search(ctx context.Context, text string) ([]ledger.Product, error) {
	return r.store.SearchProducts(ctx, text)
}

func (r *Registry) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	return r.store.BarcodeExists(ctx, barcode)
}

func (r *Registry) SKUExists(ctx context.Context, sku string) (bool, error) {
	return r.store.SKUExists(ctx, sku)
}

// =============================================================================
// CLIENTS
// =============================================================================

func (r *Registry) AddClient(ctx context.Context, c ledger.Client) (ledger.ClientID, error) {
	if c.Name == "" {
		return 0, ledger.Invalidf("name", "must not be empty")
	}
	if c.CreditLimit.IsNegative() {
		return 0, ledger.Invalidf("credit_limit", "must not be negative")
	}
	return r.store.CreateClient(ctx, c)
}

func (r *Registry) Client(ctx context.Context, id ledger.ClientID) (*ledger.Client, error) {
	c, err := r.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ledger.ErrNotFound
	}
	return c, nil
}

func (r *Registry) Clients(ctx context.Context) ([]ledger.Client, error) {
	return r.store.ListClients(ctx)
}

// =============================================================================
// SUPPLIERS
// =============================================================================

func (r *Registry) AddSupplier(ctx context.Context, s ledger.Supplier) (ledger.SupplierID, error) {
	if s.Name == "" {
		return 0, ledger.Invalidf("name", "must not be empty")
	}
	return r.store.CreateSupplier(ctx, s)
}

func (r *Registry) Suppliers(ctx context.Context) ([]ledger.Supplier, error) {
	return r.store.ListSuppliers(ctx)
}

// =============================================================================
// WAREHOUSES
// =============================================================================

func (r *Registry) AddWarehouse(ctx context.Context, w ledger.Warehouse) (ledger.WarehouseID, error) {
	if w.Name == "" {
		return 0, ledger.Invalidf("name", "must not be empty")
	}
	return r.store.CreateWarehouse(ctx, w)
}

func (r *Registry) Warehouses(ctx context.Context) ([]ledger.Warehouse, error) {
	return r.store.ListWarehouses(ctx)
}
