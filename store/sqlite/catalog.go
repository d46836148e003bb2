/*
catalog.go - Registry rows: products, clients, suppliers, warehouses

Pure CRUD on the same connection as the ledger tables. Barcode and SKU
uniqueness violations surface as ledger.ErrDuplicateIdentity; code/SKU
generation itself is a collaborator concern, the store only answers
existence checks.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desger/pos-engine/ledger"
)

// =============================================================================
// PRODUCTS
// =============================================================================

// CreateProduct inserts a product and returns its assigned id.
func (s *Store) CreateProduct(ctx context.Context, p ledger.Product) (ledger.ProductID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO products (barcode, sku, name, description, unit, price, discount, tax, stock)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(p.Barcode), nullString(p.SKU), p.Name, p.Description, p.Unit,
		p.Price.String(), p.Discount.String(), p.Tax.String(), p.Stock.String(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, ledger.ErrDuplicateIdentity
		}
		return 0, fmt.Errorf("failed to create product: %w", err)
	}
	id, err := res.LastInsertId()
	return ledger.ProductID(id), err
}

// GetProduct returns nil when the product does not exist.
func (s *Store) GetProduct(ctx context.Context, id ledger.ProductID) (*ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, barcode, sku, name, description, unit, price, discount, tax, stock
		  FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SearchProducts matches text against barcode, name and sku (LIKE, contains),
// ordered by name. Empty text lists everything.
func (s *Store) SearchProducts(ctx context.Context, text string) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, barcode, sku, name, description, unit, price, discount, tax, stock
		  FROM products`
	var args []any
	if text != "" {
		like := "%" + text + "%"
		query += " WHERE barcode LIKE ? OR name LIKE ? OR sku LIKE ?"
		args = append(args, like, like, like)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ledger.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// BarcodeExists reports whether any product carries the barcode.
func (s *Store) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM products WHERE barcode = ? LIMIT 1", barcode)
}

// SKUExists reports whether any product carries the sku.
func (s *Store) SKUExists(ctx context.Context, sku string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM products WHERE sku = ? LIMIT 1", sku)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*ledger.Product, error) {
	var p ledger.Product
	var barcode, sku sql.NullString
	var price, discount, tax, stock string
	err := row.Scan(&p.ID, &barcode, &sku, &p.Name, &p.Description, &p.Unit,
		&price, &discount, &tax, &stock)
	if err != nil {
		return nil, err
	}
	p.Barcode = barcode.String
	p.SKU = sku.String
	p.Price = ledger.MustParseDecimal(price)
	p.Discount = ledger.MustParseDecimal(discount)
	p.Tax = ledger.MustParseDecimal(tax)
	p.Stock = ledger.MustParseDecimal(stock)
	return &p, nil
}

// =============================================================================
// CLIENTS
// =============================================================================

func (s *Store) CreateClient(ctx context.Context, c ledger.Client) (ledger.ClientID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (name, phone, email, address, credit_limit, balance)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Phone, c.Email, c.Address, c.CreditLimit.String(), c.Balance.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create client: %w", err)
	}
	id, err := res.LastInsertId()
	return ledger.ClientID(id), err
}

func (s *Store) GetClient(ctx context.Context, id ledger.ClientID) (*ledger.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c ledger.Client
	var creditLimit, balance string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, address, credit_limit, balance
		  FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &creditLimit, &balance)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CreditLimit = ledger.MustParseDecimal(creditLimit)
	c.Balance = ledger.MustParseDecimal(balance)
	return &c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]ledger.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, email, address, credit_limit, balance
		  FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []ledger.Client
	for rows.Next() {
		var c ledger.Client
		var creditLimit, balance string
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &creditLimit, &balance); err != nil {
			return nil, err
		}
		c.CreditLimit = ledger.MustParseDecimal(creditLimit)
		c.Balance = ledger.MustParseDecimal(balance)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// =============================================================================
// SUPPLIERS
// =============================================================================

func (s *Store) CreateSupplier(ctx context.Context, sup ledger.Supplier) (ledger.SupplierID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (legal_id, name, phone, email, bank_info)
		VALUES (?, ?, ?, ?, ?)`,
		sup.LegalID, sup.Name, sup.Phone, sup.Email, sup.BankInfo,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create supplier: %w", err)
	}
	id, err := res.LastInsertId()
	return ledger.SupplierID(id), err
}

func (s *Store) ListSuppliers(ctx context.Context) ([]ledger.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, legal_id, name, phone, email, bank_info
		  FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []ledger.Supplier
	for rows.Next() {
		var sup ledger.Supplier
		if err := rows.Scan(&sup.ID, &sup.LegalID, &sup.Name, &sup.Phone, &sup.Email, &sup.BankInfo); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

// =============================================================================
// WAREHOUSES
// =============================================================================

func (s *Store) CreateWarehouse(ctx context.Context, w ledger.Warehouse) (ledger.WarehouseID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO warehouses (name, location) VALUES (?, ?)", w.Name, w.Location)
	if err != nil {
		return 0, fmt.Errorf("failed to create warehouse: %w", err)
	}
	id, err := res.LastInsertId()
	return ledger.WarehouseID(id), err
}

func (s *Store) ListWarehouses(ctx context.Context) ([]ledger.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, location FROM warehouses ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []ledger.Warehouse
	for rows.Next() {
		var w ledger.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Location); err != nil {
			return nil, err
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
