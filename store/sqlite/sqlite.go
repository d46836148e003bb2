/*
Package sqlite provides the SQLite-backed implementation of the ledger store.

PURPOSE:
  Implements ledger.Store and ledger.TxStore on an embedded SQLite database.
  This is the single point enforcing atomicity: every multi-table mutation in
  the system flows through RunAtomic here.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements exist for stock_movements or cash_movements
  - Derived fields (products.stock, clients.balance) are only written through
    Adjust* and Set* methods, which engines call inside the same atomic unit as
    the originating movement

KEY TABLES:
  stock_movements:  immutable stock ledger (signed qty per product/warehouse)
  cash_movements:   immutable cash ledger (signed amount)
  cash_shifts:      drawer lifecycle; closed_at IS NULL marks the open shift
  sales/sale_items: invoice headers and price-snapshot lines
  payables:         supplier invoices with a paid counter
  products/clients/warehouses/suppliers: registry rows (see catalog.go)

AMOUNT STORAGE:
  Money and quantities are stored as decimal strings and summed in Go with
  shopspring/decimal. REAL columns would reintroduce float drift into ledger
  sums.

CONCURRENCY:
  sync.RWMutex gives the single-writer/multi-reader discipline. RunAtomic
  holds the write lock for the whole unit, so a unit always executes to
  completion (commit or full rollback) before the next mutating call begins.

WAL MODE:
  The database is opened with WAL so readers are not blocked by the writer
  and crash recovery is clean.

SEE ALSO:
  - ledger/store.go: the interface contract
  - catalog.go: registry CRUD on the same connection
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/desger/pos-engine/ledger"
)

// Store implements ledger.TxStore plus the registry operations in catalog.go.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query helper can run
// either standalone or inside an atomic unit.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		barcode     TEXT UNIQUE,
		sku         TEXT,
		name        TEXT NOT NULL,
		description TEXT DEFAULT '',
		unit        TEXT DEFAULT 'pz',
		price       TEXT NOT NULL DEFAULT '0',
		discount    TEXT NOT NULL DEFAULT '0',
		tax         TEXT NOT NULL DEFAULT '0',
		stock       TEXT NOT NULL DEFAULT '0'
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_products_sku
		ON products(sku) WHERE sku IS NOT NULL AND sku != '';

	CREATE TABLE IF NOT EXISTS clients (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT NOT NULL,
		phone        TEXT DEFAULT '',
		email        TEXT DEFAULT '',
		address      TEXT DEFAULT '',
		credit_limit TEXT NOT NULL DEFAULT '0',
		balance      TEXT NOT NULL DEFAULT '0'
	);

	CREATE TABLE IF NOT EXISTS warehouses (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		name     TEXT NOT NULL,
		location TEXT DEFAULT ''
	);

	-- Stock ledger (append-only)
	CREATE TABLE IF NOT EXISTS stock_movements (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		date         TEXT NOT NULL,
		product_id   INTEGER NOT NULL,
		warehouse_id INTEGER NOT NULL,
		qty          TEXT NOT NULL,
		reason       TEXT DEFAULT '',
		FOREIGN KEY(product_id) REFERENCES products(id),
		FOREIGN KEY(warehouse_id) REFERENCES warehouses(id)
	);

	CREATE INDEX IF NOT EXISTS idx_stock_movements_product_warehouse
		ON stock_movements(product_id, warehouse_id);
	CREATE INDEX IF NOT EXISTS idx_stock_movements_product
		ON stock_movements(product_id, id DESC);

	CREATE TABLE IF NOT EXISTS sales (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		date         TEXT NOT NULL,
		client_id    INTEGER,
		total        TEXT NOT NULL,
		discount     TEXT NOT NULL DEFAULT '0',
		paid         TEXT NOT NULL DEFAULT '0',
		payment_type TEXT NOT NULL,
		FOREIGN KEY(client_id) REFERENCES clients(id)
	);

	CREATE TABLE IF NOT EXISTS sale_items (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id    INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity   TEXT NOT NULL,
		price      TEXT NOT NULL,
		discount   TEXT NOT NULL DEFAULT '0',
		tax        TEXT NOT NULL DEFAULT '0',
		FOREIGN KEY(sale_id) REFERENCES sales(id),
		FOREIGN KEY(product_id) REFERENCES products(id)
	);

	CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id);

	-- Cash ledger (append-only)
	CREATE TABLE IF NOT EXISTS cash_movements (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		date    TEXT NOT NULL,
		concept TEXT NOT NULL,
		amount  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cash_shifts (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		opened_at      TEXT NOT NULL,
		opening_amount TEXT NOT NULL DEFAULT '0',
		closed_at      TEXT
	);

	-- At most one open shift system-wide.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_shifts_single_open
		ON cash_shifts((closed_at IS NULL)) WHERE closed_at IS NULL;

	CREATE TABLE IF NOT EXISTS suppliers (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		legal_id  TEXT DEFAULT '',
		name      TEXT NOT NULL,
		phone     TEXT DEFAULT '',
		email     TEXT DEFAULT '',
		bank_info TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS payables (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		supplier_id INTEGER NOT NULL,
		date        TEXT NOT NULL,
		concept     TEXT NOT NULL,
		amount      TEXT NOT NULL,
		paid        TEXT NOT NULL DEFAULT '0',
		FOREIGN KEY(supplier_id) REFERENCES suppliers(id)
	);

	CREATE INDEX IF NOT EXISTS idx_payables_supplier ON payables(supplier_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Default warehouse must exist before any inventory operation runs.
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO warehouses(id, name) VALUES (?, 'Principal')",
		int64(ledger.DefaultWarehouse),
	)
	return err
}

// =============================================================================
// STOCK LEDGER (ledger.Store)
// =============================================================================

func (s *Store) AppendStockMovement(ctx context.Context, m ledger.StockMovement) (ledger.MovementID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendStockMovement(ctx, s.db, m)
}

func appendStockMovement(ctx context.Context, db dbtx, m ledger.StockMovement) (ledger.MovementID, error) {
	at := m.At
	if at.IsZero() {
		at = time.Now()
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO stock_movements (date, product_id, warehouse_id, qty, reason)
		VALUES (?, ?, ?, ?, ?)`,
		at.Format(time.RFC3339), m.ProductID, m.WarehouseID, m.Quantity.String(), m.Reason,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append stock movement: %w", err)
	}
	id, err := res.LastInsertId()
	return ledger.MovementID(id), err
}

func (s *Store) StockSum(ctx context.Context, product ledger.ProductID, warehouse *ledger.WarehouseID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stockSum(ctx, s.db, product, warehouse)
}

func stockSum(ctx context.Context, db dbtx, product ledger.ProductID, warehouse *ledger.WarehouseID) (decimal.Decimal, error) {
	query := "SELECT qty FROM stock_movements WHERE product_id = ?"
	args := []any{product}
	if warehouse != nil {
		query += " AND warehouse_id = ?"
		args = append(args, *warehouse)
	}
	return sumColumn(ctx, db, query, args...)
}

func (s *Store) StockMovements(ctx context.Context, product *ledger.ProductID) ([]ledger.StockMovementRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stockMovements(ctx, s.db, product)
}

func stockMovements(ctx context.Context, db dbtx, product *ledger.ProductID) ([]ledger.StockMovementRow, error) {
	query := `
		SELECT m.id, m.date, m.product_id, m.warehouse_id, m.qty, m.reason, p.name
		  FROM stock_movements m
		  JOIN products p ON p.id = m.product_id`
	var args []any
	if product != nil {
		query += " WHERE m.product_id = ?"
		args = append(args, *product)
	}
	query += " ORDER BY m.id DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var result []ledger.StockMovementRow
	for rows.Next() {
		var r ledger.StockMovementRow
		var date, qty string
		if err := rows.Scan(&r.ID, &date, &r.ProductID, &r.WarehouseID, &qty, &r.Reason, &r.ProductName); err != nil {
			return nil, err
		}
		r.At, _ = time.Parse(time.RFC3339, date)
		r.Quantity = ledger.MustParseDecimal(qty)
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) AdjustProductStock(ctx context.Context, product ledger.ProductID, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return adjustProductStock(ctx, s.db, product, delta)
}

func adjustProductStock(ctx context.Context, db dbtx, product ledger.ProductID, delta decimal.Decimal) error {
	var current string
	err := db.QueryRowContext(ctx, "SELECT stock FROM products WHERE id = ?", product).Scan(&current)
	if err == sql.ErrNoRows {
		return ledger.ErrNotFound
	}
	if err != nil {
		return err
	}
	next := ledger.MustParseDecimal(current).Add(delta)
	_, err = db.ExecContext(ctx, "UPDATE products SET stock = ? WHERE id = ?", next.String(), product)
	return err
}

func (s *Store) SetProductStock(ctx context.Context, product ledger.ProductID, qty decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setProductStock(ctx, s.db, product, qty)
}

func setProductStock(ctx context.Context, db dbtx, product ledger.ProductID, qty decimal.Decimal) error {
	_, err := db.ExecContext(ctx, "UPDATE products SET stock = ? WHERE id = ?", qty.String(), product)
	return err
}

// =============================================================================
// SALES
// =============================================================================

func (s *Store) InsertSale(ctx context.Context, sale ledger.Sale) (ledger.SaleID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertSale(ctx, s.db, sale)
}

func insertSale(ctx context.Context, db dbtx, sale ledger.Sale) (ledger.SaleID, error) {
	at := sale.At
	if at.IsZero() {
		at = time.Now()
	}
	var clientID any
	if sale.ClientID != nil {
		clientID = int64(*sale.ClientID)
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO sales (date, client_id, total, discount, paid, payment_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		at.Format(time.RFC3339), clientID,
		sale.Total.String(), sale.Discount.String(), sale.Paid.String(), string(sale.PaymentType),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sale: %w", err)
	}
	id, err := res.LastInsertId()
	return ledger.SaleID(id), err
}

func (s *Store) InsertSaleLine(ctx context.Context, l ledger.SaleLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertSaleLine(ctx, s.db, l)
}

func insertSaleLine(ctx context.Context, db dbtx, l ledger.SaleLine) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sale_items (sale_id, product_id, quantity, price, discount, tax)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.SaleID, l.ProductID, l.Quantity.String(), l.Price.String(), l.Discount.String(), l.Tax.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale line: %w", err)
	}
	return nil
}

func (s *Store) ListSales(ctx context.Context) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSales(ctx, s.db)
}

func listSales(ctx context.Context, db dbtx) ([]ledger.Sale, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, date, client_id, total, discount, paid, payment_type
		  FROM sales ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []ledger.Sale
	for rows.Next() {
		var sale ledger.Sale
		var date, total, discount, paid, paymentType string
		var clientID sql.NullInt64
		if err := rows.Scan(&sale.ID, &date, &clientID, &total, &discount, &paid, &paymentType); err != nil {
			return nil, err
		}
		sale.At, _ = time.Parse(time.RFC3339, date)
		if clientID.Valid {
			id := ledger.ClientID(clientID.Int64)
			sale.ClientID = &id
		}
		sale.Total = ledger.MustParseDecimal(total)
		sale.Discount = ledger.MustParseDecimal(discount)
		sale.Paid = ledger.MustParseDecimal(paid)
		sale.PaymentType = ledger.PaymentType(paymentType)
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Store) SaleLines(ctx context.Context, sale ledger.SaleID) ([]ledger.SaleLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return saleLines(ctx, s.db, sale)
}

func saleLines(ctx context.Context, db dbtx, sale ledger.SaleID) ([]ledger.SaleLine, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, quantity, price, discount, tax
		  FROM sale_items WHERE sale_id = ? ORDER BY id ASC`, sale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []ledger.SaleLine
	for rows.Next() {
		var l ledger.SaleLine
		var qty, price, discount, tax string
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &qty, &price, &discount, &tax); err != nil {
			return nil, err
		}
		l.Quantity = ledger.MustParseDecimal(qty)
		l.Price = ledger.MustParseDecimal(price)
		l.Discount = ledger.MustParseDecimal(discount)
		l.Tax = ledger.MustParseDecimal(tax)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *Store) AdjustClientBalance(ctx context.Context, client ledger.ClientID, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return adjustClientBalance(ctx, s.db, client, delta)
}

func adjustClientBalance(ctx context.Context, db dbtx, client ledger.ClientID, delta decimal.Decimal) error {
	var current string
	err := db.QueryRowContext(ctx, "SELECT balance FROM clients WHERE id = ?", client).Scan(&current)
	if err == sql.ErrNoRows {
		return ledger.ErrNotFound
	}
	if err != nil {
		return err
	}
	next := ledger.MustParseDecimal(current).Add(delta)
	_, err = db.ExecContext(ctx, "UPDATE clients SET balance = ? WHERE id = ?", next.String(), client)
	return err
}

// =============================================================================
// CASH LEDGER
// =============================================================================

func (s *Store) AppendCashMovement(ctx context.Context, m ledger.CashMovement) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendCashMovement(ctx, s.db, m)
}

func appendCashMovement(ctx context.Context, db dbtx, m ledger.CashMovement) (int64, error) {
	at := m.At
	if at.IsZero() {
		at = time.Now()
	}
	res, err := db.ExecContext(ctx,
		"INSERT INTO cash_movements (date, concept, amount) VALUES (?, ?, ?)",
		at.Format(time.RFC3339), m.Concept, m.Amount.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append cash movement: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) CashTotal(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cashTotal(ctx, s.db)
}

func cashTotal(ctx context.Context, db dbtx) (decimal.Decimal, error) {
	return sumColumn(ctx, db, "SELECT amount FROM cash_movements")
}

func (s *Store) CashMovements(ctx context.Context) ([]ledger.CashMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cashMovements(ctx, s.db)
}

func cashMovements(ctx context.Context, db dbtx) ([]ledger.CashMovement, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, date, concept, amount FROM cash_movements ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []ledger.CashMovement
	for rows.Next() {
		var m ledger.CashMovement
		var date, amount string
		if err := rows.Scan(&m.ID, &date, &m.Concept, &amount); err != nil {
			return nil, err
		}
		m.At, _ = time.Parse(time.RFC3339, date)
		m.Amount = ledger.MustParseDecimal(amount)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// =============================================================================
// CASH SHIFTS
// =============================================================================

func (s *Store) InsertShift(ctx context.Context, openedAt time.Time, openingAmount decimal.Decimal) (ledger.ShiftID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertShift(ctx, s.db, openedAt, openingAmount)
}

func insertShift(ctx context.Context, db dbtx, openedAt time.Time, openingAmount decimal.Decimal) (ledger.ShiftID, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO cash_shifts (opened_at, opening_amount) VALUES (?, ?)",
		openedAt.Format(time.RFC3339), openingAmount.String(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, ledger.ErrShiftAlreadyOpen
		}
		return 0, fmt.Errorf("failed to open shift: %w", err)
	}
	id, err := res.LastInsertId()
	return ledger.ShiftID(id), err
}

func (s *Store) OpenShift(ctx context.Context) (*ledger.CashShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return openShift(ctx, s.db)
}

func openShift(ctx context.Context, db dbtx) (*ledger.CashShift, error) {
	var shift ledger.CashShift
	var openedAt, openingAmount string
	err := db.QueryRowContext(ctx, `
		SELECT id, opened_at, opening_amount FROM cash_shifts
		 WHERE closed_at IS NULL LIMIT 1`,
	).Scan(&shift.ID, &openedAt, &openingAmount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	shift.OpenedAt, _ = time.Parse(time.RFC3339, openedAt)
	shift.OpeningAmount = ledger.MustParseDecimal(openingAmount)
	return &shift, nil
}

func (s *Store) CloseShift(ctx context.Context, id ledger.ShiftID, closedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return closeShift(ctx, s.db, id, closedAt)
}

func closeShift(ctx context.Context, db dbtx, id ledger.ShiftID, closedAt time.Time) error {
	res, err := db.ExecContext(ctx,
		"UPDATE cash_shifts SET closed_at = ? WHERE id = ? AND closed_at IS NULL",
		closedAt.Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrNoOpenShift
	}
	return nil
}

// =============================================================================
// PAYABLES
// =============================================================================

func (s *Store) InsertPayable(ctx context.Context, p ledger.Payable) (ledger.PayableID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertPayable(ctx, s.db, p)
}

func insertPayable(ctx context.Context, db dbtx, p ledger.Payable) (ledger.PayableID, error) {
	at := p.IssuedAt
	if at.IsZero() {
		at = time.Now()
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO payables (supplier_id, date, concept, amount, paid)
		VALUES (?, ?, ?, ?, ?)`,
		p.SupplierID, at.Format(time.RFC3339), p.Concept, p.Amount.String(), p.Paid.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert payable: %w", err)
	}
	id, err := res.LastInsertId()
	return ledger.PayableID(id), err
}

func (s *Store) GetPayable(ctx context.Context, id ledger.PayableID) (*ledger.Payable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getPayable(ctx, s.db, id)
}

func getPayable(ctx context.Context, db dbtx, id ledger.PayableID) (*ledger.Payable, error) {
	var p ledger.Payable
	var date, amount, paid string
	err := db.QueryRowContext(ctx,
		"SELECT id, supplier_id, date, concept, amount, paid FROM payables WHERE id = ?", id,
	).Scan(&p.ID, &p.SupplierID, &date, &p.Concept, &amount, &paid)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.IssuedAt, _ = time.Parse(time.RFC3339, date)
	p.Amount = ledger.MustParseDecimal(amount)
	p.Paid = ledger.MustParseDecimal(paid)
	return &p, nil
}

func (s *Store) AddPayablePayment(ctx context.Context, id ledger.PayableID, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addPayablePayment(ctx, s.db, id, amount)
}

func addPayablePayment(ctx context.Context, db dbtx, id ledger.PayableID, amount decimal.Decimal) error {
	p, err := getPayable(ctx, db, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ledger.ErrNotFound
	}
	next := p.Paid.Add(amount)
	_, err = db.ExecContext(ctx, "UPDATE payables SET paid = ? WHERE id = ?", next.String(), id)
	return err
}

func (s *Store) ListPayables(ctx context.Context, pendingOnly bool) ([]ledger.PayableRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listPayables(ctx, s.db, pendingOnly)
}

func listPayables(ctx context.Context, db dbtx, pendingOnly bool) ([]ledger.PayableRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.supplier_id, p.date, p.concept, p.amount, p.paid, s.name
		  FROM payables p
		  JOIN suppliers s ON s.id = p.supplier_id
	      ORDER BY p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ledger.PayableRow
	for rows.Next() {
		var r ledger.PayableRow
		var date, amount, paid string
		if err := rows.Scan(&r.ID, &r.SupplierID, &date, &r.Concept, &amount, &paid, &r.SupplierName); err != nil {
			return nil, err
		}
		r.IssuedAt, _ = time.Parse(time.RFC3339, date)
		r.Amount = ledger.MustParseDecimal(amount)
		r.Paid = ledger.MustParseDecimal(paid)
		if pendingOnly && !r.Balance().IsPositive() {
			continue
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// =============================================================================
// ATOMIC UNITS (ledger.TxStore)
// =============================================================================

// RunAtomic executes fn inside one database transaction. The write lock is
// held for the whole unit, so units never interleave.
func (s *Store) RunAtomic(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore is the Store view handed to RunAtomic callbacks. Every operation
// runs against the open transaction, so reads see the unit's own writes.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) AppendStockMovement(ctx context.Context, m ledger.StockMovement) (ledger.MovementID, error) {
	return appendStockMovement(ctx, ts.tx, m)
}

func (ts *txStore) StockSum(ctx context.Context, product ledger.ProductID, warehouse *ledger.WarehouseID) (decimal.Decimal, error) {
	return stockSum(ctx, ts.tx, product, warehouse)
}

func (ts *txStore) StockMovements(ctx context.Context, product *ledger.ProductID) ([]ledger.StockMovementRow, error) {
	return stockMovements(ctx, ts.tx, product)
}

func (ts *txStore) AdjustProductStock(ctx context.Context, product ledger.ProductID, delta decimal.Decimal) error {
	return adjustProductStock(ctx, ts.tx, product, delta)
}

func (ts *txStore) SetProductStock(ctx context.Context, product ledger.ProductID, qty decimal.Decimal) error {
	return setProductStock(ctx, ts.tx, product, qty)
}

func (ts *txStore) InsertSale(ctx context.Context, sale ledger.Sale) (ledger.SaleID, error) {
	return insertSale(ctx, ts.tx, sale)
}

func (ts *txStore) InsertSaleLine(ctx context.Context, l ledger.SaleLine) error {
	return insertSaleLine(ctx, ts.tx, l)
}

func (ts *txStore) ListSales(ctx context.Context) ([]ledger.Sale, error) {
	return listSales(ctx, ts.tx)
}

func (ts *txStore) SaleLines(ctx context.Context, sale ledger.SaleID) ([]ledger.SaleLine, error) {
	return saleLines(ctx, ts.tx, sale)
}

func (ts *txStore) AdjustClientBalance(ctx context.Context, client ledger.ClientID, delta decimal.Decimal) error {
	return adjustClientBalance(ctx, ts.tx, client, delta)
}

func (ts *txStore) AppendCashMovement(ctx context.Context, m ledger.CashMovement) (int64, error) {
	return appendCashMovement(ctx, ts.tx, m)
}

func (ts *txStore) CashTotal(ctx context.Context) (decimal.Decimal, error) {
	return cashTotal(ctx, ts.tx)
}

func (ts *txStore) CashMovements(ctx context.Context) ([]ledger.CashMovement, error) {
	return cashMovements(ctx, ts.tx)
}

func (ts *txStore) InsertShift(ctx context.Context, openedAt time.Time, openingAmount decimal.Decimal) (ledger.ShiftID, error) {
	return insertShift(ctx, ts.tx, openedAt, openingAmount)
}

func (ts *txStore) OpenShift(ctx context.Context) (*ledger.CashShift, error) {
	return openShift(ctx, ts.tx)
}

func (ts *txStore) CloseShift(ctx context.Context, id ledger.ShiftID, closedAt time.Time) error {
	return closeShift(ctx, ts.tx, id, closedAt)
}

func (ts *txStore) InsertPayable(ctx context.Context, p ledger.Payable) (ledger.PayableID, error) {
	return insertPayable(ctx, ts.tx, p)
}

func (ts *txStore) GetPayable(ctx context.Context, id ledger.PayableID) (*ledger.Payable, error) {
	return getPayable(ctx, ts.tx, id)
}

func (ts *txStore) AddPayablePayment(ctx context.Context, id ledger.PayableID, amount decimal.Decimal) error {
	return addPayablePayment(ctx, ts.tx, id, amount)
}

func (ts *txStore) ListPayables(ctx context.Context, pendingOnly bool) ([]ledger.PayableRow, error) {
	return listPayables(ctx, ts.tx, pendingOnly)
}

// =============================================================================
// HELPERS
// =============================================================================

// sumColumn loads a single decimal-string column and sums it in Go. Ledger
// sums must not run through SQLite's float SUM.
func sumColumn(ctx context.Context, db dbtx, query string, args ...any) (decimal.Decimal, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(ledger.MustParseDecimal(v))
	}
	return total, rows.Err()
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
