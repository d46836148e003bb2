/*
Package ledger provides the core types for the point-of-sale ledger engine.

PURPOSE:
  This package contains the shared vocabulary for the four sub-ledgers the
  system maintains: stock-by-warehouse, cash-drawer-by-shift, client
  accounts-receivable, and supplier accounts-payable. Every balance in the
  system is derived by summing immutable ledger entries; mutable "current"
  fields (product stock, client balance) are write-through projections that
  are only ever touched inside the same atomic unit as the originating entry.

KEY CONCEPTS IN THIS FILE (types.go):
  - StockMovement / CashMovement: immutable ledger entries
  - Sale / SaleLine: the invoice header and its price-snapshot lines
  - CashShift: a bounded period of drawer activity (open -> closed)
  - Payable: a supplier invoice with a paid-so-far counter
  - Typed integer IDs: prevent mixing product/warehouse/client identifiers

DESIGN PRINCIPLES:
  1. Immutability: movements are never updated or deleted, only appended
  2. Precision: decimal.Decimal for all money and quantity arithmetic
  3. Snapshots: sale lines capture price/discount/tax at sale time; later
     product edits never change a historical sale

SEE ALSO:
  - store.go: persistence interfaces and the atomic-unit contract
  - errors.go: typed recoverable failures
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// IDs are opaque, monotonically assigned by the store (SQLite AUTOINCREMENT).
type (
	ProductID   int64
	WarehouseID int64
	ClientID    int64
	SupplierID  int64
	SaleID      int64
	ShiftID     int64
	PayableID   int64
	MovementID  int64
)

// DefaultWarehouse always exists; it is seeded on first store open.
const DefaultWarehouse WarehouseID = 1

// =============================================================================
// PAYMENT CLASSIFICATION
// =============================================================================

type PaymentType string

const (
	// PaymentCash means the sale was fully covered at the counter.
	PaymentCash PaymentType = "cash"
	// PaymentCredit means paid < total; the remainder goes to the client balance.
	PaymentCredit PaymentType = "credit"
)

// ClassifyPayment derives the payment type. It is never chosen by the caller.
func ClassifyPayment(total, paid decimal.Decimal) PaymentType {
	if paid.GreaterThanOrEqual(total) {
		return PaymentCash
	}
	return PaymentCredit
}

// =============================================================================
// CATALOG ENTITIES
// =============================================================================

// Product carries a cached Stock projection of the stock ledger. The ledger
// sum is the ground truth; Stock is maintained write-through and can be
// rebuilt at any time (inventory.Recompute).
type Product struct {
	ID          ProductID
	Barcode     string
	SKU         string
	Name        string
	Description string
	Unit        string
	Price       decimal.Decimal
	Discount    decimal.Decimal // percent 0-100
	Tax         decimal.Decimal // percent 0-100
	Stock       decimal.Decimal // cached projection, not ground truth
}

type Warehouse struct {
	ID       WarehouseID
	Name     string
	Location string
}

type Client struct {
	ID          ClientID
	Name        string
	Phone       string
	Email       string
	Address     string
	CreditLimit decimal.Decimal
	Balance     decimal.Decimal // accumulated amount owed
}

type Supplier struct {
	ID       SupplierID
	LegalID  string
	Name     string
	Phone    string
	Email    string
	BankInfo string
}

// =============================================================================
// LEDGER ENTRIES (append-only)
// =============================================================================

// StockMovement is an immutable stock ledger entry. Positive quantity is an
// inflow, negative an outflow. Current stock for (product, warehouse) is the
// sum of all entries for that pair.
type StockMovement struct {
	ID          MovementID
	At          time.Time
	ProductID   ProductID
	WarehouseID WarehouseID
	Quantity    decimal.Decimal
	Reason      string
}

// StockMovementRow is a movement joined with the product name for listings.
type StockMovementRow struct {
	StockMovement
	ProductName string
}

// CashMovement is an immutable cash ledger entry. Sign encodes direction.
type CashMovement struct {
	ID      int64
	At      time.Time
	Concept string
	Amount  decimal.Decimal
}

// =============================================================================
// SALES
// =============================================================================

type Sale struct {
	ID          SaleID
	At          time.Time
	ClientID    *ClientID
	Total       decimal.Decimal
	Discount    decimal.Decimal // global percent applied to the total
	Paid        decimal.Decimal
	PaymentType PaymentType
}

// SaleLine snapshots the price, discount and tax at sale time.
type SaleLine struct {
	ID        int64
	SaleID    SaleID
	ProductID ProductID
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
}

// =============================================================================
// CASH SHIFTS
// =============================================================================

// CashShift is the drawer lifecycle record. ClosedAt is nil while the shift
// is open; at most one shift may be open at a time.
type CashShift struct {
	ID            ShiftID
	OpenedAt      time.Time
	OpeningAmount decimal.Decimal
	ClosedAt      *time.Time
}

// Open reports whether the shift is still accepting movements.
func (s CashShift) Open() bool { return s.ClosedAt == nil }

// =============================================================================
// PAYABLES
// =============================================================================

// Payable is a supplier invoice. Invariant: 0 <= Paid <= Amount.
type Payable struct {
	ID         PayableID
	SupplierID SupplierID
	IssuedAt   time.Time
	Concept    string
	Amount     decimal.Decimal
	Paid       decimal.Decimal
}

// Balance is the remaining amount owed on the invoice.
func (p Payable) Balance() decimal.Decimal { return p.Amount.Sub(p.Paid) }

// PayableRow is a payable joined with the supplier name for listings.
type PayableRow struct {
	Payable
	SupplierName string
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// MustParseDecimal parses a stored decimal string, returning zero on garbage.
// Store columns are written by decimal.String so this only trips on hand-edited
// databases.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Dec is shorthand for building decimals in call sites and tests.
func Dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }
