/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

CONVENTIONS:
  - Money and quantities travel as strings to preserve decimal exactness.
  - Timestamps are RFC3339.
  - Optional references (client, warehouse) are pointers.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Route definitions
*/
package api

// =============================================================================
// CATALOG
// =============================================================================

// ProductDTO is the API representation of a catalog product.
type ProductDTO struct {
	ID          int64  `json:"id"`
	Barcode     string `json:"barcode,omitempty"`
	SKU         string `json:"sku,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit"`
	Price       string `json:"price"`
	Discount    string `json:"discount"`
	Tax         string `json:"tax"`
	Stock       string `json:"stock"`
}

// CreateProductRequest is the payload for POST /api/products.
type CreateProductRequest struct {
	Barcode     string `json:"barcode"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Price       string `json:"price"`
	Discount    string `json:"discount"`
	Tax         string `json:"tax"`
}

// ClientDTO is the API representation of a client account.
type ClientDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	Balance     string `json:"balance"`
	CreditLimit string `json:"credit_limit"`
}

// CreateClientRequest is the payload for POST /api/clients.
type CreateClientRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	CreditLimit string `json:"credit_limit"`
}

// SupplierDTO is the API representation of a supplier.
type SupplierDTO struct {
	ID       int64  `json:"id"`
	LegalID  string `json:"legal_id,omitempty"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	BankInfo string `json:"bank_info,omitempty"`
}

// CreateSupplierRequest is the payload for POST /api/suppliers.
type CreateSupplierRequest struct {
	LegalID  string `json:"legal_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	BankInfo string `json:"bank_info"`
}

// WarehouseDTO is the API representation of a warehouse.
type WarehouseDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// CreateWarehouseRequest is the payload for POST /api/warehouses.
type CreateWarehouseRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// =============================================================================
// INVENTORY
// =============================================================================

// MoveStockRequest is the payload for POST /api/inventory/movements.
type MoveStockRequest struct {
	ProductID   int64  `json:"product_id"`
	WarehouseID int64  `json:"warehouse_id"`
	Quantity    string `json:"quantity"`
	Reason      string `json:"reason"`
}

// TransferStockRequest is the payload for POST /api/inventory/transfers.
type TransferStockRequest struct {
	ProductID     int64  `json:"product_id"`
	FromWarehouse int64  `json:"from_warehouse"`
	ToWarehouse   int64  `json:"to_warehouse"`
	Quantity      string `json:"quantity"`
	Reason        string `json:"reason"`
}

// StockMovementDTO is one row of the stock ledger.
type StockMovementDTO struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	WarehouseID int64  `json:"warehouse_id"`
	Quantity    string `json:"quantity"`
	Reason      string `json:"reason"`
	At          string `json:"at"`
}

// StockDTO reports on-hand stock for a product.
type StockDTO struct {
	ProductID   int64  `json:"product_id"`
	WarehouseID *int64 `json:"warehouse_id,omitempty"`
	Stock       string `json:"stock"`
}

// =============================================================================
// SALES
// =============================================================================

// SaleLineRequest is one cart entry in a sale request.
type SaleLineRequest struct {
	ProductID   int64  `json:"product_id"`
	WarehouseID *int64 `json:"warehouse_id,omitempty"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Discount    string `json:"discount"`
	Tax         string `json:"tax"`
}

// CreateSaleRequest is the payload for POST /api/sales.
type CreateSaleRequest struct {
	ClientID       *int64            `json:"client_id,omitempty"`
	Lines          []SaleLineRequest `json:"lines"`
	GlobalDiscount string            `json:"global_discount"`
	Paid           string            `json:"paid"`
}

// SaleDTO is the API representation of a committed sale.
type SaleDTO struct {
	ID          int64  `json:"id"`
	ClientID    *int64 `json:"client_id,omitempty"`
	Total       string `json:"total"`
	Discount    string `json:"discount"`
	Paid        string `json:"paid"`
	PaymentType string `json:"payment_type"`
	At          string `json:"at"`
}

// SaleLineDTO is one snapshot line of a committed sale.
type SaleLineDTO struct {
	ProductID int64  `json:"product_id"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price"`
	Discount  string `json:"discount"`
	Tax       string `json:"tax"`
}

// =============================================================================
// CASH
// =============================================================================

// OpenShiftRequest is the payload for POST /api/cash/shifts/open.
type OpenShiftRequest struct {
	OpeningAmount string `json:"opening_amount"`
}

// ShiftDTO is the API representation of a cash shift.
type ShiftDTO struct {
	ID            int64  `json:"id"`
	OpenedAt      string `json:"opened_at"`
	ClosedAt      string `json:"closed_at,omitempty"`
	OpeningAmount string `json:"opening_amount"`
	Open          bool   `json:"open"`
}

// CloseShiftResponse reports the close label and final total.
type CloseShiftResponse struct {
	Label string `json:"label"`
	Total string `json:"total"`
}

// CashMovementRequest is the payload for POST /api/cash/movements.
type CashMovementRequest struct {
	Concept string `json:"concept"`
	Amount  string `json:"amount"`
}

// CashMovementDTO is one row of the cash ledger.
type CashMovementDTO struct {
	ID      int64  `json:"id"`
	Concept string `json:"concept"`
	Amount  string `json:"amount"`
	At      string `json:"at"`
}

// ReconcileRequest is the payload for POST /api/cash/reconcile.
type ReconcileRequest struct {
	CountedCash string `json:"counted_cash"`
}

// ReconcileResponse reports the declared-vs-counted variance.
type ReconcileResponse struct {
	Total    string `json:"total"`
	Counted  string `json:"counted"`
	Variance string `json:"variance"`
}

// =============================================================================
// PAYABLES
// =============================================================================

// CreatePayableRequest is the payload for POST /api/payables.
type CreatePayableRequest struct {
	SupplierID int64  `json:"supplier_id"`
	Concept    string `json:"concept"`
	Amount     string `json:"amount"`
}

// PayPayableRequest is the payload for POST /api/payables/{id}/payments.
type PayPayableRequest struct {
	Amount string `json:"amount"`
}

// PayableDTO is the API representation of a supplier invoice.
type PayableDTO struct {
	ID           int64  `json:"id"`
	SupplierID   int64  `json:"supplier_id"`
	SupplierName string `json:"supplier_name,omitempty"`
	Concept      string `json:"concept"`
	Amount       string `json:"amount"`
	Paid         string `json:"paid"`
	Balance      string `json:"balance"`
	IssuedAt     string `json:"issued_at"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
