/*
handlers.go - HTTP API handlers for the point-of-sale engine

PURPOSE:
  Exposes the ledger engines via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Catalog:
    GET    /api/products               Search products (?q=)
    POST   /api/products               Create product
    GET    /api/products/{id}          Get product
    GET    /api/clients                List clients
    POST   /api/clients                Create client
    GET    /api/suppliers              List suppliers
    POST   /api/suppliers              Create supplier
    GET    /api/warehouses             List warehouses
    POST   /api/warehouses             Create warehouse

  Inventory:
    GET    /api/inventory/stock        Stock for a product (?product_id=&warehouse_id=)
    GET    /api/inventory/movements    Movement history (?product_id=)
    POST   /api/inventory/movements    Record a movement
    POST   /api/inventory/transfers    Transfer between warehouses
    POST   /api/inventory/recompute    Rebuild a cached stock projection

  Sales:
    GET    /api/sales                  List sales
    POST   /api/sales                  Commit a cart
    GET    /api/sales/{id}/lines       Lines of one sale

  Cash:
    POST   /api/cash/shifts/open       Open a shift
    POST   /api/cash/shifts/close      Close the open shift
    GET    /api/cash/shifts/current    The open shift, if any
    GET    /api/cash/movements         Cash ledger
    POST   /api/cash/movements         Append a cash entry
    GET    /api/cash/total             Running drawer total
    POST   /api/cash/reconcile         Declared-vs-counted variance

  Payables:
    GET    /api/payables               List invoices (?pending=true)
    POST   /api/payables               Record a supplier invoice
    GET    /api/payables/{id}          Get one invoice
    POST   /api/payables/{id}/payments Apply a payment

ERROR HANDLING:
  Domain errors map to HTTP status by classification:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (insufficient stock, shift state, over-payment, duplicate)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/desger/pos-engine/cashshift"
	"github.com/desger/pos-engine/catalog"
	"github.com/desger/pos-engine/inventory"
	"github.com/desger/pos-engine/ledger"
	"github.com/desger/pos-engine/payables"
	"github.com/desger/pos-engine/sales"
	"github.com/desger/pos-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Catalog   *catalog.Registry
	Inventory *inventory.Engine
	Sales     *sales.Engine
	Cash      *cashshift.Engine
	Payables  *payables.Engine

	log *zap.Logger
}

// NewHandler wires every engine onto the given store.
func NewHandler(store *sqlite.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Catalog:   catalog.New(store),
		Inventory: inventory.New(store),
		Sales:     sales.New(store),
		Cash:      cashshift.New(store),
		Payables:  payables.New(store),
		log:       log,
	}
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// SearchProducts returns products matching ?q= over barcode, name and sku.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeDomainError(w, "Failed to search products", err)
		return
	}

	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.Catalog.Product(r.Context(), ledger.ProductID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*p))
}

// CreateProduct creates a new catalog product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	price, err := parseOptionalDecimal(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid price", err)
		return
	}
	discount, err := parseOptionalDecimal(req.Discount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid discount", err)
		return
	}
	tax, err := parseOptionalDecimal(req.Tax)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tax", err)
		return
	}

	id, err := h.Catalog.AddProduct(r.Context(), ledger.Product{
		Barcode:     req.Barcode,
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
		Price:       price,
		Discount:    discount,
		Tax:         tax,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to create product", err)
		return
	}

	p, err := h.Catalog.Product(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to load created product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(*p))
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns all client accounts.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Catalog.Clients(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list clients", err)
		return
	}

	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateClient creates a new client account.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	creditLimit := decimal.Zero
	if req.CreditLimit != "" {
		var err error
		creditLimit, err = parseDecimal(req.CreditLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid credit_limit", err)
			return
		}
	}

	id, err := h.Catalog.AddClient(r.Context(), ledger.Client{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		CreditLimit: creditLimit,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to create client", err)
		return
	}

	c, err := h.Catalog.Client(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to load created client", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(*c))
}

// =============================================================================
// SUPPLIER AND WAREHOUSE HANDLERS
// =============================================================================

// ListSuppliers returns all suppliers.
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Catalog.Suppliers(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list suppliers", err)
		return
	}

	dtos := make([]SupplierDTO, len(suppliers))
	for i, s := range suppliers {
		dtos[i] = SupplierDTO{
			ID:       int64(s.ID),
			LegalID:  s.LegalID,
			Name:     s.Name,
			Phone:    s.Phone,
			Email:    s.Email,
			BankInfo: s.BankInfo,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSupplier creates a new supplier.
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req CreateSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id, err := h.Catalog.AddSupplier(r.Context(), ledger.Supplier{
		LegalID:  req.LegalID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		BankInfo: req.BankInfo,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to create supplier", err)
		return
	}

	writeJSON(w, http.StatusCreated, SupplierDTO{
		ID:       int64(id),
		LegalID:  req.LegalID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		BankInfo: req.BankInfo,
	})
}

// ListWarehouses returns all warehouses, the default one included.
func (h *Handler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.Catalog.Warehouses(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list warehouses", err)
		return
	}

	dtos := make([]WarehouseDTO, len(warehouses))
	for i, wh := range warehouses {
		dtos[i] = WarehouseDTO{ID: int64(wh.ID), Name: wh.Name, Location: wh.Location}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWarehouse creates a new warehouse.
func (h *Handler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req CreateWarehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id, err := h.Catalog.AddWarehouse(r.Context(), ledger.Warehouse{
		Name:     req.Name,
		Location: req.Location,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to create warehouse", err)
		return
	}

	writeJSON(w, http.StatusCreated, WarehouseDTO{ID: int64(id), Name: req.Name, Location: req.Location})
}

// =============================================================================
// INVENTORY HANDLERS
// =============================================================================

// GetStock returns on-hand stock for ?product_id=, scoped to ?warehouse_id=
// when given, global otherwise.
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product_id", err)
		return
	}

	var warehouse *ledger.WarehouseID
	var warehouseOut *int64
	if raw := r.URL.Query().Get("warehouse_id"); raw != "" {
		wid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid warehouse_id", err)
			return
		}
		w2 := ledger.WarehouseID(wid)
		warehouse = &w2
		warehouseOut = &wid
	}

	stock, err := h.Inventory.StockOf(r.Context(), ledger.ProductID(productID), warehouse)
	if err != nil {
		h.writeDomainError(w, "Failed to get stock", err)
		return
	}

	writeJSON(w, http.StatusOK, StockDTO{
		ProductID:   productID,
		WarehouseID: warehouseOut,
		Stock:       stock.String(),
	})
}

// ListStockMovements returns movement history, optionally scoped to ?product_id=.
func (h *Handler) ListStockMovements(w http.ResponseWriter, r *http.Request) {
	var product *ledger.ProductID
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		pid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid product_id", err)
			return
		}
		p := ledger.ProductID(pid)
		product = &p
	}

	movements, err := h.Inventory.Movements(r.Context(), product)
	if err != nil {
		h.writeDomainError(w, "Failed to list movements", err)
		return
	}

	dtos := make([]StockMovementDTO, len(movements))
	for i, m := range movements {
		dtos[i] = StockMovementDTO{
			ID:          int64(m.ID),
			ProductID:   int64(m.ProductID),
			ProductName: m.ProductName,
			WarehouseID: int64(m.WarehouseID),
			Quantity:    m.Quantity.String(),
			Reason:      m.Reason,
			At:          m.At.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MoveStock records a signed stock movement.
func (h *Handler) MoveStock(w http.ResponseWriter, r *http.Request) {
	var req MoveStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	qty, err := parseDecimal(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quantity", err)
		return
	}

	warehouse := ledger.WarehouseID(req.WarehouseID)
	if req.WarehouseID == 0 {
		warehouse = ledger.DefaultWarehouse
	}

	if err := h.Inventory.Move(r.Context(), ledger.ProductID(req.ProductID), warehouse, qty, req.Reason); err != nil {
		h.writeDomainError(w, "Failed to record movement", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// TransferStock moves stock between two warehouses as one atomic unit.
func (h *Handler) TransferStock(w http.ResponseWriter, r *http.Request) {
	var req TransferStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	qty, err := parseDecimal(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quantity", err)
		return
	}

	err = h.Inventory.Transfer(r.Context(),
		ledger.ProductID(req.ProductID),
		ledger.WarehouseID(req.FromWarehouse),
		ledger.WarehouseID(req.ToWarehouse),
		qty, req.Reason)
	if err != nil {
		h.writeDomainError(w, "Failed to transfer stock", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "transferred"})
}

// RecomputeStock rebuilds the cached stock projection for ?product_id=.
func (h *Handler) RecomputeStock(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product_id", err)
		return
	}

	stock, err := h.Inventory.Recompute(r.Context(), ledger.ProductID(productID))
	if err != nil {
		h.writeDomainError(w, "Failed to recompute stock", err)
		return
	}
	writeJSON(w, http.StatusOK, StockDTO{ProductID: productID, Stock: stock.String()})
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// ListSales returns sale headers newest first.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	all, err := h.Sales.List(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list sales", err)
		return
	}

	dtos := make([]SaleDTO, len(all))
	for i, s := range all {
		dtos[i] = toSaleDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSale commits a cart as one atomic unit.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := sales.Input{Paid: decimal.Zero}
	if req.ClientID != nil {
		cid := ledger.ClientID(*req.ClientID)
		in.ClientID = &cid
	}
	if req.GlobalDiscount != "" {
		var err error
		in.GlobalDiscount, err = parseDecimal(req.GlobalDiscount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid global_discount", err)
			return
		}
	}
	if req.Paid != "" {
		var err error
		in.Paid, err = parseDecimal(req.Paid)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid paid", err)
			return
		}
	}

	for _, l := range req.Lines {
		line := sales.Line{ProductID: ledger.ProductID(l.ProductID)}
		if l.WarehouseID != nil {
			wid := ledger.WarehouseID(*l.WarehouseID)
			line.Warehouse = &wid
		}

		var err error
		if line.Quantity, err = parseDecimal(l.Quantity); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid line quantity", err)
			return
		}
		if line.Price, err = parseDecimal(l.Price); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid line price", err)
			return
		}
		if l.Discount != "" {
			if line.Discount, err = parseDecimal(l.Discount); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid line discount", err)
				return
			}
		}
		if l.Tax != "" {
			if line.Tax, err = parseDecimal(l.Tax); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid line tax", err)
				return
			}
		}
		in.Lines = append(in.Lines, line)
	}

	id, err := h.Sales.CreateSale(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, "Failed to create sale", err)
		return
	}

	h.log.Info("sale committed",
		zap.Int64("sale_id", int64(id)),
		zap.String("total", in.Total().String()),
		zap.Int("lines", len(in.Lines)))

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    int64(id),
		"total": in.Total().String(),
	})
}

// GetSaleLines returns the snapshot lines of one sale.
func (h *Handler) GetSaleLines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	lines, err := h.Sales.Lines(r.Context(), ledger.SaleID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to get sale lines", err)
		return
	}

	dtos := make([]SaleLineDTO, len(lines))
	for i, l := range lines {
		dtos[i] = SaleLineDTO{
			ProductID: int64(l.ProductID),
			Quantity:  l.Quantity.String(),
			Price:     l.Price.String(),
			Discount:  l.Discount.String(),
			Tax:       l.Tax.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CASH HANDLERS
// =============================================================================

// OpenShift opens a cash shift with the counted opening float.
func (h *Handler) OpenShift(w http.ResponseWriter, r *http.Request) {
	var req OpenShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := parseDecimal(req.OpeningAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid opening_amount", err)
		return
	}

	id, err := h.Cash.OpenShift(r.Context(), amount)
	if err != nil {
		h.writeDomainError(w, "Failed to open shift", err)
		return
	}

	h.log.Info("shift opened", zap.Int64("shift_id", int64(id)))
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(id)})
}

// CloseShift closes the open shift.
func (h *Handler) CloseShift(w http.ResponseWriter, r *http.Request) {
	label, total, err := h.Cash.CloseShift(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to close shift", err)
		return
	}

	h.log.Info("shift closed", zap.String("label", label), zap.String("total", total.String()))
	writeJSON(w, http.StatusOK, CloseShiftResponse{Label: label, Total: total.String()})
}

// GetCurrentShift returns the open shift, or 404 when the drawer is closed.
func (h *Handler) GetCurrentShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Cash.Current(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to get current shift", err)
		return
	}
	if shift == nil {
		writeError(w, http.StatusNotFound, "No open shift", nil)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// ListCashMovements returns cash ledger entries newest first.
func (h *Handler) ListCashMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.Cash.Movements(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list cash movements", err)
		return
	}

	dtos := make([]CashMovementDTO, len(movements))
	for i, m := range movements {
		dtos[i] = CashMovementDTO{
			ID:      m.ID,
			Concept: m.Concept,
			Amount:  m.Amount.String(),
			At:      m.At.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddCashMovement appends a cash ledger entry.
func (h *Handler) AddCashMovement(w http.ResponseWriter, r *http.Request) {
	var req CashMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := parseDecimal(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	if err := h.Cash.AddMovement(r.Context(), req.Concept, amount); err != nil {
		h.writeDomainError(w, "Failed to add cash movement", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// GetCashTotal returns the running drawer total.
func (h *Handler) GetCashTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.Cash.ShiftTotal(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to get cash total", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"total": total.String()})
}

// ReconcileCash reports the declared-vs-counted variance.
func (h *Handler) ReconcileCash(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	counted, err := parseDecimal(req.CountedCash)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid counted_cash", err)
		return
	}

	variance, err := h.Cash.Reconcile(r.Context(), counted)
	if err != nil {
		h.writeDomainError(w, "Failed to reconcile", err)
		return
	}
	total, err := h.Cash.ShiftTotal(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to reconcile", err)
		return
	}

	writeJSON(w, http.StatusOK, ReconcileResponse{
		Total:    total.String(),
		Counted:  counted.String(),
		Variance: variance.String(),
	})
}

// =============================================================================
// PAYABLE HANDLERS
// =============================================================================

// ListPayables returns supplier invoices, ?pending=true filters to balance > 0.
func (h *Handler) ListPayables(w http.ResponseWriter, r *http.Request) {
	pendingOnly := r.URL.Query().Get("pending") == "true"

	rows, err := h.Payables.List(r.Context(), pendingOnly)
	if err != nil {
		h.writeDomainError(w, "Failed to list payables", err)
		return
	}

	dtos := make([]PayableDTO, len(rows))
	for i, row := range rows {
		dto := toPayableDTO(row.Payable)
		dto.SupplierName = row.SupplierName
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayable records a supplier invoice.
func (h *Handler) CreatePayable(w http.ResponseWriter, r *http.Request) {
	var req CreatePayableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := parseDecimal(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	id, err := h.Payables.AddInvoice(r.Context(), ledger.SupplierID(req.SupplierID), req.Concept, amount)
	if err != nil {
		h.writeDomainError(w, "Failed to create payable", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(id)})
}

// GetPayable returns one supplier invoice.
func (h *Handler) GetPayable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.Payables.Get(r.Context(), ledger.PayableID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to get payable", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayableDTO(*p))
}

// PayPayable applies a payment to an invoice.
func (h *Handler) PayPayable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req PayPayableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := parseDecimal(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	if err := h.Payables.Pay(r.Context(), ledger.PayableID(id), amount); err != nil {
		h.writeDomainError(w, "Failed to apply payment", err)
		return
	}

	p, err := h.Payables.Get(r.Context(), ledger.PayableID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to load payable", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayableDTO(*p))
}

// =============================================================================
// HELPERS
// =============================================================================

func toProductDTO(p ledger.Product) ProductDTO {
	return ProductDTO{
		ID:          int64(p.ID),
		Barcode:     p.Barcode,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Unit:        p.Unit,
		Price:       p.Price.String(),
		Discount:    p.Discount.String(),
		Tax:         p.Tax.String(),
		Stock:       p.Stock.String(),
	}
}

func toClientDTO(c ledger.Client) ClientDTO {
	return ClientDTO{
		ID:          int64(c.ID),
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
		Balance:     c.Balance.String(),
		CreditLimit: c.CreditLimit.String(),
	}
}

func toSaleDTO(s ledger.Sale) SaleDTO {
	dto := SaleDTO{
		ID:          int64(s.ID),
		Total:       s.Total.String(),
		Discount:    s.Discount.String(),
		Paid:        s.Paid.String(),
		PaymentType: string(s.PaymentType),
		At:          s.At.Format(time.RFC3339),
	}
	if s.ClientID != nil {
		cid := int64(*s.ClientID)
		dto.ClientID = &cid
	}
	return dto
}

func toShiftDTO(s ledger.CashShift) ShiftDTO {
	dto := ShiftDTO{
		ID:            int64(s.ID),
		OpenedAt:      s.OpenedAt.Format(time.RFC3339),
		OpeningAmount: s.OpeningAmount.String(),
		Open:          s.Open(),
	}
	if s.ClosedAt != nil {
		dto.ClosedAt = s.ClosedAt.Format(time.RFC3339)
	}
	return dto
}

func toPayableDTO(p ledger.Payable) PayableDTO {
	return PayableDTO{
		ID:         int64(p.ID),
		SupplierID: int64(p.SupplierID),
		Concept:    p.Concept,
		Amount:     p.Amount.String(),
		Paid:       p.Paid.String(),
		Balance:    p.Balance().String(),
		IssuedAt:   p.IssuedAt.Format(time.RFC3339),
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// parseOptionalDecimal treats an omitted field as zero.
func parseOptionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// pathID parses the {id} URL parameter, writing a 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeDomainError maps domain error classes to HTTP status codes. Conflict
// checks run before the broader client-error check: IsClientError covers
// every business-rule rejection, including the 409 kinds.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case ledger.IsConflict(err),
		errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrOverPayment):
		writeError(w, http.StatusConflict, message, err)
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.log.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
