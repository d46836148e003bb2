/*
Package sales implements the sale engine: cart-to-invoice transformation and
the atomic multi-ledger commit.

A sale is the hardest unit in the system because it touches three ledgers at
once: the sale record itself, the stock ledger (one debit per line) and the
client accounts-receivable balance on credit sales. All of it commits or none
of it does; a mid-cart stock shortage rolls back the header and every line
already written.

TOTAL FORMULA:
  total = sum(line.qty * line.price) * (1 - globalDiscount/100)

  Per-line discount and tax percentages are captured on each line as
  snapshots but are NOT folded into the stored total. Historical sales keep
  this shape; do not "fix" the formula without a product decision.

PAYMENT CLASSIFICATION:
  Derived, never chosen by the caller: credit iff paid < total.
*/
package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/desger/pos-engine/inventory"
	"github.com/desger/pos-engine/ledger"
)

// Engine turns carts into committed sales.
type Engine struct {
	store ledger.TxStore
}

func New(store ledger.TxStore) *Engine {
	return &Engine{store: store}
}

// Line is one cart entry. Price, Discount and Tax are snapshots supplied by
// the caller at sale time. Warehouse nil means the default warehouse.
type Line struct {
	ProductID ledger.ProductID
	Warehouse *ledger.WarehouseID
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
}

// Input is the full cart handed to CreateSale.
type Input struct {
	ClientID       *ledger.ClientID
	Lines          []Line
	GlobalDiscount decimal.Decimal // percent 0-100
	Paid           decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Total computes the invoice total for the cart. Exposed so callers can quote
// before committing.
func (in Input) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range in.Lines {
		total = total.Add(l.Price.Mul(l.Quantity))
	}
	return total.Mul(decimal.NewFromInt(1).Sub(in.GlobalDiscount.Div(hundred)))
}

func (in Input) validate() error {
	if len(in.Lines) == 0 {
		return ledger.Invalidf("lines", "cart is empty")
	}
	for _, l := range in.Lines {
		if !l.Quantity.IsPositive() {
			return ledger.Invalidf("quantity", "must be positive for product %d", l.ProductID)
		}
		if l.Price.IsNegative() {
			return ledger.Invalidf("price", "must not be negative for product %d", l.ProductID)
		}
	}
	if in.GlobalDiscount.IsNegative() || in.GlobalDiscount.GreaterThan(hundred) {
		return ledger.Invalidf("discount", "must be between 0 and 100")
	}
	if in.Paid.IsNegative() {
		return ledger.Invalidf("paid", "must not be negative")
	}
	return nil
}

// CreateSale commits the cart as one atomic unit:
//
//	(a) insert the sale header
//	(b) per line: insert the snapshot line and debit stock ("sale" movement)
//	(c) on a credit sale with a known client, grow the client balance by
//	    total - paid
//
// Any line that would drive stock negative fails the whole unit with
// InsufficientStock; no partial sale is ever observable.
func (e *Engine) CreateSale(ctx context.Context, in Input) (ledger.SaleID, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	total := in.Total()
	sale := ledger.Sale{
		ClientID:    in.ClientID,
		Total:       total,
		Discount:    in.GlobalDiscount,
		Paid:        in.Paid,
		PaymentType: ledger.ClassifyPayment(total, in.Paid),
	}

	var saleID ledger.SaleID
	err := e.store.RunAtomic(ctx, func(st ledger.Store) error {
		id, err := st.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		saleID = id

		for _, l := range in.Lines {
			if err := st.InsertSaleLine(ctx, ledger.SaleLine{
				SaleID:    id,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Price:     l.Price,
				Discount:  l.Discount,
				Tax:       l.Tax,
			}); err != nil {
				return err
			}

			warehouse := ledger.DefaultWarehouse
			if l.Warehouse != nil {
				warehouse = *l.Warehouse
			}
			if err := inventory.Debit(ctx, st, l.ProductID, warehouse, l.Quantity, "sale"); err != nil {
				return err
			}
		}

		if in.ClientID != nil && sale.PaymentType == ledger.PaymentCredit {
			if err := st.AdjustClientBalance(ctx, *in.ClientID, total.Sub(in.Paid)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saleID, nil
}

// List returns sale headers newest first.
func (e *Engine) List(ctx context.Context) ([]ledger.Sale, error) {
	return e.store.ListSales(ctx)
}

// Lines returns the snapshot lines of one sale.
func (e *Engine) Lines(ctx context.Context, sale ledger.SaleID) ([]ledger.SaleLine, error) {
	return e.store.SaleLines(ctx, sale)
}
