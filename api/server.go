/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLog: Structured request logging (zap)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/products/*      Catalog products
  /api/clients/*       Client accounts
  /api/suppliers/*     Suppliers
  /api/warehouses/*    Warehouses
  /api/inventory/*     Stock queries, movements, transfers
  /api/sales/*         Sale commits and history
  /api/cash/*          Shift lifecycle and cash ledger
  /api/payables/*      Supplier invoices and payments

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, log *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLog(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Catalog routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.SearchProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{id}", h.GetProduct)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.ListSuppliers)
			r.Post("/", h.CreateSupplier)
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", h.ListWarehouses)
			r.Post("/", h.CreateWarehouse)
		})

		// Inventory routes
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/stock", h.GetStock)
			r.Get("/movements", h.ListStockMovements)
			r.Post("/movements", h.MoveStock)
			r.Post("/transfers", h.TransferStock)
			r.Post("/recompute", h.RecomputeStock)
		})

		// Sale routes
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.ListSales)
			r.Post("/", h.CreateSale)
			r.Get("/{id}/lines", h.GetSaleLines)
		})

		// Cash routes
		r.Route("/cash", func(r chi.Router) {
			r.Post("/shifts/open", h.OpenShift)
			r.Post("/shifts/close", h.CloseShift)
			r.Get("/shifts/current", h.GetCurrentShift)
			r.Get("/movements", h.ListCashMovements)
			r.Post("/movements", h.AddCashMovement)
			r.Get("/total", h.GetCashTotal)
			r.Post("/reconcile", h.ReconcileCash)
		})

		// Payable routes
		r.Route("/payables", func(r chi.Router) {
			r.Get("/", h.ListPayables)
			r.Post("/", h.CreatePayable)
			r.Get("/{id}", h.GetPayable)
			r.Post("/{id}/payments", h.PayPayable)
		})
	})

	return r
}

// requestLog logs one line per request with method, path, status and latency.
func requestLog(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
