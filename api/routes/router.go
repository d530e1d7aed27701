package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurumworks/jewelpos-backend/api/controllers"
	"github.com/aurumworks/jewelpos-backend/api/middleware"
	approvalsvc "github.com/aurumworks/jewelpos-backend/internal/approval"
	authsvc "github.com/aurumworks/jewelpos-backend/internal/auth"
	billingsvc "github.com/aurumworks/jewelpos-backend/internal/billing"
	customersvc "github.com/aurumworks/jewelpos-backend/internal/customers"
	invoicesvc "github.com/aurumworks/jewelpos-backend/internal/invoices"
	"github.com/aurumworks/jewelpos-backend/internal/printing"
	productsvc "github.com/aurumworks/jewelpos-backend/internal/products"
	returnsvc "github.com/aurumworks/jewelpos-backend/internal/returns"
	stocksvc "github.com/aurumworks/jewelpos-backend/internal/stock"
	storesvc "github.com/aurumworks/jewelpos-backend/internal/stores"
	"github.com/aurumworks/jewelpos-backend/pkg/auth/session"
	"github.com/aurumworks/jewelpos-backend/pkg/config"
	"github.com/aurumworks/jewelpos-backend/pkg/db"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
	redisclient "github.com/aurumworks/jewelpos-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redisclient.Pinger
	Sessions session.Checker
	Gatherer prometheus.Gatherer

	Auth      authsvc.Service
	Billing   billingsvc.Service
	Invoices  invoicesvc.Service
	Products  productsvc.Service
	Customers customersvc.Service
	Approvals approvalsvc.Service
	Returns   returnsvc.Service
	Stores    storesvc.Service
	Users     controllers.UserDirectory
	Hub       *stocksvc.Hub
	Renderer  printing.Renderer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/barcode", controllers.ProductByBarcode(deps.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("manager", logg))
				r.Post("/", controllers.ProductCreate(deps.Products, logg))
				r.Patch("/{productId}", controllers.ProductUpdate(deps.Products, logg))
				r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerSearch(deps.Customers, logg))
			r.Post("/", controllers.CustomerCreate(deps.Customers, logg))
			r.Get("/{customerId}", controllers.CustomerGet(deps.Customers, logg))
			r.Put("/{customerId}", controllers.CustomerUpdate(deps.Customers, logg))
		})

		r.Route("/tabs", func(r chi.Router) {
			r.Post("/", controllers.TabOpen(deps.Billing, logg))
			r.Route("/{tabId}", func(r chi.Router) {
				r.Get("/", controllers.TabGet(deps.Billing, logg))
				r.Delete("/", controllers.TabClose(deps.Billing, logg))
				r.Post("/items", controllers.TabAddItem(deps.Billing, logg))
				r.Put("/items/{lineId}", controllers.TabSetQuantity(deps.Billing, logg))
				r.Delete("/items/{lineId}", controllers.TabRemoveItem(deps.Billing, logg))
				r.Put("/discount", controllers.TabSetDiscount(deps.Billing, logg))
				r.Put("/total", controllers.TabOverrideTotal(deps.Billing, logg))
				r.Put("/customer", controllers.TabSetCustomer(deps.Billing, logg))
				r.Put("/payment-method", controllers.TabSetPaymentMethod(deps.Billing, logg))
				r.Put("/paper-size", controllers.TabSetPaperSize(deps.Billing, logg))
				r.Post("/finalize", controllers.TabFinalize(deps.Invoices, logg))
			})
		})

		r.Route("/bills", func(r chi.Router) {
			r.Get("/", controllers.BillList(deps.Invoices, logg))
			r.Get("/search", controllers.BillSearch(deps.Invoices, logg))
			r.Get("/{billId}", controllers.BillGet(deps.Invoices, logg))
			r.Get("/{billId}/print", controllers.BillPrint(deps.Invoices, deps.Stores, deps.Renderer, logg))
		})

		r.Route("/approvals", func(r chi.Router) {
			r.Get("/{requestId}", controllers.ApprovalGet(deps.Approvals, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("manager", logg))
				r.Get("/", controllers.ApprovalListPending(deps.Approvals, logg))
				r.Post("/{requestId}/decision", controllers.ApprovalDecide(deps.Approvals, logg))
			})
		})

		r.Route("/returns", func(r chi.Router) {
			r.Post("/", controllers.ReturnSubmit(deps.Returns, logg))
			r.Get("/", controllers.ReturnList(deps.Returns, logg))
			r.Get("/{returnId}", controllers.ReturnGet(deps.Returns, logg))
			r.With(middleware.RequireRole("manager", logg)).
				Post("/{returnId}/decision", controllers.ReturnDecide(deps.Returns, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole("manager", logg))
			r.Get("/", controllers.UserList(deps.Users, logg))
			r.Delete("/{userId}", controllers.UserDeactivate(deps.Users, logg))
		})

		r.Route("/stores", func(r chi.Router) {
			r.Get("/me", controllers.StoreProfile(deps.Stores, logg))
			r.With(middleware.RequireRole("manager", logg)).
				Put("/me", controllers.StoreUpdate(deps.Stores, logg))
		})

		r.Get("/stock/stream", controllers.StockStream(deps.Hub, logg))
	})

	return r
}
