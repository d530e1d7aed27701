package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	approvalsvc "github.com/aurumworks/jewelpos-backend/internal/approval"
	authsvc "github.com/aurumworks/jewelpos-backend/internal/auth"
	billingsvc "github.com/aurumworks/jewelpos-backend/internal/billing"
	customersvc "github.com/aurumworks/jewelpos-backend/internal/customers"
	invoicesvc "github.com/aurumworks/jewelpos-backend/internal/invoices"
	"github.com/aurumworks/jewelpos-backend/internal/printing"
	productsvc "github.com/aurumworks/jewelpos-backend/internal/products"
	returnsvc "github.com/aurumworks/jewelpos-backend/internal/returns"
	storesvc "github.com/aurumworks/jewelpos-backend/internal/stores"
	pkgauth "github.com/aurumworks/jewelpos-backend/pkg/auth"
	"github.com/aurumworks/jewelpos-backend/pkg/auth/session"
	"github.com/aurumworks/jewelpos-backend/pkg/config"
	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubChecker struct {
	role string
}

func (s stubChecker) Touch(_ context.Context, accessID string) (*session.Session, error) {
	if accessID == "" {
		return nil, session.ErrNoSession
	}
	return &session.Session{
		AccessID: accessID,
		UserID:   uuid.New(),
		StoreID:  uuid.New(),
		Role:     s.role,
	}, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return &authsvc.LoginResponse{}, nil
}

func (stubAuthService) Logout(context.Context, string) error { return nil }

type stubBillingService struct{}

func (stubBillingService) OpenTab(context.Context, uuid.UUID) (*billingsvc.TabView, error) {
	return &billingsvc.TabView{}, nil
}

func (stubBillingService) GetTab(context.Context, uuid.UUID) (*billingsvc.TabView, error) {
	panic("unimplemented")
}

func (stubBillingService) CloseTab(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

func (stubBillingService) AddItem(context.Context, uuid.UUID, uuid.UUID, int) (*billingsvc.TabView, error) {
	panic("unimplemented")
}

func (stubBillingService) AddItemByBarcode(context.Context, uuid.UUID, string, int) (*billingsvc.TabView, error) {
	panic("unimplemented")
}

func (stubBillingService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) (*billingsvc.TabView, error) {
	panic("unimplemented")
}

func (stubBillingService) SetQuantity(context.Context, uuid.UUID, uuid.UUID, int) (*billingsvc.TabView, error) {
	panic("unimplemented")
}

func (stubBillingService) SetDiscount(context.Context, uuid.UUID, decimal.Decimal) (*billingsvc.TabView, error) {
	panic("unimplemented")
}

func (stubBillingService) OverrideTotal(context.Context, uuid.UUID, decimal.Decimal) (*billingsvc.TabView, error) {
	panic("unimplemented")
}

func (stubBillingService) SetCustomer(context.Context, uuid.UUID, *uuid.UUID, string, string) (*billingsvc.TabView, error) {
	panic("unimplemented")
}

func (stubBillingService) SetPaymentMethod(context.Context, uuid.UUID, enums.PaymentMethod) (*billingsvc.TabView, error) {
	panic("unimplemented")
}

func (stubBillingService) SetPaperSize(context.Context, uuid.UUID, enums.PaperSize) (*billingsvc.TabView, error) {
	panic("unimplemented")
}

type stubInvoiceService struct{}

func (stubInvoiceService) Finalize(context.Context, uuid.UUID, uuid.UUID) (*models.Bill, error) {
	panic("unimplemented")
}

func (stubInvoiceService) GetBill(context.Context, string) (*models.Bill, error) {
	panic("unimplemented")
}

func (stubInvoiceService) ListBills(context.Context, uuid.UUID, int) ([]models.Bill, error) {
	return nil, nil
}

func (stubInvoiceService) SearchBills(context.Context, uuid.UUID, invoicesvc.SearchFilters, int) ([]models.Bill, error) {
	return nil, nil
}

type stubProductService struct{}

func (stubProductService) GetProduct(context.Context, uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) GetByBarcode(context.Context, uuid.UUID, string) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) ListProducts(context.Context, uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

func (stubProductService) SearchProducts(context.Context, uuid.UUID, string, int) ([]models.Product, error) {
	return nil, nil
}

func (stubProductService) StockMap(context.Context, uuid.UUID) (map[uuid.UUID]int, error) {
	panic("unimplemented")
}

func (stubProductService) CreateProduct(context.Context, uuid.UUID, productsvc.CreateProductInput) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubProductService) UpdateProduct(context.Context, uuid.UUID, uuid.UUID, productsvc.UpdateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) DeleteProduct(context.Context, uuid.UUID, uuid.UUID) error {
	panic("unimplemented")
}

type stubCustomerService struct{}

func (stubCustomerService) GetCustomer(context.Context, uuid.UUID) (*models.Customer, error) {
	panic("unimplemented")
}

func (stubCustomerService) SearchCustomers(context.Context, string, int) ([]models.Customer, error) {
	return nil, nil
}

func (stubCustomerService) CreateCustomer(context.Context, customersvc.CustomerInput) (*models.Customer, error) {
	panic("unimplemented")
}

func (stubCustomerService) UpdateCustomer(context.Context, uuid.UUID, customersvc.CustomerInput) (*models.Customer, error) {
	panic("unimplemented")
}

type stubApprovalService struct{}

func (stubApprovalService) Submit(context.Context, approvalsvc.SubmitInput) (*models.DiscountRequest, error) {
	panic("unimplemented")
}

func (stubApprovalService) Get(context.Context, string) (*models.DiscountRequest, error) {
	panic("unimplemented")
}

func (stubApprovalService) Status(context.Context, string) (enums.ApprovalStatus, error) {
	panic("unimplemented")
}

func (stubApprovalService) ListPending(context.Context, uuid.UUID) ([]models.DiscountRequest, error) {
	return nil, nil
}

func (stubApprovalService) Decide(context.Context, string, bool, uuid.UUID) (*models.DiscountRequest, error) {
	panic("unimplemented")
}

type stubReturnService struct{}

func (stubReturnService) Submit(context.Context, returnsvc.SubmitInput) (*models.ReturnRequest, error) {
	panic("unimplemented")
}

func (stubReturnService) Get(context.Context, string) (*models.ReturnRequest, error) {
	panic("unimplemented")
}

func (stubReturnService) ListByStore(context.Context, uuid.UUID, *enums.ReturnStatus, int) ([]models.ReturnRequest, error) {
	return nil, nil
}

func (stubReturnService) Decide(context.Context, string, bool, uuid.UUID) (*models.ReturnRequest, error) {
	panic("unimplemented")
}

type stubUserDirectory struct{}

func (stubUserDirectory) FindByID(context.Context, uuid.UUID) (*models.User, error) {
	panic("unimplemented")
}

func (stubUserDirectory) ListByStore(context.Context, uuid.UUID) ([]models.User, error) {
	return nil, nil
}

func (stubUserDirectory) Deactivate(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

type stubStoreService struct{}

func (stubStoreService) GetByID(context.Context, uuid.UUID) (*models.Store, error) {
	return &models.Store{}, nil
}

func (stubStoreService) Update(context.Context, uuid.UUID, storesvc.UpdateStoreInput) (*models.Store, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "jewelpos-test",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config, role string) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:    cfg,
		Logger:    logg,
		DB:        stubPinger{},
		Redis:     stubPinger{},
		Sessions:  stubChecker{role: role},
		Auth:      stubAuthService{},
		Billing:   stubBillingService{},
		Invoices:  stubInvoiceService{},
		Products:  stubProductService{},
		Customers: stubCustomerService{},
		Approvals: stubApprovalService{},
		Returns:   stubReturnService{},
		Stores:    stubStoreService{},
		Users:     stubUserDirectory{},
		Renderer:  printing.NewTextRenderer(),
	})
}

func buildToken(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		StoreID:  uuid.New(),
		Role:     role,
		AccessID: session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), "cashier")
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingToken(t *testing.T) {
	router := newTestRouter(testConfig(), "cashier")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupAcceptsValidToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, "cashier")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "cashier"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for product list got %d", resp.Code)
	}
}

func TestCatalogWritesRequireManager(t *testing.T) {
	cfg := testConfig()
	body := `{"name":"Gold Ring","stock":5,"selling_price":"118.00","tax_rate_percent":"18"}`

	cashierRouter := newTestRouter(cfg, "cashier")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "cashier"))
	resp := httptest.NewRecorder()
	cashierRouter.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier create got %d", resp.Code)
	}

	managerRouter := newTestRouter(cfg, "manager")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "manager"))
	resp = httptest.NewRecorder()
	managerRouter.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for manager create got %d", resp.Code)
	}
}

func TestApprovalListRequiresManager(t *testing.T) {
	cfg := testConfig()

	cashierRouter := newTestRouter(cfg, "cashier")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/approvals", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "cashier"))
	resp := httptest.NewRecorder()
	cashierRouter.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier got %d", resp.Code)
	}

	managerRouter := newTestRouter(cfg, "manager")
	req = httptest.NewRequest(http.MethodGet, "/api/v1/approvals", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "manager"))
	resp = httptest.NewRecorder()
	managerRouter.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager got %d", resp.Code)
	}
}

func TestLoginRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig(), "cashier")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestTokenWithUnknownSecretRejected(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, "cashier")

	other := testConfig()
	other.JWT.Secret = "another-secret"

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, other, "cashier"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign token got %d", resp.Code)
	}
}
