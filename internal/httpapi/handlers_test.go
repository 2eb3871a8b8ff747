package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tillpoint/backend/internal/cache"
	"tillpoint/backend/internal/domain"
	"tillpoint/backend/internal/seed"
	"tillpoint/backend/internal/service"
	"tillpoint/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.New()
	if err := seed.Run(context.Background(), repo); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := service.New(repo, cache.NoopDashboardCache{}, time.Second)
	auth := NewAuthManager("test-secret-key", time.Hour)

	return New(svc, auth, "*")
}

func loginToken(t *testing.T, handler http.Handler, username string, password string) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login as %s: expected 200, got %d (body: %s)", username, rec.Code, rec.Body.String())
	}

	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func doJSON(handler http.Handler, method string, path string, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestProductsRequireAuth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(handler, http.MethodGet, "/api/v1/products", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestProductsSearchQuery(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	rec := doJSON(handler, http.MethodGet, "/api/v1/products?q=bluetooth", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Products) != 1 || body.Products[0].SKU != "PROD-001" {
		t.Fatalf("unexpected products: %+v", body.Products)
	}
}

func TestProductCreateForbiddenForCashier(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	rec := doJSON(handler, http.MethodPost, "/api/v1/products", token, domain.ProductCreateRequest{
		Name:      "Sticker Pack",
		UnitPrice: 3.50,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	customerID := int64(1)
	rec := doJSON(handler, http.MethodPost, "/api/v1/checkout", token, domain.CheckoutRequest{
		CustomerID: &customerID,
		Items:      []domain.CheckoutLine{{ProductID: 1, Quantity: 1}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp domain.CheckoutResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.PointsEarned != 108 {
		t.Fatalf("points earned = %d, want 108", resp.PointsEarned)
	}
	if resp.Transaction.CashierID != "cashier" {
		t.Fatalf("cashier id = %q, want authenticated username", resp.Transaction.CashierID)
	}
}

func TestCheckoutEmptyCartBadRequest(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	rec := doJSON(handler, http.MethodPost, "/api/v1/checkout", token, domain.CheckoutRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCheckoutInsufficientStockConflict(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	rec := doJSON(handler, http.MethodPost, "/api/v1/checkout", token, domain.CheckoutRequest{
		Items: []domain.CheckoutLine{{ProductID: 1, Quantity: 9999}},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestDashboardAfterCheckout(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	rec := doJSON(handler, http.MethodPost, "/api/v1/checkout", token, domain.CheckoutRequest{
		Items: []domain.CheckoutLine{{ProductID: 4, Quantity: 2}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", rec.Code)
	}

	rec = doJSON(handler, http.MethodGet, "/api/v1/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}

	var stats domain.DashboardStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if stats.TodayTransactions != 1 {
		t.Fatalf("today transactions = %d, want 1", stats.TodayTransactions)
	}
	if stats.TotalProducts != 5 || stats.TotalCustomers != 2 {
		t.Fatalf("counts = %d/%d, want 5/2", stats.TotalProducts, stats.TotalCustomers)
	}
}

func TestSettingsReadAndAdminWrite(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	cashierToken := loginToken(t, handler, "cashier", "cashier123")
	adminToken := loginToken(t, handler, "admin", "admin123")

	rec := doJSON(handler, http.MethodGet, "/api/v1/settings/tax_rate", cashierToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get setting: expected 200, got %d", rec.Code)
	}
	var setting domain.Setting
	if err := json.NewDecoder(rec.Body).Decode(&setting); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if setting.Value != "8.5" {
		t.Fatalf("tax_rate = %q, want 8.5", setting.Value)
	}

	rec = doJSON(handler, http.MethodPut, "/api/v1/settings/company_name", cashierToken, domain.SettingPutRequest{Value: "Other Store"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cashier put: expected 403, got %d", rec.Code)
	}

	rec = doJSON(handler, http.MethodPut, "/api/v1/settings/company_name", adminToken, domain.SettingPutRequest{Value: "Other Store"})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin put: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(handler, http.MethodGet, "/api/v1/settings/company_name", cashierToken, nil)
	if err := json.NewDecoder(rec.Body).Decode(&setting); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if setting.Value != "Other Store" {
		t.Fatalf("company_name = %q, want Other Store", setting.Value)
	}
}

func TestSettingsUnknownKeyNotFound(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	rec := doJSON(handler, http.MethodGet, "/api/v1/settings/nope", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestViewsListsAllSeven(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	rec := doJSON(handler, http.MethodGet, "/api/v1/views", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Views []domain.View `json:"views"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Views) != 7 {
		t.Fatalf("expected 7 views, got %d", len(body.Views))
	}
	active, comingSoon := 0, 0
	for _, view := range body.Views {
		switch view.Status {
		case domain.ViewStatusActive:
			active++
		case domain.ViewStatusComingSoon:
			comingSoon++
		}
	}
	if active != 2 || comingSoon != 5 {
		t.Fatalf("view statuses = %d active / %d coming soon, want 2/5", active, comingSoon)
	}
}

func TestCashierManagementAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	cashierToken := loginToken(t, handler, "cashier", "cashier123")
	adminToken := loginToken(t, handler, "admin", "admin123")

	rec := doJSON(handler, http.MethodGet, "/api/v1/users/cashiers", cashierToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cashier list: expected 403, got %d", rec.Code)
	}

	rec = doJSON(handler, http.MethodPost, "/api/v1/users/cashiers", adminToken, domain.CashierCreateRequest{
		Username: "newhire",
		Password: "s3cret99",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cashier: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	token := loginToken(t, handler, "newhire", "s3cret99")
	if token == "" {
		t.Fatal("expected new cashier to log in")
	}
}

func TestLoginRateLimited(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	var last int
	for i := 0; i < 6; i++ {
		rec := doJSON(handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "admin",
			"password": "wrong",
		})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated failures, got %d", last)
	}
}
