package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/repository/memory"
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const sessionHeader = "X-Session-ID"

// stubBackend заменяет внешний бэкенд магазина: каталог, заказы и авторизацию.
type stubBackend struct {
	mu       sync.Mutex
	products map[string]domain.Product
	orderErr error
	orders   []domain.OrderConfirmation
}

func newStubBackend() *stubBackend {
	b := &stubBackend{products: make(map[string]domain.Product)}
	for _, p := range []*domain.Product{
		domain.NewProduct("p1", "Apple", "fruits", decimal.RequireFromString("10.00"), "", "/img/p1.png"),
		domain.NewProduct("p2", "Milk", "dairy", decimal.RequireFromString("1.29"), "", "/img/p2.png"),
	} {
		b.products[p.ID] = *p
	}
	return b
}

func (b *stubBackend) ListProducts(_ context.Context, filter usecase.ProductFilter) ([]domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := make([]domain.Product, 0, len(b.products))
	for _, id := range []string{"p1", "p2"} {
		if p := b.products[id]; filter.Category == "" || p.Category == filter.Category {
			res = append(res, p)
		}
	}
	return res, nil
}

func (b *stubBackend) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (b *stubBackend) ListCategories(context.Context) ([]domain.Category, error) {
	return []domain.Category{*domain.NewCategory("dairy", 1), *domain.NewCategory("fruits", 1)}, nil
}

func (b *stubBackend) CreateOrder(_ context.Context, token string, req *domain.OrderRequest) (*domain.OrderConfirmation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.orderErr != nil {
		return nil, b.orderErr
	}
	if token != "tok" {
		return nil, e.ErrUnauthenticated
	}

	confirmation := domain.OrderConfirmation{
		OrderID:         "o1",
		UserID:          "u1",
		Status:          "pending",
		Total:           decimal.RequireFromString("23.99"),
		DeliveryAddress: req.DeliveryAddress,
		CreatedAt:       time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
	}
	b.orders = append(b.orders, confirmation)
	return &confirmation, nil
}

func (b *stubBackend) ListOrders(_ context.Context, _ string) ([]domain.OrderConfirmation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]domain.OrderConfirmation(nil), b.orders...), nil
}

func (b *stubBackend) Login(_ context.Context, req *usecase.LoginReq) (*usecase.LoginRes, error) {
	if req.Password != "secret" {
		return nil, e.ErrInvalidCredentials
	}
	return &usecase.LoginRes{
		Token:    "tok",
		Identity: domain.Identity{ID: "u1", Email: req.Email, FullName: "Test Shopper"},
	}, nil
}

func (b *stubBackend) Register(context.Context, *domain.Profile) error {
	return nil
}

type testEnv struct {
	handler http.Handler
	store   *memory.Store
	backend *stubBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	backend := newStubBackend()
	log := logger.Nop{}

	catalog := usecase.NewCatalogUC(backend, nil, log)

	r := chi.NewRouter()
	NewRouter(r, log).Init(UseCases{
		Sessions: usecase.NewSessionRegistry(store, store, log, time.Hour, time.Second),
		Catalog:  catalog,
		Cart:     usecase.NewCartUC(catalog),
		Session:  usecase.NewSessionUC(backend, store, log),
		Checkout: usecase.NewCheckoutCoordinator(backend, nil, nil, log, usecase.CheckoutOptions{}),
	}, sessionHeader, "http://localhost:8080/swagger/doc.json")

	return &testEnv{handler: r, store: store, backend: backend}
}

func (env *testEnv) do(t *testing.T, method, path, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, want, rec.Body.String())
	}
}

func TestSessionHeaderRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/cart", "", "")
	expectStatus(t, rec, http.StatusOK)

	sessionID := rec.Header().Get(sessionHeader)
	if sessionID == "" {
		t.Fatal("new session id must be returned in header")
	}

	for range 2 {
		expectStatus(t, env.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, `{"product_id":"p1"}`), http.StatusOK)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/cart", sessionID, "")
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get(sessionHeader) != sessionID {
		t.Fatalf("session id changed: %s", rec.Header().Get(sessionHeader))
	}

	cart := decodeBody[CartResponse](t, rec)
	if cart.SessionID != sessionID || cart.ItemCount != 2 || len(cart.Items) != 1 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if cart.Items[0].LineTotal != "20.00" || cart.Summary.Subtotal != "20.00" || cart.Summary.Total != "23.99" || !cart.Persisted {
		t.Fatalf("unexpected totals %+v", cart)
	}
}

func TestInvalidSessionID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/cart", "not-a-uuid", "")
	expectStatus(t, rec, http.StatusBadRequest)

	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Message != e.ErrInvalidSessionID.Error() {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestAddToCartErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "unknown product", body: `{"product_id":"nope"}`, want: http.StatusNotFound},
		{name: "missing product", body: `{}`, want: http.StatusBadRequest},
		{name: "broken json", body: `{"product_id":`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(t, http.MethodPost, "/api/v1/cart/items", "", tt.body), tt.want)
		})
	}
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantCount int
	}{
		{name: "set", body: `{"quantity":5}`, wantCode: http.StatusOK, wantCount: 5},
		{name: "zero removes", body: `{"quantity":0}`, wantCode: http.StatusOK, wantCount: 0},
		{name: "negative removes", body: `{"quantity":-3}`, wantCode: http.StatusOK, wantCount: 0},
		{name: "huge negative removes", body: `{"quantity":-100000000000000000000}`, wantCode: http.StatusOK, wantCount: 0},
		{name: "at cap", body: `{"quantity":1000000}`, wantCode: http.StatusOK, wantCount: 1000000},
		{name: "above cap", body: `{"quantity":1000001}`, wantCode: http.StatusBadRequest, wantCount: 1},
		{name: "huge positive", body: `{"quantity":100000000000000000000}`, wantCode: http.StatusBadRequest, wantCount: 1},
		{name: "fraction", body: `{"quantity":2.5}`, wantCode: http.StatusBadRequest, wantCount: 1},
		{name: "not a number", body: `{"quantity":"many"}`, wantCode: http.StatusBadRequest, wantCount: 1},
		{name: "missing", body: `{}`, wantCode: http.StatusBadRequest, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/api/v1/cart/items", "", `{"product_id":"p1"}`)
			expectStatus(t, rec, http.StatusOK)
			sessionID := rec.Header().Get(sessionHeader)

			expectStatus(t, env.do(t, http.MethodPut, "/api/v1/cart/items/p1", sessionID, tt.body), tt.wantCode)

			cart := decodeBody[CartResponse](t, env.do(t, http.MethodGet, "/api/v1/cart", sessionID, ""))
			if cart.ItemCount != tt.wantCount {
				t.Fatalf("item count = %d, want %d", cart.ItemCount, tt.wantCount)
			}
		})
	}
}

func TestRemoveAndClear(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", "", `{"product_id":"p1"}`)
	sessionID := rec.Header().Get(sessionHeader)
	env.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, `{"product_id":"p2"}`)

	rec = env.do(t, http.MethodDelete, "/api/v1/cart/items/p1", sessionID, "")
	expectStatus(t, rec, http.StatusOK)
	if cart := decodeBody[CartResponse](t, rec); len(cart.Items) != 1 || cart.Items[0].ProductID != "p2" {
		t.Fatalf("unexpected cart %+v", cart)
	}

	// Удаление отсутствующей позиции не ошибка
	expectStatus(t, env.do(t, http.MethodDelete, "/api/v1/cart/items/p1", sessionID, ""), http.StatusOK)

	rec = env.do(t, http.MethodDelete, "/api/v1/cart", sessionID, "")
	expectStatus(t, rec, http.StatusOK)
	if cart := decodeBody[CartResponse](t, rec); cart.ItemCount != 0 || cart.Summary.Total != "2.99" {
		t.Fatalf("unexpected cart %+v", cart)
	}
}

func TestPersistenceFailureReturnsCart(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailWrites(errors.New("storage down"))

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", "", `{"product_id":"p1"}`)
	expectStatus(t, rec, http.StatusOK)

	cart := decodeBody[CartResponse](t, rec)
	if cart.Persisted || cart.ItemCount != 1 {
		t.Fatalf("expected in-memory cart with persisted=false, got %+v", cart)
	}
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/checkout", "", "")
	expectStatus(t, rec, http.StatusUnauthorized)
	sessionID := rec.Header().Get(sessionHeader)

	expectStatus(t, env.do(t, http.MethodPost, "/api/v1/session/login", sessionID, `{"email":"a@b.c","password":"bad"}`), http.StatusUnauthorized)

	rec = env.do(t, http.MethodPost, "/api/v1/session/login", sessionID, `{"email":"a@b.c","password":"secret"}`)
	expectStatus(t, rec, http.StatusOK)
	if sess := decodeBody[SessionResponse](t, rec); !sess.Authenticated || sess.User.Email != "a@b.c" {
		t.Fatalf("unexpected session %+v", sess)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/v1/checkout", sessionID, ""), http.StatusUnprocessableEntity)

	env.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, `{"product_id":"p1"}`)

	rec = env.do(t, http.MethodPost, "/api/v1/checkout", sessionID, "")
	expectStatus(t, rec, http.StatusCreated)
	status := decodeBody[CheckoutStatusResponse](t, rec)
	if status.State != string(usecase.CheckoutSucceeded) || status.Order == nil || status.Order.OrderID != "o1" {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Order.DeliveryAddress != usecase.DefaultAddress {
		t.Fatalf("delivery address = %q", status.Order.DeliveryAddress)
	}

	// Корзина по умолчанию не очищается
	if cart := decodeBody[CartResponse](t, env.do(t, http.MethodGet, "/api/v1/cart", sessionID, "")); cart.ItemCount != 1 {
		t.Fatalf("cart must be kept, got %+v", cart)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/orders", sessionID, "")
	expectStatus(t, rec, http.StatusOK)
	if orders := decodeBody[[]OrderResponse](t, rec); len(orders) != 1 || orders[0].Total != "23.99" {
		t.Fatalf("unexpected orders %+v", orders)
	}
}

func TestCheckoutFailureAndReset(t *testing.T) {
	env := newTestEnv(t)
	env.backend.orderErr = e.ErrUnavailable

	rec := env.do(t, http.MethodPost, "/api/v1/session/login", "", `{"email":"a@b.c","password":"secret"}`)
	sessionID := rec.Header().Get(sessionHeader)
	env.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, `{"product_id":"p2"}`)

	rec = env.do(t, http.MethodPost, "/api/v1/checkout", sessionID, "")
	expectStatus(t, rec, http.StatusBadGateway)
	status := decodeBody[CheckoutStatusResponse](t, rec)
	if status.State != string(usecase.CheckoutFailed) || status.Error == nil || status.Error.Kind != string(usecase.SubmissionUnavailable) {
		t.Fatalf("unexpected status %+v", status)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/checkout", sessionID, "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[CheckoutStatusResponse](t, rec); got.State != string(usecase.CheckoutFailed) {
		t.Fatalf("state = %s", got.State)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/checkout/reset", sessionID, "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[CheckoutStatusResponse](t, rec); got.State != string(usecase.CheckoutIdle) || got.Error != nil {
		t.Fatalf("unexpected status after reset %+v", got)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/v1/checkout/reset", sessionID, ""), http.StatusConflict)
}

func TestLogoutKeepsCart(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/session/register", "",
		`{"email":"new@b.c","password":"secret","full_name":"New Shopper"}`)
	expectStatus(t, rec, http.StatusCreated)
	sessionID := rec.Header().Get(sessionHeader)

	env.do(t, http.MethodPost, "/api/v1/cart/items", sessionID, `{"product_id":"p1"}`)

	rec = env.do(t, http.MethodPost, "/api/v1/session/logout", sessionID, "")
	expectStatus(t, rec, http.StatusOK)
	if sess := decodeBody[SessionResponse](t, rec); sess.Authenticated {
		t.Fatalf("expected anonymous session, got %+v", sess)
	}

	if cart := decodeBody[CartResponse](t, env.do(t, http.MethodGet, "/api/v1/cart", sessionID, "")); cart.ItemCount != 1 {
		t.Fatalf("cart must survive logout, got %+v", cart)
	}
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/catalog?category=All", "", "")
	expectStatus(t, rec, http.StatusOK)
	page := decodeBody[CatalogResponse](t, rec)
	if len(page.Products) != 2 || len(page.Categories) != 2 {
		t.Fatalf("unexpected catalog %+v", page)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/products?category=dairy", "", "")
	expectStatus(t, rec, http.StatusOK)
	if products := decodeBody[[]ProductResponse](t, rec); len(products) != 1 || products[0].Price != "1.29" {
		t.Fatalf("unexpected products %+v", products)
	}

	expectStatus(t, env.do(t, http.MethodGet, "/api/v1/products/missing", "", ""), http.StatusNotFound)
}
