package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/cfg"
	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/jitter"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(&cfg.CommerceCfg{
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
		OrderTimeout:   2 * time.Second,
		MaxRetries:     3,
		MaxConcurrent:  4,
	}, logger.Nop{})
	client.backoff = jitter.Backoff{Base: time.Millisecond, Max: 5 * time.Millisecond}

	return client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestListProductsQueryAndDecode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("category") != "" {
			t.Errorf("category 'all' must not be sent, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("search") != "milk" {
			t.Errorf("search = %q", r.URL.Query().Get("search"))
		}
		_, _ = w.Write([]byte(`[{"id":"p1","name":"Milk","price":1.29,"category":"dairy","image_url":"/m.png","stock":5}]`))
	})

	products, err := client.ListProducts(context.Background(), usecase.ProductFilter{Category: "all", SearchText: "milk"})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Milk" || !products[0].Price.Equal(decimal.RequireFromString("1.29")) {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestGetRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "upstream"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"category": "fruits", "count": 4}})
	})

	categories, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if calls.Load() != 3 || len(categories) != 1 || categories[0].Count != 4 {
		t.Fatalf("calls=%d categories=%+v", calls.Load(), categories)
	}
}

func TestGetDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Product not found"})
	})

	_, err := client.GetProduct(context.Background(), "p404")
	if !errors.Is(err, e.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried, calls=%d", calls.Load())
	}
}

func TestCreateOrderSingleShotAndErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		detail string
	}{
		{name: "unauthorized", status: 401, body: `{"detail":"Could not validate credentials"}`, want: e.ErrUnauthenticated, detail: "Could not validate credentials"},
		{name: "validation list", status: 422, body: `{"detail":[{"loc":["body","items"],"msg":"field required"}]}`, want: e.ErrValidation, detail: "field required"},
		{name: "unknown product", status: 404, body: `{"detail":"Product p9 not found"}`, want: e.ErrValidation, detail: "Product p9 not found"},
		{name: "server error", status: 500, body: `oops`, want: e.ErrUnavailable, detail: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.CreateOrder(context.Background(), "tok", &domain.OrderRequest{
				Items: []domain.OrderItem{{ProductID: "p1", Quantity: 1}},
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}

			if got := detailOf(err); got != tt.detail {
				t.Fatalf("detail = %q, want %q", got, tt.detail)
			}
			if calls.Load() != 1 {
				t.Fatalf("order must be sent once, calls=%d", calls.Load())
			}
		})
	}
}

func TestCreateOrderSendsTokenAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}

		var req orderReqDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Items) != 2 || req.Items[1].ProductID != "p2" || req.DeliveryAddress != "Default Address" {
			t.Errorf("unexpected body %+v", req)
		}

		_, _ = w.Write([]byte(`{"id":"o1","user_id":"u1","subtotal":"23.50","service_fee":"1.18","transportation_fee":"2.99",
			"total":"27.67","status":"pending","created_at":"2026-02-03T10:11:12.123456","delivery_address":"Default Address"}`))
	})

	confirmation, err := client.CreateOrder(context.Background(), "tok", &domain.OrderRequest{
		Items:           []domain.OrderItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}},
		DeliveryAddress: "Default Address",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if confirmation.OrderID != "o1" || !confirmation.Total.Equal(decimal.RequireFromString("27.67")) {
		t.Fatalf("unexpected confirmation %+v", confirmation)
	}
	if confirmation.CreatedAt.Year() != 2026 || confirmation.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at = %v", confirmation.CreatedAt)
	}
}

func TestLoginExtractsExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a@b.c",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatal(err)
	}

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": token,
			"token_type":   "bearer",
			"user":         map[string]any{"id": "u1", "email": "a@b.c", "full_name": "A B"},
		})
	})

	res, err := client.Login(context.Background(), usecase.NewLoginReq("a@b.c", "pw"))
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.ExpiresAt == nil || !res.ExpiresAt.Equal(exp) {
		t.Fatalf("ExpiresAt = %v, want %v", res.ExpiresAt, exp)
	}
	if res.Identity.ID != "u1" || res.Identity.FullName != "A B" {
		t.Fatalf("identity = %+v", res.Identity)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
	})

	_, err := client.Login(context.Background(), usecase.NewLoginReq("a@b.c", "bad"))
	if !errors.Is(err, e.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
	})

	err := client.Register(context.Background(), &domain.Profile{Email: "a@b.c", Password: "pw", FullName: "A"})
	if !errors.Is(err, e.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if detailOf(err) != "Email already registered" {
		t.Fatalf("detail = %q", detailOf(err))
	}
}

func TestOpaqueTokenHasNoExpiry(t *testing.T) {
	if tokenExpiry("not-a-jwt") != nil {
		t.Fatal("opaque token must have unknown expiry")
	}
}
