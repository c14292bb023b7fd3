package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/shopspring/decimal"
)

func product(id, price string) *domain.Product {
	return domain.NewProduct(id, "Product "+id, "fruits", decimal.RequireFromString(price), "", "/img/"+id+".png")
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]domain.Product
	err      error
	calls    int
}

func newFakeCatalog(products ...*domain.Product) *fakeCatalog {
	f := &fakeCatalog{products: make(map[string]domain.Product)}
	for _, p := range products {
		f.products[p.ID] = *p
	}
	return f
}

func (f *fakeCatalog) ListProducts(_ context.Context, filter ProductFilter) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	res := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		if filter.Category == "" || p.Category == filter.Category {
			res = append(res, p)
		}
	}
	return res, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	p, ok := f.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) ListCategories(context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	counts := make(map[string]int)
	for _, p := range f.products {
		counts[p.Category]++
	}

	res := make([]domain.Category, 0, len(counts))
	for name, count := range counts {
		res = append(res, *domain.NewCategory(name, count))
	}
	return res, nil
}

type fakeOrders struct {
	mu       sync.Mutex
	requests []*domain.OrderRequest
	tokens   []string
	errs     []error // ошибки по очереди вызовов, nil означает успех
	block    chan struct{}
	history  []domain.OrderConfirmation
}

func (f *fakeOrders) CreateOrder(ctx context.Context, token string, req *domain.OrderRequest) (*domain.OrderConfirmation, error) {
	f.mu.Lock()
	n := len(f.requests)
	f.requests = append(f.requests, req)
	f.tokens = append(f.tokens, token)
	block := f.block
	var err error
	if n < len(f.errs) {
		err = f.errs[n]
	}
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	return &domain.OrderConfirmation{
		OrderID:         "order-1",
		Status:          "pending",
		DeliveryAddress: req.DeliveryAddress,
		Total:           decimal.RequireFromString("10.00"),
		CreatedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, token string) ([]domain.OrderConfirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.history, nil
}

func (f *fakeOrders) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeIdentity struct {
	loginRes    *LoginRes
	loginErr    error
	registerErr error
	registered  []*domain.Profile
}

func (f *fakeIdentity) Login(_ context.Context, req *LoginReq) (*LoginRes, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	res := *f.loginRes
	res.Identity.Email = req.Email
	return &res, nil
}

func (f *fakeIdentity) Register(_ context.Context, profile *domain.Profile) error {
	f.registered = append(f.registered, profile)
	return f.registerErr
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []*CheckoutEvent
	err    error
}

func (f *fakeRecorder) RecordCheckout(_ context.Context, event *CheckoutEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

type fakeArchiver struct {
	mu       sync.Mutex
	receipts []*domain.Receipt
}

func (f *fakeArchiver) Archive(receipt *domain.Receipt) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts = append(f.receipts, receipt)
}

// fakeCache держит кэш каталога в памяти.
type fakeCache struct {
	mu       sync.Mutex
	products map[string]domain.Product
	lists    map[ProductFilter][]domain.Product
	cats     []domain.Category
	setCalls chan struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		products: make(map[string]domain.Product),
		lists:    make(map[ProductFilter][]domain.Product),
		setCalls: make(chan struct{}, 16),
	}
}

func (f *fakeCache) GetProducts(_ context.Context, ids []string) (map[string]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := make(map[string]domain.Product)
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			res[id] = p
		}
	}
	return res, nil
}

func (f *fakeCache) SetProducts(_ context.Context, products []domain.Product) error {
	f.mu.Lock()
	for _, p := range products {
		f.products[p.ID] = p
	}
	f.mu.Unlock()
	f.setCalls <- struct{}{}
	return nil
}

func (f *fakeCache) GetProductList(_ context.Context, filter ProductFilter) ([]domain.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list, ok := f.lists[filter]
	return list, ok, nil
}

func (f *fakeCache) SetProductList(_ context.Context, filter ProductFilter, products []domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[filter] = products
	return nil
}

func (f *fakeCache) GetCategories(context.Context) ([]domain.Category, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cats, f.cats != nil, nil
}

func (f *fakeCache) SetCategories(_ context.Context, categories []domain.Category) error {
	f.mu.Lock()
	f.cats = categories
	f.mu.Unlock()
	f.setCalls <- struct{}{}
	return nil
}
