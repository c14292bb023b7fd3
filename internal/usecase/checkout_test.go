package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/repository/memory"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

type checkoutFixture struct {
	sess     *ShopperSession
	orders   *fakeOrders
	recorder *fakeRecorder
	archiver *fakeArchiver
	coord    *CheckoutCoordinator
}

func newCheckoutFixture(t *testing.T, opts CheckoutOptions) *checkoutFixture {
	t.Helper()

	store := memory.NewStore()
	registry := NewSessionRegistry(store, store, logger.Nop{}, time.Hour, time.Second)
	sess, err := registry.Open(context.Background(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	f := &checkoutFixture{
		sess:     sess,
		orders:   &fakeOrders{},
		recorder: &fakeRecorder{},
		archiver: &fakeArchiver{},
	}
	f.coord = NewCheckoutCoordinator(f.orders, f.recorder, f.archiver, logger.Nop{}, opts)

	return f
}

func (f *checkoutFixture) login(address string) {
	f.sess.Identity.Set(domain.Session{
		Token:    "token-1",
		Identity: domain.Identity{ID: "u1", Email: "a@b.c", Address: address},
	})
}

func (f *checkoutFixture) fill(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []*domain.Product{product("p1", "10.00"), product("p2", "3.50"), product("p1", "10.00")} {
		if _, err := f.sess.Cart.AddToCart(ctx, p); err != nil {
			t.Fatalf("AddToCart: %v", err)
		}
	}
}

func TestCheckout_UnauthenticatedMakesNoCall(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutOptions{})
	f.fill(t)

	status, err := f.coord.Submit(context.Background(), f.sess)
	if !errors.Is(err, e.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if status.State != CheckoutIdle {
		t.Fatalf("state must stay idle, got %s", status.State)
	}
	if f.orders.calls() != 0 || len(f.recorder.events) != 0 {
		t.Fatal("no network call or journal entry expected")
	}
}

func TestCheckout_EmptyCartMakesNoCall(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutOptions{})
	f.login("")

	status, err := f.coord.Submit(context.Background(), f.sess)
	if !errors.Is(err, e.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if status.State != CheckoutIdle || f.orders.calls() != 0 {
		t.Fatalf("state=%s calls=%d", status.State, f.orders.calls())
	}
}

func TestCheckout_SuccessKeepsCartByDefault(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutOptions{})
	f.login("")
	f.fill(t)

	status, err := f.coord.Submit(context.Background(), f.sess)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if status.State != CheckoutSucceeded || status.Confirmation == nil || status.Confirmation.OrderID != "order-1" {
		t.Fatalf("unexpected status %+v", status)
	}

	req := f.orders.requests[0]
	if req.DeliveryAddress != DefaultAddress {
		t.Fatalf("expected default address, got %q", req.DeliveryAddress)
	}
	want := []domain.OrderItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}
	if len(req.Items) != len(want) || req.Items[0] != want[0] || req.Items[1] != want[1] {
		t.Fatalf("items = %+v, want %+v", req.Items, want)
	}
	if f.orders.tokens[0] != "token-1" {
		t.Fatalf("token not forwarded: %q", f.orders.tokens[0])
	}

	if f.sess.Cart.Snapshot().IsEmpty() {
		t.Fatal("cart must be kept when clear-on-success is disabled")
	}

	if len(f.recorder.events) != 1 || f.recorder.events[0].Type != CheckoutSucceededEvent || f.recorder.events[0].OrderID != "order-1" {
		t.Fatalf("unexpected journal %+v", f.recorder.events)
	}
	if len(f.archiver.receipts) != 1 || f.archiver.receipts[0].IdentityID != "u1" {
		t.Fatalf("receipt not archived: %+v", f.archiver.receipts)
	}
	if !f.archiver.receipts[0].Summary.Subtotal.Equal(f.recorder.events[0].Summary.Subtotal) {
		t.Fatal("receipt and journal summaries differ")
	}
}

func TestCheckout_ClearOnSuccessPolicy(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutOptions{ClearCartOnSuccess: true, DefaultAddress: "Warehouse 1"})
	f.login("Baker St 221b")
	f.fill(t)

	if _, err := f.coord.Submit(context.Background(), f.sess); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if !f.sess.Cart.Snapshot().IsEmpty() {
		t.Fatal("cart must be cleared")
	}
	if got := f.orders.requests[0].DeliveryAddress; got != "Baker St 221b" {
		t.Fatalf("identity address must win, got %q", got)
	}
}

func TestCheckout_FailureThenRetry(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutOptions{})
	f.login("")
	f.fill(t)

	f.orders.errs = []error{e.Wrap("POST /api/orders", e.ErrUnavailable), nil}

	status, err := f.coord.Submit(context.Background(), f.sess)
	var subErr *SubmissionError
	if !errors.As(err, &subErr) || subErr.Kind != SubmissionUnavailable {
		t.Fatalf("expected unavailable SubmissionError, got %v", err)
	}
	if !errors.Is(err, e.ErrSubmissionFailed) || !errors.Is(err, e.ErrUnavailable) {
		t.Fatalf("submission error must wrap both causes: %v", err)
	}
	if status.State != CheckoutFailed || status.Err == nil {
		t.Fatalf("expected failed state, got %+v", status)
	}
	failedAttempt := status.AttemptID

	if f.sess.Cart.Snapshot().IsEmpty() {
		t.Fatal("cart must survive a failed submission")
	}
	if len(f.recorder.events) != 1 || f.recorder.events[0].Type != CheckoutFailedEvent {
		t.Fatalf("failure not journaled: %+v", f.recorder.events)
	}

	status, err = f.coord.Submit(context.Background(), f.sess)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if status.State != CheckoutSucceeded || status.AttemptID != failedAttempt {
		t.Fatalf("retry must reuse the attempt: %+v", status)
	}
	if len(f.archiver.receipts) != 1 {
		t.Fatal("receipt must be archived once")
	}
}

func TestCheckout_SubmissionKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want SubmissionKind
	}{
		{name: "unauthenticated", err: e.ErrUnauthenticated, want: SubmissionUnauthenticated},
		{name: "validation", err: e.Wrap("qty", e.ErrValidation), want: SubmissionValidation},
		{name: "transport", err: context.DeadlineExceeded, want: SubmissionUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t, CheckoutOptions{})
			f.login("")
			f.fill(t)
			f.orders.errs = []error{tt.err}

			_, err := f.coord.Submit(context.Background(), f.sess)
			var subErr *SubmissionError
			if !errors.As(err, &subErr) || subErr.Kind != tt.want {
				t.Fatalf("got %v, want kind %s", err, tt.want)
			}
		})
	}
}

func TestCheckout_ConcurrentSubmitRejected(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutOptions{})
	f.login("")
	f.fill(t)
	f.orders.block = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = f.coord.Submit(context.Background(), f.sess)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for f.coord.Status(f.sess).State != CheckoutSubmitting {
		if time.Now().After(deadline) {
			t.Fatal("first submission never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := f.coord.Submit(context.Background(), f.sess); !errors.Is(err, e.ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}
	if _, err := f.coord.Reset(f.sess); !errors.Is(err, e.ErrCheckoutNotFailed) {
		t.Fatalf("reset during submission must fail, got %v", err)
	}

	close(f.orders.block)
	wg.Wait()

	if f.orders.calls() != 1 {
		t.Fatalf("expected exactly one order call, got %d", f.orders.calls())
	}
	if f.coord.Status(f.sess).State != CheckoutSucceeded {
		t.Fatal("first submission must complete")
	}
}

func TestCheckout_ResetAfterFailure(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutOptions{})
	f.login("")
	f.fill(t)
	f.orders.errs = []error{e.ErrValidation}

	_, _ = f.coord.Submit(context.Background(), f.sess)

	status, err := f.coord.Reset(f.sess)
	if err != nil || status.State != CheckoutIdle || status.Err != nil {
		t.Fatalf("reset: status=%+v err=%v", status, err)
	}
}

func TestCheckout_ResetOutsideFailureRejected(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutOptions{})

	status, err := f.coord.Reset(f.sess)
	if !errors.Is(err, e.ErrCheckoutNotFailed) || status.State != CheckoutIdle {
		t.Fatalf("reset from idle: status=%+v err=%v", status, err)
	}

	f.login("")
	f.fill(t)
	if _, err := f.coord.Submit(context.Background(), f.sess); err != nil {
		t.Fatalf("submit: %v", err)
	}

	status, err = f.coord.Reset(f.sess)
	if !errors.Is(err, e.ErrCheckoutNotFailed) || status.State != CheckoutSucceeded {
		t.Fatalf("reset after success: status=%+v err=%v", status, err)
	}
}

func TestCheckout_JournalFailureDoesNotChangeOutcome(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutOptions{})
	f.login("")
	f.fill(t)
	f.recorder.err = errors.New("db down")

	status, err := f.coord.Submit(context.Background(), f.sess)
	if err != nil || status.State != CheckoutSucceeded {
		t.Fatalf("journal error leaked: status=%+v err=%v", status, err)
	}
}

func TestCheckout_OrderHistoryRequiresIdentity(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutOptions{})

	if _, err := f.coord.OrderHistory(context.Background(), f.sess); !errors.Is(err, e.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	f.login("")
	f.orders.history = []domain.OrderConfirmation{{OrderID: "o1"}, {OrderID: "o2"}}
	orders, err := f.coord.OrderHistory(context.Background(), f.sess)
	if err != nil || len(orders) != 2 {
		t.Fatalf("orders=%v err=%v", orders, err)
	}
}
