package usecase

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/google/uuid"
)

// ShopperSession объединяет корзину, личность и текущую попытку оформления одного покупателя.
type ShopperSession struct {
	ID       string
	Cart     *CartEngine
	Identity *IdentityHolder

	checkoutMu sync.Mutex
	checkout   *checkoutAttempt

	lastSeen atomic.Int64
}

// checkoutAttempt: один экземпляр машины состояний Idle -> Submitting -> {Succeeded, Failed}.
type checkoutAttempt struct {
	id           string
	state        CheckoutState
	confirmation *domain.OrderConfirmation
	err          error
}

func newShopperSession(id string, cart *CartEngine, identity *IdentityHolder, now time.Time) *ShopperSession {
	s := &ShopperSession{
		ID:       id,
		Cart:     cart,
		Identity: identity,
		checkout: newCheckoutAttempt(),
	}
	s.touch(now)

	return s
}

func newCheckoutAttempt() *checkoutAttempt {
	return &checkoutAttempt{
		id:    uuid.NewString(),
		state: CheckoutIdle,
	}
}

func (s *ShopperSession) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *ShopperSession) idleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// beginCheckout переводит попытку в Submitting.
// Failed проходит через Idle (повтор), после Succeeded начинается новая попытка.
func (s *ShopperSession) beginCheckout() (string, error) {
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	switch s.checkout.state {
	case CheckoutSubmitting:
		return "", e.ErrCheckoutInProgress
	case CheckoutSucceeded:
		s.checkout = newCheckoutAttempt()
	case CheckoutFailed:
		s.checkout.state = CheckoutIdle
		s.checkout.err = nil
	}

	s.checkout.state = CheckoutSubmitting
	return s.checkout.id, nil
}

func (s *ShopperSession) finishCheckout(attemptID string, confirmation *domain.OrderConfirmation, err error) {
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	if s.checkout.id != attemptID {
		return
	}

	if err != nil {
		s.checkout.state = CheckoutFailed
		s.checkout.err = err
		return
	}

	s.checkout.state = CheckoutSucceeded
	s.checkout.confirmation = confirmation
}

// resetCheckout: переход Failed -> Idle.
func (s *ShopperSession) resetCheckout() error {
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	switch s.checkout.state {
	case CheckoutFailed:
		s.checkout.state = CheckoutIdle
		s.checkout.err = nil
		return nil
	default:
		return e.ErrCheckoutNotFailed
	}
}

func (s *ShopperSession) checkoutStatus() *CheckoutStatus {
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	return &CheckoutStatus{
		AttemptID:    s.checkout.id,
		State:        s.checkout.state,
		Confirmation: s.checkout.confirmation,
		Err:          s.checkout.err,
	}
}

func (s *ShopperSession) submitting() bool {
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	return s.checkout.state == CheckoutSubmitting
}
