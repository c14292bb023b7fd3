package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/pricing"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

const (
	defaultOrderTimeout   = 15 * time.Second
	defaultJournalTimeout = 3 * time.Second
	DefaultAddress        = "Default Address"
)

// CheckoutCoordinator превращает снимок корзины в заказ внешнего бэкенда.
type CheckoutCoordinator struct {
	orders         OrderService
	recorder       CheckoutRecorder
	receipts       ReceiptArchiver
	logger         logger.Logger
	rules          pricing.Rules
	orderTimeout   time.Duration
	defaultAddress string
	clearOnSuccess bool
	now            func() time.Time
}

// CheckoutOptions задает политику оформления.
type CheckoutOptions struct {
	OrderTimeout       time.Duration
	DefaultAddress     string
	ClearCartOnSuccess bool
}

func NewCheckoutCoordinator(
	orders OrderService,
	recorder CheckoutRecorder,
	receipts ReceiptArchiver,
	logger logger.Logger,
	opts CheckoutOptions,
) *CheckoutCoordinator {
	if opts.OrderTimeout <= 0 {
		opts.OrderTimeout = defaultOrderTimeout
	}
	if opts.DefaultAddress == "" {
		opts.DefaultAddress = DefaultAddress
	}

	return &CheckoutCoordinator{
		orders:         orders,
		recorder:       recorder,
		receipts:       receipts,
		logger:         logger,
		rules:          pricing.DefaultRules(),
		orderTimeout:   opts.OrderTimeout,
		defaultAddress: opts.DefaultAddress,
		clearOnSuccess: opts.ClearCartOnSuccess,
		now:            time.Now,
	}
}

// Submit проверяет предусловия и отправляет заказ. Предусловия проверяются до любого сетевого вызова,
// попытка при этом остается в Idle.
func (c *CheckoutCoordinator) Submit(ctx context.Context, sess *ShopperSession) (*CheckoutStatus, error) {
	const op = "CheckoutCoordinator.Submit"

	session, ok := sess.Identity.Get()
	if !ok {
		return sess.checkoutStatus(), e.Wrap(op, e.ErrUnauthenticated)
	}

	cart := sess.Cart.Snapshot()
	if cart.IsEmpty() {
		return sess.checkoutStatus(), e.Wrap(op, e.ErrEmptyCart)
	}

	attemptID, err := sess.beginCheckout()
	if err != nil {
		return sess.checkoutStatus(), e.Wrap(op, err)
	}

	req := domain.NewOrderRequest(cart, c.deliveryAddress(session.Identity))

	// Отправка не отменяется вместе с запросом клиента
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.orderTimeout)
	defer cancel()

	confirmation, err := c.orders.CreateOrder(submitCtx, session.Token, req)
	if err != nil {
		subErr := toSubmissionError(err)
		sess.finishCheckout(attemptID, nil, subErr)
		c.logger.Warnf("checkout failed: session=%s attempt=%s kind=%s: %v", sess.ID, attemptID, subErr.Kind, err)

		event := c.newEvent(CheckoutFailedEvent, attemptID, sess.ID, session.Identity.ID, req, cart)
		event.Error = subErr.Error()
		c.record(ctx, event)

		return sess.checkoutStatus(), e.Wrap(op, subErr)
	}

	sess.finishCheckout(attemptID, confirmation, nil)
	c.logger.Infof("checkout succeeded: session=%s attempt=%s order=%s", sess.ID, attemptID, confirmation.OrderID)

	event := c.newEvent(CheckoutSucceededEvent, attemptID, sess.ID, session.Identity.ID, req, cart)
	event.OrderID = confirmation.OrderID
	c.record(ctx, event)
	c.archive(sess.ID, session.Identity.ID, confirmation, cart)

	if c.clearOnSuccess {
		if _, err := sess.Cart.Clear(ctx); err != nil {
			c.logger.Warnf("cart clear after checkout not persisted: %v", e.Wrap(op, err))
		}
	}

	return sess.checkoutStatus(), nil
}

// Status возвращает текущее состояние попытки.
func (c *CheckoutCoordinator) Status(sess *ShopperSession) *CheckoutStatus {
	return sess.checkoutStatus()
}

// Reset выполняет переход Failed -> Idle.
func (c *CheckoutCoordinator) Reset(sess *ShopperSession) (*CheckoutStatus, error) {
	const op = "CheckoutCoordinator.Reset"

	if err := sess.resetCheckout(); err != nil {
		return sess.checkoutStatus(), e.Wrap(op, err)
	}

	return sess.checkoutStatus(), nil
}

// OrderHistory возвращает заказы авторизованного покупателя.
func (c *CheckoutCoordinator) OrderHistory(ctx context.Context, sess *ShopperSession) ([]domain.OrderConfirmation, error) {
	const op = "CheckoutCoordinator.OrderHistory"

	session, ok := sess.Identity.Get()
	if !ok {
		return nil, e.Wrap(op, e.ErrUnauthenticated)
	}

	orders, err := c.orders.ListOrders(ctx, session.Token)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

func (c *CheckoutCoordinator) deliveryAddress(identity domain.Identity) string {
	if identity.Address != "" {
		return identity.Address
	}

	return c.defaultAddress
}

func (c *CheckoutCoordinator) newEvent(
	eventType CheckoutEventType,
	attemptID, sessionID, userID string,
	req *domain.OrderRequest,
	cart domain.Cart,
) *CheckoutEvent {
	event := NewCheckoutEvent(eventType, attemptID, sessionID, c.now())
	event.UserID = userID
	event.Items = req.Items
	event.Summary = c.rules.Calculate(cart)

	return event
}

// record пишет исход в журнал. Ошибка журнала не меняет исход оформления.
func (c *CheckoutCoordinator) record(ctx context.Context, event *CheckoutEvent) {
	if c.recorder == nil {
		return
	}

	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultJournalTimeout)
	defer cancel()

	if err := c.recorder.RecordCheckout(recCtx, event); err != nil {
		c.logger.Errorf(err, "failed to record checkout event %s", event.EventID)
	}
}

func (c *CheckoutCoordinator) archive(sessionID, identityID string, confirmation *domain.OrderConfirmation, cart domain.Cart) {
	if c.receipts == nil {
		return
	}

	c.receipts.Archive(&domain.Receipt{
		Confirmation: *confirmation,
		Lines:        cart.Lines,
		Summary:      c.rules.Calculate(cart),
		IdentityID:   identityID,
		SessionID:    sessionID,
		IssuedAt:     c.now(),
	})
}

// detailer реализуют ошибки внешнего сервиса с текстом для покупателя.
type detailer interface {
	Detail() string
}

// toSubmissionError классифицирует ошибку сервиса заказов.
func toSubmissionError(err error) *SubmissionError {
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr
	}

	kind := SubmissionUnavailable
	switch {
	case errors.Is(err, e.ErrUnauthenticated), errors.Is(err, e.ErrInvalidCredentials):
		kind = SubmissionUnauthenticated
	case errors.Is(err, e.ErrValidation):
		kind = SubmissionValidation
	}

	detail := err.Error()
	var d detailer
	if errors.As(err, &d) && d.Detail() != "" {
		detail = d.Detail()
	}

	return &SubmissionError{
		Kind:   kind,
		Detail: detail,
		Err:    err,
	}
}
