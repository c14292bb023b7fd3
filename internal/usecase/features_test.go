package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/pricing"
	"github.com/DRSN-tech/grocery-cart/internal/repository/memory"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

var featureErrors = map[string]error{
	"unauthenticated":     e.ErrUnauthenticated,
	"empty cart":          e.ErrEmptyCart,
	"product not found":   e.ErrProductNotFound,
	"checkout not failed": e.ErrCheckoutNotFailed,
	"submission failed":   e.ErrSubmissionFailed,
}

type shopperTestContext struct {
	orders   *fakeOrders
	registry *SessionRegistry
	cart     *CartUseCase
	checkout *CheckoutCoordinator
	sess     *ShopperSession
	err      error
}

func (c *shopperTestContext) reset() {
	store := memory.NewStore()
	catalog := newFakeCatalog(product("p1", "10.00"), product("p2", "3.50"))

	c.orders = &fakeOrders{}
	c.registry = NewSessionRegistry(store, store, logger.Nop{}, time.Hour, time.Second)
	c.cart = NewCartUC(NewCatalogUC(catalog, nil, logger.Nop{}))
	c.checkout = NewCheckoutCoordinator(c.orders, nil, nil, logger.Nop{}, CheckoutOptions{})
	c.sess = nil
	c.err = nil
}

func (c *shopperTestContext) aNewShopperSession() error {
	sess, err := c.registry.Open(context.Background(), "")
	if err != nil {
		return err
	}
	c.sess = sess
	return nil
}

func (c *shopperTestContext) aLoggedInShopper() error {
	if err := c.aNewShopperSession(); err != nil {
		return err
	}
	c.sess.Identity.Set(domain.Session{Token: "tok", Identity: domain.Identity{ID: "u1", Email: "a@b.c"}})
	return nil
}

func (c *shopperTestContext) theShopperAddsProduct(id string) error {
	_, err := c.cart.AddToCart(context.Background(), c.sess, id)
	return err
}

func (c *shopperTestContext) theShopperTriesToAddProduct(id string) error {
	_, c.err = c.cart.AddToCart(context.Background(), c.sess, id)
	return nil
}

func (c *shopperTestContext) theShopperSetsQuantity(id string, quantity int) error {
	_, err := c.cart.UpdateQuantity(context.Background(), c.sess, id, quantity)
	return err
}

func (c *shopperTestContext) theOrderServiceFailsOnce() error {
	c.orders.errs = []error{e.ErrUnavailable}
	return nil
}

func (c *shopperTestContext) theShopperChecksOut() error {
	_, c.err = c.checkout.Submit(context.Background(), c.sess)
	return nil
}

func (c *shopperTestContext) theShopperResetsTheCheckout() error {
	_, c.err = c.checkout.Reset(c.sess)
	return nil
}

func (c *shopperTestContext) theLastActionFailedWith(name string) error {
	want, ok := featureErrors[name]
	if !ok {
		return fmt.Errorf("unknown error name %q", name)
	}
	if !errors.Is(c.err, want) {
		return fmt.Errorf("expected %v, got %v", want, c.err)
	}
	return nil
}

func (c *shopperTestContext) theCartHasLines(n int) error {
	if got := len(c.sess.Cart.Snapshot().Lines); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *shopperTestContext) theCartHasUnitsOf(n int, id string) error {
	cart := c.sess.Cart.Snapshot()
	line, ok := cart.Line(id)
	if !ok {
		return fmt.Errorf("no line for %s", id)
	}
	if line.Quantity != n {
		return fmt.Errorf("expected %d units of %s, got %d", n, id, line.Quantity)
	}
	return nil
}

func (c *shopperTestContext) theCartIsEmpty() error {
	return c.theCartHasLines(0)
}

func (c *shopperTestContext) theCartAmountIs(field, amount string) error {
	summary := pricing.DefaultRules().Calculate(c.sess.Cart.Snapshot())

	var got decimal.Decimal
	switch field {
	case "subtotal":
		got = summary.Subtotal
	case "service fee":
		got = summary.ServiceFee
	case "total":
		got = summary.Total
	default:
		return fmt.Errorf("unknown amount %q", field)
	}

	if !got.Equal(decimal.RequireFromString(amount)) {
		return fmt.Errorf("expected %s %s, got %s", field, amount, got)
	}
	return nil
}

func (c *shopperTestContext) theCheckoutStateIs(state string) error {
	if got := c.checkout.Status(c.sess).State; got != CheckoutState(state) {
		return fmt.Errorf("expected state %s, got %s", state, got)
	}
	return nil
}

func (c *shopperTestContext) theOrderServiceReceivedOrders(n int) error {
	if got := c.orders.calls(); got != n {
		return fmt.Errorf("expected %d orders, got %d", n, got)
	}
	return nil
}

func (c *shopperTestContext) theLastOrderWasDeliveredTo(address string) error {
	c.orders.mu.Lock()
	defer c.orders.mu.Unlock()

	if len(c.orders.requests) == 0 {
		return errors.New("no orders sent")
	}
	if got := c.orders.requests[len(c.orders.requests)-1].DeliveryAddress; got != address {
		return fmt.Errorf("expected address %q, got %q", address, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &shopperTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given
	ctx.Step(`^a new shopper session$`, tc.aNewShopperSession)
	ctx.Step(`^a logged in shopper$`, tc.aLoggedInShopper)
	ctx.Step(`^the order service fails once$`, tc.theOrderServiceFailsOnce)

	// When
	ctx.Step(`^the shopper adds product "([^"]*)"$`, tc.theShopperAddsProduct)
	ctx.Step(`^the shopper tries to add product "([^"]*)"$`, tc.theShopperTriesToAddProduct)
	ctx.Step(`^the shopper sets quantity of "([^"]*)" to (-?\d+)$`, tc.theShopperSetsQuantity)
	ctx.Step(`^the shopper checks out$`, tc.theShopperChecksOut)
	ctx.Step(`^the shopper resets the checkout$`, tc.theShopperResetsTheCheckout)

	// Then
	ctx.Step(`^the last action failed with "([^"]*)"$`, tc.theLastActionFailedWith)
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart has (\d+) units of "([^"]*)"$`, tc.theCartHasUnitsOf)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart (subtotal|service fee|total) is "([^"]*)"$`, tc.theCartAmountIs)
	ctx.Step(`^the checkout state is "([^"]*)"$`, tc.theCheckoutStateIs)
	ctx.Step(`^the order service received (\d+) orders?$`, tc.theOrderServiceReceivedOrders)
	ctx.Step(`^the last order was delivered to "([^"]*)"$`, tc.theLastOrderWasDeliveredTo)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
