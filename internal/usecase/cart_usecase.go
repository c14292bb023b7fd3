package usecase

import (
	"context"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/pricing"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
)

// CartUseCase связывает корзину сессии с каталогом и расчетом итога.
// При ошибке записи в хранилище возвращается и представление корзины из памяти, и ошибка.
type CartUseCase struct {
	catalog CatalogUC
	rules   pricing.Rules
}

func NewCartUC(catalog CatalogUC) *CartUseCase {
	return &CartUseCase{
		catalog: catalog,
		rules:   pricing.DefaultRules(),
	}
}

func (c *CartUseCase) GetCart(_ context.Context, sess *ShopperSession) (*CartView, error) {
	return c.view(sess.ID, sess.Cart.Snapshot()), nil
}

// AddToCart добавляет единицу товара, снимок товара берется из каталога.
func (c *CartUseCase) AddToCart(ctx context.Context, sess *ShopperSession, productID string) (*CartView, error) {
	const op = "CartUseCase.AddToCart"

	product, err := c.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	cart, err := sess.Cart.AddToCart(ctx, product)
	if err != nil {
		return c.view(sess.ID, cart), e.Wrap(op, err)
	}

	return c.view(sess.ID, cart), nil
}

func (c *CartUseCase) UpdateQuantity(ctx context.Context, sess *ShopperSession, productID string, quantity int) (*CartView, error) {
	const op = "CartUseCase.UpdateQuantity"

	cart, err := sess.Cart.UpdateQuantity(ctx, productID, quantity)
	if err != nil {
		return c.view(sess.ID, cart), e.Wrap(op, err)
	}

	return c.view(sess.ID, cart), nil
}

func (c *CartUseCase) RemoveFromCart(ctx context.Context, sess *ShopperSession, productID string) (*CartView, error) {
	const op = "CartUseCase.RemoveFromCart"

	cart, err := sess.Cart.RemoveFromCart(ctx, productID)
	if err != nil {
		return c.view(sess.ID, cart), e.Wrap(op, err)
	}

	return c.view(sess.ID, cart), nil
}

func (c *CartUseCase) ClearCart(ctx context.Context, sess *ShopperSession) (*CartView, error) {
	const op = "CartUseCase.ClearCart"

	cart, err := sess.Cart.Clear(ctx)
	if err != nil {
		return c.view(sess.ID, cart), e.Wrap(op, err)
	}

	return c.view(sess.ID, cart), nil
}

func (c *CartUseCase) view(sessionID string, cart domain.Cart) *CartView {
	return NewCartView(sessionID, cart, c.rules.Calculate(cart))
}
