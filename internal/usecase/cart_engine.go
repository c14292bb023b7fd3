package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

const defaultStoreTimeout = 3 * time.Second

// CartEngine хранит авторитетное состояние корзины одной сессии.
// Мутации выполняются под мьютексом целиком, включая запись в хранилище,
// поэтому записи попадают в CartStore в порядке мутаций.
type CartEngine struct {
	mu           sync.Mutex
	sessionID    string
	cart         domain.Cart
	store        CartStore
	logger       logger.Logger
	storeTimeout time.Duration
	dirty        bool // последняя запись не удалась, состояние в памяти новее хранилища
}

func NewCartEngine(sessionID string, cart domain.Cart, store CartStore, logger logger.Logger, storeTimeout time.Duration) *CartEngine {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}

	return &CartEngine{
		sessionID:    sessionID,
		cart:         cart.Clone(),
		store:        store,
		logger:       logger,
		storeTimeout: storeTimeout,
	}
}

// AddToCart добавляет одну единицу товара. Для существующей позиции переиспользует
// путь изменения количества, для новой создает позицию с количеством 1.
func (c *CartEngine) AddToCart(ctx context.Context, product *domain.Product) (domain.Cart, error) {
	const op = "CartEngine.AddToCart"

	c.mu.Lock()
	defer c.mu.Unlock()

	if product == nil || product.ID == "" {
		return c.cart.Clone(), nil
	}

	if idx := c.cart.Find(product.ID); idx >= 0 {
		c.applyQuantity(idx, c.cart.Lines[idx].Quantity+1)
	} else {
		c.cart.Lines = append(c.cart.Lines, domain.NewCartLine(product, 1))
	}

	if err := c.persist(ctx); err != nil {
		return c.cart.Clone(), e.Wrap(op, err)
	}

	return c.cart.Clone(), nil
}

// UpdateQuantity заменяет количество. newQuantity <= 0 удаляет позицию.
// Отсутствующий товар игнорируется, в хранилище ничего не пишется.
func (c *CartEngine) UpdateQuantity(ctx context.Context, productID string, newQuantity int) (domain.Cart, error) {
	const op = "CartEngine.UpdateQuantity"

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.cart.Find(productID)
	if idx < 0 {
		c.logger.Debugf("update of absent line ignored: session=%s product=%s", c.sessionID, productID)
		return c.cart.Clone(), nil
	}

	c.applyQuantity(idx, newQuantity)

	if err := c.persist(ctx); err != nil {
		return c.cart.Clone(), e.Wrap(op, err)
	}

	return c.cart.Clone(), nil
}

// RemoveFromCart удаляет позицию, если она есть. Повторный вызов ничего не меняет.
func (c *CartEngine) RemoveFromCart(ctx context.Context, productID string) (domain.Cart, error) {
	const op = "CartEngine.RemoveFromCart"

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.cart.Find(productID)
	if idx < 0 {
		return c.cart.Clone(), nil
	}

	c.removeAt(idx)

	if err := c.persist(ctx); err != nil {
		return c.cart.Clone(), e.Wrap(op, err)
	}

	return c.cart.Clone(), nil
}

// Clear очищает корзину по явной команде.
func (c *CartEngine) Clear(ctx context.Context) (domain.Cart, error) {
	const op = "CartEngine.Clear"

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cart.Lines = nil

	if err := c.persist(ctx); err != nil {
		return c.cart.Clone(), e.Wrap(op, err)
	}

	return c.cart.Clone(), nil
}

// Snapshot возвращает копию текущей корзины.
func (c *CartEngine) Snapshot() domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cart.Clone()
}

// Dirty сообщает, что последняя запись в хранилище не удалась.
func (c *CartEngine) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dirty
}

// Flush повторяет запись текущей корзины, если предыдущая не удалась.
func (c *CartEngine) Flush(ctx context.Context) error {
	const op = "CartEngine.Flush"

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	if err := c.persist(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// applyQuantity применяет нижнюю границу количества для add и update.
func (c *CartEngine) applyQuantity(idx int, quantity int) {
	if quantity <= 0 {
		c.removeAt(idx)
		return
	}

	c.cart.Lines[idx].Quantity = quantity
}

func (c *CartEngine) removeAt(idx int) {
	c.cart.Lines = append(c.cart.Lines[:idx], c.cart.Lines[idx+1:]...)
}

// persist пишет корзину целиком. Вызывается под c.mu.
// Ошибка записи не откатывает состояние в памяти.
func (c *CartEngine) persist(ctx context.Context) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.storeTimeout)
	defer cancel()

	if err := c.store.WriteCart(writeCtx, c.sessionID, c.cart.Clone()); err != nil {
		c.dirty = true
		c.logger.Warnf("cart write failed, keeping in-memory state: session=%s: %v", c.sessionID, err)
		return fmt.Errorf("%w: %w", e.ErrPersistenceFailed, err)
	}

	c.dirty = false
	return nil
}
