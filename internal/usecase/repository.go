package usecase

import (
	"context"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
)

// CartStore — долговременное хранилище корзин, ключом служит идентификатор сессии.
// Отсутствие корзины возвращается как (zero, false, nil).
type CartStore interface {
	ReadCart(ctx context.Context, sessionID string) (domain.Cart, bool, error)
	WriteCart(ctx context.Context, sessionID string, cart domain.Cart) error
}

// SessionStore хранит токен и профиль покупателя между перезапусками.
type SessionStore interface {
	ReadSession(ctx context.Context, sessionID string) (domain.Session, bool, error)
	WriteSession(ctx context.Context, sessionID string, session domain.Session) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// CacheRepository — кэш каталога внешнего сервиса.
type CacheRepository interface {
	GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	GetProductList(ctx context.Context, filter ProductFilter) ([]domain.Product, bool, error)
	SetProductList(ctx context.Context, filter ProductFilter, products []domain.Product) error
	GetCategories(ctx context.Context) ([]domain.Category, bool, error)
	SetCategories(ctx context.Context, categories []domain.Category) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

// ReceiptRepository архивирует чеки успешных заказов.
type ReceiptRepository interface {
	Upload(ctx context.Context, receipt *domain.Receipt) (string, error)
}
