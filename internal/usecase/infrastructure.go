package usecase

import (
	"context"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
)

// CatalogService — каталог внешнего бэкенда.
type CatalogService interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// OrderService — создание заказов во внешнем бэкенде.
type OrderService interface {
	CreateOrder(ctx context.Context, token string, req *domain.OrderRequest) (*domain.OrderConfirmation, error)
	ListOrders(ctx context.Context, token string) ([]domain.OrderConfirmation, error)
}

// IdentityService — вход и регистрация во внешнем бэкенде.
type IdentityService interface {
	Login(ctx context.Context, req *LoginReq) (*LoginRes, error)
	Register(ctx context.Context, profile *domain.Profile) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// EventEncoder сериализует событие оформления заказа в формат топика.
type EventEncoder interface {
	EncodeCheckoutEvent(event *CheckoutEvent) ([]byte, error)
}

// CheckoutRecorder фиксирует исход оформления заказа.
type CheckoutRecorder interface {
	RecordCheckout(ctx context.Context, event *CheckoutEvent) error
}

// ReceiptArchiver принимает чек успешного заказа на архивирование. Не блокирует вызывающего.
type ReceiptArchiver interface {
	Archive(receipt *domain.Receipt)
}
