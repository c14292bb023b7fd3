package usecase

import (
	"context"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
)

type SessionResolver interface {
	Open(ctx context.Context, sessionID string) (*ShopperSession, error)
}

type CartUC interface {
	GetCart(ctx context.Context, sess *ShopperSession) (*CartView, error)
	AddToCart(ctx context.Context, sess *ShopperSession, productID string) (*CartView, error)
	UpdateQuantity(ctx context.Context, sess *ShopperSession, productID string, quantity int) (*CartView, error)
	RemoveFromCart(ctx context.Context, sess *ShopperSession, productID string) (*CartView, error)
	ClearCart(ctx context.Context, sess *ShopperSession) (*CartView, error)
}

type CatalogUC interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	Browse(ctx context.Context, filter ProductFilter) (*CatalogPage, error)
}

type SessionUC interface {
	Login(ctx context.Context, sess *ShopperSession, req *LoginReq) (*domain.Session, error)
	Register(ctx context.Context, sess *ShopperSession, profile *domain.Profile) (*domain.Session, error)
	Logout(ctx context.Context, sess *ShopperSession) error
	Current(sess *ShopperSession) (*domain.Session, bool)
}

type CheckoutUC interface {
	Submit(ctx context.Context, sess *ShopperSession) (*CheckoutStatus, error)
	Status(sess *ShopperSession) *CheckoutStatus
	Reset(sess *ShopperSession) (*CheckoutStatus, error)
	OrderHistory(ctx context.Context, sess *ShopperSession) ([]domain.OrderConfirmation, error)
}
