package commerce

import (
	"context"
	"errors"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
)

// CreateOrder отправляет POST /api/orders. Не повторяется: повтор мог бы создать второй заказ.
func (c *Client) CreateOrder(ctx context.Context, token string, req *domain.OrderRequest) (*domain.OrderConfirmation, error) {
	const op = "Client.CreateOrder"

	var dto orderDTO
	if err := c.postJSON(ctx, "/api/orders", token, newOrderReqDTO(req), &dto); err != nil {
		// 404 на заказе означает неизвестный товар в позициях, это ошибка валидации заказа
		if errors.Is(err, e.ErrProductNotFound) {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return nil, e.Wrap(op, &APIError{Status: apiErr.Status, Message: apiErr.Message, Err: e.ErrValidation})
			}
		}
		return nil, e.Wrap(op, err)
	}

	confirmation := dto.toDomain()
	return &confirmation, nil
}

// ListOrders читает GET /api/orders: заказы текущего пользователя, новые первыми.
func (c *Client) ListOrders(ctx context.Context, token string) ([]domain.OrderConfirmation, error) {
	const op = "Client.ListOrders"

	var dtos []orderDTO
	if err := c.getJSON(ctx, "/api/orders", nil, token, &dtos); err != nil {
		return nil, e.Wrap(op, err)
	}

	orders := make([]domain.OrderConfirmation, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, dto.toDomain())
	}

	return orders, nil
}
