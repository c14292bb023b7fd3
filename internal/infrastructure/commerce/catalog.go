package commerce

import (
	"context"
	"net/http"
	"net/url"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
)

// ListProducts читает GET /api/products?category=&search=
func (c *Client) ListProducts(ctx context.Context, filter usecase.ProductFilter) ([]domain.Product, error) {
	const op = "Client.ListProducts"

	filter = filter.Normalize()
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.SearchText != "" {
		query.Set("search", filter.SearchText)
	}

	var dtos []productDTO
	if err := c.getJSON(ctx, "/api/products", query, "", &dtos); err != nil {
		return nil, e.Wrap(op, err)
	}

	products := make([]domain.Product, 0, len(dtos))
	for _, dto := range dtos {
		products = append(products, dto.toDomain())
	}

	return products, nil
}

// GetProduct читает GET /api/products/{id}
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "Client.GetProduct"

	var dto productDTO
	if err := c.getJSON(ctx, "/api/products/"+url.PathEscape(id), nil, "", &dto); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, e.Wrap(op, e.ErrProductNotFound)
		}
		return nil, e.Wrap(op, err)
	}

	product := dto.toDomain()
	return &product, nil
}

// ListCategories читает GET /api/categories
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "Client.ListCategories"

	var dtos []categoryDTO
	if err := c.getJSON(ctx, "/api/categories", nil, "", &dtos); err != nil {
		return nil, e.Wrap(op, err)
	}

	categories := make([]domain.Category, 0, len(dtos))
	for _, dto := range dtos {
		categories = append(categories, *domain.NewCategory(dto.Category, dto.Count))
	}

	return categories, nil
}
