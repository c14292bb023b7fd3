package domain

import "github.com/shopspring/decimal"

// Product описывает товар каталога. Источником истины служит внешний бэкенд, здесь товар только читается.
type Product struct {
	ID          string
	Name        string
	Category    string
	Price       decimal.Decimal // неотрицательная цена за единицу
	Description string
	ImageURL    string
	Stock       int
}

func NewProduct(id, name, category string, price decimal.Decimal, description, imageURL string) *Product {
	return &Product{
		ID:          id,
		Name:        name,
		Category:    category,
		Price:       price,
		Description: description,
		ImageURL:    imageURL,
	}
}
