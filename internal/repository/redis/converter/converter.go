package converter

import "github.com/DRSN-tech/grocery-cart/internal/domain"

// ProductConverter преобразует товары каталога между domain и JSON-моделью кэша.
type ProductConverter struct{}

func (ProductConverter) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	return &ProductRedisModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Category:    entity.Category,
		Price:       entity.Price,
		Description: entity.Description,
		ImageURL:    entity.ImageURL,
		Stock:       entity.Stock,
	}
}

func (ProductConverter) ToDomain(model *ProductRedisModel) *domain.Product {
	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Category:    model.Category,
		Price:       model.Price,
		Description: model.Description,
		ImageURL:    model.ImageURL,
		Stock:       model.Stock,
	}
}

func (c ProductConverter) ToArrRedisModel(entities []domain.Product) []ProductRedisModel {
	result := make([]ProductRedisModel, 0, len(entities))
	for i := range entities {
		result = append(result, *c.ToRedisModel(&entities[i]))
	}

	return result
}

func (c ProductConverter) ToArrDomain(models []ProductRedisModel) []domain.Product {
	result := make([]domain.Product, 0, len(models))
	for i := range models {
		result = append(result, *c.ToDomain(&models[i]))
	}

	return result
}

type CategoryConverter struct{}

func (CategoryConverter) ToArrRedisModel(entities []domain.Category) []CategoryRedisModel {
	result := make([]CategoryRedisModel, 0, len(entities))
	for _, c := range entities {
		result = append(result, CategoryRedisModel{Name: c.Name, Count: c.Count})
	}

	return result
}

func (CategoryConverter) ToArrDomain(models []CategoryRedisModel) []domain.Category {
	result := make([]domain.Category, 0, len(models))
	for _, m := range models {
		result = append(result, *domain.NewCategory(m.Name, m.Count))
	}

	return result
}

type CartConverter struct{}

func (CartConverter) ToRedisModel(sessionID string, entity domain.Cart) *CartRedisModel {
	lines := make([]CartLineRedisModel, 0, len(entity.Lines))
	for _, l := range entity.Lines {
		lines = append(lines, CartLineRedisModel{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			ImageURL:  l.ImageURL,
			Quantity:  l.Quantity,
		})
	}

	return &CartRedisModel{SessionID: sessionID, Lines: lines}
}

// ToDomain восстанавливает корзину через domain.RestoreCart.
func (CartConverter) ToDomain(model *CartRedisModel) domain.Cart {
	lines := make([]domain.CartLine, 0, len(model.Lines))
	for _, l := range model.Lines {
		lines = append(lines, domain.CartLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			ImageURL:  l.ImageURL,
			Quantity:  l.Quantity,
		})
	}

	return domain.RestoreCart(lines)
}

type SessionConverter struct{}

func (SessionConverter) ToRedisModel(entity domain.Session) *SessionRedisModel {
	return &SessionRedisModel{
		Token:     entity.Token,
		UserID:    entity.Identity.ID,
		Email:     entity.Identity.Email,
		FullName:  entity.Identity.FullName,
		Address:   entity.Identity.Address,
		Phone:     entity.Identity.Phone,
		IsAdmin:   entity.Identity.IsAdmin,
		ExpiresAt: entity.ExpiresAt,
	}
}

func (SessionConverter) ToDomain(model *SessionRedisModel) domain.Session {
	return domain.Session{
		Token: model.Token,
		Identity: domain.Identity{
			ID:       model.UserID,
			Email:    model.Email,
			FullName: model.FullName,
			Address:  model.Address,
			Phone:    model.Phone,
			IsAdmin:  model.IsAdmin,
		},
		ExpiresAt: model.ExpiresAt,
	}
}
