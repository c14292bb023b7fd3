package converter

import (
	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
)

// CartConverter преобразует Cart между domain и моделью PostgreSQL.
type CartConverter struct{}

func (CartConverter) ToModel(sessionID string, entity domain.Cart) *CartModel {
	lines := make([]CartLineModel, 0, len(entity.Lines))
	for _, l := range entity.Lines {
		lines = append(lines, CartLineModel{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			ImageURL:  l.ImageURL,
			Quantity:  l.Quantity,
		})
	}

	return &CartModel{
		SessionID: sessionID,
		Lines:     lines,
	}
}

// ToEntity восстанавливает корзину через domain.RestoreCart.
func (CartConverter) ToEntity(model *CartModel) domain.Cart {
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

// SessionConverter преобразует Session между domain и моделью PostgreSQL.
type SessionConverter struct{}

func (SessionConverter) ToModel(sessionID string, entity domain.Session) *SessionModel {
	return &SessionModel{
		SessionID: sessionID,
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

func (SessionConverter) ToEntity(model *SessionModel) domain.Session {
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

// OutboxEventConverter преобразует OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		result = append(result, c.ToEntity(m))
	}

	return result
}
