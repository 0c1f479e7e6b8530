package mapper

import (
	"last20-backend/internal/entity"
	"last20-backend/internal/model"
)

type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) ToEntity(p *model.Payment) *entity.Payment {
	if p == nil {
		return nil
	}
	return &entity.Payment{
		Id:        p.Id,
		SessionId: p.SessionId,
		UserId:    p.UserId,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    entity.PaymentStatus(p.Status),
		SnapToken: p.SnapToken,
		PaidAt:    p.PaidAt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *PaymentMapper) ToModel(p *entity.Payment) *model.Payment {
	if p == nil {
		return nil
	}
	return &model.Payment{
		Id:        p.Id,
		SessionId: p.SessionId,
		UserId:    p.UserId,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    string(p.Status),
		SnapToken: p.SnapToken,
		PaidAt:    p.PaidAt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *PaymentMapper) ToEntities(payments []*model.Payment) []*entity.Payment {
	entities := make([]*entity.Payment, len(payments))
	for i, p := range payments {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
