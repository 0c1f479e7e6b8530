package mapper

import (
	"last20-backend/internal/entity"
	"last20-backend/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.HelpSession) *entity.HelpSession {
	if s == nil {
		return nil
	}
	return &entity.HelpSession{
		Id:        s.Id,
		RequestId: s.RequestId,
		UserId:    s.UserId,
		ExpertId:  s.ExpertId,
		Status:    entity.HelpSessionStatus(s.Status),
		Price:     s.Price,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.HelpSession) *model.HelpSession {
	if s == nil {
		return nil
	}
	return &model.HelpSession{
		Id:        s.Id,
		RequestId: s.RequestId,
		UserId:    s.UserId,
		ExpertId:  s.ExpertId,
		Status:    string(s.Status),
		Price:     s.Price,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *SessionMapper) ToEntities(sessions []*model.HelpSession) []*entity.HelpSession {
	entities := make([]*entity.HelpSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
