package mapper

import (
	"encoding/json"

	"last20-backend/internal/entity"
	"last20-backend/internal/model"
)

type ExpertMapper struct{}

func NewExpertMapper() *ExpertMapper {
	return &ExpertMapper{}
}

func (m *ExpertMapper) ToEntity(p *model.ExpertProfile) *entity.ExpertProfile {
	if p == nil {
		return nil
	}
	var skills []string
	if len(p.Skills) > 0 {
		// a corrupt column degrades to no skills rather than failing the read
		_ = json.Unmarshal(p.Skills, &skills)
	}
	return &entity.ExpertProfile{
		Id:              p.Id,
		UserId:          p.UserId,
		Headline:        p.Headline,
		Bio:             p.Bio,
		Skills:          skills,
		SessionRate:     p.SessionRate,
		Available:       p.Available,
		Rating:          p.Rating,
		RatingCount:     p.RatingCount,
		TotalSessions:   p.TotalSessions,
		PayoutAccountId: p.PayoutAccountId,
		PayoutEnabled:   p.PayoutEnabled,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (m *ExpertMapper) ToModel(p *entity.ExpertProfile) *model.ExpertProfile {
	if p == nil {
		return nil
	}
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	raw, _ := json.Marshal(skills)
	return &model.ExpertProfile{
		Id:              p.Id,
		UserId:          p.UserId,
		Headline:        p.Headline,
		Bio:             p.Bio,
		Skills:          raw,
		SessionRate:     p.SessionRate,
		Available:       p.Available,
		Rating:          p.Rating,
		RatingCount:     p.RatingCount,
		TotalSessions:   p.TotalSessions,
		PayoutAccountId: p.PayoutAccountId,
		PayoutEnabled:   p.PayoutEnabled,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (m *ExpertMapper) ToEntities(profiles []*model.ExpertProfile) []*entity.ExpertProfile {
	entities := make([]*entity.ExpertProfile, len(profiles))
	for i, p := range profiles {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
