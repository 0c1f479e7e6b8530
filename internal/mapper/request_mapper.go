package mapper

import (
	"encoding/json"

	"last20-backend/internal/entity"
	"last20-backend/internal/model"
)

type RequestMapper struct{}

func NewRequestMapper() *RequestMapper {
	return &RequestMapper{}
}

func (m *RequestMapper) ToEntity(r *model.HelpRequest) *entity.HelpRequest {
	if r == nil {
		return nil
	}
	var tags []string
	if len(r.Tags) > 0 {
		_ = json.Unmarshal(r.Tags, &tags)
	}
	return &entity.HelpRequest{
		Id:          r.Id,
		UserId:      r.UserId,
		Title:       r.Title,
		Description: r.Description,
		Tags:        tags,
		Status:      entity.HelpRequestStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m *RequestMapper) ToModel(r *entity.HelpRequest) *model.HelpRequest {
	if r == nil {
		return nil
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return &model.HelpRequest{
		Id:          r.Id,
		UserId:      r.UserId,
		Title:       r.Title,
		Description: r.Description,
		Tags:        raw,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m *RequestMapper) ToEntities(requests []*model.HelpRequest) []*entity.HelpRequest {
	entities := make([]*entity.HelpRequest, len(requests))
	for i, r := range requests {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
