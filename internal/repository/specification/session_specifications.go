package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByRequestID struct {
	RequestID uuid.UUID
}

func (s ByRequestID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("request_id = ?", s.RequestID)
}

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByExpertID struct {
	ExpertID uuid.UUID
}

func (s ByExpertID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expert_id = ?", s.ExpertID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
