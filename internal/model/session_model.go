package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HelpSession struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestId uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpertId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"type:varchar(50);not null;default:'pending_payment';index"`
	Price     float64   `gorm:"type:numeric(10,2);not null"`
	StartedAt *time.Time
	EndedAt   *time.Time
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (HelpSession) TableName() string {
	return "help_sessions"
}
