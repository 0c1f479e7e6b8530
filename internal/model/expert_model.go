package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExpertProfile struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Headline        string         `gorm:"type:varchar(255);not null"`
	Bio             string         `gorm:"type:text"`
	Skills          datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	SessionRate     float64        `gorm:"type:numeric(10,2);not null;default:0"`
	Available       bool           `gorm:"default:false;index"`
	Rating          float64        `gorm:"type:numeric(3,2);not null;default:0"`
	RatingCount     int            `gorm:"not null;default:0"`
	TotalSessions   int            `gorm:"not null;default:0"`
	PayoutAccountId *string        `gorm:"type:varchar(255)"`
	PayoutEnabled   bool           `gorm:"default:false"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (ExpertProfile) TableName() string {
	return "expert_profiles"
}
