package model

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount    float64   `gorm:"type:numeric(10,2);not null"`
	Currency  string    `gorm:"type:varchar(10);not null;default:'USD'"`
	Status    string    `gorm:"type:varchar(50);not null;default:'pending';index"`
	SnapToken *string   `gorm:"type:varchar(255)"`
	PaidAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
