package entity

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeExpertMatched    NotificationType = "expert_matched"
	NotificationTypeSessionBooked    NotificationType = "session_booked"
	NotificationTypeSessionPaid      NotificationType = "session_paid"
	NotificationTypeSessionCancelled NotificationType = "session_cancelled"
	NotificationTypeReviewReceived   NotificationType = "review_received"
)

type Notification struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Type      NotificationType
	Title     string
	Message   string
	Metadata  map[string]any
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
