package specification

import "gorm.io/gorm"

// AvailableOnly keeps experts who have opted in to receiving new sessions.
type AvailableOnly struct{}

func (s AvailableOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("available = ?", true)
}

type PayoutEnabledOnly struct{}

func (s PayoutEnabledOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("payout_enabled = ?", true)
}
