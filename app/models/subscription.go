package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PlanMonthly  = "monthly"
	PlanBiannual = "biannual"
	PlanYearly   = "yearly"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription is one paid premium period. Status is never swept to expired;
// a row only entitles while EndDate lies in the future.
type Subscription struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_subscriptions_user_status,priority:1" json:"user_id"`
	PlanType  string    `gorm:"type:varchar(20);not null" json:"plan_type"`
	Amount    float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index" json:"end_date"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active';index:idx_subscriptions_user_status,priority:2" json:"status"`
	PaymentID string    `gorm:"type:varchar(100)" json:"payment_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsActiveAt reports whether the subscription entitles at the given instant
func (s *Subscription) IsActiveAt(now time.Time) bool {
	return s != nil && s.Status == SubscriptionStatusActive && s.EndDate.After(now)
}
