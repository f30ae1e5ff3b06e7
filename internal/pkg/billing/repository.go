package billing

import (
	"context"
	"time"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(tx Repository) error) error
	LockUser(ctx context.Context, userID string) (*models.User, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	CancelActive(ctx context.Context, userID string) (int64, error)
	SetPremium(ctx context.Context, userID string, premium bool) error
	ActiveSubscriptions(ctx context.Context, userID string, now time.Time) ([]models.Subscription, error)
	CountActive(ctx context.Context, now time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

// LockUser loads the user row with SELECT ... FOR UPDATE so concurrent
// ledger writes for the same user serialize.
func (r *gormRepository) LockUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		return nil, apperror.FromDB(err, "User")
	}
	return &user, nil
}

func (r *gormRepository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// CancelActive flips every row still marked active, including stale ones
// whose end date has already passed.
func (r *gormRepository) CancelActive(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Update("status", models.SubscriptionStatusCancelled)
	return res.RowsAffected, res.Error
}

func (r *gormRepository) SetPremium(ctx context.Context, userID string, premium bool) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_premium", premium).Error
}

// ActiveSubscriptions returns rows that are active and unexpired at now,
// newest first.
func (r *gormRepository) ActiveSubscriptions(ctx context.Context, userID string, now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND end_date > ?", userID, models.SubscriptionStatusActive, now).
		Order("start_date DESC").
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND end_date > ?", models.SubscriptionStatusActive, now).
		Count(&count).Error
	return count, err
}
