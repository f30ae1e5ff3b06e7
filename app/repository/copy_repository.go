package repository

import (
	"context"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"gorm.io/gorm"
)

type copyRepository struct {
	db *gorm.DB
}

// NewCopyRepository creates a new template copy repository instance
func NewCopyRepository(db *gorm.DB) CopyRepository {
	return &copyRepository{db: db}
}

func (r *copyRepository) Create(ctx context.Context, cp *models.TemplateCopy) error {
	return r.db.WithContext(ctx).Create(cp).Error
}

func (r *copyRepository) GetByID(ctx context.Context, id string) (*models.TemplateCopy, error) {
	var cp models.TemplateCopy
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cp).Error
	if err != nil {
		return nil, apperror.FromDB(err, "Copy")
	}
	return &cp, nil
}

// ListByUser returns a user's copies, most recently edited first
func (r *copyRepository) ListByUser(ctx context.Context, userID string) ([]models.TemplateCopy, error) {
	var copies []models.TemplateCopy
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_edited DESC").
		Find(&copies).Error
	return copies, err
}

func (r *copyRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.TemplateCopy{}).Where("id = ?", id).Updates(fields).Error
}

func (r *copyRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.TemplateCopy{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Copy not found")
	}
	return nil
}

func (r *copyRepository) IncrementDownloads(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.TemplateCopy{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
}

func (r *copyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TemplateCopy{}).Count(&count).Error
	return count, err
}
