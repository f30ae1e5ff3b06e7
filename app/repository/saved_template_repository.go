package repository

import (
	"context"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"gorm.io/gorm"
)

type savedTemplateRepository struct {
	db *gorm.DB
}

// NewSavedTemplateRepository creates a new bookmark repository instance
func NewSavedTemplateRepository(db *gorm.DB) SavedTemplateRepository {
	return &savedTemplateRepository{db: db}
}

// Save bookmarks a template. Saving twice yields ErrConflict.
func (r *savedTemplateRepository) Save(ctx context.Context, userID, templateID string) (*models.SavedTemplate, error) {
	var saved *models.SavedTemplate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tplCount int64
		if err := tx.Model(&models.Template{}).Where("id = ?", templateID).Count(&tplCount).Error; err != nil {
			return err
		}
		if tplCount == 0 {
			return apperror.NotFound("Template not found")
		}

		var existing int64
		if err := tx.Model(&models.SavedTemplate{}).
			Where("user_id = ? AND template_id = ?", userID, templateID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperror.New(apperror.ErrConflict, apperror.ReasonConflict, "Template already saved")
		}

		saved = &models.SavedTemplate{UserID: userID, TemplateID: templateID}
		return tx.Create(saved).Error
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *savedTemplateRepository) Remove(ctx context.Context, userID, templateID string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Delete(&models.SavedTemplate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Saved template not found")
	}
	return nil
}

func (r *savedTemplateRepository) IsSaved(ctx context.Context, userID, templateID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedTemplate{}).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns bookmarks with their templates, newest first
func (r *savedTemplateRepository) ListByUser(ctx context.Context, userID string) ([]models.SavedTemplate, error) {
	var saved []models.SavedTemplate
	err := r.db.WithContext(ctx).
		Preload("Template").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error
	return saved, err
}
