package repository

import (
	"context"
	"strings"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"gorm.io/gorm"
)

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository instance
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, tpl *models.Template) error {
	return r.db.WithContext(ctx).Create(tpl).Error
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	var tpl models.Template
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tpl).Error
	if err != nil {
		return nil, apperror.FromDB(err, "Template")
	}
	return &tpl, nil
}

// FindAll lists templates newest first. Search is a case-insensitive
// substring match over title and description.
func (r *templateRepository) FindAll(ctx context.Context, filters TemplateFilters) ([]models.Template, error) {
	q := r.db.WithContext(ctx).Model(&models.Template{})
	if mc := strings.TrimSpace(filters.MainCategory); mc != "" {
		q = q.Where("main_category = ?", mc)
	}
	if s := strings.TrimSpace(filters.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	var templates []models.Template
	err := q.Order("created_at DESC").Find(&templates).Error
	return templates, err
}

// Update writes the admin-editable columns. The download counter is left to
// IncrementDownloads so a stale read never rolls it back.
func (r *templateRepository) Update(ctx context.Context, tpl *models.Template) error {
	return r.db.WithContext(ctx).Model(tpl).
		Select("title", "description", "category", "main_category", "is_premium",
			"file_path", "file_name", "file_type", "file_size", "updated_at").
		Updates(tpl).Error
}

// Delete removes a template and its bookmarks. Copies survive with their
// original reference cleared.
func (r *templateRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TemplateCopy{}).
			Where("original_template_id = ?", id).
			Update("original_template_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&models.SavedTemplate{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Template{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("Template not found")
		}
		return nil
	})
}

func (r *templateRepository) IncrementDownloads(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Template{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
}

func (r *templateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Template{}).Count(&count).Error
	return count, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}
