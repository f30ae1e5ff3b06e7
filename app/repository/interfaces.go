package repository

import (
	"context"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*models.User, error)
	UpdateAccess(ctx context.Context, id string, role *string, isPremium *bool) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	CountPremium(ctx context.Context) (int64, error)
}

// TemplateFilters narrows catalog listings. Empty fields do not filter.
type TemplateFilters struct {
	MainCategory string
	Search       string
}

// TemplateRepository defines the interface for catalog database operations
type TemplateRepository interface {
	Create(ctx context.Context, tpl *models.Template) error
	GetByID(ctx context.Context, id string) (*models.Template, error)
	FindAll(ctx context.Context, filters TemplateFilters) ([]models.Template, error)
	Update(ctx context.Context, tpl *models.Template) error
	Delete(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// CopyRepository defines the interface for template copy database operations
type CopyRepository interface {
	Create(ctx context.Context, cp *models.TemplateCopy) error
	GetByID(ctx context.Context, id string) (*models.TemplateCopy, error)
	ListByUser(ctx context.Context, userID string) ([]models.TemplateCopy, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// SavedTemplateRepository defines the interface for bookmark operations
type SavedTemplateRepository interface {
	Save(ctx context.Context, userID, templateID string) (*models.SavedTemplate, error)
	Remove(ctx context.Context, userID, templateID string) error
	IsSaved(ctx context.Context, userID, templateID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.SavedTemplate, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User          UserRepository
	Template      TemplateRepository
	Copy          CopyRepository
	SavedTemplate SavedTemplateRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Template:      NewTemplateRepository(db),
		Copy:          NewCopyRepository(db),
		SavedTemplate: NewSavedTemplateRepository(db),
	}
}
