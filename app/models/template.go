package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MainCategoryBusiness = "business"
	MainCategoryAcademic = "academic"
	MainCategoryResume   = "resume"
)

// Template is an admin-managed catalog entry. FilePath is the blob store key.
type Template struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Description  string    `gorm:"type:text" json:"description" validate:"max=5000"`
	Category     string    `gorm:"type:varchar(100);not null" json:"category" validate:"required,max=100"`
	MainCategory string    `gorm:"type:varchar(20);not null;index" json:"main_category" validate:"required,oneof=business academic resume"`
	FilePath     string    `gorm:"type:varchar(255);not null" json:"-"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileType     string    `gorm:"type:varchar(100);not null" json:"file_type"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	Downloads    int64     `gorm:"not null;default:0" json:"downloads"`
	IsPremium    bool      `gorm:"not null;default:false" json:"is_premium"`
	CreatedBy    string    `gorm:"type:varchar(36);index" json:"created_by"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Template) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// IsValidMainCategory reports whether c is one of the catalog sections
func IsValidMainCategory(c string) bool {
	switch c {
	case MainCategoryBusiness, MainCategoryAcademic, MainCategoryResume:
		return true
	}
	return false
}
