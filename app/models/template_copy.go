package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateCopy is a user-owned fork of a catalog template. OriginalTemplateID
// is nil once the original has been removed from the catalog.
type TemplateCopy struct {
	ID                 string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OriginalTemplateID *string   `gorm:"type:varchar(36);index" json:"original_template_id"`
	UserID             string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title              string    `gorm:"type:varchar(255);not null" json:"title"`
	Description        string    `gorm:"type:text" json:"description"`
	Category           string    `gorm:"type:varchar(100)" json:"category"`
	MainCategory       string    `gorm:"type:varchar(20)" json:"main_category"`
	FilePath           string    `gorm:"type:varchar(255);not null" json:"-"`
	FileName           string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileType           string    `gorm:"type:varchar(100)" json:"file_type"`
	FileSize           int64     `gorm:"not null;default:0" json:"file_size"`
	Content            *string   `gorm:"type:longtext" json:"content"`
	PreviewURL         *string   `gorm:"type:varchar(255)" json:"preview_url"`
	Downloads          int64     `gorm:"not null;default:0" json:"downloads"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastEdited         time.Time `gorm:"index" json:"last_edited"`
}

func (TemplateCopy) TableName() string {
	return "copied_templates"
}

func (c *TemplateCopy) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.LastEdited.IsZero() {
		c.LastEdited = time.Now()
	}
	return nil
}

// IsOwnedBy reports whether userID owns the copy
func (c *TemplateCopy) IsOwnedBy(userID string) bool {
	return c != nil && userID != "" && c.UserID == userID
}
