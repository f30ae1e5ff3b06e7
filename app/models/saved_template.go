package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavedTemplate is a bookmark; it never implies a copy.
type SavedTemplate struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_saved_templates_user_template,priority:1" json:"user_id"`
	TemplateID string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_saved_templates_user_template,priority:2" json:"template_id"`
	Template   *Template `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"template,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *SavedTemplate) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
