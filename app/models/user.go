package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ROLE_USER        = "user"
	ROLE_SUPER_ADMIN = "super_admin"
)

type User struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email      string    `gorm:"type:varchar(200);not null;index" json:"email" validate:"required,email,max=200"`
	Name       string    `gorm:"type:varchar(150)" json:"name" validate:"max=150"`
	Avatar     string    `gorm:"type:varchar(255);default:null" json:"avatar" validate:"max=255"`
	Provider   string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_users_provider_subject,priority:1" json:"provider" validate:"required,max=32"`
	ProviderID string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_users_provider_subject,priority:2" json:"provider_id" validate:"required,max=191"`
	Role       string    `gorm:"type:varchar(20);not null;default:'user'" json:"role" validate:"oneof=user super_admin"`
	IsPremium  bool      `gorm:"not null;default:false" json:"is_premium"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = ROLE_USER
	}
	return nil
}

// BeforeSave pins the premium flag for super admins on every write of a
// loaded row, so the flag can never be cleared for that role.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.IsSuperAdmin() {
		u.IsPremium = true
	}
	return nil
}

// IsSuperAdmin reports whether the user holds the super admin role
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == ROLE_SUPER_ADMIN
}

// IsValidRole reports whether role is one of the known roles
func IsValidRole(role string) bool {
	return role == ROLE_USER || role == ROLE_SUPER_ADMIN
}
