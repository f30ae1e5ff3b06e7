package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TemplateForge/app/models"
)

// Shared Locals/session keys used across controllers and middlewares
const (
	KeyUserID      = "user_id"
	KeyUserContext = "USER_CONTEXT"
)

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID     string       `json:"user_id"`
	Name       string       `json:"name"`
	IsLoggedIn bool         `json:"is_logged_in"`
	IsAdmin    bool         `json:"is_admin"`
	User       *models.User `json:"-"`
}

// Set stores the authenticated user for the rest of the request
func Set(c *fiber.Ctx, user *models.User) {
	if user == nil {
		c.Locals(KeyUserContext, UserContext{})
		return
	}
	c.Locals(KeyUserContext, UserContext{
		UserID:     user.ID,
		Name:       user.Name,
		IsLoggedIn: true,
		IsAdmin:    user.IsSuperAdmin(),
		User:       user,
	})
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// CurrentUser returns the logged-in user, or nil for anonymous requests
func CurrentUser(c *fiber.Ctx) *models.User {
	return GetUserContext(c).User
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user is a super admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetUserID returns the current user's ID, or "" if not logged in
func GetUserID(c *fiber.Ctx) string {
	return GetUserContext(c).UserID
}
