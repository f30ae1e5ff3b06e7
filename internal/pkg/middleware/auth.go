package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/metrics"
	icuser "github.com/ManuelReschke/TemplateForge/internal/pkg/usercontext"
)

// RequireAPISessionAuth ensures a logged-in session for API routes and returns JSON 401 instead of redirect.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !icuser.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Login required",
			"error":   "unauthorized",
		})
	}
	return c.Next()
}

// RequireSuperAdmin ensures a logged-in super admin; JSON 401/403 otherwise.
func RequireSuperAdmin(c *fiber.Ctx) error {
	if !icuser.IsLoggedIn(c) {
		return RequireAPISessionAuth(c)
	}
	if !icuser.IsAdmin(c) {
		metrics.AccessDenied.WithLabelValues(apperror.ReasonAdminRequired).Inc()
		return apperror.Respond(c, apperror.Denied(apperror.ReasonAdminRequired, "Super admin role required"))
	}
	return c.Next()
}
