package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/TemplateForge/app/repository"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/oauth"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/session"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session user for every request. The
// user row is reloaded each time so role and premium changes apply at once.
func UserContextMiddleware(users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Goth keeps its own fiber session during the handshake; skip ours
		// there to prevent cross-store collisions.
		if isOAuthHandshake(c.Path()) {
			return c.Next()
		}

		store := session.GetSessionStore()
		if store == nil {
			usercontext.Set(c, nil)
			return c.Next()
		}
		sess, err := store.Get(c)
		if err != nil {
			usercontext.Set(c, nil)
			return c.Next()
		}

		userID, _ := sess.Get(usercontext.KeyUserID).(string)
		if userID == "" {
			usercontext.Set(c, nil)
			return c.Next()
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				// stale session for a user that no longer exists
				_ = sess.Destroy()
			} else {
				log.Errorf("[Session] Failed to load user %s: %v", userID, err)
			}
			usercontext.Set(c, nil)
			return c.Next()
		}

		usercontext.Set(c, user)
		return c.Next()
	}
}

func isOAuthHandshake(path string) bool {
	for _, p := range oauth.Providers {
		prefix := "/api/auth/" + p
		if path == prefix || path == prefix+"/callback" {
			return true
		}
	}
	return false
}
