package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	gothfiber "github.com/shareed2k/goth_fiber"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/entitlements"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/env"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/identity"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/oauth"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/session"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/usercontext"
)

const loginFailedPath = "/api/auth/login/failed"

// AuthController handles the OAuth login flow and session status
type AuthController struct {
	identity *identity.Resolver
	access   *entitlements.Evaluator
}

func NewAuthController(services *Services) *AuthController {
	return &AuthController{
		identity: services.Identity,
		access:   services.Access,
	}
}

func clientURL() string {
	return strings.TrimRight(env.GetEnv("CLIENT_URL", "http://localhost:3000"), "/")
}

// HandleBegin redirects to the provider's consent screen
func (ac *AuthController) HandleBegin(c *fiber.Ctx) error {
	if !oauth.IsSupported(c.Params("provider")) {
		return apperror.Respond(c, apperror.NotFound("Unknown login provider"))
	}
	return gothfiber.BeginAuthHandler(c)
}

// HandleCallback completes the provider flow, resolves the local user and
// logs them in
func (ac *AuthController) HandleCallback(c *fiber.Ctx) error {
	provider := c.Params("provider")
	if !oauth.IsSupported(provider) {
		return apperror.Respond(c, apperror.NotFound("Unknown login provider"))
	}

	gu, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Warnf("[Auth] %s callback failed: %v", provider, err)
		return ac.loginFailed(c, "Login with "+provider+" failed")
	}

	user, err := ac.identity.ResolveOrCreate(c.UserContext(), identity.ProfileFromGoth(gu))
	if err != nil {
		log.Warnf("[Auth] Could not resolve %s identity %s: %v", provider, gu.UserID, err)
		return ac.loginFailed(c, apperror.MessageOf(err))
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		log.Errorf("[Auth] Session init failed: %v", err)
		return ac.loginFailed(c, "Session could not be created")
	}
	// new session id after login
	if err := sess.Regenerate(); err != nil {
		log.Errorf("[Auth] Session regenerate failed: %v", err)
		return ac.loginFailed(c, "Session could not be created")
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	if err := sess.Save(); err != nil {
		log.Errorf("[Auth] Session save failed: %v", err)
		return ac.loginFailed(c, "Session could not be saved")
	}

	return c.Redirect(clientURL(), fiber.StatusSeeOther)
}

func (ac *AuthController) loginFailed(c *fiber.Ctx, message string) error {
	return flash.WithError(c, fiber.Map{
		"type":    "error",
		"message": message,
	}).Redirect(loginFailedPath, fiber.StatusSeeOther)
}

// HandleLoginSuccess reports the logged-in user to the SPA
func (ac *AuthController) HandleLoginSuccess(c *fiber.Ctx) error {
	user := usercontext.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User not authenticated",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user":    user,
	})
}

// HandleLoginFailed reports a failed login, with the flashed reason if any
func (ac *AuthController) HandleLoginFailed(c *fiber.Ctx) error {
	message := "Login failed"
	if fm := flash.Get(c); fm != nil {
		if m, ok := fm["message"].(string); ok && m != "" {
			message = m
		}
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   apperror.ReasonIdentity,
	})
}

// HandleLogout ends the session and sends the browser back to the SPA
func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if store := session.GetSessionStore(); store != nil {
		if sess, err := store.Get(c); err == nil {
			if err := sess.Destroy(); err != nil {
				log.Warnf("[Auth] Session destroy failed: %v", err)
			}
		}
	}
	return c.Redirect(clientURL(), fiber.StatusSeeOther)
}

// HandleCheckPremium reports the caller's effective premium state
func (ac *AuthController) HandleCheckPremium(c *fiber.Ctx) error {
	premium, err := ac.access.EffectivePremium(c.UserContext(), usercontext.CurrentUser(c))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"isPremium": premium})
}
