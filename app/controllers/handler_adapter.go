package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// Global controller instances
var (
	authController          *AuthController
	templateController      *TemplateController
	savedTemplateController *SavedTemplateController
	copyController          *CopyController
	paymentController       *PaymentController
	adminController         *AdminController
)

var services *Services

// InitializeControllers builds the global controllers on top of services
func InitializeControllers(s *Services) {
	services = s
	authController = NewAuthController(s)
	templateController = NewTemplateController(s)
	savedTemplateController = NewSavedTemplateController(s)
	copyController = NewCopyController(s)
	paymentController = NewPaymentController(s)
	adminController = NewAdminController(s)
}

// GetServices returns the services the global controllers were built on
func GetServices() *Services {
	if services == nil {
		panic("Controllers not initialized. Call InitializeControllers first.")
	}
	return services
}

func getAuthController() *AuthController {
	if authController == nil {
		InitializeControllers(GetServices())
	}
	return authController
}

func getTemplateController() *TemplateController {
	if templateController == nil {
		InitializeControllers(GetServices())
	}
	return templateController
}

func getSavedTemplateController() *SavedTemplateController {
	if savedTemplateController == nil {
		InitializeControllers(GetServices())
	}
	return savedTemplateController
}

func getCopyController() *CopyController {
	if copyController == nil {
		InitializeControllers(GetServices())
	}
	return copyController
}

func getPaymentController() *PaymentController {
	if paymentController == nil {
		InitializeControllers(GetServices())
	}
	return paymentController
}

func getAdminController() *AdminController {
	if adminController == nil {
		InitializeControllers(GetServices())
	}
	return adminController
}

// Adapter functions used by the router

// HandleAuthBegin - Adapter for OAuth redirect
func HandleAuthBegin(c *fiber.Ctx) error {
	return getAuthController().HandleBegin(c)
}

// HandleAuthCallback - Adapter for OAuth callback
func HandleAuthCallback(c *fiber.Ctx) error {
	return getAuthController().HandleCallback(c)
}

// HandleAuthLoginSuccess - Adapter for login status
func HandleAuthLoginSuccess(c *fiber.Ctx) error {
	return getAuthController().HandleLoginSuccess(c)
}

// HandleAuthLoginFailed - Adapter for failed login
func HandleAuthLoginFailed(c *fiber.Ctx) error {
	return getAuthController().HandleLoginFailed(c)
}

// HandleAuthLogout - Adapter for logout
func HandleAuthLogout(c *fiber.Ctx) error {
	return getAuthController().HandleLogout(c)
}

// HandleAuthCheckPremium - Adapter for premium check
func HandleAuthCheckPremium(c *fiber.Ctx) error {
	return getAuthController().HandleCheckPremium(c)
}

// HandleTemplateList - Adapter for catalog listing
func HandleTemplateList(c *fiber.Ctx) error {
	return getTemplateController().HandleList(c)
}

// HandleTemplateGet - Adapter for template metadata
func HandleTemplateGet(c *fiber.Ctx) error {
	return getTemplateController().HandleGet(c)
}

// HandleTemplateDownload - Adapter for template download
func HandleTemplateDownload(c *fiber.Ctx) error {
	return getTemplateController().HandleDownload(c)
}

// HandleTemplatePreview - Adapter for template preview
func HandleTemplatePreview(c *fiber.Ctx) error {
	return getTemplateController().HandlePreview(c)
}

// HandleTemplateSave - Adapter for bookmarking
func HandleTemplateSave(c *fiber.Ctx) error {
	return getSavedTemplateController().HandleSave(c)
}

// HandleTemplateUnsave - Adapter for removing a bookmark
func HandleTemplateUnsave(c *fiber.Ctx) error {
	return getSavedTemplateController().HandleUnsave(c)
}

// HandleSavedTemplates - Adapter for bookmark listing
func HandleSavedTemplates(c *fiber.Ctx) error {
	return getSavedTemplateController().HandleList(c)
}

// HandleTemplateSavedStatus - Adapter for bookmark status
func HandleTemplateSavedStatus(c *fiber.Ctx) error {
	return getSavedTemplateController().HandleStatus(c)
}

// HandleCopyEnsure - Adapter for starting an edit
func HandleCopyEnsure(c *fiber.Ctx) error {
	return getCopyController().HandleEnsure(c)
}

// HandleCopyList - Adapter for copy listing
func HandleCopyList(c *fiber.Ctx) error {
	return getCopyController().HandleList(c)
}

// HandleCopyGet - Adapter for copy or template lookup
func HandleCopyGet(c *fiber.Ctx) error {
	return getCopyController().HandleGet(c)
}

// HandleCopyReplaceAsset - Adapter for asset replacement
func HandleCopyReplaceAsset(c *fiber.Ctx) error {
	return getCopyController().HandleReplaceAsset(c)
}

// HandleCopyUpdateContent - Adapter for editor saves
func HandleCopyUpdateContent(c *fiber.Ctx) error {
	return getCopyController().HandleUpdateContent(c)
}

// HandleCopyDelete - Adapter for copy deletion
func HandleCopyDelete(c *fiber.Ctx) error {
	return getCopyController().HandleDelete(c)
}

// HandleCopyDownload - Adapter for copy download
func HandleCopyDownload(c *fiber.Ctx) error {
	return getCopyController().HandleDownload(c)
}

// HandleCopyThumbnail - Adapter for copy thumbnail
func HandleCopyThumbnail(c *fiber.Ctx) error {
	return getCopyController().HandleThumbnail(c)
}

// HandlePaymentPlans - Adapter for plan table
func HandlePaymentPlans(c *fiber.Ctx) error {
	return getPaymentController().HandlePlans(c)
}

// HandlePaymentSubscribe - Adapter for subscribing
func HandlePaymentSubscribe(c *fiber.Ctx) error {
	return getPaymentController().HandleSubscribe(c)
}

// HandlePaymentCancel - Adapter for cancelling
func HandlePaymentCancel(c *fiber.Ctx) error {
	return getPaymentController().HandleCancel(c)
}

// HandlePaymentStatus - Adapter for subscription status
func HandlePaymentStatus(c *fiber.Ctx) error {
	return getPaymentController().HandleStatus(c)
}

// HandleAdminDashboard - Adapter for admin dashboard
func HandleAdminDashboard(c *fiber.Ctx) error {
	return getAdminController().HandleDashboard(c)
}

// HandleAdminTemplates - Adapter for template management
func HandleAdminTemplates(c *fiber.Ctx) error {
	return getAdminController().HandleTemplates(c)
}

// HandleAdminTemplate - Adapter for template details
func HandleAdminTemplate(c *fiber.Ctx) error {
	return getAdminController().HandleTemplate(c)
}

// HandleAdminTemplateCreate - Adapter for template upload
func HandleAdminTemplateCreate(c *fiber.Ctx) error {
	return getAdminController().HandleTemplateCreate(c)
}

// HandleAdminTemplateUpdate - Adapter for template update
func HandleAdminTemplateUpdate(c *fiber.Ctx) error {
	return getAdminController().HandleTemplateUpdate(c)
}

// HandleAdminTemplateDelete - Adapter for template delete
func HandleAdminTemplateDelete(c *fiber.Ctx) error {
	return getAdminController().HandleTemplateDelete(c)
}

// HandleAdminUsers - Adapter for user management
func HandleAdminUsers(c *fiber.Ctx) error {
	return getAdminController().HandleUsers(c)
}

// HandleAdminUserUpdate - Adapter for user update
func HandleAdminUserUpdate(c *fiber.Ctx) error {
	return getAdminController().HandleUserUpdate(c)
}
