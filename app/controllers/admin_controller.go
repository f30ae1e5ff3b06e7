package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/app/repository"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/catalog"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/statistics"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/usercontext"
)

// AdminUsersPerPage is the page size of the user listing
const AdminUsersPerPage = 20

// AdminController handles super admin requests using repository pattern
type AdminController struct {
	repos   *repository.Repositories
	catalog *catalog.Service
	stats   *statistics.Service
}

// NewAdminController creates a new admin controller with its dependencies
func NewAdminController(services *Services) *AdminController {
	return &AdminController{
		repos:   services.Repos,
		catalog: services.Catalog,
		stats:   services.Statistics,
	}
}

type templateCreateRequest struct {
	Title        string `json:"title" form:"title"`
	Description  string `json:"description" form:"description"`
	Category     string `json:"category" form:"category"`
	MainCategory string `json:"mainCategory" form:"mainCategory"`
	IsPremium    bool   `json:"isPremium" form:"isPremium"`
}

type templateUpdateRequest struct {
	Title        *string `json:"title" form:"title"`
	Description  *string `json:"description" form:"description"`
	Category     *string `json:"category" form:"category"`
	MainCategory *string `json:"mainCategory" form:"mainCategory"`
	IsPremium    *bool   `json:"isPremium" form:"isPremium"`
}

type userUpdateRequest struct {
	Role      *string `json:"role"`
	IsPremium *bool   `json:"isPremium"`
}

// HandleDashboard returns the cached dashboard counts
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	d, err := ac.stats.Dashboard(c.UserContext())
	if err != nil {
		return ac.handleError(c, "Failed to load dashboard", err)
	}
	return respondOK(c, fiber.StatusOK, d)
}

// HandleTemplates lists the whole catalog
func (ac *AdminController) HandleTemplates(c *fiber.Ctx) error {
	templates, err := ac.catalog.List(c.UserContext(), repository.TemplateFilters{})
	if err != nil {
		return ac.handleError(c, "Failed to list templates", err)
	}
	return respondOK(c, fiber.StatusOK, templates)
}

func (ac *AdminController) HandleTemplate(c *fiber.Ctx) error {
	tpl, err := ac.catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return respondOK(c, fiber.StatusOK, tpl)
}

// HandleTemplateCreate stores an uploaded template. Multipart: file plus
// title, description, category, mainCategory, isPremium.
func (ac *AdminController) HandleTemplateCreate(c *fiber.Ctx) error {
	var req templateCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Respond(c, apperror.Invalid("Invalid request body", err))
	}
	file, err := formFile(c, true)
	if err != nil {
		return apperror.Respond(c, err)
	}
	defer file.Close()

	tpl, err := ac.catalog.Create(c.UserContext(), usercontext.CurrentUser(c), catalog.TemplateInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		MainCategory: req.MainCategory,
		IsPremium:    req.IsPremium,
	}, file)
	if err != nil {
		return apperror.Respond(c, err)
	}
	ac.stats.Invalidate()
	return respondOK(c, fiber.StatusCreated, tpl)
}

// HandleTemplateUpdate changes metadata; the file part is optional
func (ac *AdminController) HandleTemplateUpdate(c *fiber.Ctx) error {
	var req templateUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Respond(c, apperror.Invalid("Invalid request body", err))
	}
	file, err := formFile(c, false)
	if err != nil {
		return apperror.Respond(c, err)
	}
	if file != nil {
		defer file.Close()
	}

	tpl, err := ac.catalog.Update(c.UserContext(), usercontext.CurrentUser(c), c.Params("id"), catalog.TemplateUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		MainCategory: req.MainCategory,
		IsPremium:    req.IsPremium,
	}, file)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return respondOK(c, fiber.StatusOK, tpl)
}

func (ac *AdminController) HandleTemplateDelete(c *fiber.Ctx) error {
	if err := ac.catalog.Delete(c.UserContext(), usercontext.CurrentUser(c), c.Params("id")); err != nil {
		return apperror.Respond(c, err)
	}
	ac.stats.Invalidate()
	return respondMessage(c, "Template deleted")
}

// HandleUsers lists users, newest first, ?page=1-based
func (ac *AdminController) HandleUsers(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * AdminUsersPerPage

	users, err := ac.repos.User.List(c.UserContext(), offset, AdminUsersPerPage)
	if err != nil {
		return ac.handleError(c, "Failed to list users", err)
	}
	total, err := ac.repos.User.Count(c.UserContext())
	if err != nil {
		return ac.handleError(c, "Failed to count users", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"page":    page,
		"perPage": AdminUsersPerPage,
		"total":   total,
	})
}

// HandleUserUpdate changes role and premium flag. A super admin stays
// premium whatever is sent.
func (ac *AdminController) HandleUserUpdate(c *fiber.Ctx) error {
	var req userUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Respond(c, apperror.Invalid("Invalid request body", err))
	}
	if req.Role != nil && !models.IsValidRole(*req.Role) {
		return apperror.Respond(c, apperror.Invalid("Unknown role", nil))
	}

	user, err := ac.repos.User.UpdateAccess(c.UserContext(), c.Params("id"), req.Role, req.IsPremium)
	if err != nil {
		return ac.handleError(c, "Failed to update user", err)
	}

	log.Infof("[Admin] %s updated user %s: role=%s premium=%t", usercontext.GetUserID(c), user.ID, user.Role, user.IsPremium)
	ac.stats.Invalidate()
	return respondOK(c, fiber.StatusOK, user)
}

// handleError logs the cause and answers with the generic envelope
func (ac *AdminController) handleError(c *fiber.Ctx, message string, err error) error {
	log.Errorf("[Admin] %s: %v", message, err)
	return apperror.Respond(c, err)
}
