package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TemplateForge/app/repository"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/usercontext"
)

// SavedTemplateController manages bookmarks. A bookmark never creates a copy.
type SavedTemplateController struct {
	saved repository.SavedTemplateRepository
}

func NewSavedTemplateController(services *Services) *SavedTemplateController {
	return &SavedTemplateController{saved: services.Repos.SavedTemplate}
}

func (sc *SavedTemplateController) HandleSave(c *fiber.Ctx) error {
	saved, err := sc.saved.Save(c.UserContext(), usercontext.GetUserID(c), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return respondOK(c, fiber.StatusCreated, saved)
}

func (sc *SavedTemplateController) HandleUnsave(c *fiber.Ctx) error {
	if err := sc.saved.Remove(c.UserContext(), usercontext.GetUserID(c), c.Params("id")); err != nil {
		return apperror.Respond(c, err)
	}
	return respondMessage(c, "Template removed from saved")
}

// HandleList returns the caller's bookmarks with their templates
func (sc *SavedTemplateController) HandleList(c *fiber.Ctx) error {
	saved, err := sc.saved.ListByUser(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return respondOK(c, fiber.StatusOK, saved)
}

func (sc *SavedTemplateController) HandleStatus(c *fiber.Ctx) error {
	ok, err := sc.saved.IsSaved(c.UserContext(), usercontext.GetUserID(c), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"isSaved": ok})
}
