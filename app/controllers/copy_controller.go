package controllers

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/copies"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/usercontext"
)

// CopyController exposes the copy manager to the editor
type CopyController struct {
	copies   *copies.Manager
	validate *validator.Validate
}

func NewCopyController(services *Services) *CopyController {
	return &CopyController{
		copies:   services.Copies,
		validate: validator.New(),
	}
}

// contentRequest is an editor save. Content is stored as sent: a JSON
// string is unwrapped, any other JSON value is kept as its raw text.
type contentRequest struct {
	Content     json.RawMessage `json:"content"`
	Preview     *string         `json:"preview"`
	Title       *string         `json:"title" validate:"omitempty,max=255"`
	Description *string         `json:"description" validate:"omitempty,max=5000"`
}

func (r contentRequest) toUpdate() copies.ContentUpdate {
	upd := copies.ContentUpdate{
		Preview:     r.Preview,
		Title:       r.Title,
		Description: r.Description,
	}
	if len(r.Content) > 0 && string(r.Content) != "null" {
		var s string
		if err := json.Unmarshal(r.Content, &s); err != nil {
			s = string(r.Content)
		}
		upd.Content = &s
	}
	return upd
}

// HandleList returns the caller's copies
func (cc *CopyController) HandleList(c *fiber.Ctx) error {
	list, err := cc.copies.List(c.UserContext(), usercontext.CurrentUser(c))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return respondOK(c, fiber.StatusOK, list)
}

// HandleGet resolves an id in either namespace and tags the result
func (cc *CopyController) HandleGet(c *fiber.Ctx) error {
	resolved, err := cc.copies.GetByID(c.UserContext(), usercontext.CurrentUser(c), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"kind":    resolved.Kind,
		"data":    resolved.Data(),
	})
}

// HandleEnsure starts editing: a template id is forked, a copy id returns
// that copy
func (cc *CopyController) HandleEnsure(c *fiber.Ctx) error {
	cp, created, err := cc.copies.EnsureCopy(c.UserContext(), usercontext.CurrentUser(c), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return respondOK(c, status, cp)
}

// HandleUpdateContent saves editor state, preview and metadata
func (cc *CopyController) HandleUpdateContent(c *fiber.Ctx) error {
	var req contentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Respond(c, apperror.Invalid("Invalid request body", err))
	}
	if err := cc.validate.Struct(req); err != nil {
		return apperror.Respond(c, apperror.Invalid("Invalid request body", err))
	}
	cp, err := cc.copies.UpdateContent(c.UserContext(), usercontext.CurrentUser(c), c.Params("id"), req.toUpdate())
	if err != nil {
		return apperror.Respond(c, err)
	}
	return respondOK(c, fiber.StatusOK, cp)
}

// HandleReplaceAsset swaps the copy's file for the uploaded one
func (cc *CopyController) HandleReplaceAsset(c *fiber.Ctx) error {
	file, err := formFile(c, true)
	if err != nil {
		return apperror.Respond(c, err)
	}
	defer file.Close()

	cp, err := cc.copies.ReplaceAsset(c.UserContext(), usercontext.CurrentUser(c), c.Params("id"), file)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return respondOK(c, fiber.StatusOK, cp)
}

// HandleDelete removes a copy and its files
func (cc *CopyController) HandleDelete(c *fiber.Ctx) error {
	if err := cc.copies.Delete(c.UserContext(), usercontext.CurrentUser(c), c.Params("id")); err != nil {
		return apperror.Respond(c, err)
	}
	return respondMessage(c, "Copy deleted")
}

// HandleDownload sends the copy's file to its owner
func (cc *CopyController) HandleDownload(c *fiber.Ctx) error {
	cp, asset, err := cc.copies.OpenAsset(c.UserContext(), usercontext.CurrentUser(c), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := sendAsset(c, asset, true); err != nil {
		asset.Close()
		return apperror.Respond(c, apperror.Storage("Failed to send file", err))
	}
	cc.copies.RecordDownload(c.UserContext(), cp.ID)
	return nil
}

// HandleThumbnail serves the stored editor preview
func (cc *CopyController) HandleThumbnail(c *fiber.Ctx) error {
	asset, err := cc.copies.OpenPreview(c.UserContext(), usercontext.CurrentUser(c), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := sendAsset(c, asset, false); err != nil {
		asset.Close()
		return apperror.Respond(c, apperror.Storage("Failed to send preview", err))
	}
	return nil
}
