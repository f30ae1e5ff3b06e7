package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TemplateForge/app/repository"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/catalog"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/preview"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/storage"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/usercontext"
)

// PreviewView is the html template rendered for office documents
const PreviewView = "preview"

// TemplateController serves the public catalog
type TemplateController struct {
	catalog *catalog.Service
}

func NewTemplateController(services *Services) *TemplateController {
	return &TemplateController{catalog: services.Catalog}
}

// HandleList lists templates, optionally narrowed by ?mainCategory= and ?search=
func (tc *TemplateController) HandleList(c *fiber.Ctx) error {
	templates, err := tc.catalog.List(c.UserContext(), repository.TemplateFilters{
		MainCategory: strings.TrimSpace(c.Query("mainCategory")),
		Search:       strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		return apperror.Respond(c, err)
	}
	return respondOK(c, fiber.StatusOK, templates)
}

// HandleGet returns template metadata; it is public even for premium templates
func (tc *TemplateController) HandleGet(c *fiber.Ctx) error {
	tpl, err := tc.catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return respondOK(c, fiber.StatusOK, tpl)
}

// HandleDownload sends the full asset as an attachment and counts it
func (tc *TemplateController) HandleDownload(c *fiber.Ctx) error {
	id := c.Params("id")
	_, asset, err := tc.catalog.OpenAsset(c.UserContext(), usercontext.CurrentUser(c), id)
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := sendAsset(c, asset, true); err != nil {
		asset.Close()
		return apperror.Respond(c, apperror.Storage("Failed to send template file", err))
	}
	tc.catalog.RecordDownload(c.UserContext(), id)
	return nil
}

// HandlePreview streams PDFs inline and renders a download page for
// office documents
func (tc *TemplateController) HandlePreview(c *fiber.Ctx) error {
	tpl, kind, asset, err := tc.catalog.OpenPreview(c.UserContext(), usercontext.CurrentUser(c), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}

	if kind == preview.PDF {
		asset.ContentType = "application/pdf"
		if err := sendAsset(c, asset, false); err != nil {
			asset.Close()
			return apperror.Respond(c, apperror.Storage("Failed to send template file", err))
		}
		return nil
	}

	return c.Render(PreviewView, fiber.Map{
		"Title":       tpl.Title,
		"Description": tpl.Description,
		"Format":      strings.ToUpper(strings.TrimPrefix(storage.Ext(tpl.FileName), ".")),
		"DownloadURL": "/api/templates/" + tpl.ID + "/download",
	})
}
