package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"github.com/ManuelReschke/TemplateForge/app/repository"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/billing"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/catalog"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/copies"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/entitlements"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/env"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/identity"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/statistics"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/storage"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/upload"
)

// DefaultMaxUploadBytes bounds template and copy uploads unless
// MAX_UPLOAD_BYTES says otherwise
const DefaultMaxUploadBytes int64 = 25 << 20

// Services bundles what the HTTP handlers delegate to
type Services struct {
	Repos      *repository.Repositories
	Billing    *billing.Service
	Access     *entitlements.Evaluator
	Identity   *identity.Resolver
	Catalog    *catalog.Service
	Copies     *copies.Manager
	Statistics *statistics.Service
}

// NewServices wires the domain services on top of db and store
func NewServices(db *gorm.DB, store storage.Store, statsCache statistics.Cache, bootstrapEmail string, opts ...billing.Option) *Services {
	repos := repository.NewRepositories(db)
	subs := billing.NewServiceFromDB(db, opts...)
	access := entitlements.NewEvaluator(subs)

	return &Services{
		Repos:      repos,
		Billing:    subs,
		Access:     access,
		Identity:   identity.NewResolver(repos.User, bootstrapEmail),
		Catalog:    catalog.NewService(repos.Template, store, access),
		Copies:     copies.NewManager(repos.Template, repos.Copy, store, access),
		Statistics: statistics.NewService(repos, subs, statsCache),
	}
}

// MaxUploadBytes is the configured upload limit
func MaxUploadBytes() int64 {
	if n := env.GetEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes); n > 0 {
		return n
	}
	return DefaultMaxUploadBytes
}

func respondOK(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondMessage(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// formFile reads the multipart "file" field. A missing field yields nil
// unless required.
func formFile(c *fiber.Ctx, required bool) (*upload.File, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if !required && (errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm)) {
			return nil, nil
		}
		return nil, apperror.Invalid("A file upload is required", err)
	}
	return upload.FromFileHeader(fh, MaxUploadBytes())
}

// sendAsset writes an opened asset. Local assets go through SendFile for
// range support; remote bodies are streamed and closed by fasthttp.
func sendAsset(c *fiber.Ctx, asset *storage.Asset, attachment bool) error {
	if attachment {
		c.Attachment(asset.FileName)
	} else {
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", asset.FileName))
	}

	if asset.LocalPath != "" {
		if err := c.SendFile(asset.LocalPath); err != nil {
			return err
		}
	} else if asset.Size > 0 {
		c.Response().SetBodyStream(asset.Body, int(asset.Size))
	} else {
		c.Response().SetBodyStream(asset.Body, -1)
	}

	if asset.ContentType != "" {
		c.Set(fiber.HeaderContentType, asset.ContentType)
	}
	return nil
}
