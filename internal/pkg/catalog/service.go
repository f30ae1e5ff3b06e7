package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/app/repository"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/metrics"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/preview"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/storage"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/upload"
)

// AccessGate decides whether a user may open a template in full
type AccessGate interface {
	Check(ctx context.Context, user *models.User, tpl *models.Template) error
}

// TemplateInput is the metadata of a new template
type TemplateInput struct {
	Title        string
	Description  string
	Category     string
	MainCategory string
	IsPremium    bool
}

// TemplateUpdate changes template metadata. Nil fields are left unchanged.
type TemplateUpdate struct {
	Title        *string
	Description  *string
	Category     *string
	MainCategory *string
	IsPremium    *bool
}

// Service manages the admin-curated template catalog
type Service struct {
	templates repository.TemplateRepository
	store     storage.Store
	access    AccessGate
	now       func() time.Time
}

func NewService(templates repository.TemplateRepository, store storage.Store, access AccessGate) *Service {
	return &Service{templates: templates, store: store, access: access, now: time.Now}
}

// List returns templates matching filters, newest first
func (s *Service) List(ctx context.Context, filters repository.TemplateFilters) ([]models.Template, error) {
	return s.templates.FindAll(ctx, filters)
}

// Get returns template metadata. Metadata is public for every template.
func (s *Service) Get(ctx context.Context, id string) (*models.Template, error) {
	return s.templates.GetByID(ctx, id)
}

// Create stores the asset first and inserts the row only once the asset is
// in place.
func (s *Service) Create(ctx context.Context, admin *models.User, in TemplateInput, file *upload.File) (*models.Template, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if file == nil || file.Reader == nil {
		return nil, apperror.Invalid("Template file is required", nil)
	}

	tpl := &models.Template{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Category:     strings.TrimSpace(in.Category),
		MainCategory: strings.TrimSpace(in.MainCategory),
		IsPremium:    in.IsPremium,
		FileName:     file.FileName,
		FileType:     file.ContentType,
		FileSize:     file.Size,
		CreatedBy:    admin.ID,
	}
	tpl.FilePath = storage.TemplateKey(tpl.ID, storage.Ext(file.FileName))
	if err := tpl.Validate(); err != nil {
		return nil, apperror.Invalid("Invalid template data", err)
	}

	op, err := s.store.Save(ctx, tpl.FilePath, file.Reader, file.Size, file.ContentType)
	if err != nil {
		return nil, apperror.Storage("Failed to store template file", err)
	}
	if op != nil && op.Size > 0 {
		tpl.FileSize = op.Size
	}

	if err := s.templates.Create(ctx, tpl); err != nil {
		s.discard(ctx, tpl.FilePath)
		return nil, err
	}
	log.Infof("[Catalog] %s created template %s (%s, premium=%t)", admin.Email, tpl.ID, tpl.Title, tpl.IsPremium)
	return tpl, nil
}

// Update changes metadata and, when file is non-nil, swaps the asset. The
// previous asset is removed only after the row points at the new one.
func (s *Service) Update(ctx context.Context, admin *models.User, id string, upd TemplateUpdate, file *upload.File) (*models.Template, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		tpl.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Description != nil {
		tpl.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Category != nil {
		tpl.Category = strings.TrimSpace(*upd.Category)
	}
	if upd.MainCategory != nil {
		tpl.MainCategory = strings.TrimSpace(*upd.MainCategory)
	}
	if upd.IsPremium != nil {
		tpl.IsPremium = *upd.IsPremium
	}
	if err := tpl.Validate(); err != nil {
		return nil, apperror.Invalid("Invalid template data", err)
	}

	oldKey := ""
	if file != nil && file.Reader != nil {
		key := storage.TemplateRevisionKey(tpl.ID, s.now().UnixNano(), storage.Ext(file.FileName))
		op, err := s.store.Save(ctx, key, file.Reader, file.Size, file.ContentType)
		if err != nil {
			return nil, apperror.Storage("Failed to store template file", err)
		}
		oldKey = tpl.FilePath
		tpl.FilePath = key
		tpl.FileName = file.FileName
		tpl.FileType = file.ContentType
		tpl.FileSize = file.Size
		if op != nil && op.Size > 0 {
			tpl.FileSize = op.Size
		}
	}

	if err := s.templates.Update(ctx, tpl); err != nil {
		if oldKey != "" {
			s.discard(ctx, tpl.FilePath)
		}
		return nil, err
	}
	if oldKey != "" && oldKey != tpl.FilePath {
		s.discard(ctx, oldKey)
	}
	if fresh, err := s.templates.GetByID(ctx, tpl.ID); err == nil {
		return fresh, nil
	}
	return tpl, nil
}

// Delete removes the template and its asset. Copies of it keep their own
// assets and lose only their back reference.
func (s *Service) Delete(ctx context.Context, admin *models.User, id string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		return err
	}
	s.discard(ctx, tpl.FilePath)
	log.Infof("[Catalog] %s deleted template %s", admin.Email, id)
	return nil
}

// OpenAsset gates and opens the full asset of a template
func (s *Service) OpenAsset(ctx context.Context, user *models.User, id string) (*models.Template, *storage.Asset, error) {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.access.Check(ctx, user, tpl); err != nil {
		return nil, nil, err
	}
	asset, err := s.open(ctx, tpl)
	if err != nil {
		return nil, nil, err
	}
	return tpl, asset, nil
}

// OpenPreview gates a preview request. PDFs come back opened; office
// documents have no inline rendering and come back without an asset.
func (s *Service) OpenPreview(ctx context.Context, user *models.User, id string) (*models.Template, preview.Kind, *storage.Asset, error) {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, preview.Unsupported, nil, err
	}
	if err := s.access.Check(ctx, user, tpl); err != nil {
		return nil, preview.Unsupported, nil, err
	}

	kind := preview.Classify(tpl.FileType, tpl.FileName)
	switch kind {
	case preview.PDF:
		asset, err := s.open(ctx, tpl)
		if err != nil {
			return nil, kind, nil, err
		}
		return tpl, kind, asset, nil
	case preview.Office:
		return tpl, kind, nil, nil
	}
	return nil, kind, nil, apperror.Invalid("Preview is not available for this file type", nil)
}

// RecordDownload counts a completed full-content download. It is not tied
// to the stream; failures are logged only.
func (s *Service) RecordDownload(ctx context.Context, id string) {
	if err := s.templates.IncrementDownloads(ctx, id); err != nil {
		log.Warnf("[Catalog] Failed to count download of template %s: %v", id, err)
		return
	}
	metrics.TemplateDownloads.Inc()
}

func (s *Service) open(ctx context.Context, tpl *models.Template) (*storage.Asset, error) {
	asset, err := storage.OpenAsset(ctx, s.store, tpl.FilePath, tpl.FileName, tpl.FileType)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperror.NotFound("Template file not found")
		}
		return nil, apperror.Storage("Failed to open template file", err)
	}
	if asset.Size == 0 {
		asset.Size = tpl.FileSize
	}
	return asset, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		log.Errorf("[Catalog] Failed to delete blob %s: %v", key, err)
	}
}

func requireAdmin(user *models.User) error {
	if user == nil {
		return apperror.Denied(apperror.ReasonLoginRequired, "Login required")
	}
	if !user.IsSuperAdmin() {
		metrics.AccessDenied.WithLabelValues(apperror.ReasonAdminRequired).Inc()
		return apperror.Denied(apperror.ReasonAdminRequired, "Super admin role required")
	}
	return nil
}
