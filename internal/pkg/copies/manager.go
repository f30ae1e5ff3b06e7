package copies

import (
	"bytes"
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

// AccessGate decides whether a user may open a catalog template in full.
// entitlements.Evaluator satisfies it.
type AccessGate interface {
	Check(ctx context.Context, user *models.User, tpl *models.Template) error
}

// TemplateSource reads catalog templates
type TemplateSource interface {
	GetByID(ctx context.Context, id string) (*models.Template, error)
}

// Kind tags which namespace an id resolved in
type Kind string

const (
	KindOriginal Kind = "original"
	KindCopy     Kind = "copy"
)

// Resolved is either a catalog template or one of the caller's copies.
// Exactly one of Template and Copy is set, matching Kind.
type Resolved struct {
	Kind     Kind
	Template *models.Template
	Copy     *models.TemplateCopy
}

// Data returns the resolved entity
func (r *Resolved) Data() interface{} {
	if r.Kind == KindCopy {
		return r.Copy
	}
	return r.Template
}

// ContentUpdate carries an editor save. Nil fields are left unchanged.
type ContentUpdate struct {
	Content     *string
	Preview     *string
	Title       *string
	Description *string
}

// Manager forks catalog templates into user-owned copies and evolves them.
// Each copy owns its blob exclusively.
type Manager struct {
	templates TemplateSource
	copies    repository.CopyRepository
	store     storage.Store
	access    AccessGate
	now       func() time.Time
}

// Option customizes a Manager
type Option func(*Manager)

// WithClock replaces the wall clock used for last_edited
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(templates TemplateSource, copies repository.CopyRepository, store storage.Store, access AccessGate, opts ...Option) *Manager {
	m := &Manager{
		templates: templates,
		copies:    copies,
		store:     store,
		access:    access,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureCopy returns the caller's copy when id names one. Otherwise id is a
// catalog template that gets forked into a new copy. Forking never
// deduplicates: two calls with a template id yield two copies.
func (m *Manager) EnsureCopy(ctx context.Context, user *models.User, id string) (*models.TemplateCopy, bool, error) {
	if user == nil {
		return nil, false, apperror.Denied(apperror.ReasonLoginRequired, "Login required")
	}

	existing, err := m.copies.GetByID(ctx, id)
	if err == nil {
		if !existing.IsOwnedBy(user.ID) {
			return nil, false, m.notOwner()
		}
		return existing, false, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, false, err
	}

	tpl, err := m.templates.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if err := m.access.Check(ctx, user, tpl); err != nil {
		return nil, false, err
	}

	copyID := uuid.NewString()
	key := storage.CopyKey(user.ID, copyID, storage.Ext(tpl.FilePath))
	op, err := m.store.Copy(ctx, tpl.FilePath, key)
	if err != nil {
		return nil, false, apperror.Storage("Failed to copy template file", err)
	}

	size := tpl.FileSize
	if op != nil && op.Size > 0 {
		size = op.Size
	}
	originalID := tpl.ID
	cp := &models.TemplateCopy{
		ID:                 copyID,
		OriginalTemplateID: &originalID,
		UserID:             user.ID,
		Title:              tpl.Title,
		Description:        tpl.Description,
		Category:           tpl.Category,
		MainCategory:       tpl.MainCategory,
		FilePath:           key,
		FileName:           tpl.FileName,
		FileType:           tpl.FileType,
		FileSize:           size,
		LastEdited:         m.now(),
	}
	if err := m.copies.Create(ctx, cp); err != nil {
		m.discard(ctx, key)
		return nil, false, err
	}

	metrics.CopiesCreated.Inc()
	log.Infof("[CopyManager] User %s copied template %s as %s", user.ID, tpl.ID, cp.ID)
	return cp, true, nil
}

// Get returns one of the caller's copies
func (m *Manager) Get(ctx context.Context, user *models.User, copyID string) (*models.TemplateCopy, error) {
	if user == nil {
		return nil, apperror.Denied(apperror.ReasonLoginRequired, "Login required")
	}
	cp, err := m.copies.GetByID(ctx, copyID)
	if err != nil {
		return nil, err
	}
	if !cp.IsOwnedBy(user.ID) {
		return nil, m.notOwner()
	}
	return cp, nil
}

// List returns the caller's copies, most recently edited first
func (m *Manager) List(ctx context.Context, user *models.User) ([]models.TemplateCopy, error) {
	if user == nil {
		return nil, apperror.Denied(apperror.ReasonLoginRequired, "Login required")
	}
	return m.copies.ListByUser(ctx, user.ID)
}

// GetByID resolves id against the caller's copies first, then the catalog.
// Catalog hits pass through the access gate.
func (m *Manager) GetByID(ctx context.Context, user *models.User, id string) (*Resolved, error) {
	cp, err := m.copies.GetByID(ctx, id)
	switch {
	case err == nil:
		if user == nil {
			return nil, apperror.Denied(apperror.ReasonLoginRequired, "Login required")
		}
		if !cp.IsOwnedBy(user.ID) {
			return nil, m.notOwner()
		}
		return &Resolved{Kind: KindCopy, Copy: cp}, nil
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}

	tpl, err := m.templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("Template or copy not found")
		}
		return nil, err
	}
	if err := m.access.Check(ctx, user, tpl); err != nil {
		return nil, err
	}
	return &Resolved{Kind: KindOriginal, Template: tpl}, nil
}

// UpdateContent applies an editor save. The content blob is stored opaque.
// A preview given as an image data URL is thumbnailed into the blob store.
// Last write wins.
func (m *Manager) UpdateContent(ctx context.Context, user *models.User, copyID string, upd ContentUpdate) (*models.TemplateCopy, error) {
	cp, err := m.Get(ctx, user, copyID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, apperror.Invalid("Title must not be empty", nil)
		}
		fields["title"] = title
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Content != nil {
		fields["content"] = *upd.Content
	}
	if upd.Preview != nil {
		ref, err := m.storePreview(ctx, cp, *upd.Preview)
		if err != nil {
			return nil, err
		}
		fields["preview_url"] = ref
	}
	fields["last_edited"] = m.now()

	if err := m.copies.UpdateFields(ctx, cp.ID, fields); err != nil {
		return nil, err
	}
	if ref, ok := fields["preview_url"].(*string); ok && cp.PreviewURL != nil && isPreviewKey(*cp.PreviewURL) {
		if ref == nil || *ref != *cp.PreviewURL {
			m.discard(ctx, *cp.PreviewURL)
		}
	}
	return m.copies.GetByID(ctx, cp.ID)
}

func (m *Manager) storePreview(ctx context.Context, cp *models.TemplateCopy, ref string) (*string, error) {
	if ref == "" {
		return nil, nil
	}
	if !preview.IsDataURL(ref) {
		return &ref, nil
	}

	raw, err := preview.DecodeDataURL(ref)
	if err != nil {
		return nil, apperror.Invalid("Invalid preview image", err)
	}
	thumb, err := preview.Thumbnail(raw)
	if err != nil {
		return nil, apperror.Invalid("Invalid preview image", err)
	}

	key := storage.PreviewKey(cp.UserID, cp.ID)
	if _, err := m.store.Save(ctx, key, bytes.NewReader(thumb), int64(len(thumb)), "image/png"); err != nil {
		return nil, apperror.Storage("Failed to store preview", err)
	}
	return &key, nil
}

// OpenPreview opens the stored thumbnail of one of the caller's copies
func (m *Manager) OpenPreview(ctx context.Context, user *models.User, copyID string) (*storage.Asset, error) {
	cp, err := m.Get(ctx, user, copyID)
	if err != nil {
		return nil, err
	}
	if cp.PreviewURL == nil || !isPreviewKey(*cp.PreviewURL) {
		return nil, apperror.NotFound("Preview not found")
	}
	asset, err := storage.OpenAsset(ctx, m.store, *cp.PreviewURL, cp.ID+".png", "image/png")
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperror.NotFound("Preview not found")
		}
		return nil, apperror.Storage("Failed to open preview", err)
	}
	return asset, nil
}

// ReplaceAsset swaps the copy's file for a new upload. Content is left
// untouched so the annotation layer can be replayed over the new asset.
func (m *Manager) ReplaceAsset(ctx context.Context, user *models.User, copyID string, file *upload.File) (*models.TemplateCopy, error) {
	cp, err := m.Get(ctx, user, copyID)
	if err != nil {
		return nil, err
	}
	if file == nil || file.Reader == nil {
		return nil, apperror.Invalid("No file uploaded", nil)
	}

	now := m.now()
	key := storage.RevisionKey(cp.UserID, cp.ID, now.UnixNano(), storage.Ext(file.FileName))
	op, err := m.store.Save(ctx, key, file.Reader, file.Size, file.ContentType)
	if err != nil {
		return nil, apperror.Storage("Failed to store file", err)
	}

	size := file.Size
	if op != nil && op.Size > 0 {
		size = op.Size
	}
	err = m.copies.UpdateFields(ctx, cp.ID, map[string]interface{}{
		"file_path":   key,
		"file_name":   file.FileName,
		"file_type":   file.ContentType,
		"file_size":   size,
		"last_edited": now,
	})
	if err != nil {
		m.discard(ctx, key)
		return nil, err
	}

	if cp.FilePath != key {
		m.discard(ctx, cp.FilePath)
	}
	log.Infof("[CopyManager] Replaced asset of copy %s with %s", cp.ID, key)
	return m.copies.GetByID(ctx, cp.ID)
}

// Delete removes the copy row, then its blobs. Blob failures are logged and
// never undo the row deletion.
func (m *Manager) Delete(ctx context.Context, user *models.User, copyID string) error {
	cp, err := m.Get(ctx, user, copyID)
	if err != nil {
		return err
	}
	if err := m.copies.Delete(ctx, cp.ID); err != nil {
		return err
	}

	m.discard(ctx, cp.FilePath)
	if cp.PreviewURL != nil && isPreviewKey(*cp.PreviewURL) {
		m.discard(ctx, *cp.PreviewURL)
	}
	log.Infof("[CopyManager] User %s deleted copy %s", user.ID, cp.ID)
	return nil
}

// OpenAsset opens the file of one of the caller's copies for download
func (m *Manager) OpenAsset(ctx context.Context, user *models.User, copyID string) (*models.TemplateCopy, *storage.Asset, error) {
	cp, err := m.Get(ctx, user, copyID)
	if err != nil {
		return nil, nil, err
	}
	asset, err := storage.OpenAsset(ctx, m.store, cp.FilePath, cp.FileName, cp.FileType)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, apperror.NotFound("File not found")
		}
		return nil, nil, apperror.Storage("Failed to open file", err)
	}
	if asset.Size == 0 {
		asset.Size = cp.FileSize
	}
	return cp, asset, nil
}

// RecordDownload bumps the copy's download counter. Failures are logged only.
func (m *Manager) RecordDownload(ctx context.Context, copyID string) {
	if err := m.copies.IncrementDownloads(ctx, copyID); err != nil {
		log.Warnf("[CopyManager] Failed to count download of copy %s: %v", copyID, err)
	}
}

func (m *Manager) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := m.store.Delete(ctx, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			log.Warnf("[CopyManager] Blob %s already missing", key)
			return
		}
		log.Errorf("[CopyManager] Failed to delete blob %s: %v", key, err)
	}
}

func (m *Manager) notOwner() error {
	metrics.AccessDenied.WithLabelValues(apperror.ReasonNotOwner).Inc()
	return apperror.Denied(apperror.ReasonNotOwner, "You do not own this copy")
}

func isPreviewKey(ref string) bool {
	return strings.HasPrefix(ref, "previews/") && storage.ValidateKey(ref) == nil
}
