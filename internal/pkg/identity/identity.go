package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/markbates/goth"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
)

// Profile is the part of an OAuth profile the resolver cares about
type Profile struct {
	Provider  string
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
}

// ProfileFromGoth converts a completed goth user into a Profile
func ProfileFromGoth(u goth.User) Profile {
	return Profile{
		Provider:  u.Provider,
		SubjectID: u.UserID,
		Email:     u.Email,
		Name:      firstNonEmpty(u.Name, u.NickName, u.FirstName),
		AvatarURL: u.AvatarURL,
	}
}

// UserStore is the persistence the resolver needs.
// repository.UserRepository satisfies it.
type UserStore interface {
	GetByProvider(ctx context.Context, provider, providerID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Resolver maps external identities to internal users
type Resolver struct {
	users          UserStore
	bootstrapEmail string
}

// NewResolver creates a resolver. bootstrapEmail is the single address that
// becomes super admin on first login; empty disables bootstrapping.
func NewResolver(users UserStore, bootstrapEmail string) *Resolver {
	return &Resolver{users: users, bootstrapEmail: strings.TrimSpace(bootstrapEmail)}
}

// ResolveOrCreate returns the user linked to the profile's provider identity,
// creating it on first sight. Role and premium flag are decided only here, at
// creation time; later logins never touch them.
func (r *Resolver) ResolveOrCreate(ctx context.Context, p Profile) (*models.User, error) {
	p.Provider = strings.TrimSpace(p.Provider)
	p.SubjectID = strings.TrimSpace(p.SubjectID)
	p.Email = strings.TrimSpace(p.Email)

	if p.Provider == "" || p.SubjectID == "" {
		return nil, apperror.New(apperror.ErrIdentity, apperror.ReasonIdentity, "OAuth profile has no subject")
	}
	if p.Email == "" {
		return nil, apperror.New(apperror.ErrIdentity, apperror.ReasonIdentity, "OAuth profile has no email address")
	}

	user, err := r.users.GetByProvider(ctx, p.Provider, p.SubjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		Email:      p.Email,
		Name:       firstNonEmpty(p.Name, p.Email),
		Avatar:     p.AvatarURL,
		Provider:   p.Provider,
		ProviderID: p.SubjectID,
		Role:       models.ROLE_USER,
	}
	if r.bootstrapEmail != "" && p.Email == r.bootstrapEmail {
		user.Role = models.ROLE_SUPER_ADMIN
	}
	user.IsPremium = user.IsSuperAdmin()

	if err := user.Validate(); err != nil {
		return nil, apperror.Wrap(apperror.ErrIdentity, apperror.ReasonIdentity, "OAuth profile is not usable", err)
	}

	if err := r.users.Create(ctx, user); err != nil {
		// a concurrent callback for the same identity may have won the unique index
		if existing, lookupErr := r.users.GetByProvider(ctx, p.Provider, p.SubjectID); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}

	log.Infof("[Identity] Created user %s (%s) via %s, role=%s", user.ID, user.Email, user.Provider, user.Role)
	return user, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
