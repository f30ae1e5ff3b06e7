package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/app/repository"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/database"
)

const adminEmail = "owner@example.com"

func newTestResolver(t *testing.T) (*Resolver, repository.UserRepository) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	users := repository.NewUserRepository(db)
	return NewResolver(users, "  "+adminEmail+" "), users
}

func TestResolveOrCreateNewUser(t *testing.T) {
	r, _ := newTestResolver(t)

	u, err := r.ResolveOrCreate(context.Background(), Profile{
		Provider:  "google",
		SubjectID: "123",
		Email:     "jane@example.com",
		Name:      "Jane",
		AvatarURL: "https://example.com/a.png",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, models.ROLE_USER, u.Role)
	assert.False(t, u.IsPremium)
	assert.Equal(t, "Jane", u.Name)
}

func TestResolveOrCreateIsIdempotent(t *testing.T) {
	r, users := newTestResolver(t)
	ctx := context.Background()
	p := Profile{Provider: "github", SubjectID: "42", Email: "dev@example.com"}

	first, err := r.ResolveOrCreate(ctx, p)
	require.NoError(t, err)
	second, err := r.ResolveOrCreate(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// same subject on another provider is a different identity
	other, err := r.ResolveOrCreate(ctx, Profile{Provider: "google", SubjectID: "42", Email: "dev@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestResolveOrCreateBootstrapAdmin(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	admin, err := r.ResolveOrCreate(ctx, Profile{Provider: "google", SubjectID: "1", Email: adminEmail})
	require.NoError(t, err)
	assert.Equal(t, models.ROLE_SUPER_ADMIN, admin.Role)
	assert.True(t, admin.IsPremium)

	// the match is exact
	notAdmin, err := r.ResolveOrCreate(ctx, Profile{Provider: "google", SubjectID: "2", Email: "Owner@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.ROLE_USER, notAdmin.Role)
	assert.False(t, notAdmin.IsPremium)
}

func TestResolveOrCreateRequiresEmail(t *testing.T) {
	r, users := newTestResolver(t)
	ctx := context.Background()

	_, err := r.ResolveOrCreate(ctx, Profile{Provider: "github", SubjectID: "7", Email: " "})
	assert.ErrorIs(t, err, apperror.ErrIdentity)

	_, err = r.ResolveOrCreate(ctx, Profile{Provider: "github", Email: "a@example.com"})
	assert.ErrorIs(t, err, apperror.ErrIdentity)

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestResolveOrCreateNoBootstrapConfigured(t *testing.T) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	r := NewResolver(repository.NewUserRepository(db), "")

	u, err := r.ResolveOrCreate(context.Background(), Profile{Provider: "google", SubjectID: "1", Email: adminEmail})
	require.NoError(t, err)
	assert.Equal(t, models.ROLE_USER, u.Role)
}

type racingStore struct {
	winner *models.User
	looked int
}

func (s *racingStore) GetByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	s.looked++
	if s.looked == 1 {
		return nil, apperror.NotFound("User not found")
	}
	return s.winner, nil
}

func (s *racingStore) Create(ctx context.Context, user *models.User) error {
	return errors.New("duplicate key")
}

func TestResolveOrCreateLosesRace(t *testing.T) {
	winner := &models.User{ID: "winner", Provider: "google", ProviderID: "9"}
	r := NewResolver(&racingStore{winner: winner}, "")

	u, err := r.ResolveOrCreate(context.Background(), Profile{Provider: "google", SubjectID: "9", Email: "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "winner", u.ID)
}

func TestProfileFromGoth(t *testing.T) {
	p := ProfileFromGoth(goth.User{
		Provider:  "github",
		UserID:    "55",
		Email:     "gh@example.com",
		NickName:  "octo",
		AvatarURL: "https://example.com/o.png",
	})
	assert.Equal(t, Profile{
		Provider:  "github",
		SubjectID: "55",
		Email:     "gh@example.com",
		Name:      "octo",
		AvatarURL: "https://example.com/o.png",
	}, p)
}
