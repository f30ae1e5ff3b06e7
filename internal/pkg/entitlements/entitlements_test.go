package entitlements

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
)

type stubSubs struct {
	active map[string]bool
	err    error
	calls  int
}

func (s *stubSubs) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.active[userID], nil
}

func TestHasFullAccess(t *testing.T) {
	free := &models.Template{ID: "free", IsPremium: false}
	premium := &models.Template{ID: "premium", IsPremium: true}

	plain := &models.User{ID: "plain", Role: models.ROLE_USER}
	flagged := &models.User{ID: "flagged", Role: models.ROLE_USER, IsPremium: true}
	subscriber := &models.User{ID: "subscriber", Role: models.ROLE_USER}
	// a super admin row whose flag was somehow written false still gets access
	admin := &models.User{ID: "admin", Role: models.ROLE_SUPER_ADMIN, IsPremium: false}

	subs := &stubSubs{active: map[string]bool{"subscriber": true}}
	e := NewEvaluator(subs)

	tests := []struct {
		name string
		user *models.User
		tpl  *models.Template
		want bool
	}{
		{name: "anonymous free", user: nil, tpl: free, want: true},
		{name: "anonymous premium", user: nil, tpl: premium, want: false},
		{name: "plain free", user: plain, tpl: free, want: true},
		{name: "plain premium", user: plain, tpl: premium, want: false},
		{name: "flagged premium", user: flagged, tpl: premium, want: true},
		{name: "subscriber premium", user: subscriber, tpl: premium, want: true},
		{name: "admin premium", user: admin, tpl: premium, want: true},
		{name: "admin free", user: admin, tpl: free, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.HasFullAccess(context.Background(), tt.user, tt.tpl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFreeTemplateNeverConsultsLedger(t *testing.T) {
	subs := &stubSubs{err: errors.New("ledger down")}
	e := NewEvaluator(subs)

	ok, err := e.HasFullAccess(context.Background(), &models.User{ID: "u"}, &models.Template{IsPremium: false})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, subs.calls)
}

func TestLedgerErrorsPropagate(t *testing.T) {
	boom := errors.New("ledger down")
	e := NewEvaluator(&stubSubs{err: boom})

	_, err := e.HasFullAccess(context.Background(), &models.User{ID: "u"}, &models.Template{IsPremium: true})
	assert.ErrorIs(t, err, boom)
}

func TestCheckReasons(t *testing.T) {
	e := NewEvaluator(&stubSubs{})
	premium := &models.Template{IsPremium: true}

	err := e.Check(context.Background(), nil, premium)
	assert.ErrorIs(t, err, apperror.ErrAccessDenied)
	assert.Equal(t, apperror.ReasonLoginRequired, apperror.ReasonOf(err))

	err = e.Check(context.Background(), &models.User{ID: "u"}, premium)
	assert.ErrorIs(t, err, apperror.ErrAccessDenied)
	assert.Equal(t, apperror.ReasonPremiumRequired, apperror.ReasonOf(err))

	assert.NoError(t, e.Check(context.Background(), nil, &models.Template{}))
}

func TestEffectivePremium(t *testing.T) {
	assert.False(t, EffectivePremium(nil, true))
	assert.True(t, EffectivePremium(&models.User{Role: models.ROLE_SUPER_ADMIN}, false))
	assert.True(t, EffectivePremium(&models.User{Role: models.ROLE_USER, IsPremium: true}, false))
	assert.True(t, EffectivePremium(&models.User{Role: models.ROLE_USER}, true))
	assert.False(t, EffectivePremium(&models.User{Role: models.ROLE_USER}, false))
}
