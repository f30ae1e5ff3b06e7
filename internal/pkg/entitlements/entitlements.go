package entitlements

import (
	"context"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/metrics"
)

// SubscriptionChecker reports whether a user holds an unexpired subscription.
type SubscriptionChecker interface {
	HasActiveSubscription(ctx context.Context, userID string) (bool, error)
}

// Evaluator decides full-content access to catalog templates. Results are
// never cached; every call consults the subscription ledger afresh.
type Evaluator struct {
	subs SubscriptionChecker
}

func NewEvaluator(subs SubscriptionChecker) *Evaluator {
	return &Evaluator{subs: subs}
}

// EffectivePremium combines role, stored flag and subscription state.
func EffectivePremium(user *models.User, hasActiveSubscription bool) bool {
	if user == nil {
		return false
	}
	return user.IsSuperAdmin() || user.IsPremium || hasActiveSubscription
}

// EffectivePremium resolves the subscription state and applies EffectivePremium.
func (e *Evaluator) EffectivePremium(ctx context.Context, user *models.User) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsSuperAdmin() || user.IsPremium {
		return true, nil
	}
	active, err := e.subs.HasActiveSubscription(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return EffectivePremium(user, active), nil
}

// HasFullAccess reports whether user may view, download or edit the full
// asset of tpl. A nil user is an anonymous caller.
func (e *Evaluator) HasFullAccess(ctx context.Context, user *models.User, tpl *models.Template) (bool, error) {
	if tpl == nil {
		return false, nil
	}
	if !tpl.IsPremium {
		return true, nil
	}
	return e.EffectivePremium(ctx, user)
}

// Check is HasFullAccess as an error: nil when allowed, an AccessDenied
// error carrying the reason otherwise.
func (e *Evaluator) Check(ctx context.Context, user *models.User, tpl *models.Template) error {
	ok, err := e.HasFullAccess(ctx, user, tpl)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	reason := apperror.ReasonPremiumRequired
	message := "Premium subscription required to access this template"
	if user == nil {
		reason = apperror.ReasonLoginRequired
		message = "Login and premium subscription required to access this template"
	}
	metrics.AccessDenied.WithLabelValues(reason).Inc()
	return apperror.Denied(reason, message)
}
