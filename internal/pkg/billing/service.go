package billing

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/metrics"
)

// Service is the subscription ledger. Expiry is lazy: rows are never swept,
// every read compares end_date against the current time.
type Service struct {
	repo       Repository
	now        func() time.Time
	paymentRef func() string
}

// Option customizes a Service
type Option func(*Service)

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPaymentRefs replaces the simulated payment reference generator
func WithPaymentRefs(gen func() string) Option {
	return func(s *Service) { s.paymentRef = gen }
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		now:        func() time.Time { return time.Now().UTC() },
		paymentRef: func() string { return "sim_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, opts ...Option) *Service {
	return NewService(NewRepository(db), opts...)
}

// Subscribe records a paid period for planType and grants premium. Any
// subscription still active for the user is superseded in the same
// transaction, so a user never holds two active rows.
func (s *Service) Subscribe(ctx context.Context, userID, planType string) (*models.Subscription, error) {
	plan, err := LookupPlan(planType)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, errors.New("user_id is required")
	}

	start := s.now()
	sub := &models.Subscription{
		UserID:    userID,
		PlanType:  plan.Type,
		Amount:    plan.Amount,
		StartDate: start,
		EndDate:   start.Add(plan.Duration),
		Status:    models.SubscriptionStatusActive,
		PaymentID: s.paymentRef(),
	}

	err = s.repo.WithTx(ctx, func(tx Repository) error {
		if _, err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		superseded, err := tx.CancelActive(ctx, userID)
		if err != nil {
			return err
		}
		if superseded > 0 {
			log.Infof("[Billing] Superseded %d active subscription(s) for user %s", superseded, userID)
		}
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			return err
		}
		return tx.SetPremium(ctx, userID, true)
	})
	if err != nil {
		return nil, err
	}

	metrics.Subscriptions.WithLabelValues(plan.Type).Inc()
	log.Infof("[Billing] User %s subscribed to %s until %s", userID, plan.Type, sub.EndDate.Format(time.RFC3339))
	return sub, nil
}

// Cancel ends all active subscriptions of a user with immediate effect and
// revokes the premium flag. A super admin keeps premium.
func (s *Service) Cancel(ctx context.Context, userID string) error {
	return s.repo.WithTx(ctx, func(tx Repository) error {
		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		cancelled, err := tx.CancelActive(ctx, userID)
		if err != nil {
			return err
		}
		if !user.IsSuperAdmin() {
			if err := tx.SetPremium(ctx, userID, false); err != nil {
				return err
			}
		}
		log.Infof("[Billing] Cancelled %d subscription(s) for user %s", cancelled, userID)
		return nil
	})
}

// Status reports the most recent active, unexpired subscription. It never
// writes.
func (s *Service) Status(ctx context.Context, userID string) (*Status, error) {
	now := s.now()
	subs, err := s.repo.ActiveSubscriptions(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].IsActiveAt(now) {
			return &Status{IsSubscribed: true, Subscription: &subs[i]}, nil
		}
	}
	return &Status{IsSubscribed: false}, nil
}

// HasActiveSubscription satisfies entitlements.SubscriptionChecker
func (s *Service) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	st, err := s.Status(ctx, userID)
	if err != nil {
		return false, err
	}
	return st.IsSubscribed, nil
}

// CountActive returns the number of entitling subscriptions right now
func (s *Service) CountActive(ctx context.Context) (int64, error) {
	return s.repo.CountActive(ctx, s.now())
}
