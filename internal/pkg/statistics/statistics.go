package statistics

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/TemplateForge/app/repository"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/cache"
)

const (
	CacheKeyDashboard = "statistics:dashboard"
	CacheExpiration   = 5 * time.Minute
)

// Dashboard holds the counts shown on the admin dashboard
type Dashboard struct {
	TotalUsers          int64     `json:"total_users"`
	PremiumUsers        int64     `json:"premium_users"`
	TotalTemplates      int64     `json:"total_templates"`
	TotalCopies         int64     `json:"total_copies"`
	ActiveSubscriptions int64     `json:"active_subscriptions"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// Cache is the snapshot store; the default is the shared Redis cache
type Cache interface {
	GetJSON(key string, dst interface{}) error
	SetJSON(key string, value interface{}, expiration time.Duration) error
	Delete(key string) error
}

// ActiveCounter counts entitling subscriptions. billing.Service satisfies it.
type ActiveCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

type redisCache struct{}

func (redisCache) GetJSON(key string, dst interface{}) error { return cache.GetJSON(key, dst) }
func (redisCache) SetJSON(key string, value interface{}, expiration time.Duration) error {
	return cache.SetJSON(key, value, expiration)
}
func (redisCache) Delete(key string) error { return cache.Delete(key) }

// RedisCache returns the Cache backed by the shared Redis client
func RedisCache() Cache {
	return redisCache{}
}

// Service computes dashboard snapshots and keeps them cached
type Service struct {
	repos *repository.Repositories
	subs  ActiveCounter
	cache Cache
	now   func() time.Time
}

func NewService(repos *repository.Repositories, subs ActiveCounter, c Cache) *Service {
	return &Service{repos: repos, subs: subs, cache: c, now: time.Now}
}

// Dashboard returns the cached snapshot, recomputing it when missing or
// expired. A cache outage only costs the recomputation.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	if s.cache != nil {
		var cached Dashboard
		if err := s.cache.GetJSON(CacheKeyDashboard, &cached); err == nil {
			return &cached, nil
		}
	}

	d, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(CacheKeyDashboard, d, CacheExpiration); err != nil {
			log.Warnf("[Statistics] Failed to cache dashboard: %v", err)
		}
	}
	return d, nil
}

// Invalidate drops the cached snapshot so the next read recomputes it
func (s *Service) Invalidate() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(CacheKeyDashboard); err != nil {
		log.Warnf("[Statistics] Failed to invalidate dashboard cache: %v", err)
	}
}

func (s *Service) compute(ctx context.Context) (*Dashboard, error) {
	var (
		d   = &Dashboard{GeneratedAt: s.now()}
		err error
	)
	if d.TotalUsers, err = s.repos.User.Count(ctx); err != nil {
		return nil, err
	}
	if d.PremiumUsers, err = s.repos.User.CountPremium(ctx); err != nil {
		return nil, err
	}
	if d.TotalTemplates, err = s.repos.Template.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalCopies, err = s.repos.Copy.Count(ctx); err != nil {
		return nil, err
	}
	if d.ActiveSubscriptions, err = s.subs.CountActive(ctx); err != nil {
		return nil, err
	}

	log.Infof("[Statistics] Dashboard: users=%d premium=%d templates=%d copies=%d subscriptions=%d",
		d.TotalUsers, d.PremiumUsers, d.TotalTemplates, d.TotalCopies, d.ActiveSubscriptions)
	return d, nil
}
