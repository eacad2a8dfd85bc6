package cache

import (
	"context"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/repository"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const userCacheName = "users"

// UserCache caches marketplace accounts in memory. Roles and names change
// rarely, so session operations resolve actors here instead of hitting the
// users table on every request.
type UserCache struct {
	cache *gocache.Cache
	users repository.UserStore
	ttl   time.Duration
}

// NewUserCache creates a new user cache with the given TTL
func NewUserCache(users repository.UserStore, ttl time.Duration) *UserCache {
	return &UserCache{
		cache: gocache.New(ttl, 10*time.Minute),
		users: users,
		ttl:   ttl,
	}
}

// GetByID retrieves a user from cache, falling back to the repository on miss
func (uc *UserCache) GetByID(ctx context.Context, id string) (*models.User, error) {
	if data, found := uc.cache.Get(id); found {
		if user, ok := data.(*models.User); ok {
			metrics.CacheHits.WithLabelValues(userCacheName).Inc()
			return user, nil
		}
		uc.cache.Delete(id)
	}

	metrics.CacheMisses.WithLabelValues(userCacheName).Inc()

	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(id, user, uc.ttl)
	logger.Debug("User cached", zap.String("user_id", id))

	return user, nil
}

// Invalidate drops a user from the cache
func (uc *UserCache) Invalidate(id string) {
	uc.cache.Delete(id)
}
