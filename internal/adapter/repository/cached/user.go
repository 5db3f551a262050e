package cached

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-crud-console/internal/adapter/cache"
	domain "user-crud-console/internal/domain/user"
	"user-crud-console/internal/usecase/user"
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository with cache-aside reads.
// It wraps a persistent repository (DB) and a cache implementation; a nil cache
// turns it into a pass-through.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// Create stores the user and drops cached lists.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := r.dbRepo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, 0)
	return created, nil
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cachedUser != nil {
			return cachedUser, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede
	result, err, _ := r.group.Do(fmt.Sprintf("user:%d", id), func() (any, error) {
		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.User), nil
}

// Update updates the user in DB and invalidates the cache.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	updated, err := r.dbRepo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, u.ID)
	return updated, nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// List serves lists from cache when possible, collapsing concurrent misses for the
// same query into one database read.
func (r *UserRepository) List(ctx context.Context, query string) ([]domain.User, error) {
	if r.cache != nil {
		users, err := r.cache.GetList(ctx, query)
		if err != nil {
			r.log.Warn("list cache error, falling back to database", zap.String("query", query), zap.Error(err))
		} else if users != nil {
			return users, nil
		}
	}

	result, err, shared := r.group.Do("list:"+query, func() (any, error) {
		users, err := r.dbRepo.List(ctx, query)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.SetList(ctx, query, users); err != nil {
				r.log.Warn("failed to cache list", zap.String("query", query), zap.Error(err))
			}
		}
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	users := result.([]domain.User)
	if shared {
		// callers must not share a backing array
		users = append([]domain.User(nil), users...)
	}
	return users, nil
}

// invalidate drops the cached entry for id (when non-zero) and every cached list.
func (r *UserRepository) invalidate(ctx context.Context, id int64) {
	if r.cache == nil {
		return
	}
	if id != 0 {
		if err := r.cache.Delete(ctx, id); err != nil {
			r.log.Warn("failed to invalidate cached user", zap.Int64("id", id), zap.Error(err))
		}
	}
	if err := r.cache.InvalidateLists(ctx); err != nil {
		r.log.Warn("failed to invalidate cached lists", zap.Error(err))
	}
}
