package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/voting-identity/internal/domain"
)

// cachedRoleRepository is a read-through Redis cache in front of the role
// registry. Roles are seeded reference data, so entries only expire, they
// are never invalidated.
type cachedRoleRepository struct {
	inner  RoleRepository
	client *redis.Client
	ttl    time.Duration
}

// NewCachedRoleRepository wraps a role repository with a Redis cache. A nil
// client disables caching.
func NewCachedRoleRepository(inner RoleRepository, client *redis.Client, ttl time.Duration) RoleRepository {
	if client == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedRoleRepository{inner: inner, client: client, ttl: ttl}
}

func (r *cachedRoleRepository) GetByID(ctx context.Context, id int) (*domain.Role, error) {
	key := roleCacheKey(id)
	if payload, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var role domain.Role
		if err := json.Unmarshal(payload, &role); err == nil {
			return &role, nil
		}
	}

	role, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(role); err == nil {
		r.client.Set(ctx, key, payload, r.ttl)
	}
	return role, nil
}

func (r *cachedRoleRepository) ListByIDs(ctx context.Context, ids []int) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(ids))
	missing := []int{}
	for _, id := range ids {
		if payload, err := r.client.Get(ctx, roleCacheKey(id)).Bytes(); err == nil {
			var role domain.Role
			if err := json.Unmarshal(payload, &role); err == nil {
				roles = append(roles, role)
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return roles, nil
	}

	fetched, err := r.inner.ListByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, role := range fetched {
		if payload, err := json.Marshal(role); err == nil {
			r.client.Set(ctx, roleCacheKey(role.ID), payload, r.ttl)
		}
	}
	return append(roles, fetched...), nil
}

func (r *cachedRoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	return r.inner.List(ctx)
}

func roleCacheKey(id int) string {
	return fmt.Sprintf("roles:%d", id)
}
