// Package cache holds institution caches. The service writes every committed
// institution through with Set; readers fill misses with Add, which never
// replaces an existing entry, so a slow reader cannot overwrite a newer
// committed value.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
)

const keyPrefix = "bursar:institution:"

// Redis caches institutions as JSON in a shared Redis.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Get returns sentinel.ErrNotFound on a miss.
func (c *Redis) Get(ctx context.Context, instID id.InstitutionID) (*models.Institution, error) {
	raw, err := c.client.Get(ctx, keyPrefix+instID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get institution: %w", err)
	}
	var inst models.Institution
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("decode cached institution: %w", err)
	}
	return &inst, nil
}

// Set stores inst, replacing any cached value.
func (c *Redis) Set(ctx context.Context, inst *models.Institution) error {
	raw, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("encode institution: %w", err)
	}
	return c.client.Set(ctx, keyPrefix+inst.ID.String(), raw, c.ttl).Err()
}

// Add stores inst only when no value is cached for it.
func (c *Redis) Add(ctx context.Context, inst *models.Institution) error {
	raw, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("encode institution: %w", err)
	}
	return c.client.SetNX(ctx, keyPrefix+inst.ID.String(), raw, c.ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context, instID id.InstitutionID) error {
	return c.client.Del(ctx, keyPrefix+instID.String()).Err()
}

// Local caches institutions in process memory. Used when Redis is not
// configured; only correct for a single replica.
type Local struct {
	cache *gocache.Cache
}

func NewLocal(ttl time.Duration) *Local {
	return &Local{cache: gocache.New(ttl, 2*ttl)}
}

func (c *Local) Get(_ context.Context, instID id.InstitutionID) (*models.Institution, error) {
	x, found := c.cache.Get(instID.String())
	if !found {
		return nil, sentinel.ErrNotFound
	}
	inst := *x.(*models.Institution)
	return &inst, nil
}

func (c *Local) Set(_ context.Context, inst *models.Institution) error {
	clone := *inst
	c.cache.Set(inst.ID.String(), &clone, gocache.DefaultExpiration)
	return nil
}

// Add is a no-op when a value is already cached.
func (c *Local) Add(_ context.Context, inst *models.Institution) error {
	clone := *inst
	// go-cache reports an existing key as an error; that is the expected outcome.
	_ = c.cache.Add(inst.ID.String(), &clone, gocache.DefaultExpiration)
	return nil
}

func (c *Local) Invalidate(_ context.Context, instID id.InstitutionID) error {
	c.cache.Delete(instID.String())
	return nil
}
