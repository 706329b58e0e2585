package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"dynlink/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	linkKeyPrefix = "link:"
	recentKey     = "links:recent"
)

// LinkCache is a read-through Redis cache in front of LinkStore. Every method
// tolerates a nil receiver or client and swallows Redis errors, so an
// unavailable Redis only costs a store round-trip.
type LinkCache struct {
	rdb       *redis.Client
	logger    *slog.Logger
	linkTTL   time.Duration
	recentTTL time.Duration
}

func NewLinkCache(rdb *redis.Client, logger *slog.Logger) *LinkCache {
	return &LinkCache{
		rdb:       rdb,
		logger:    logger,
		linkTTL:   10 * time.Minute,
		recentTTL: time.Minute,
	}
}

func (c *LinkCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *LinkCache) GetLink(ctx context.Context, code string) (*models.DynamicLink, bool) {
	if !c.enabled() {
		return nil, false
	}
	var link models.DynamicLink
	if !c.get(ctx, linkKeyPrefix+code, &link) {
		return nil, false
	}
	return &link, true
}

func (c *LinkCache) SetLink(ctx context.Context, link *models.DynamicLink) {
	if !c.enabled() || link == nil {
		return
	}
	c.set(ctx, linkKeyPrefix+link.ID, link, c.linkTTL)
}

func (c *LinkCache) GetRecent(ctx context.Context) ([]models.DynamicLink, bool) {
	if !c.enabled() {
		return nil, false
	}
	var links []models.DynamicLink
	if !c.get(ctx, recentKey, &links) {
		return nil, false
	}
	return links, true
}

func (c *LinkCache) SetRecent(ctx context.Context, links []models.DynamicLink) {
	if !c.enabled() {
		return
	}
	c.set(ctx, recentKey, links, c.recentTTL)
}

// InvalidateRecent drops the cached recent-links list after a new link is created.
func (c *LinkCache) InvalidateRecent(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Del(ctx, recentKey).Err(); err != nil {
		c.logger.Debug("Cache invalidation failed", "key", recentKey, "error", err)
	}
}

func (c *LinkCache) get(ctx context.Context, key string, dst any) bool {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("Cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		c.logger.Warn("Cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *LinkCache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Debug("Cache write failed", "key", key, "error", err)
	}
}
