// Package rediscache decorates a SiteTemplateStore with a Redis read-through
// cache keyed by site template id.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/common/metrics"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "site-template"

// SiteTemplates serves GetSiteTemplate from Redis and falls through to the
// wrapped store on a miss. Writes go to the store first, then drop the key.
// Redis failures are logged and never fail the call.
type SiteTemplates struct {
	next   storage.SiteTemplateStore
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

var _ storage.SiteTemplateStore = (*SiteTemplates)(nil)

func New(next storage.SiteTemplateStore, rdb *redis.Client, ttl time.Duration, prefix string, log logger.Logger) *SiteTemplates {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SiteTemplates{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		prefix: prefix,
		logger: log.WithFields(map[string]interface{}{"component": "site-template-cache"}),
	}
}

func (c *SiteTemplates) key(id string) string {
	return c.prefix + ":" + id
}

func (c *SiteTemplates) GetSiteTemplate(ctx context.Context, id string) (*models.SiteTemplate, error) {
	cacheKey := c.key(id)
	val, err := c.redis.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var cached models.SiteTemplate
		if jsonErr := json.Unmarshal(val, &cached); jsonErr == nil {
			metrics.TemplateCacheLookups.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", map[string]interface{}{"key": cacheKey})
		metrics.TemplateCacheLookups.WithLabelValues("miss").Inc()
	case errors.Is(err, redis.Nil):
		metrics.TemplateCacheLookups.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("Cache read failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
		metrics.TemplateCacheLookups.WithLabelValues("error").Inc()
	}

	st, err := c.next.GetSiteTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(st)
	if err == nil {
		if setErr := c.redis.Set(ctx, cacheKey, data, c.ttl).Err(); setErr != nil {
			c.logger.Warn("Cache write failed", map[string]interface{}{"key": cacheKey, "error": setErr.Error()})
		}
	}
	return st, nil
}

func (c *SiteTemplates) ListSiteTemplates(ctx context.Context, filter storage.SiteTemplateFilter) ([]models.SiteTemplate, error) {
	return c.next.ListSiteTemplates(ctx, filter)
}

func (c *SiteTemplates) CreateSiteTemplate(ctx context.Context, t *models.SiteTemplate) error {
	return c.next.CreateSiteTemplate(ctx, t)
}

func (c *SiteTemplates) UpdateSiteTemplate(ctx context.Context, t *models.SiteTemplate) error {
	if err := c.next.UpdateSiteTemplate(ctx, t); err != nil {
		return err
	}
	c.invalidate(ctx, t.ID)
	return nil
}

func (c *SiteTemplates) DeleteSiteTemplate(ctx context.Context, id string) error {
	if err := c.next.DeleteSiteTemplate(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *SiteTemplates) invalidate(ctx context.Context, id string) {
	if err := c.redis.Del(ctx, c.key(id)).Err(); err != nil {
		c.logger.Warn("Cache invalidation failed", map[string]interface{}{"key": c.key(id), "error": err.Error()})
	}
}
