package core

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/pkg/cache"
)

const (
	publicFormIDKeyPrefix   = "formcraft:public_form:id:"
	publicFormSlugKeyPrefix = "formcraft:public_form:slug:"
)

// PublicFormCache is a cache-aside store of published form bodies keyed by id and slug.
// Cache failures are logged and treated as misses.
type PublicFormCache struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewPublicFormCache wraps c. A nil cache disables caching.
func NewPublicFormCache(c cache.Cache, ttl time.Duration, logger *zap.Logger) *PublicFormCache {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &PublicFormCache{cache: c, ttl: ttl, logger: logger}
}

// Get returns the cached form for an id or slug.
func (p *PublicFormCache) Get(ctx context.Context, idOrSlug string) (*models.Form, bool) {
	for _, key := range []string{publicFormIDKeyPrefix + idOrSlug, publicFormSlugKeyPrefix + idOrSlug} {
		raw, err := p.cache.Get(ctx, key)
		if errors.Is(err, cache.ErrMiss) {
			continue
		}
		if err != nil {
			p.logger.Warn("Public form cache read failed", zap.String("key", key), zap.Error(err))
			return nil, false
		}
		var form models.Form
		if err := json.Unmarshal([]byte(raw), &form); err != nil {
			p.logger.Warn("Discarding undecodable cached form", zap.String("key", key), zap.Error(err))
			_ = p.cache.Delete(ctx, key)
			continue
		}
		return &form, true
	}
	return nil, false
}

// Put stores a published form under its id and slug.
func (p *PublicFormCache) Put(ctx context.Context, form *models.Form) {
	raw, err := json.Marshal(form)
	if err != nil {
		p.logger.Warn("Failed to encode form for cache", zap.String("formID", form.ID), zap.Error(err))
		return
	}
	if err := p.cache.Set(ctx, publicFormIDKeyPrefix+form.ID, string(raw), p.ttl); err != nil {
		p.logger.Warn("Public form cache write failed", zap.String("formID", form.ID), zap.Error(err))
		return
	}
	if form.Slug != "" {
		if err := p.cache.Set(ctx, publicFormSlugKeyPrefix+form.Slug, string(raw), p.ttl); err != nil {
			p.logger.Warn("Public form cache write failed", zap.String("slug", form.Slug), zap.Error(err))
		}
	}
}

// Invalidate drops the cached entries of every given form version.
func (p *PublicFormCache) Invalidate(ctx context.Context, forms ...*models.Form) {
	var keys []string
	for _, f := range forms {
		if f == nil {
			continue
		}
		keys = append(keys, publicFormIDKeyPrefix+f.ID)
		if f.Slug != "" {
			keys = append(keys, publicFormSlugKeyPrefix+f.Slug)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := p.cache.Delete(ctx, keys...); err != nil {
		p.logger.Warn("Public form cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
