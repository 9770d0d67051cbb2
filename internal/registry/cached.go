package registry

import (
	"context"
	"sync"
	"time"
)

// CachedClient wraps a Client with a short-TTL in-process cache on the
// Resolve path. Webhook traffic resolves the same routing token on every
// delivery; the cache keeps that hot path off DynamoDB. Configuration
// writes through this client invalidate the affected entry so a subsequent
// Resolve observes the updated snapshot within one process. Misses are not
// cached, so newly created tenants resolve immediately.
type CachedClient struct {
	Client

	ttl     time.Duration
	mu      sync.RWMutex
	byToken map[string]cacheEntry
}

type cacheEntry struct {
	rec     *TenantRecord
	expires time.Time
}

// NewCached wraps inner with a resolve cache. A ttl of 0 disables caching.
func NewCached(inner Client, ttl time.Duration) *CachedClient {
	return &CachedClient{
		Client:  inner,
		ttl:     ttl,
		byToken: make(map[string]cacheEntry),
	}
}

func (c *CachedClient) Resolve(ctx context.Context, routingToken string) (*TenantRecord, error) {
	if c.ttl > 0 {
		c.mu.RLock()
		e, ok := c.byToken[routingToken]
		c.mu.RUnlock()
		if ok && time.Now().Before(e.expires) {
			cp := *e.rec
			return &cp, nil
		}
	}

	rec, err := c.Client.Resolve(ctx, routingToken)
	if err != nil || rec == nil {
		return rec, err
	}

	if c.ttl > 0 {
		cp := *rec
		c.mu.Lock()
		c.byToken[routingToken] = cacheEntry{rec: &cp, expires: time.Now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return rec, nil
}

func (c *CachedClient) UpdateKeywords(ctx context.Context, tenantID string, rules []KeywordRule) error {
	defer c.invalidate(tenantID)
	return c.Client.UpdateKeywords(ctx, tenantID, rules)
}

func (c *CachedClient) UpdateMentionResponse(ctx context.Context, tenantID, response string) error {
	defer c.invalidate(tenantID)
	return c.Client.UpdateMentionResponse(ctx, tenantID, response)
}

func (c *CachedClient) UpdateAccessToken(ctx context.Context, tenantID, accessToken string) error {
	defer c.invalidate(tenantID)
	return c.Client.UpdateAccessToken(ctx, tenantID, accessToken)
}

func (c *CachedClient) UpdateDailyLimit(ctx context.Context, tenantID string, limit int) error {
	defer c.invalidate(tenantID)
	return c.Client.UpdateDailyLimit(ctx, tenantID, limit)
}

func (c *CachedClient) UpdateTimezone(ctx context.Context, tenantID, tz string) error {
	defer c.invalidate(tenantID)
	return c.Client.UpdateTimezone(ctx, tenantID, tz)
}

func (c *CachedClient) SetActive(ctx context.Context, tenantID string, active bool) error {
	defer c.invalidate(tenantID)
	return c.Client.SetActive(ctx, tenantID, active)
}

func (c *CachedClient) DeleteTenant(ctx context.Context, tenantID string) error {
	defer c.invalidate(tenantID)
	return c.Client.DeleteTenant(ctx, tenantID)
}

func (c *CachedClient) invalidate(tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for token, e := range c.byToken {
		if e.rec.TenantID == tenantID {
			delete(c.byToken, token)
		}
	}
}
