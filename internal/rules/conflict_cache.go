package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"clinicq/internal/constants"
	"clinicq/pkg/metrics"
)

// ConflictCache keeps computed badge reports so the console's queue list
// does not recompute pairwise overlaps on every poll. Entries are dropped
// on any rule mutation and expire on their own after the TTL.
type ConflictCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewConflictCache(client *redis.Client, ttl time.Duration) *ConflictCache {
	if ttl <= 0 {
		ttl = constants.DefaultConflictCacheTTLSecond * time.Second
	}
	return &ConflictCache{
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(queueID string) string {
	return constants.CacheKeyPrefixConflicts + queueID
}

func (c *ConflictCache) Get(ctx context.Context, queueID string) (*ConflictReport, bool) {
	data, err := c.client.Get(ctx, cacheKey(queueID)).Bytes()
	if err == redis.Nil {
		metrics.ConflictCacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.ConflictCacheRequestsTotal.WithLabelValues("error").Inc()
		return nil, false
	}

	var report ConflictReport
	if err := json.Unmarshal(data, &report); err != nil {
		metrics.ConflictCacheRequestsTotal.WithLabelValues("error").Inc()
		return nil, false
	}

	metrics.ConflictCacheRequestsTotal.WithLabelValues("hit").Inc()
	return &report, true
}

func (c *ConflictCache) Set(ctx context.Context, report *ConflictReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal conflict report: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(report.QueueID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache conflict report: %w", err)
	}

	return nil
}

func (c *ConflictCache) Invalidate(ctx context.Context, queueID string) error {
	if err := c.client.Del(ctx, cacheKey(queueID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate conflict cache: %w", err)
	}
	return nil
}
