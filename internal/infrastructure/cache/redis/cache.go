package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

// AnalysisCache memoizes generative fallback reports in Redis. A miss and a
// backend failure are distinct: the caller treats failures as misses but logs
// them, so Get never hides errors behind ok=false.
type AnalysisCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func New(addr, password string, db int, namespace string, ttl time.Duration) *AnalysisCache {
	return &AnalysisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		namespace: namespace,
		ttl:       ttl,
	}
}

func (c *AnalysisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *AnalysisCache) Close() error {
	return c.client.Close()
}

func (c *AnalysisCache) Get(ctx context.Context, key domain.CacheKey) (*domain.StrategyReport, bool, error) {
	raw, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var report domain.StrategyReport
	if err := json.Unmarshal(raw, &report); err != nil {
		// A corrupt entry is unusable; report it as a miss with the cause so
		// the caller regenerates and overwrites it.
		return nil, false, fmt.Errorf("decode cached report: %w", err)
	}
	return &report, true, nil
}

func (c *AnalysisCache) Set(ctx context.Context, key domain.CacheKey, report *domain.StrategyReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, c.redisKey(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *AnalysisCache) redisKey(key domain.CacheKey) string {
	return c.namespace + ":" + key.String()
}
