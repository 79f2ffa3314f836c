package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
)

const reportKeyPrefix = "reports:"

// keySetKey tracks every cached report key so invalidation can delete them
// without a KEYS scan.
const keySetKey = "reports:index"

// RedisReportCache caches rendered financial reports in Redis. Reports are
// invalidated wholesale whenever a ledger entry posts, so entries are stored
// with a TTL only as a backstop.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates and pings a Redis client.
func NewRedisClient(host string, port int, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisReportCache creates a report cache over an existing Redis client.
func NewRedisReportCache(client *redis.Client, ttl time.Duration) *RedisReportCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisReportCache{client: client, ttl: ttl}
}

// GetReport loads a cached report into out. Returns false on a cache miss.
func (c *RedisReportCache) GetReport(ctx context.Context, key string, out interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, reportKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cached report: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return true, nil
}

// SetReport stores a report and records its key for later invalidation.
func (c *RedisReportCache) SetReport(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	fullKey := reportKeyPrefix + key
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, fullKey, payload, c.ttl)
	pipe.SAdd(ctx, keySetKey, fullKey)
	pipe.Expire(ctx, keySetKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// InvalidateReports deletes every cached report.
func (c *RedisReportCache) InvalidateReports(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, keySetKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list cached reports: %w", err)
	}
	keys = append(keys, keySetKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate reports: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

var _ appaccounting.ReportCache = (*RedisReportCache)(nil)
