package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sales-dashboard-api/internal/models"
)

const keyPrefix = "sales:"

// RedisCache stores query results keyed on the full request tuple. A nil
// *RedisCache is a valid no-op cache, so callers never need to branch on
// Redis being reachable.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
	logger *zap.Logger
}

// NewRedisCache connects using REDIS_URL, REDIS_DB and CACHE_TTL from the
// environment. Returns nil when Redis is unreachable; the service degrades
// to computing every query.
func NewRedisCache(logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisDB := 0
	if db := os.Getenv("REDIS_DB"); db != "" {
		if dbNum, err := strconv.Atoi(db); err == nil {
			redisDB = dbNum
		}
	}

	ttlSeconds := 600 // 10 minutes default
	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		if t, err := strconv.Atoi(ttl); err == nil {
			ttlSeconds = t
		}
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("failed to parse Redis URL", zap.Error(err))
		return nil
	}
	opt.DB = redisDB

	client := redis.NewClient(opt)
	ctx := context.Background()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn("Redis connection failed, caching disabled", zap.Error(err))
		return nil
	}

	logger.Info("Redis connected",
		zap.Int("db", redisDB),
		zap.Int("ttl_seconds", ttlSeconds),
	)

	return &RedisCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
		ctx:    ctx,
		logger: logger,
	}
}

func (r *RedisCache) IsAvailable() bool {
	return r != nil && r.client != nil
}

// GetQueryResult returns the cached result for key, or nil on a miss.
func (r *RedisCache) GetQueryResult(key string) (*models.QueryResult, error) {
	if !r.IsAvailable() {
		return nil, fmt.Errorf("redis client not available")
	}

	val, err := r.client.Get(r.ctx, key).Result()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	var result models.QueryResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}
	return &result, nil
}

func (r *RedisCache) SetQueryResult(key string, result *models.QueryResult) error {
	if !r.IsAvailable() {
		return fmt.Errorf("redis client not available")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}
	return r.client.Set(r.ctx, key, data, r.ttl).Err()
}

// QueryKey derives a deterministic cache key from every field of the
// request, so two identical requests share an entry and any difference
// forces a recompute.
func QueryKey(req models.QueryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sq=%s:p%d:s%d", keyPrefix, req.SearchQuery, req.Page, req.PageSize)

	f := req.Filters
	if len(f.Regions) > 0 {
		fmt.Fprintf(&b, ":reg%s", strings.Join(f.Regions, ","))
	}
	if len(f.Genders) > 0 {
		fmt.Fprintf(&b, ":gen%s", strings.Join(f.Genders, ","))
	}
	if len(f.Categories) > 0 {
		fmt.Fprintf(&b, ":cat%s", strings.Join(f.Categories, ","))
	}
	if len(f.PaymentMethods) > 0 {
		fmt.Fprintf(&b, ":pay%s", strings.Join(f.PaymentMethods, ","))
	}
	fmt.Fprintf(&b, ":age%d-%d", f.AgeRange[0], f.AgeRange[1])
	if f.DateRange.Start != nil {
		fmt.Fprintf(&b, ":from%d", f.DateRange.Start.Unix())
	}
	if f.DateRange.End != nil {
		fmt.Fprintf(&b, ":to%d", f.DateRange.End.Unix())
	}

	fmt.Fprintf(&b, ":sort%s:%s", req.Sort.Field, req.Sort.Direction)
	return b.String()
}

func (r *RedisCache) Close() error {
	if !r.IsAvailable() {
		return nil
	}
	return r.client.Close()
}

func (r *RedisCache) GetStats() map[string]interface{} {
	if !r.IsAvailable() {
		return map[string]interface{}{
			"status": "unavailable",
		}
	}

	info := r.client.Info(r.ctx, "memory").Val()
	return map[string]interface{}{
		"status":      "connected",
		"ttl_seconds": int(r.ttl.Seconds()),
		"memory_info": info,
	}
}

func (r *RedisCache) GetAllKeys() []string {
	if !r.IsAvailable() {
		return []string{}
	}
	keys, err := r.client.Keys(r.ctx, keyPrefix+"*").Result()
	if err != nil {
		return []string{}
	}
	return keys
}

func (r *RedisCache) FlushCache() error {
	if !r.IsAvailable() {
		return fmt.Errorf("redis client not available")
	}
	return r.client.FlushDB(r.ctx).Err()
}

func (r *RedisCache) GetKeyTTL(key string) time.Duration {
	if !r.IsAvailable() {
		return 0
	}
	ttl, err := r.client.TTL(r.ctx, key).Result()
	if err != nil {
		return 0
	}
	return ttl
}
