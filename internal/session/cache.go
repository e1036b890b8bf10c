package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"feed_recommender/internal/logger"
	"feed_recommender/internal/model"
)

const (
	trendingKey = "trending_items"
	opTimeout   = 5 * time.Second // 单次缓存操作的超时上限

	connectAttempts = 3
	connectBackoff  = 2 * time.Second
)

// Cache 定义会话缓存的操作
// 实现必须支持降级：缓存不可用时读一律 miss、写静默成功，请求流程不受影响
type Cache interface {
	Get(ctx context.Context, key string) ([]model.Recommendation, bool, error)
	Set(ctx context.Context, key string, recs []model.Recommendation, ttl time.Duration) error
	InvalidateUser(ctx context.Context, userID string) (int, error)
	TrendingScore(ctx context.Context, itemID string) (float64, error)
	TrendingTop(ctx context.Context, n int64) ([]TrendingEntry, error)
	Available() bool
}

// TrendingEntry 是 trending 有序集合里的一条采样
type TrendingEntry struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// CacheKey 推导会话缓存键：带 session 时按 (user, session)，否则落到用户的 latest 键
func CacheKey(userID, sessionID string) string {
	if sessionID != "" {
		return fmt.Sprintf("rec_session:%s:%s", userID, sessionID)
	}
	return fmt.Sprintf("rec_latest:%s", userID)
}

// RedisCache 是 Cache 的 Redis 实现
type RedisCache struct {
	client    *redis.Client
	available bool
}

// NewRedisCache 建立 Redis 连接，带固定次数的重试
// 全部失败后进入永久降级模式而不是报错：缓存是软依赖
func NewRedisCache(addr, password string, db int) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		err := client.Ping(ctx).Err()
		cancel()
		if err == nil {
			logger.Info("Redis connected: %s (attempt %d)", addr, attempt)
			return &RedisCache{client: client, available: true}
		}
		logger.Warn("Redis connection attempt %d failed: %v", attempt, err)
		if attempt < connectAttempts {
			time.Sleep(connectBackoff)
		}
	}

	logger.Error("Redis unavailable after %d attempts. Running WITHOUT cache.", connectAttempts)
	return &RedisCache{client: client, available: false}
}

func (r *RedisCache) Available() bool {
	return r.available
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]model.Recommendation, bool, error) {
	if !r.available {
		return nil, false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var recs []model.Recommendation
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return recs, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, recs []model.Recommendation, ttl time.Duration) error {
	if !r.available {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// InvalidateUser 清掉一个用户的全部会话缓存，返回删除的键数
// 这是独立的运维入口，打分和服务路径不会调用它
func (r *RedisCache) InvalidateUser(ctx context.Context, userID string) (int, error) {
	if !r.available {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	deleted := 0
	iter := r.client.Scan(ctx, 0, fmt.Sprintf("rec_session:%s:*", userID), 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err == nil {
			deleted++
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("cache scan: %w", err)
	}
	if err := r.client.Del(ctx, CacheKey(userID, "")).Err(); err == nil {
		deleted++
	}
	return deleted, nil
}

func (r *RedisCache) TrendingScore(ctx context.Context, itemID string) (float64, error) {
	if !r.available {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	score, err := r.client.ZScore(ctx, trendingKey, itemID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("trending score: %w", err)
	}
	return score, nil
}

func (r *RedisCache) TrendingTop(ctx context.Context, n int64) ([]TrendingEntry, error) {
	if !r.available {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	zs, err := r.client.ZRevRangeWithScores(ctx, trendingKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("trending top: %w", err)
	}
	out := make([]TrendingEntry, 0, len(zs))
	for _, z := range zs {
		if id, ok := z.Member.(string); ok {
			out = append(out, TrendingEntry{ItemID: id, Score: z.Score})
		}
	}
	return out, nil
}
