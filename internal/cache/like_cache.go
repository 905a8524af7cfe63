package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyLikeCount = "post:likes:"
	likeCountTTL = time.Hour
)

// LikeCounts caches per-post like counts in Redis. A nil *LikeCounts is a
// disabled cache: Get always misses and Set/Invalidate are no-ops, so the
// handlers never have to care whether Redis is configured.
type LikeCounts struct {
	rdb *redis.Client
	ttl time.Duration
}

// Likes is the shared like-count cache. It stays nil unless Connect is
// called with a Redis URL.
var Likes *LikeCounts

// Connect initializes the shared cache. An empty URL leaves caching disabled.
func Connect(redisURL string) error {
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return err
	}

	Likes = &LikeCounts{rdb: redis.NewClient(opts), ttl: likeCountTTL}
	return nil
}

// Get returns the cached like count for a post, or a miss.
func (c *LikeCounts) Get(ctx context.Context, postID uint) (int64, bool, error) {
	if c == nil {
		return 0, false, nil
	}

	n, err := c.rdb.Get(ctx, likeCountKey(postID)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// Set stores the like count for a post.
func (c *LikeCounts) Set(ctx context.Context, postID uint, count int64) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, likeCountKey(postID), count, c.ttl).Err()
}

// Invalidate drops the cached count for a post (cache invalidation on write).
func (c *LikeCounts) Invalidate(ctx context.Context, postID uint) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, likeCountKey(postID)).Err()
}

func likeCountKey(postID uint) string {
	return keyLikeCount + strconv.FormatUint(uint64(postID), 10)
}
