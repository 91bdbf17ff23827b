package graph

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-social/internal/domain"
	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
)

// CountsCache caches follower and following totals. Failures are logged and
// treated as misses; the database stays authoritative.
type CountsCache interface {
	Get(ctx context.Context, userID string) (domain.EdgeCounts, bool)
	Set(ctx context.Context, userID string, c domain.EdgeCounts)
	Invalidate(ctx context.Context, userIDs ...string)
}

type noopCounts struct{}

func (noopCounts) Get(context.Context, string) (domain.EdgeCounts, bool) {
	return domain.EdgeCounts{}, false
}
func (noopCounts) Set(context.Context, string, domain.EdgeCounts) {}
func (noopCounts) Invalidate(context.Context, ...string)          {}

const (
	countsKeyFormat = "graph:counts:%s"
	fieldFollowers  = "followers"
	fieldFollowing  = "following"
)

// RedisCountsCache stores counts in a hash per user with a TTL.
type RedisCountsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCountsCache creates a Redis-backed counts cache.
func NewRedisCountsCache(client *redis.Client, ttl time.Duration) *RedisCountsCache {
	return &RedisCountsCache{client: client, ttl: ttl}
}

func countsKey(userID string) string {
	return fmt.Sprintf(countsKeyFormat, userID)
}

// Get returns cached counts for userID.
func (c *RedisCountsCache) Get(ctx context.Context, userID string) (domain.EdgeCounts, bool) {
	vals, err := c.client.HMGet(ctx, countsKey(userID), fieldFollowers, fieldFollowing).Result()
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("redis get counts failed, falling back to db")
		return domain.EdgeCounts{}, false
	}

	followers, ok1 := parseCount(vals[0])
	following, ok2 := parseCount(vals[1])
	if !ok1 || !ok2 {
		return domain.EdgeCounts{}, false
	}
	return domain.EdgeCounts{Followers: followers, Following: following}, true
}

// Set stores counts for userID.
func (c *RedisCountsCache) Set(ctx context.Context, userID string, counts domain.EdgeCounts) {
	key := countsKey(userID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, fieldFollowers, counts.Followers, fieldFollowing, counts.Following)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to cache counts")
	}
}

// Invalidate drops cached counts for the given users.
func (c *RedisCountsCache) Invalidate(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = countsKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Strs("user_ids", userIDs).Msg("failed to invalidate counts")
	}
}

func parseCount(v interface{}) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
