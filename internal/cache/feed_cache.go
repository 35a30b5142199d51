// Package cache Redis cache-aside for assembled feeds.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/metrics"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// FeedCache keeps one Redis hash per user: field "<limit>:<offset>" holds a
// JSON page. Dropping the hash invalidates every page of that user at once.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &FeedCache{client: client, ttl: ttl}
}

func feedKey(userID int64) string { return fmt.Sprintf("feed:%d", userID) }

func pageField(p model.Page) string { return fmt.Sprintf("%d:%d", p.Limit, p.Offset) }

func (c *FeedCache) Get(ctx context.Context, userID int64, page model.Page) ([]model.FeedEntry, bool) {
	data, err := c.client.HGet(ctx, feedKey(userID), pageField(page)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.FeedCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.FeedCache.WithLabelValues("error").Inc()
		logger.Warn("feed cache get", zap.Int64("user", userID), zap.Error(err))
		return nil, false
	}
	var out []model.FeedEntry
	if err := json.Unmarshal(data, &out); err != nil {
		metrics.FeedCache.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.FeedCache.WithLabelValues("hit").Inc()
	return out, true
}

func (c *FeedCache) Set(ctx context.Context, userID int64, page model.Page, entries []model.FeedEntry) {
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	key := feedKey(userID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, pageField(page), payload)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("feed cache set", zap.Int64("user", userID), zap.Error(err))
	}
}

func (c *FeedCache) InvalidateUsers(ctx context.Context, userIDs ...int64) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = feedKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("feed cache invalidate", zap.Int("users", len(userIDs)), zap.Error(err))
	}
}
