// Package cache keeps computed club rankings between mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/club-ladder/models"
	"github.com/redis/go-redis/v9"
)

const keyRankingsPrefix = "rankings:"

// RankingsCache stores ranking tables per club and view.
type RankingsCache interface {
	Get(ctx context.Context, clubCode string, useRating bool) ([]models.RankingEntry, bool, error)
	Set(ctx context.Context, clubCode string, useRating bool, entries []models.RankingEntry) error
	Invalidate(ctx context.Context, clubCode string) error
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

type redisRankingsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRankingsCache(rdb *redis.Client, ttl time.Duration) RankingsCache {
	return &redisRankingsCache{rdb: rdb, ttl: ttl}
}

func rankingsKey(clubCode string, useRating bool) string {
	view := "wins"
	if useRating {
		view = "rating"
	}
	return keyRankingsPrefix + clubCode + ":" + view
}

func (c *redisRankingsCache) Get(ctx context.Context, clubCode string, useRating bool) ([]models.RankingEntry, bool, error) {
	data, err := c.rdb.Get(ctx, rankingsKey(clubCode, useRating)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read rankings cache: %w", err)
	}
	var entries []models.RankingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached rankings: %w", err)
	}
	return entries, true, nil
}

func (c *redisRankingsCache) Set(ctx context.Context, clubCode string, useRating bool, entries []models.RankingEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode rankings: %w", err)
	}
	return c.rdb.Set(ctx, rankingsKey(clubCode, useRating), data, c.ttl).Err()
}

func (c *redisRankingsCache) Invalidate(ctx context.Context, clubCode string) error {
	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, rankingsKey(clubCode, true))
	pipe.Del(ctx, rankingsKey(clubCode, false))
	_, err := pipe.Exec(ctx)
	return err
}

type noopRankingsCache struct{}

// NewNoopRankingsCache is used when no redis is configured.
func NewNoopRankingsCache() RankingsCache {
	return noopRankingsCache{}
}

func (noopRankingsCache) Get(context.Context, string, bool) ([]models.RankingEntry, bool, error) {
	return nil, false, nil
}

func (noopRankingsCache) Set(context.Context, string, bool, []models.RankingEntry) error {
	return nil
}

func (noopRankingsCache) Invalidate(context.Context, string) error {
	return nil
}
