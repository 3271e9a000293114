// Package cache keeps computed analysis summaries in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tasktracker/internal/models"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned by Get when no summary is cached for the user.
var ErrMiss = errors.New("cache miss")

// SummaryCache stores one JSON-encoded summary per user under a TTL.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

func summaryKey(userID int64) string {
	return fmt.Sprintf("analysis:summary:%d", userID)
}

func (c *SummaryCache) Get(ctx context.Context, userID int64) (*models.AnalysisSummary, error) {
	raw, err := c.client.Get(ctx, summaryKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	var s models.AnalysisSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &s, nil
}

func (c *SummaryCache) Set(ctx context.Context, userID int64, s models.AnalysisSummary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return c.client.SetEX(ctx, summaryKey(userID), raw, c.ttl).Err()
}

// Invalidate drops the user's cached summary. Deleting a missing key is not
// an error.
func (c *SummaryCache) Invalidate(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, summaryKey(userID)).Err()
}
