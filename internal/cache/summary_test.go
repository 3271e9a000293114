package cache

import (
	"context"
	"testing"
	"time"

	"tasktracker/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*SummaryCache, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSummaryCache(client, time.Minute), s
}

func TestSummaryRoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrMiss)

	want := models.AnalysisSummary{
		Issue:   models.IssueSummary{Total: 3, FullyCompleted: 1, Incompleted: 1, NoTask: 1},
		Session: models.SessionSummary{Total: 2, DurationCount: models.DurationCount{TwentyFive: 2}},
	}
	require.NoError(t, c.Set(ctx, 7, want))

	got, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, err = c.Get(ctx, 8)
	assert.ErrorIs(t, err, ErrMiss, "summaries are per user")
}

func TestSummaryExpiresAndInvalidates(t *testing.T) {
	c, s := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, models.AnalysisSummary{}))
	s.FastForward(2 * time.Minute)
	_, err := c.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, 1, models.AnalysisSummary{}))
	require.NoError(t, c.Invalidate(ctx, 1))
	_, err = c.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrMiss)

	assert.NoError(t, c.Invalidate(ctx, 42))
}

func TestSummaryCorruptValue(t *testing.T) {
	c, s := setupCache(t)
	require.NoError(t, s.Set(summaryKey(3), "not json"))

	_, err := c.Get(context.Background(), 3)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
