package redis

import (
	"context"
	"errors"
	"time"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/pkg/metrics"
)

const rankingCacheName = "ranking"

// RankingCache implements contest.RankingCache on top of the generic
// Cache. Summaries expire after the configured TTL so a proxied ranking
// is never served stale for longer than that window.
type RankingCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewRankingCache creates a new RankingCache. A non-positive ttl falls
// back to TTLRankingSummary.
func NewRankingCache(cache *Cache, ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = TTLRankingSummary
	}
	return &RankingCache{
		cache: cache,
		ttl:   ttl,
	}
}

// Get returns the cached summary for the user, or (nil, nil) on a miss.
func (r *RankingCache) Get(ctx context.Context, username contest.Username) (*contest.RankingSummary, error) {
	var summary contest.RankingSummary
	err := r.cache.Get(ctx, RankingKey(username.String()), &summary)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			metrics.RecordCacheMiss(rankingCacheName)
			return nil, nil
		}
		return nil, err
	}

	metrics.RecordCacheHit(rankingCacheName)
	return &summary, nil
}

// Set stores the summary for the user with the configured TTL.
func (r *RankingCache) Set(ctx context.Context, username contest.Username, summary *contest.RankingSummary) error {
	if summary == nil {
		return nil
	}
	return r.cache.Set(ctx, RankingKey(username.String()), summary, r.ttl)
}

// Invalidate drops the cached summary for the user.
func (r *RankingCache) Invalidate(ctx context.Context, username contest.Username) error {
	return r.cache.Delete(ctx, RankingKey(username.String()))
}
