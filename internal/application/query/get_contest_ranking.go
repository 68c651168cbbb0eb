package query

import (
	"context"
	"fmt"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/internal/domain/shared"
	"github.com/leetscope/leetscope/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CONTEST RANKING QUERY
// Proxies the upstream's aggregate ranking summary with a per-username
// cache in front. The summary is not derived from the history store.
// ══════════════════════════════════════════════════════════════════════════════

// GetContestRankingQuery requests a user's aggregate ranking summary.
type GetContestRankingQuery struct {
	Username contest.Username
}

// Validate validates the query.
func (q GetContestRankingQuery) Validate() error {
	if !q.Username.IsValid() {
		return shared.ErrInvalidUsername
	}
	return nil
}

// RankingProvider fetches the ranking summary from the upstream API.
// A (nil, nil) return means the user is unknown or never attended.
type RankingProvider interface {
	FetchRankingSummary(ctx context.Context, username contest.Username) (*contest.RankingSummary, error)
}

// GetContestRankingHandler handles GetContestRankingQuery.
type GetContestRankingHandler struct {
	cache    contest.RankingCache
	provider RankingProvider
	log      *logger.Logger
}

// NewGetContestRankingHandler creates a new GetContestRankingHandler.
// cache may be nil, in which case every request goes upstream.
func NewGetContestRankingHandler(
	cache contest.RankingCache,
	provider RankingProvider,
	log *logger.Logger,
) *GetContestRankingHandler {
	if log == nil {
		log = logger.Default()
	}

	return &GetContestRankingHandler{
		cache:    cache,
		provider: provider,
		log:      log.With(logger.Component("get_contest_ranking")),
	}
}

// Handle returns the cached summary when available, otherwise fetches
// from the upstream and stores the result. Cache failures degrade to an
// upstream fetch instead of failing the query.
func (h *GetContestRankingHandler) Handle(ctx context.Context, q GetContestRankingQuery) (*contest.RankingSummary, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_contest_ranking: %w", err)
	}

	if h.cache != nil {
		summary, err := h.cache.Get(ctx, q.Username)
		if err != nil {
			h.log.Warn("ranking cache read failed",
				logger.Username(q.Username.String()),
				logger.Err(err),
			)
		} else if summary != nil {
			return summary, nil
		}
	}

	summary, err := h.provider.FetchRankingSummary(ctx, q.Username)
	if err != nil {
		return nil, fmt.Errorf("get_contest_ranking: upstream fetch failed: %w", err)
	}

	if summary == nil {
		return nil, shared.ErrUserNotFound
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, q.Username, summary); err != nil {
			h.log.Warn("ranking cache write failed",
				logger.Username(q.Username.String()),
				logger.Err(err),
			)
		}
	}

	return summary, nil
}
