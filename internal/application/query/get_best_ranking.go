package query

import (
	"context"
	"fmt"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET BEST RANKING QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetBestRankingQuery requests the contest where the user placed best.
type GetBestRankingQuery struct {
	Username contest.Username
}

// Validate validates the query.
func (q GetBestRankingQuery) Validate() error {
	if !q.Username.IsValid() {
		return shared.ErrInvalidUsername
	}
	return nil
}

// GetBestRankingHandler handles GetBestRankingQuery.
type GetBestRankingHandler struct {
	historyRepo contest.HistoryRepository
	sync        Synchronizer
}

// NewGetBestRankingHandler creates a new GetBestRankingHandler.
func NewGetBestRankingHandler(historyRepo contest.HistoryRepository, sync Synchronizer) *GetBestRankingHandler {
	return &GetBestRankingHandler{
		historyRepo: historyRepo,
		sync:        sync,
	}
}

// Handle returns the record with the best (lowest positive) ranking.
// Ranking 0 marks contests the user did not rank in; a history made
// entirely of those yields ErrUserNotFound, same as no history at all.
func (h *GetBestRankingHandler) Handle(ctx context.Context, q GetBestRankingQuery) (*contest.HistoryRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_best_ranking: %w", err)
	}

	if err := h.sync.EnsureSynchronized(ctx, q.Username); err != nil {
		return nil, err
	}

	record, err := h.historyRepo.FindBestRanking(ctx, q.Username)
	if err != nil {
		return nil, fmt.Errorf("get_best_ranking: %w", err)
	}

	if record == nil {
		return nil, shared.ErrUserNotFound
	}

	return record, nil
}
