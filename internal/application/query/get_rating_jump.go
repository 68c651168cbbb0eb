package query

import (
	"context"
	"fmt"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RATING JUMP QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetRatingJumpQuery requests the user's biggest rating jump between
// chronologically adjacent contests.
type GetRatingJumpQuery struct {
	Username contest.Username
}

// Validate validates the query.
func (q GetRatingJumpQuery) Validate() error {
	if !q.Username.IsValid() {
		return shared.ErrInvalidUsername
	}
	return nil
}

// GetRatingJumpHandler handles GetRatingJumpQuery.
type GetRatingJumpHandler struct {
	historyRepo contest.HistoryRepository
	sync        Synchronizer
}

// NewGetRatingJumpHandler creates a new GetRatingJumpHandler.
func NewGetRatingJumpHandler(historyRepo contest.HistoryRepository, sync Synchronizer) *GetRatingJumpHandler {
	return &GetRatingJumpHandler{
		historyRepo: historyRepo,
		sync:        sync,
	}
}

// Handle returns the biggest rating jump, or (nil, nil) when the user
// has fewer than two records. Fewer than two records is not an error:
// the answer is simply undefined.
func (h *GetRatingJumpHandler) Handle(ctx context.Context, q GetRatingJumpQuery) (*contest.RatingJump, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_rating_jump: %w", err)
	}

	if err := h.sync.EnsureSynchronized(ctx, q.Username); err != nil {
		return nil, err
	}

	jump, err := h.historyRepo.FindBiggestRatingJump(ctx, q.Username)
	if err != nil {
		return nil, fmt.Errorf("get_rating_jump: %w", err)
	}

	return jump, nil
}
