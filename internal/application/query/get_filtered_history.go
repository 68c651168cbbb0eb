package query

import (
	"context"
	"fmt"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET FILTERED HISTORY QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetFilteredHistoryQuery requests the subset of a user's history that
// matches one filter. Kind and RawValue arrive verbatim from the caller
// and are validated here, before any store or upstream access.
type GetFilteredHistoryQuery struct {
	Username contest.Username
	Kind     contest.FilterKind
	RawValue string
}

// Validate validates the query.
func (q GetFilteredHistoryQuery) Validate() error {
	if !q.Username.IsValid() {
		return shared.ErrInvalidUsername
	}
	return nil
}

// GetFilteredHistoryHandler handles GetFilteredHistoryQuery.
type GetFilteredHistoryHandler struct {
	historyRepo contest.HistoryRepository
	sync        Synchronizer
}

// NewGetFilteredHistoryHandler creates a new GetFilteredHistoryHandler.
func NewGetFilteredHistoryHandler(historyRepo contest.HistoryRepository, sync Synchronizer) *GetFilteredHistoryHandler {
	return &GetFilteredHistoryHandler{
		historyRepo: historyRepo,
		sync:        sync,
	}
}

// Handle returns the matching records. A malformed filter fails fast
// without syncing. An empty result is an error only for the minimum
// problems-solved filter; every other filter reports it as an empty
// list.
func (h *GetFilteredHistoryHandler) Handle(ctx context.Context, q GetFilteredHistoryQuery) ([]contest.HistoryRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_filtered_history: %w", err)
	}

	filter, err := contest.ParseFilter(q.Kind, q.RawValue)
	if err != nil {
		return nil, fmt.Errorf("get_filtered_history: %w", err)
	}

	if err := h.sync.EnsureSynchronized(ctx, q.Username); err != nil {
		return nil, err
	}

	records, err := h.historyRepo.FindForUserWhere(ctx, q.Username, filter)
	if err != nil {
		return nil, fmt.Errorf("get_filtered_history: %w", err)
	}

	if len(records) == 0 && contest.RequiresNonEmptyResult(filter) {
		return nil, shared.ErrNoMatchingContest
	}

	return records, nil
}
