// Package query contains read operations (CQRS - Queries).
// Every per-user query ensures the history store is populated before
// reading, so a first request transparently pulls from the upstream.
package query

import (
	"context"
	"fmt"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARED DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Synchronizer populates the history store for a user unless it already
// holds records for them.
type Synchronizer interface {
	EnsureSynchronized(ctx context.Context, username contest.Username) error
}

// ══════════════════════════════════════════════════════════════════════════════
// GET HISTORY QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetHistoryQuery requests a user's full contest history.
type GetHistoryQuery struct {
	Username contest.Username
}

// Validate validates the query.
func (q GetHistoryQuery) Validate() error {
	if !q.Username.IsValid() {
		return shared.ErrInvalidUsername
	}
	return nil
}

// GetHistoryHandler handles GetHistoryQuery.
type GetHistoryHandler struct {
	historyRepo contest.HistoryRepository
	sync        Synchronizer
}

// NewGetHistoryHandler creates a new GetHistoryHandler.
func NewGetHistoryHandler(historyRepo contest.HistoryRepository, sync Synchronizer) *GetHistoryHandler {
	return &GetHistoryHandler{
		historyRepo: historyRepo,
		sync:        sync,
	}
}

// Handle returns the user's full history. An empty store after a sync
// attempt means the upstream does not know the user, which surfaces as
// ErrUserNotFound rather than an empty list.
func (h *GetHistoryHandler) Handle(ctx context.Context, q GetHistoryQuery) ([]contest.HistoryRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_history: %w", err)
	}

	if err := h.sync.EnsureSynchronized(ctx, q.Username); err != nil {
		return nil, err
	}

	records, err := h.historyRepo.FindAllForUser(ctx, q.Username)
	if err != nil {
		return nil, fmt.Errorf("get_history: %w", err)
	}

	if len(records) == 0 {
		return nil, shared.ErrUserNotFound
	}

	return records, nil
}
