// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/internal/domain/shared"
	"github.com/leetscope/leetscope/pkg/logger"
	"github.com/leetscope/leetscope/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC HISTORY COMMAND
// Populates the local contest-history store from the upstream API.
// The store is a full snapshot: a sync either replaces the user's entire
// record set or writes nothing at all.
// ══════════════════════════════════════════════════════════════════════════════

// SyncHistoryCommand contains the data needed to sync a user's history.
type SyncHistoryCommand struct {
	// Username is the upstream handle whose history to sync.
	Username contest.Username

	// Force bypasses the existence short-circuit and re-fetches even
	// when records are already stored.
	Force bool
}

// Validate validates the command.
func (c SyncHistoryCommand) Validate() error {
	if !c.Username.IsValid() {
		return shared.ErrInvalidUsername
	}
	return nil
}

// SyncHistoryResult contains the result of a synchronization.
type SyncHistoryResult struct {
	// Username is the synced user.
	Username contest.Username

	// Performed indicates whether a fetch-and-replace actually ran.
	// False when the existence check short-circuited or the upstream
	// had no data.
	Performed bool

	// UpstreamEmpty indicates the upstream reported no history for the
	// user. The local store is left untouched in that case.
	UpstreamEmpty bool

	// RecordCount is the number of records written (0 when not performed).
	RecordCount int

	// Records holds the freshly written records when the caller asked
	// for them (FetchAndStore); nil otherwise.
	Records []contest.HistoryRecord

	// SyncedAt is when the sync completed.
	SyncedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// HistoryProvider fetches contest history from the upstream API.
// A (nil, nil) return means the upstream has no data for the user.
type HistoryProvider interface {
	FetchContestHistory(ctx context.Context, username contest.Username) ([]contest.HistoryRecord, error)
}

// RankingInvalidator drops any cached ranking summary for a user.
type RankingInvalidator interface {
	Invalidate(ctx context.Context, username contest.Username) error
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SyncHistoryHandler handles SyncHistoryCommand and is the only write
// path into the contest-history store.
type SyncHistoryHandler struct {
	historyRepo contest.HistoryRepository
	provider    HistoryProvider
	invalidator RankingInvalidator
	log         *logger.Logger
}

// NewSyncHistoryHandler creates a new SyncHistoryHandler. invalidator
// may be nil when no ranking cache is configured.
func NewSyncHistoryHandler(
	historyRepo contest.HistoryRepository,
	provider HistoryProvider,
	invalidator RankingInvalidator,
	log *logger.Logger,
) *SyncHistoryHandler {
	if log == nil {
		log = logger.Default()
	}

	return &SyncHistoryHandler{
		historyRepo: historyRepo,
		provider:    provider,
		invalidator: invalidator,
		log:         log.With(logger.Component("sync_history")),
	}
}

// Handle executes the sync command.
func (h *SyncHistoryHandler) Handle(ctx context.Context, cmd SyncHistoryCommand) (*SyncHistoryResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("sync_history: %w", err)
	}

	result := &SyncHistoryResult{
		Username: cmd.Username,
		SyncedAt: time.Now().UTC(),
	}

	// A populated store is authoritative until explicitly evicted.
	if !cmd.Force {
		exists, err := h.historyRepo.ExistsForUser(ctx, cmd.Username)
		if err != nil {
			return nil, fmt.Errorf("sync_history: existence check failed: %w", err)
		}
		if exists {
			metrics.RecordSyncSkipped()
			return result, nil
		}
	}

	records, err := h.provider.FetchContestHistory(ctx, cmd.Username)
	if err != nil {
		metrics.RecordSyncFailed()
		return nil, fmt.Errorf("sync_history: upstream fetch failed: %w", err)
	}

	// Unknown user or a user with no contest history. The store stays
	// unchanged so a later attempt can retry the fetch.
	if len(records) == 0 {
		result.UpstreamEmpty = true
		h.log.Debug("upstream has no history, skipping write",
			logger.Username(cmd.Username.String()),
		)
		return result, nil
	}

	if err := h.historyRepo.BulkReplaceForUser(ctx, cmd.Username, records); err != nil {
		metrics.RecordSyncFailed()
		return nil, fmt.Errorf("sync_history: store replace failed: %w", err)
	}

	metrics.RecordSyncPerformed()
	metrics.RecordRecordsReplaced(len(records))

	result.Performed = true
	result.RecordCount = len(records)
	result.Records = records

	h.log.Info("contest history synchronized",
		logger.Username(cmd.Username.String()),
		logger.RecordCount(len(records)),
	)

	return result, nil
}

// EnsureSynchronized populates the store for the user unless it is
// already populated. This is the read path's entry point: every query
// calls it before touching the store.
func (h *SyncHistoryHandler) EnsureSynchronized(ctx context.Context, username contest.Username) error {
	_, err := h.Handle(ctx, SyncHistoryCommand{Username: username})
	return err
}

// FetchAndStore forces a fresh fetch-and-replace and returns the new
// records, or nil when the upstream has no data for the user.
func (h *SyncHistoryHandler) FetchAndStore(ctx context.Context, username contest.Username) ([]contest.HistoryRecord, error) {
	result, err := h.Handle(ctx, SyncHistoryCommand{Username: username, Force: true})
	if err != nil {
		return nil, err
	}

	// A forced refresh may change the numbers a cached summary reports.
	if h.invalidator != nil {
		if err := h.invalidator.Invalidate(ctx, username); err != nil {
			h.log.Warn("ranking cache invalidation failed",
				logger.Username(username.String()),
				logger.Err(err),
			)
		}
	}

	return result.Records, nil
}
