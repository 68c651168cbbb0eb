package command

import (
	"context"
	"fmt"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/internal/domain/shared"
	"github.com/leetscope/leetscope/pkg/logger"
	"github.com/leetscope/leetscope/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVICT HISTORY COMMAND
// Drops all stored data for a user. The next read triggers a fresh sync.
// ══════════════════════════════════════════════════════════════════════════════

// EvictHistoryCommand contains the data needed to evict a user.
type EvictHistoryCommand struct {
	// Username is the user whose data to drop.
	Username contest.Username
}

// Validate validates the command.
func (c EvictHistoryCommand) Validate() error {
	if !c.Username.IsValid() {
		return shared.ErrInvalidUsername
	}
	return nil
}

// EvictHistoryHandler handles EvictHistoryCommand.
type EvictHistoryHandler struct {
	historyRepo contest.HistoryRepository
	invalidator RankingInvalidator
	log         *logger.Logger
}

// NewEvictHistoryHandler creates a new EvictHistoryHandler. invalidator
// may be nil when no ranking cache is configured.
func NewEvictHistoryHandler(
	historyRepo contest.HistoryRepository,
	invalidator RankingInvalidator,
	log *logger.Logger,
) *EvictHistoryHandler {
	if log == nil {
		log = logger.Default()
	}

	return &EvictHistoryHandler{
		historyRepo: historyRepo,
		invalidator: invalidator,
		log:         log.With(logger.Component("evict_history")),
	}
}

// Handle executes the evict command. Evicting an absent user is not an
// error; the operation is idempotent.
func (h *EvictHistoryHandler) Handle(ctx context.Context, cmd EvictHistoryCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("evict_history: %w", err)
	}

	if err := h.historyRepo.DeleteForUser(ctx, cmd.Username); err != nil {
		return fmt.Errorf("evict_history: delete failed: %w", err)
	}

	if h.invalidator != nil {
		if err := h.invalidator.Invalidate(ctx, cmd.Username); err != nil {
			// The TTL bounds how long a stale summary can linger, so a
			// failed invalidation is logged rather than surfaced.
			h.log.Warn("ranking cache invalidation failed",
				logger.Username(cmd.Username.String()),
				logger.Err(err),
			)
		}
	}

	metrics.RecordEviction()
	h.log.Info("user contest data evicted",
		logger.Username(cmd.Username.String()),
	)

	return nil
}
