package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH CONTESTS COMMAND
// Re-aggregates the upstream past-contest listing and persists it as the
// new global listing. Triggered on demand, never on a schedule.
// ══════════════════════════════════════════════════════════════════════════════

// RefreshContestsCommand triggers a contest listing refresh.
type RefreshContestsCommand struct {
	// RunID identifies the refresh run in logs. Generated when empty.
	RunID string
}

// RefreshContestsResult contains the result of a refresh.
type RefreshContestsResult struct {
	// RunID is the identifier of this refresh run.
	RunID string

	// ContestCount is the number of contests persisted.
	ContestCount int

	// Duration is how long the refresh took.
	Duration time.Duration

	// RefreshedAt is when the refresh completed.
	RefreshedAt time.Time
}

// ContestProvider aggregates the upstream past-contest listing.
type ContestProvider interface {
	FetchAllContests(ctx context.Context) ([]contest.Contest, error)
}

// RefreshContestsHandler handles RefreshContestsCommand.
type RefreshContestsHandler struct {
	contestRepo contest.ContestRepository
	provider    ContestProvider
	log         *logger.Logger
}

// NewRefreshContestsHandler creates a new RefreshContestsHandler.
func NewRefreshContestsHandler(
	contestRepo contest.ContestRepository,
	provider ContestProvider,
	log *logger.Logger,
) *RefreshContestsHandler {
	if log == nil {
		log = logger.Default()
	}

	return &RefreshContestsHandler{
		contestRepo: contestRepo,
		provider:    provider,
		log:         log.With(logger.Component("refresh_contests")),
	}
}

// Handle executes the refresh. The aggregation is tolerant of a mid-walk
// upstream failure and persists whatever was collected; an empty result
// is NOT persisted, so a fully failed aggregation never wipes the
// existing listing.
func (h *RefreshContestsHandler) Handle(ctx context.Context, cmd RefreshContestsCommand) (*RefreshContestsResult, error) {
	runID := cmd.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	start := time.Now()
	log := h.log.With(logger.String("run_id", runID))

	contests, err := h.provider.FetchAllContests(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh_contests: aggregation failed: %w", err)
	}

	if len(contests) == 0 {
		log.Warn("aggregation returned no contests, keeping existing listing")
		return &RefreshContestsResult{
			RunID:       runID,
			Duration:    time.Since(start),
			RefreshedAt: time.Now().UTC(),
		}, nil
	}

	if err := h.contestRepo.ReplaceAll(ctx, contests); err != nil {
		return nil, fmt.Errorf("refresh_contests: persist failed: %w", err)
	}

	log.Info("contest listing refreshed",
		logger.RecordCount(len(contests)),
		logger.Latency(time.Since(start)),
	)

	return &RefreshContestsResult{
		RunID:        runID,
		ContestCount: len(contests),
		Duration:     time.Since(start),
		RefreshedAt:  time.Now().UTC(),
	}, nil
}
