package contest

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the storage contracts for contest data.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// HistoryRepository stores per-user contest history records.
//
// A user's history has exactly two states: absent or fully populated.
// The only write paths are a full replace and a full delete; there is
// no incremental update.
type HistoryRepository interface {
	// ExistsForUser reports whether any records are stored for the user.
	ExistsForUser(ctx context.Context, username Username) (bool, error)

	// FindAllForUser returns every stored record for the user.
	// An empty slice, not an error, when nothing is stored.
	FindAllForUser(ctx context.Context, username Username) ([]HistoryRecord, error)

	// FindForUserWhere returns the records matching the filter. A
	// TitleFilter resolves to at most one record (the best match).
	FindForUserWhere(ctx context.Context, username Username, f Filter) ([]HistoryRecord, error)

	// BulkReplaceForUser atomically replaces the user's record set.
	// Concurrent replaces for the same user are last-writer-wins; a
	// losing write must never leave a mixed record set behind.
	BulkReplaceForUser(ctx context.Context, username Username, records []HistoryRecord) error

	// DeleteForUser removes all records for the user. Not an error if
	// none exist.
	DeleteForUser(ctx context.Context, username Username) error

	// FindBiggestRatingJump returns the largest rating increase between
	// chronologically adjacent contests, or nil with no error when the
	// user has fewer than two records.
	FindBiggestRatingJump(ctx context.Context, username Username) (*RatingJump, error)

	// FindBestRanking returns the record with the smallest ranking
	// greater than zero, or nil with no error when no ranked record
	// exists.
	FindBestRanking(ctx context.Context, username Username) (*HistoryRecord, error)
}

// ContestRepository stores the global past-contest listing.
type ContestRepository interface {
	// ReplaceAll atomically replaces the stored listing.
	ReplaceAll(ctx context.Context, contests []Contest) error

	// List returns a page of stored contests ordered by start time
	// descending, plus the total count.
	List(ctx context.Context, page, perPage int) ([]Contest, int, error)
}

// RankingCache caches upstream ranking summaries keyed by username.
// A miss is reported as (nil, nil).
type RankingCache interface {
	Get(ctx context.Context, username Username) (*RankingSummary, error)
	Set(ctx context.Context, username Username, summary *RankingSummary) error
	Invalidate(ctx context.Context, username Username) error
}
