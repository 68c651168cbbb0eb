// Package postgres implements the PostgreSQL persistence layer for LeetScope.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTEST HISTORY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const historyColumns = `id, username, contest_title, contest_start_time, attended,
	trend_direction, problems_solved, total_problems, finish_time_seconds,
	rating, ranking, synced_at`

// HistoryRepository implements contest.HistoryRepository for PostgreSQL.
type HistoryRepository struct {
	conn *Connection
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(conn *Connection) *HistoryRepository {
	return &HistoryRepository{conn: conn}
}

// ExistsForUser reports whether any records are stored for the user.
func (r *HistoryRepository) ExistsForUser(ctx context.Context, username contest.Username) (bool, error) {
	defer r.observe("exists_for_user")()

	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM contest_history WHERE username = $1)`,
		username.String(),
	).Scan(&exists)
	if err != nil {
		metrics.RecordDBError()
		return false, fmt.Errorf("failed to check history existence: %w", err)
	}

	return exists, nil
}

// FindAllForUser returns every stored record for the user.
func (r *HistoryRepository) FindAllForUser(ctx context.Context, username contest.Username) ([]contest.HistoryRecord, error) {
	defer r.observe("find_all_for_user")()

	query := fmt.Sprintf(`
		SELECT %s
		FROM contest_history
		WHERE username = $1
		ORDER BY contest_start_time
	`, historyColumns)

	rows, err := r.conn.Query(ctx, query, username.String())
	if err != nil {
		metrics.RecordDBError()
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return r.scanRecords(rows)
}

// FindForUserWhere returns the records matching the filter. The filter is
// translated to SQL; the semantics mirror Filter.Matches exactly. A
// TitleFilter resolves to the single best match (shortest matching title).
func (r *HistoryRepository) FindForUserWhere(ctx context.Context, username contest.Username, f contest.Filter) ([]contest.HistoryRecord, error) {
	defer r.observe("find_for_user_where")()

	base := fmt.Sprintf(`
		SELECT %s
		FROM contest_history
		WHERE username = $1
	`, historyColumns)

	var (
		query string
		args  []interface{}
	)
	args = append(args, username.String())

	switch filter := f.(type) {
	case contest.AttendedFilter:
		query = base + ` AND attended = $2 ORDER BY contest_start_time`
		args = append(args, filter.Attended)

	case contest.TrendFilter:
		query = base + ` AND trend_direction = $2 ORDER BY contest_start_time`
		args = append(args, filter.Direction.String())

	case contest.ProblemsAtLeastFilter:
		query = base + ` AND problems_solved >= $2 ORDER BY contest_start_time`
		args = append(args, filter.Min)

	case contest.ProblemsAtMostFilter:
		query = base + ` AND problems_solved <= $2 ORDER BY contest_start_time`
		args = append(args, filter.Max)

	case contest.FinishTimeFilter:
		query = base + ` AND attended AND finish_time_seconds <= $2 ORDER BY contest_start_time`
		args = append(args, filter.MaxSeconds)

	case contest.RatingFilter:
		query = base + ` AND rating = $2 ORDER BY contest_start_time`
		args = append(args, float64(filter.Rating))

	case contest.TitleFilter:
		query = base + ` AND contest_title ILIKE '%' || $2 || '%'
			ORDER BY length(contest_title), contest_start_time
			LIMIT 1`
		args = append(args, filter.Query)

	default:
		return nil, fmt.Errorf("unsupported filter type %T", f)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError()
		return nil, fmt.Errorf("failed to query filtered history: %w", err)
	}
	defer rows.Close()

	return r.scanRecords(rows)
}

// BulkReplaceForUser atomically replaces the user's record set with a
// delete-then-insert inside one transaction. Concurrent replaces for the
// same user resolve as last-writer-wins without mixing the two sets.
func (r *HistoryRepository) BulkReplaceForUser(ctx context.Context, username contest.Username, records []contest.HistoryRecord) error {
	defer r.observe("bulk_replace_for_user")()

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM contest_history WHERE username = $1`,
			username.String(),
		); err != nil {
			return fmt.Errorf("failed to delete old history: %w", err)
		}

		if len(records) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		insert := `
			INSERT INTO contest_history (
				username, contest_title, contest_start_time, attended,
				trend_direction, problems_solved, total_problems,
				finish_time_seconds, rating, ranking, synced_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		for _, rec := range records {
			batch.Queue(insert,
				username.String(),
				rec.ContestTitle,
				rec.ContestStartTime,
				rec.Attended,
				rec.TrendDirection.String(),
				rec.ProblemsSolved,
				rec.TotalProblems,
				rec.FinishTimeSecs,
				float64(rec.Rating),
				int(rec.Ranking),
				rec.SyncedAt,
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range records {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to insert history record: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		metrics.RecordDBError()
		return err
	}

	return nil
}

// DeleteForUser removes all records for the user.
func (r *HistoryRepository) DeleteForUser(ctx context.Context, username contest.Username) error {
	defer r.observe("delete_for_user")()

	if _, err := r.conn.Exec(ctx,
		`DELETE FROM contest_history WHERE username = $1`,
		username.String(),
	); err != nil {
		metrics.RecordDBError()
		return fmt.Errorf("failed to delete history: %w", err)
	}

	return nil
}

// FindBiggestRatingJump returns the largest rating increase between
// chronologically adjacent contests. The adjacency scan is domain logic;
// the repository only supplies the ordered record set.
func (r *HistoryRepository) FindBiggestRatingJump(ctx context.Context, username contest.Username) (*contest.RatingJump, error) {
	records, err := r.FindAllForUser(ctx, username)
	if err != nil {
		return nil, err
	}

	return contest.ComputeRatingJump(records), nil
}

// FindBestRanking returns the record with the smallest ranking greater
// than zero. Ranking 0 is the upstream's "unranked" sentinel and is
// excluded by the predicate, not by post-filtering.
func (r *HistoryRepository) FindBestRanking(ctx context.Context, username contest.Username) (*contest.HistoryRecord, error) {
	defer r.observe("find_best_ranking")()

	query := fmt.Sprintf(`
		SELECT %s
		FROM contest_history
		WHERE username = $1 AND ranking > 0
		ORDER BY ranking
		LIMIT 1
	`, historyColumns)

	row := r.conn.QueryRow(ctx, query, username.String())

	record, err := r.scanRecord(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		metrics.RecordDBError()
		return nil, fmt.Errorf("failed to query best ranking: %w", err)
	}

	return record, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *HistoryRepository) scanRecord(row pgx.Row) (*contest.HistoryRecord, error) {
	var (
		rec      contest.HistoryRecord
		username string
		trend    string
	)

	err := row.Scan(
		&rec.ID,
		&username,
		&rec.ContestTitle,
		&rec.ContestStartTime,
		&rec.Attended,
		&trend,
		&rec.ProblemsSolved,
		&rec.TotalProblems,
		&rec.FinishTimeSecs,
		&rec.Rating,
		&rec.Ranking,
		&rec.SyncedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Username = contest.Username(username)
	rec.TrendDirection = contest.TrendDirection(trend)
	return &rec, nil
}

func (r *HistoryRepository) scanRecords(rows pgx.Rows) ([]contest.HistoryRecord, error) {
	var records []contest.HistoryRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return records, nil
}

// observe times a repository operation for the metrics histogram.
func (r *HistoryRepository) observe(operation string) func() {
	start := time.Now()
	return func() {
		metrics.RecordDBQueryDuration(operation, time.Since(start).Seconds())
	}
}
