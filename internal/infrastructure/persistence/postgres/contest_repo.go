package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAST CONTEST REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ContestRepository implements contest.ContestRepository for PostgreSQL.
type ContestRepository struct {
	conn *Connection
}

// NewContestRepository creates a new ContestRepository.
func NewContestRepository(conn *Connection) *ContestRepository {
	return &ContestRepository{conn: conn}
}

// ReplaceAll atomically swaps the stored contest listing for the given
// set. The listing is global, so the whole table is cleared first.
func (r *ContestRepository) ReplaceAll(ctx context.Context, contests []contest.Contest) error {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("replace_all_contests", time.Since(start).Seconds())
	}()

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM contests`); err != nil {
			return fmt.Errorf("failed to clear contests: %w", err)
		}

		if len(contests) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		insert := `
			INSERT INTO contests (
				title, title_slug, start_time, origin_start_time,
				card_image, sponsors, synced_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, c := range contests {
			sponsors, err := json.Marshal(c.Sponsors)
			if err != nil {
				return fmt.Errorf("failed to marshal sponsors for %q: %w", c.TitleSlug, err)
			}
			batch.Queue(insert,
				c.Title,
				c.TitleSlug,
				c.StartTime,
				c.OriginStartTime,
				c.CardImage,
				sponsors,
				c.SyncedAt,
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range contests {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to insert contest: %w", err)
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

// List returns one page of stored contests ordered by start time
// descending, plus the total stored count. Pages are 1-based.
func (r *ContestRepository) List(ctx context.Context, page, perPage int) ([]contest.Contest, int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("list_contests", time.Since(start).Seconds())
	}()

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var total int
	if err := r.conn.QueryRow(ctx, `SELECT count(*) FROM contests`).Scan(&total); err != nil {
		metrics.RecordDBError()
		return nil, 0, fmt.Errorf("failed to count contests: %w", err)
	}

	rows, err := r.conn.Query(ctx, `
		SELECT id, title, title_slug, start_time, origin_start_time,
			card_image, sponsors, synced_at
		FROM contests
		ORDER BY start_time DESC
		LIMIT $1 OFFSET $2
	`, perPage, (page-1)*perPage)
	if err != nil {
		metrics.RecordDBError()
		return nil, 0, fmt.Errorf("failed to query contests: %w", err)
	}
	defer rows.Close()

	var contests []contest.Contest
	for rows.Next() {
		var (
			c        contest.Contest
			sponsors []byte
		)
		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.TitleSlug,
			&c.StartTime,
			&c.OriginStartTime,
			&c.CardImage,
			&sponsors,
			&c.SyncedAt,
		); err != nil {
			metrics.RecordDBError()
			return nil, 0, fmt.Errorf("failed to scan contest: %w", err)
		}
		if len(sponsors) > 0 {
			if err := json.Unmarshal(sponsors, &c.Sponsors); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal sponsors for %q: %w", c.TitleSlug, err)
			}
		}
		contests = append(contests, c)
	}

	if err := rows.Err(); err != nil {
		metrics.RecordDBError()
		return nil, 0, fmt.Errorf("failed to read contest rows: %w", err)
	}

	return contests, total, nil
}
