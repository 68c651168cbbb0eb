package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION SUPPORT
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator handles database migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if it doesn't exist.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return nil
}

// GetAppliedMigrations returns all applied migrations.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time

		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}

		applied[version] = appliedAt
	}

	return applied, rows.Err()
}

// Migrate applies all pending migrations.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, isApplied := applied[mig.Version]; isApplied {
			continue
		}

		if mig.UpSQL == "" {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		// Apply migration in transaction
		err := m.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}

			insertQuery := fmt.Sprintf(
				"INSERT INTO %s (version, name) VALUES ($1, $2)",
				m.tableName,
			)
			_, err := tx.Exec(ctx, insertQuery, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}

	return nil
}

// GetMigrations returns the embedded schema migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_contest_history",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS contest_history (
					id BIGSERIAL PRIMARY KEY,
					username TEXT NOT NULL,
					contest_title TEXT NOT NULL,
					contest_start_time BIGINT NOT NULL,
					attended BOOLEAN NOT NULL DEFAULT FALSE,
					trend_direction TEXT NOT NULL DEFAULT 'NONE',
					problems_solved INTEGER NOT NULL DEFAULT 0,
					total_problems INTEGER NOT NULL DEFAULT 0,
					finish_time_seconds BIGINT NOT NULL DEFAULT 0,
					rating DOUBLE PRECISION NOT NULL DEFAULT 0,
					ranking INTEGER NOT NULL DEFAULT 0,
					synced_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_contest_history_username
					ON contest_history (username);

				CREATE INDEX IF NOT EXISTS idx_contest_history_username_start
					ON contest_history (username, contest_start_time);
			`,
			DownSQL: `DROP TABLE IF EXISTS contest_history;`,
		},
		{
			Version: 2,
			Name:    "create_contests",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS contests (
					id BIGSERIAL PRIMARY KEY,
					title TEXT NOT NULL,
					title_slug TEXT NOT NULL UNIQUE,
					start_time BIGINT NOT NULL,
					origin_start_time BIGINT NOT NULL,
					card_image TEXT NOT NULL DEFAULT '',
					sponsors JSONB NOT NULL DEFAULT '[]',
					synced_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_contests_start_time
					ON contests (start_time DESC);
			`,
			DownSQL: `DROP TABLE IF EXISTS contests;`,
		},
	}
}
