// Package sqlite implements the store driver on SQLite.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/andyjacy/aicommonplatform/internal/profile"
	"github.com/andyjacy/aicommonplatform/internal/version"
	"github.com/andyjacy/aicommonplatform/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the history database. WAL journal mode and a busy timeout keep
// concurrent single-key reads and writes safe for this workload.
//
// Note: with the `modernc.org/sqlite` driver, each pragma must be prefixed
// with `_pragma=`.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// Single connection is optimal for SQLite with WAL.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the schema if it does not exist. A database initialized by
// a newer binary is refused rather than silently downgraded.
func (d *DB) Migrate(ctx context.Context) error {
	currentVersion := version.GetCurrentVersion(d.profile.Mode)
	latestVersion, err := d.latestMigrationVersion(ctx)
	if err != nil {
		return err
	}
	if latestVersion != "" && !version.IsVersionGreaterOrEqualThan(currentVersion, latestVersion) {
		return errors.Errorf("database version %s is newer than binary version %s", latestVersion, currentVersion)
	}

	stmt := `
		CREATE TABLE IF NOT EXISTS qa_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			qa_id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL DEFAULT '',
			question TEXT NOT NULL,
			answer TEXT NOT NULL DEFAULT '',
			intent TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL DEFAULT 0,
			sources TEXT NOT NULL DEFAULT '[]',
			execution_time REAL NOT NULL DEFAULT 0,
			trace_id TEXT NOT NULL DEFAULT '',
			trace_data TEXT NOT NULL DEFAULT '{}',
			created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
		);
		CREATE INDEX IF NOT EXISTS idx_qa_history_user_id ON qa_history (user_id);
	`
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to migrate qa_history")
	}

	// Record one row per minor release so patch upgrades stay quiet.
	if version.GetMinorVersion(latestVersion) != version.GetMinorVersion(currentVersion) {
		if _, err := d.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO migration_history (version) VALUES (?)", currentVersion,
		); err != nil {
			return errors.Wrap(err, "failed to record migration version")
		}
	}
	return nil
}

// latestMigrationVersion returns the most recently recorded schema version, or
// empty on a fresh database.
func (d *DB) latestMigrationVersion(ctx context.Context) (string, error) {
	stmt := `
		CREATE TABLE IF NOT EXISTS migration_history (
			version TEXT NOT NULL PRIMARY KEY,
			created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
		)
	`
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return "", errors.Wrap(err, "failed to migrate migration_history")
	}

	var latest string
	err := d.db.QueryRowContext(ctx,
		"SELECT version FROM migration_history ORDER BY created_ts DESC, version DESC LIMIT 1",
	).Scan(&latest)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to read migration history")
	}
	return latest, nil
}
