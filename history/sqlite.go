package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/reelmark-cli/reelmark/log"
	"github.com/reelmark-cli/reelmark/progress"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// SQLite is a Store kept in a SQLite database.
type SQLite struct {
	DB  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}

	// a single writer avoids SQLITE_BUSY between concurrent flushes
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}

	s := &SQLite{DB: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history store: migration failed: %w", err)
	}

	return s, nil
}

func (s *SQLite) migrate() error {
	var currentVersion int
	if err := s.DB.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return err
	}

	if currentVersion >= schemaVersion {
		return nil
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS positions (
		profile_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		video_id TEXT NOT NULL,
		timestamp_seconds REAL NOT NULL,
		duration_seconds REAL NOT NULL,
		watched_percentage INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (profile_id, course_id, video_id)
	);
	CREATE INDEX IF NOT EXISTS idx_positions_updated ON positions(updated_at);
	`

	if _, err := tx.Exec(schema); err != nil {
		return err
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}

	return tx.Commit()
}

// Persist upserts the position. The watched percentage only ever grows.
func (s *SQLite) Persist(ctx context.Context, f Flush) error {
	query := `
	INSERT INTO positions (profile_id, course_id, video_id, timestamp_seconds, duration_seconds, watched_percentage, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(profile_id, course_id, video_id) DO UPDATE SET
		timestamp_seconds = excluded.timestamp_seconds,
		duration_seconds = excluded.duration_seconds,
		watched_percentage = MAX(positions.watched_percentage, excluded.watched_percentage),
		updated_at = excluded.updated_at
	`
	_, err := s.DB.ExecContext(ctx, query,
		f.ProfileID, f.CourseID, f.VideoID, f.Timestamp, f.Duration,
		progress.Percent(f.Timestamp, f.Duration), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		log.Warnf("history: persist %s/%s: %v", f.CourseID, f.VideoID, err)
		return err
	}
	return nil
}

// Get returns the saved entry for a video, or ErrNoRecord.
func (s *SQLite) Get(ctx context.Context, profileID, courseID, videoID string) (Entry, error) {
	query := `SELECT profile_id, course_id, video_id, timestamp_seconds, duration_seconds, watched_percentage, updated_at
	FROM positions WHERE profile_id = ? AND course_id = ? AND video_id = ?`

	entry, err := scanEntry(s.DB.QueryRowContext(ctx, query, profileID, courseID, videoID))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNoRecord
	}
	return entry, err
}

// List returns every saved entry, most recently updated first.
func (s *SQLite) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT profile_id, course_id, video_id, timestamp_seconds, duration_seconds, watched_percentage, updated_at
	FROM positions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortEntries(entries)
	return entries, nil
}

// Remove deletes a saved entry.
func (s *SQLite) Remove(ctx context.Context, e Entry) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM positions WHERE profile_id = ? AND course_id = ? AND video_id = ?",
		e.ProfileID, e.CourseID, e.VideoID)
	return err
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry     Entry
		updatedAt string
	)
	err := row.Scan(&entry.ProfileID, &entry.CourseID, &entry.VideoID,
		&entry.Timestamp, &entry.Duration, &entry.WatchedPercentage, &updatedAt)
	if err != nil {
		return Entry{}, err
	}
	entry.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return entry, nil
}
