package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/contre95/id3shim/src/features/tagging"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteJournal is a SQLite implementation of the tagging Journal.
type SqliteJournal struct {
	db *sql.DB
}

// NewSqliteJournal opens (or creates) the journal database at path.
func NewSqliteJournal(path string) (*SqliteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return newSqliteJournal(db)
}

func newSqliteJournal(db *sql.DB) (*SqliteJournal, error) {
	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal tables: %w", err)
	}
	return &SqliteJournal{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS journal (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			operation TEXT NOT NULL,
			frame_id TEXT,
			version INTEGER,
			old_value TEXT,
			new_value TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_journal_path ON journal(path);
	`)
	return err
}

// Record stores one entry, assigning it an id when it has none.
func (d *SqliteJournal) Record(ctx context.Context, entry tagging.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO journal (id, path, operation, frame_id, version, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Path, string(entry.Operation), entry.FrameID, entry.Version,
		entry.OldValue, entry.NewValue, entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	slog.Debug("Journal entry recorded", "id", entry.ID, "path", entry.Path, "operation", entry.Operation)
	return nil
}

// History returns the entries of a file in the order they were recorded.
func (d *SqliteJournal) History(ctx context.Context, path string) ([]tagging.JournalEntry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, path, operation, frame_id, version, old_value, new_value, created_at
		FROM journal WHERE path = ? ORDER BY rowid`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []tagging.JournalEntry
	for rows.Next() {
		var (
			entry     tagging.JournalEntry
			operation string
			frameID   sql.NullString
			oldValue  sql.NullString
			newValue  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &entry.Path, &operation, &frameID, &entry.Version, &oldValue, &newValue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entry.Operation = tagging.Operation(operation)
		entry.FrameID = frameID.String
		entry.OldValue = oldValue.String
		entry.NewValue = newValue.String
		entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid journal timestamp %q: %w", createdAt, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (d *SqliteJournal) Close() error {
	return d.db.Close()
}
