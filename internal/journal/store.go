package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tally/internal/config"
)

// Entry is one locally journaled event: a decode, a resolution outcome, or a
// lifecycle operation issued from this station. The journal is an offline
// operator aid; the depot's audit log remains authoritative.
type Entry struct {
	ID          int64
	At          time.Time
	Action      string
	ItemID      string
	ShortID     string
	Destination string
	RawText     string
	Outcome     string
	Detail      string
}

// Journal action names.
const (
	ActionScan       = "scan"
	ActionTransition = "transition"
	ActionTransfer   = "transfer"
	ActionCommit     = "commit"
)

// Journal outcomes.
const (
	OutcomeResolved  = "resolved"
	OutcomeAmbiguous = "ambiguous"
	OutcomeNotFound  = "not-found"
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
)

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.JournalPath())
}

// OpenPath opens a journal database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record appends one entry and returns it with its assigned id.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	at := entry.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO journal_entries (
            recorded_at, action, item_id, short_id, destination, raw_text, outcome, detail
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339Nano),
		entry.Action,
		nullableString(entry.ItemID),
		nullableString(entry.ShortID),
		nullableString(entry.Destination),
		nullableString(entry.RawText),
		entry.Outcome,
		nullableString(entry.Detail),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert journal entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	entry.At = at.UTC()
	return entry, nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, recorded_at, action, item_id, short_id, destination, raw_text, outcome, detail
           FROM journal_entries ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ByItem returns the newest entries for one item, most recent first.
func (s *Store) ByItem(ctx context.Context, itemID string, limit int) ([]Entry, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("item id required")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, recorded_at, action, item_id, short_id, destination, raw_text, outcome, detail
           FROM journal_entries WHERE item_id = ? ORDER BY id DESC LIMIT ?`,
		itemID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query item entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			at      string
			itemID  sql.NullString
			shortID sql.NullString
			dest    sql.NullString
			rawText sql.NullString
			detail  sql.NullString
		)
		if err := rows.Scan(&entry.ID, &at, &entry.Action, &itemID, &shortID, &dest, &rawText, &entry.Outcome, &detail); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entry.At = parseTimeString(at)
		entry.ItemID = itemID.String
		entry.ShortID = shortID.String
		entry.Destination = dest.String
		entry.RawText = rawText.String
		entry.Detail = detail.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
