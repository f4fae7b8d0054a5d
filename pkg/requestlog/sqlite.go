package requestlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/getmockd/reqdiff/pkg/logging"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	timestamp INTEGER NOT NULL,
	method TEXT NOT NULL,
	url TEXT NOT NULL,
	headers TEXT NOT NULL DEFAULT '{}',
	cookies TEXT NOT NULL DEFAULT '{}',
	body TEXT NOT NULL DEFAULT '',
	body_size INTEGER NOT NULL DEFAULT 0,
	remote_addr TEXT NOT NULL DEFAULT '',
	matched_stub_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp);
`

const entryColumns = `id, timestamp, method, url, headers, cookies, body, body_size, remote_addr, matched_stub_id`

// SQLiteStore is a persistent journal in a SQLite database file. Entries
// are kept until cleared.
//
// The Store methods report database failures through the logger; the
// Context variants return them.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the journal database at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing journal schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logging.OrNop(logger)}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LogContext records an entry, assigning an ID and timestamp when missing.
func (s *SQLiteStore) LogContext(ctx context.Context, e *Entry) error {
	if e == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	headers, err := json.Marshal(e.Headers)
	if err != nil {
		return fmt.Errorf("encoding headers: %w", err)
	}
	cookies, err := json.Marshal(e.Cookies)
	if err != nil {
		return fmt.Errorf("encoding cookies: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UnixNano(), e.Method, e.URL, string(headers), string(cookies),
		e.Body, e.BodySize, e.RemoteAddr, e.MatchedStubID)
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", e.ID, err)
	}
	return nil
}

// Log records an entry.
func (s *SQLiteStore) Log(e *Entry) {
	if err := s.LogContext(context.Background(), e); err != nil {
		s.logger.Error("failed to persist request", "error", err)
	}
}

// GetContext retrieves an entry by ID, or nil when there is none.
func (s *SQLiteStore) GetContext(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// Get retrieves an entry by ID.
func (s *SQLiteStore) Get(id string) *Entry {
	e, err := s.GetContext(context.Background(), id)
	if err != nil {
		s.logger.Error("failed to read request", "id", id, "error", err)
	}
	return e
}

// ListContext returns entries newest first, optionally filtered.
func (s *SQLiteStore) ListContext(ctx context.Context, filter *Filter) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []*Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if filter == nil || filter.matches(e) {
			result = append(result, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return paginate(result, filter), nil
}

// List returns entries newest first.
func (s *SQLiteStore) List(filter *Filter) []*Entry {
	entries, err := s.ListContext(context.Background(), filter)
	if err != nil {
		s.logger.Error("failed to list requests", "error", err)
		return []*Entry{}
	}
	return entries
}

// Clear removes all entries.
func (s *SQLiteStore) Clear() {
	if _, err := s.db.Exec(`DELETE FROM entries`); err != nil {
		s.logger.Error("failed to clear journal", "error", err)
	}
}

// Count returns the number of entries.
func (s *SQLiteStore) Count() int {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		s.logger.Error("failed to count requests", "error", err)
		return 0
	}
	return n
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		e       Entry
		ts      int64
		headers string
		cookies string
	)
	err := row.Scan(&e.ID, &ts, &e.Method, &e.URL, &headers, &cookies,
		&e.Body, &e.BodySize, &e.RemoteAddr, &e.MatchedStubID)
	if err != nil {
		return nil, err
	}
	e.Timestamp = time.Unix(0, ts)
	if err := json.Unmarshal([]byte(headers), &e.Headers); err != nil {
		return nil, fmt.Errorf("decoding headers of entry %s: %w", e.ID, err)
	}
	if err := json.Unmarshal([]byte(cookies), &e.Cookies); err != nil {
		return nil, fmt.Errorf("decoding cookies of entry %s: %w", e.ID, err)
	}
	return &e, nil
}
