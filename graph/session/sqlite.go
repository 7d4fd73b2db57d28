package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists sessions in a single-file SQLite database. Suited
// for single-process deployments and local development; use MySQLStore
// when several service instances share sessions.
//
// The store auto-migrates its schema and runs in WAL mode so reads do not
// block the writer.
//
// Example:
//
//	store, err := session.NewSQLiteStore[career.State]("./sessions.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
type SQLiteStore[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string

	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path. Use
// ":memory:" for an ephemeral store in tests.
func NewSQLiteStore[S any](path string) (*SQLiteStore[S], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite supports one writer; keep a single connection so the
	// in-memory variant sees a single database too.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	store := &SQLiteStore[S]{db: db, path: path, now: time.Now}
	if err := store.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore[S]) createTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT NOT NULL PRIMARY KEY,
			state TEXT NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at)"); err != nil {
		return fmt.Errorf("create expiry index: %w", err)
	}
	return nil
}

// Save implements Store.
func (s *SQLiteStore[S]) Save(ctx context.Context, id string, state S, ttl time.Duration) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixMilli()
	}
	query := `
		INSERT INTO sessions (session_id, state, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			state = excluded.state,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, id, string(raw), expiresAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load implements Store. Expired rows are deleted on the way out.
func (s *SQLiteStore[S]) Load(ctx context.Context, id string) (S, error) {
	var zero S
	if err := s.checkOpen(); err != nil {
		return zero, err
	}

	var (
		raw       string
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT state, expires_at FROM sessions WHERE session_id = ?", id,
	).Scan(&raw, &expiresAt)
	if err == sql.ErrNoRows {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("load session: %w", err)
	}

	if expiresAt > 0 && s.now().UnixMilli() > expiresAt {
		_, _ = s.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", id)
		return zero, ErrNotFound
	}

	var state S
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return zero, fmt.Errorf("unmarshal session state: %w", err)
	}
	return state, nil
}

// Delete implements Store.
func (s *SQLiteStore[S]) Delete(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Sweep removes every expired session and returns the number dropped.
// Intended to be called periodically by the owning service.
func (s *SQLiteStore[S]) Sweep(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at > 0 AND expires_at < ?",
		s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore[S]) Ping(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

// Path returns the database file path.
func (s *SQLiteStore[S]) Path() string {
	return s.path
}

// Close closes the database. Double-close is a no-op.
func (s *SQLiteStore[S]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLiteStore[S]) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("session store is closed")
	}
	return nil
}
