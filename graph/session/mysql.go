package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore persists sessions in MySQL so multiple service instances can
// share them. Schema is auto-migrated on first use.
//
// The DSN follows go-sql-driver conventions, e.g.
// "user:pass@tcp(db:3306)/careersim?parseTime=true".
type MySQLStore[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool

	now func() time.Time
}

// NewMySQLStore connects to MySQL and ensures the sessions table exists.
func NewMySQLStore[S any](dsn string) (*MySQLStore[S], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	store := &MySQLStore[S]{db: db, now: time.Now}
	if err := store.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (m *MySQLStore[S]) createTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id VARCHAR(64) NOT NULL PRIMARY KEY,
			state MEDIUMTEXT NOT NULL,
			expires_at BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_sessions_expires (expires_at)
		)
	`
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

// Save implements Store.
func (m *MySQLStore[S]) Save(ctx context.Context, id string, state S, ttl time.Duration) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = m.now().Add(ttl).UnixMilli()
	}
	query := `
		INSERT INTO sessions (session_id, state, expires_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			state = VALUES(state),
			expires_at = VALUES(expires_at)
	`
	if _, err := m.db.ExecContext(ctx, query, id, string(raw), expiresAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load implements Store. Expired rows are deleted on the way out.
func (m *MySQLStore[S]) Load(ctx context.Context, id string) (S, error) {
	var zero S
	if err := m.checkOpen(); err != nil {
		return zero, err
	}

	var (
		raw       string
		expiresAt int64
	)
	err := m.db.QueryRowContext(ctx,
		"SELECT state, expires_at FROM sessions WHERE session_id = ?", id,
	).Scan(&raw, &expiresAt)
	if err == sql.ErrNoRows {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("load session: %w", err)
	}

	if expiresAt > 0 && m.now().UnixMilli() > expiresAt {
		_, _ = m.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", id)
		return zero, ErrNotFound
	}

	var state S
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return zero, fmt.Errorf("unmarshal session state: %w", err)
	}
	return state, nil
}

// Delete implements Store.
func (m *MySQLStore[S]) Delete(ctx context.Context, id string) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	if _, err := m.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Sweep removes every expired session and returns the number dropped.
func (m *MySQLStore[S]) Sweep(ctx context.Context) (int, error) {
	if err := m.checkOpen(); err != nil {
		return 0, err
	}
	res, err := m.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at > 0 AND expires_at < ?",
		m.now().UnixMilli())
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
func (m *MySQLStore[S]) Ping(ctx context.Context) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	return m.db.PingContext(ctx)
}

// Close closes the connection pool. Double-close is a no-op.
func (m *MySQLStore[S]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}

func (m *MySQLStore[S]) checkOpen() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("session store is closed")
	}
	return nil
}
