package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	_ "modernc.org/sqlite"
)

var _ SessionRepository = &SessionSQLite{}

// SessionSQLite implements SessionRepository on an embedded SQLite file.
// It is meant for local runs and single-node deployments.
type SessionSQLite struct {
	db *sql.DB
}

// NewSessionSQLite opens (and creates if needed) the database at dbPath.
func NewSessionSQLite(dbPath string) (*SessionSQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SessionSQLite{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (r *SessionSQLite) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS coaching_sessions (
		id TEXT PRIMARY KEY,
		parent_id TEXT NULL REFERENCES coaching_sessions(id) ON DELETE SET NULL,
		status TEXT NOT NULL,
		document TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_coaching_sessions_parent ON coaching_sessions(parent_id);
	CREATE INDEX IF NOT EXISTS idx_coaching_sessions_updated ON coaching_sessions(updated_at);
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (r *SessionSQLite) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SessionSQLite) Close() error {
	return r.db.Close()
}

func (r *SessionSQLite) CreateSession(ctx context.Context, session *entity.Session) error {
	if _, err := parseSessionID(session.ID); err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	doc, err := encodeSession(session)
	if err != nil {
		return err
	}

	var parentID any
	if session.ParentID != nil {
		parentID = *session.ParentID
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO coaching_sessions (id, parent_id, status, document, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, parentID, string(session.Status), string(doc), session.Version,
		session.CreatedAt.UnixMilli(), session.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionSQLite) GetSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	if _, err := parseSessionID(id); err != nil {
		return nil, err
	}

	var (
		doc     string
		version int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT document, version FROM coaching_sessions WHERE id = ?`, id).Scan(&doc, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	session, err := decodeSession([]byte(doc))
	if err != nil {
		return nil, err
	}
	session.Version = version
	return session, nil
}

func (r *SessionSQLite) UpdateSession(ctx context.Context, session *entity.Session) error {
	expected := session.Version
	doc, err := encodeVersioned(session, expected+1)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE coaching_sessions SET status = ?, document = ?, updated_at = ?, version = ?
		WHERE id = ? AND version = ?`,
		string(session.Status), string(doc), session.UpdatedAt.UnixMilli(), expected+1,
		session.ID, expected,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var exists bool
		err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM coaching_sessions WHERE id = ?)`, session.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check session: %w", err)
		}
		if exists {
			return entity.ErrConcurrentUpdate
		}
		return entity.ErrSessionNotFound
	}

	session.Version = expected + 1
	return nil
}

func (r *SessionSQLite) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coaching_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return entity.ErrSessionNotFound
	}
	return nil
}
