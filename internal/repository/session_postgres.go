package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
)

var _ SessionRepository = &SessionPostgres{}

// SessionPostgres implements SessionRepository using PostgreSQL
type SessionPostgres struct {
	db *pgxpool.Pool
}

func NewSessionPostgres(db *pgxpool.Pool) *SessionPostgres {
	return &SessionPostgres{
		db: db,
	}
}

const (
	insertSessionQuery = `
		INSERT INTO coaching_sessions (id, parent_id, status, document, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectSessionQuery = `SELECT document, version FROM coaching_sessions WHERE id = $1`

	updateSessionQuery = `
		UPDATE coaching_sessions
		SET status = $2, document = $3, updated_at = $4, version = $5
		WHERE id = $1 AND version = $6`

	sessionExistsQuery = `SELECT EXISTS (SELECT 1 FROM coaching_sessions WHERE id = $1)`

	deleteSessionQuery = `DELETE FROM coaching_sessions WHERE id = $1`
)

func (r *SessionPostgres) CreateSession(ctx context.Context, session *entity.Session) error {
	sessionID, err := parseSessionID(session.ID)
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	parentID := pgtype.UUID{}
	if session.ParentID != nil {
		parent, err := parseSessionID(*session.ParentID)
		if err != nil {
			return fmt.Errorf("invalid parent ID: %w", err)
		}
		parentID = pgtype.UUID{Bytes: parent, Valid: true}
	}

	doc, err := encodeSession(session)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, insertSessionQuery,
		pgtype.UUID{Bytes: sessionID, Valid: true},
		parentID,
		string(session.Status),
		doc,
		session.Version,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *SessionPostgres) GetSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	sessionID, err := parseSessionID(id)
	if err != nil {
		return nil, err
	}

	var (
		doc     []byte
		version int64
	)
	err = r.db.QueryRow(ctx, selectSessionQuery, pgtype.UUID{Bytes: sessionID, Valid: true}).Scan(&doc, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	session, err := decodeSession(doc)
	if err != nil {
		return nil, err
	}
	session.Version = version
	return session, nil
}

// UpdateSession stores session only if nobody stored a newer version since
// it was loaded. On success session.Version is advanced.
func (r *SessionPostgres) UpdateSession(ctx context.Context, session *entity.Session) error {
	sessionID, err := parseSessionID(session.ID)
	if err != nil {
		return err
	}
	id := pgtype.UUID{Bytes: sessionID, Valid: true}

	expected := session.Version
	doc, err := encodeVersioned(session, expected+1)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, updateSessionQuery,
		id,
		string(session.Status),
		doc,
		session.UpdatedAt,
		expected+1,
		expected,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, sessionExistsQuery, id).Scan(&exists); err != nil {
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

func (r *SessionPostgres) DeleteSession(ctx context.Context, id string) error {
	sessionID, err := parseSessionID(id)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, deleteSessionQuery, pgtype.UUID{Bytes: sessionID, Valid: true})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrSessionNotFound
	}

	return nil
}
