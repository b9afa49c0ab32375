package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
)

// SessionRepository persists whole interview sessions. Every backend stores
// the session as one JSON document next to a few indexed columns.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *entity.Session) error
	GetSessionByID(ctx context.Context, id string) (*entity.Session, error)
	// UpdateSession fails with entity.ErrConcurrentUpdate when the stored
	// version differs from session.Version, and advances it on success.
	UpdateSession(ctx context.Context, session *entity.Session) error
	DeleteSession(ctx context.Context, id string) error
}

func encodeSession(session *entity.Session) ([]byte, error) {
	doc, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return doc, nil
}

// encodeVersioned encodes session as it will look once stored at version.
func encodeVersioned(session *entity.Session, version int64) ([]byte, error) {
	stored := *session
	stored.Version = version
	return encodeSession(&stored)
}

func decodeSession(doc []byte) (*entity.Session, error) {
	var session entity.Session
	if err := json.Unmarshal(doc, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.ConflictChecked == nil {
		session.ConflictChecked = make(map[int]bool)
	}
	return &session, nil
}

// parseSessionID rejects ids that can never exist in storage.
func parseSessionID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", entity.ErrSessionNotFound, id)
	}
	return parsed, nil
}
