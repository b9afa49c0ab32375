package repository

import (
	"context"
	"errors"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"go.uber.org/zap"
)

// SessionCache is a best-effort read-through cache. Failures are logged and
// reported as misses; storage stays the source of truth.
type SessionCache interface {
	Get(ctx context.Context, id string) (*entity.Session, bool)
	Set(ctx context.Context, session *entity.Session)
	Delete(ctx context.Context, id string)
}

var (
	_ SessionCache = &SessionMemoryCache{}
	_ SessionCache = &SessionRedisCache{}
)

// SessionMemoryCache keeps encoded sessions in process memory. Values are
// stored as JSON so callers never share a *Session with the cache.
type SessionMemoryCache struct {
	store *cache.Cache
}

func NewSessionMemoryCache(ttl, cleanupInterval time.Duration) *SessionMemoryCache {
	return &SessionMemoryCache{
		store: cache.New(ttl, cleanupInterval),
	}
}

func (c *SessionMemoryCache) Get(ctx context.Context, id string) (*entity.Session, bool) {
	raw, ok := c.store.Get(id)
	if !ok {
		return nil, false
	}
	doc, ok := raw.([]byte)
	if !ok {
		c.store.Delete(id)
		return nil, false
	}

	session, err := decodeSession(doc)
	if err != nil {
		ctxzap.Warn(ctx, "dropping undecodable cached session", zap.String("session_id", id), zap.Error(err))
		c.store.Delete(id)
		return nil, false
	}
	return session, true
}

func (c *SessionMemoryCache) Set(ctx context.Context, session *entity.Session) {
	doc, err := encodeSession(session)
	if err != nil {
		ctxzap.Warn(ctx, "session not cached", zap.String("session_id", session.ID), zap.Error(err))
		return
	}
	c.store.Set(session.ID, doc, cache.DefaultExpiration)
}

func (c *SessionMemoryCache) Delete(_ context.Context, id string) {
	c.store.Delete(id)
}

const redisKeyPrefix = "session:"

// SessionRedisCache shares cached sessions between API replicas. A stale
// entry is caught by the version check of the next update, which evicts it.
type SessionRedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRedisCache(client *redis.Client, ttl time.Duration) *SessionRedisCache {
	return &SessionRedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *SessionRedisCache) Get(ctx context.Context, id string) (*entity.Session, bool) {
	doc, err := c.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		ctxzap.Warn(ctx, "redis cache read failed", zap.String("session_id", id), zap.Error(err))
		return nil, false
	}

	session, err := decodeSession(doc)
	if err != nil {
		ctxzap.Warn(ctx, "dropping undecodable cached session", zap.String("session_id", id), zap.Error(err))
		c.Delete(ctx, id)
		return nil, false
	}
	return session, true
}

func (c *SessionRedisCache) Set(ctx context.Context, session *entity.Session) {
	doc, err := encodeSession(session)
	if err != nil {
		ctxzap.Warn(ctx, "session not cached", zap.String("session_id", session.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+session.ID, doc, c.ttl).Err(); err != nil {
		ctxzap.Warn(ctx, "redis cache write failed", zap.String("session_id", session.ID), zap.Error(err))
	}
}

func (c *SessionRedisCache) Delete(ctx context.Context, id string) {
	if err := c.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		ctxzap.Warn(ctx, "redis cache delete failed", zap.String("session_id", id), zap.Error(err))
	}
}

var _ SessionRepository = &CachedSessionRepository{}

// CachedSessionRepository puts a SessionCache in front of a repository.
// Writes go to storage first and refresh the cache only on success.
type CachedSessionRepository struct {
	repo  SessionRepository
	cache SessionCache
}

func NewCachedSessionRepository(repo SessionRepository, c SessionCache) *CachedSessionRepository {
	return &CachedSessionRepository{
		repo:  repo,
		cache: c,
	}
}

func (r *CachedSessionRepository) CreateSession(ctx context.Context, session *entity.Session) error {
	if err := r.repo.CreateSession(ctx, session); err != nil {
		return err
	}
	r.cache.Set(ctx, session)
	return nil
}

func (r *CachedSessionRepository) GetSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	if session, ok := r.cache.Get(ctx, id); ok {
		return session, nil
	}

	session, err := r.repo.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, session)
	return session, nil
}

func (r *CachedSessionRepository) UpdateSession(ctx context.Context, session *entity.Session) error {
	if err := r.repo.UpdateSession(ctx, session); err != nil {
		r.cache.Delete(ctx, session.ID)
		return err
	}
	r.cache.Set(ctx, session)
	return nil
}

func (r *CachedSessionRepository) DeleteSession(ctx context.Context, id string) error {
	r.cache.Delete(ctx, id)
	return r.repo.DeleteSession(ctx, id)
}
