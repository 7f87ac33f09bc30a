package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"geniustrading/models"
	"geniustrading/storage"

	redis "github.com/redis/go-redis/v9"
)

// Store persists sessions. Get returns storage.ErrNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Touch(ctx context.Context, id string, lastSeen, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// DBStore keeps sessions in the sessions table; expired rows are purged by
// the cleanup job.
type DBStore struct {
	db storage.Sessions
}

func NewDBStore(db storage.Sessions) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Create(ctx context.Context, sess *models.Session) error {
	return s.db.CreateSession(ctx, sess)
}

func (s *DBStore) Get(ctx context.Context, id string) (*models.Session, error) {
	return s.db.GetSession(ctx, id)
}

func (s *DBStore) Touch(ctx context.Context, id string, lastSeen, expiresAt time.Time) error {
	return s.db.TouchSession(ctx, id, lastSeen, expiresAt)
}

func (s *DBStore) Delete(ctx context.Context, id string) error {
	return s.db.DeleteSession(ctx, id)
}

// RedisStore keeps sessions as JSON values whose TTL tracks ExpiresAt.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "session:"}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) put(ctx context.Context, sess *models.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sess.ID), b, ttl).Err()
}

func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	return s.put(ctx, sess)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Touch(ctx context.Context, id string, lastSeen, expiresAt time.Time) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.LastSeenAt = lastSeen
	sess.ExpiresAt = expiresAt
	return s.put(ctx, sess)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
