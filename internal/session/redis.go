package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisKeyPrefix = "mcp:session:"

// DefaultRedisGrace is how long a key outlives its session's expiry, so the
// janitor and Validate still see the session and report it as expired.
const DefaultRedisGrace = 10 * time.Minute

// RedisStore implements Store on Redis so sessions survive restarts and can
// be shared between replicas. Keys expire a grace period after their session.
type RedisStore struct {
	client *redis.Client
	grace  time.Duration
	logger zerolog.Logger
}

// NewRedisStore checks connectivity and returns a RedisStore. A zero grace
// selects DefaultRedisGrace.
func NewRedisStore(ctx context.Context, client *redis.Client, grace time.Duration, logger zerolog.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	if grace <= 0 {
		grace = DefaultRedisGrace
	}
	return &RedisStore{
		client: client,
		grace:  grace,
		logger: logger.With().Str("component", "redis_store").Logger(),
	}, nil
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) encode(session *Session) ([]byte, time.Duration, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, 0, storageError("marshal", err)
	}
	ttl := time.Until(session.ExpiresAt) + s.grace
	if ttl <= 0 {
		ttl = time.Second
	}
	return data, ttl, nil
}

func (s *RedisStore) Set(ctx context.Context, session *Session) error {
	data, ttl, err := s.encode(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(session.ID), data, ttl).Err(); err != nil {
		return storageError("set", err)
	}
	return nil
}

// Update rewrites the key with SET XX so a deleted session stays deleted.
func (s *RedisStore) Update(ctx context.Context, session *Session) error {
	data, ttl, err := s.encode(session)
	if err != nil {
		return err
	}
	ok, err := s.client.SetXX(ctx, redisKey(session.ID), data, ttl).Result()
	if err != nil {
		return storageError("update", err)
	}
	if !ok {
		return notFound(session.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(id)
		}
		return nil, storageError("get", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, storageError("unmarshal", err)
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return storageError("delete", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// List scans every session key. Keys that vanish mid-scan are skipped.
func (s *RedisStore) List(ctx context.Context) ([]*Session, error) {
	var out []*Session
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(redisKeyPrefix):]
		session, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	if err := iter.Err(); err != nil {
		return nil, storageError("scan", err)
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
