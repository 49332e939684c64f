package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type RedisStoreTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	store  *RedisStore
}

func (s *RedisStoreTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})

	store, err := NewRedisStore(context.Background(), s.client, 5*time.Minute, zerolog.Nop())
	s.Require().NoError(err)
	s.store = store
}

func (s *RedisStoreTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisStoreTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}

func (s *RedisStoreTestSuite) newSession(ttl time.Duration) *Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &Session{
		ID:              NewID(),
		CreatedAt:       now,
		LastAccess:      now,
		ExpiresAt:       now.Add(ttl),
		ProtocolVersion: "2025-06-18",
		Client:          ClientInfo{Name: "demo", Version: "1.0.0"},
	}
}

func (s *RedisStoreTestSuite) TestSetAndGet() {
	ctx := context.Background()
	session := s.newSession(time.Hour)

	s.Require().NoError(s.store.Set(ctx, session))
	s.True(s.mr.Exists(redisKeyPrefix + session.ID))
	s.Greater(s.mr.TTL(redisKeyPrefix+session.ID), 50*time.Minute)

	got, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ID, got.ID)
	s.Equal("demo", got.Client.Name)
	s.True(session.ExpiresAt.Equal(got.ExpiresAt))
}

func (s *RedisStoreTestSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), NewID())
	s.ErrorIs(err, ErrNotFound)
}

func (s *RedisStoreTestSuite) TestKeysOutliveSessionByGrace() {
	ctx := context.Background()
	session := s.newSession(time.Minute)
	s.Require().NoError(s.store.Set(ctx, session))

	s.mr.FastForward(2 * time.Minute)
	got, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.True(got.IsExpired(time.Now().Add(2 * time.Minute)))

	s.mr.FastForward(5 * time.Minute)
	_, err = s.store.Get(ctx, session.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RedisStoreTestSuite) TestUpdate() {
	ctx := context.Background()
	session := s.newSession(time.Hour)

	s.ErrorIs(s.store.Update(ctx, session), ErrNotFound)
	s.False(s.mr.Exists(redisKeyPrefix+session.ID), "update must not create a session")

	s.Require().NoError(s.store.Set(ctx, session))
	session.ProtocolVersion = "2025-03-26"
	s.Require().NoError(s.store.Update(ctx, session))

	got, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal("2025-03-26", got.ProtocolVersion)
}

func (s *RedisStoreTestSuite) TestDeleteAndList() {
	ctx := context.Background()
	a, b := s.newSession(time.Hour), s.newSession(time.Hour)
	s.Require().NoError(s.store.Set(ctx, a))
	s.Require().NoError(s.store.Set(ctx, b))
	s.Require().NoError(s.client.Set(ctx, "unrelated", "x", 0).Err())

	sessions, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(sessions, 2)

	s.Require().NoError(s.store.Delete(ctx, a.ID))
	s.ErrorIs(s.store.Delete(ctx, a.ID), ErrNotFound)

	sessions, err = s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(b.ID, sessions[0].ID)
}

func (s *RedisStoreTestSuite) TestManagerOverRedis() {
	ctx := context.Background()
	m := NewManager(s.store, time.Hour, nil, zerolog.Nop())

	created, err := m.Create(ctx, "2025-03-26", ClientInfo{Name: "demo"})
	s.Require().NoError(err)

	got, err := m.Validate(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("2025-03-26", got.ProtocolVersion)

	s.Require().NoError(m.Delete(ctx, created.ID))
	s.False(s.mr.Exists(redisKeyPrefix + created.ID))
}

func (s *RedisStoreTestSuite) TestManagerReportsExpiry() {
	ctx := context.Background()
	rec := &recorder{}
	clk := &clock{t: time.Now()}
	m := NewManager(s.store, time.Minute, rec, zerolog.Nop())
	m.now = clk.now

	validated, err := m.Create(ctx, "2025-06-18", ClientInfo{})
	s.Require().NoError(err)
	swept, err := m.Create(ctx, "2025-06-18", ClientInfo{})
	s.Require().NoError(err)

	s.mr.FastForward(2 * time.Minute)
	clk.advance(2 * time.Minute)

	_, err = m.Validate(ctx, validated.ID)
	s.ErrorIs(err, ErrExpired)

	removed, err := m.CleanupExpired(ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	s.False(s.mr.Exists(redisKeyPrefix + validated.ID))
	s.False(s.mr.Exists(redisKeyPrefix + swept.ID))
	s.Equal(2, rec.created)
	s.Equal([]string{ReasonExpired, ReasonExpired}, rec.ended)
}
