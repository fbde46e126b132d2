package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisStorageTestSuite struct {
	suite.Suite
	client  *redis.Client
	storage *RedisStorage
}

func (s *RedisStorageTestSuite) SetupSuite() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	s.client = redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 500 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.T().Skipf("Redis not available at %s: %v", addr, err)
	}
}

func (s *RedisStorageTestSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func (s *RedisStorageTestSuite) SetupTest() {
	s.storage = NewRedisStorage(s.client, "lifeops:test:"+uuid.NewString()+":")
}

func (s *RedisStorageTestSuite) TearDownTest() {
	_ = s.storage.Reset()
}

func (s *RedisStorageTestSuite) TestSetGetDelete() {
	require.NoError(s.T(), s.storage.Set("k", []byte("v"), time.Minute))

	val, err := s.storage.Get("k")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []byte("v"), val)

	require.NoError(s.T(), s.storage.Delete("k"))
	val, err = s.storage.Get("k")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), val)
}

func (s *RedisStorageTestSuite) TestReset() {
	require.NoError(s.T(), s.storage.Set("a", []byte("1"), 0))
	require.NoError(s.T(), s.storage.Set("b", []byte("2"), 0))
	require.NoError(s.T(), s.storage.Reset())

	val, err := s.storage.Get("a")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), val)
}

func TestRedisStorageTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStorageTestSuite))
}

func TestRedisStorage_EmptyKeyIsNoop(t *testing.T) {
	storage := NewRedisStorage(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "x:")
	val, err := storage.Get("")
	assert.NoError(t, err)
	assert.Nil(t, val)
	assert.NoError(t, storage.Set("", []byte("v"), 0))
	assert.NoError(t, storage.Delete(""))
	assert.NoError(t, storage.Close())
}
