package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

const redisKeyPrefix = "billed:draft:"

// RedisConfig holds the redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore is a DraftStore shared by every server instance
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisClient creates a redis client from cfg
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisStore creates a RedisStore on client
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load returns the pending file of id, or nil when absent
func (s *RedisStore) Load(ctx context.Context, id string) (*entity.PendingFile, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var pending entity.PendingFile
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &pending, nil
}

// Save stores pending as JSON with the given expiration
func (s *RedisStore) Save(ctx context.Context, id string, pending *entity.PendingFile, ttl time.Duration) error {
	if pending == nil {
		return s.Delete(ctx, id)
	}

	raw, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, redisKeyPrefix+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Delete removes the pending file of id
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ port.DraftStore = (*RedisStore)(nil)
