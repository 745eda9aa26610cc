package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/storage"
)

// Storage is a Redis-backed session store. All keys of one session share a TTL
// so an abandoned session disappears on its own.
type Storage struct {
	client    *redis.Client
	cfg       Config
	sessionID string
}

// New connects to Redis and returns a store for cfg.SessionID
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a store over an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Storage{
		client:    client,
		cfg:       cfg,
		sessionID: sessionID,
	}
}

// SessionID returns the namespace this store writes under
func (s *Storage) SessionID() string {
	return s.sessionID
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.SessionStore = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context, key storage.Key) (string, error) {
	v, err := s.client.Get(ctx, valueKey(s.sessionID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrKeyNotFound
		}
		return "", err
	}
	return v, nil
}

func (s *Storage) Set(ctx context.Context, key storage.Key, value string) error {
	vKey := valueKey(s.sessionID, key)
	idx := indexKey(s.sessionID)

	// Value and index in one round trip; the index TTL tracks the newest write
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, vKey, value, s.cfg.SessionTTL)
	pipe.SAdd(ctx, idx, vKey)
	if s.cfg.SessionTTL > 0 {
		pipe.Expire(ctx, idx, s.cfg.SessionTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) Delete(ctx context.Context, key storage.Key) error {
	vKey := valueKey(s.sessionID, key)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, vKey)
	pipe.SRem(ctx, indexKey(s.sessionID), vKey)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) Clear(ctx context.Context) error {
	idx := indexKey(s.sessionID)

	keys, err := s.client.SMembers(ctx, idx).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, k := range keys {
		pipe.Del(ctx, k)
	}
	pipe.Del(ctx, idx)
	_, err = pipe.Exec(ctx)
	return err
}
