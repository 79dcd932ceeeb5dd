package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/EcommerceGo/storefront/internal/tokenstore"
)

const keyPrefix = "storefront:session:"

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Key is the well-known key under keyPrefix; defaults to tokenstore.DefaultKey.
	Key string
	// TTL expires the mirror after the given duration; zero keeps it until cleared.
	TTL time.Duration
}

// NewClient creates a Redis client and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Store implements tokenstore.Store using a single Redis string key.
type Store struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// New creates a Redis-backed token store.
func New(client *redis.Client, key string, ttl time.Duration) *Store {
	if key == "" {
		key = tokenstore.DefaultKey
	}
	return &Store{
		client: client,
		key:    keyPrefix + key,
		ttl:    ttl,
	}
}

// Key returns the full Redis key used for the token.
func (s *Store) Key() string {
	return s.key
}

// Load retrieves the token from Redis.
func (s *Store) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", tokenstore.ErrNoToken
		}
		return "", fmt.Errorf("redis get token: %w", err)
	}
	if token == "" {
		return "", tokenstore.ErrNoToken
	}
	return token, nil
}

// Save persists the token with the configured TTL.
func (s *Store) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// Clear deletes the token key.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}
