package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rounit002/demohavenn/internal/domain/library"
)

const keyPrefix = "session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) (Store, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisStore{client: client, ttl: ttl}, nil
}

func (s *redisStore) Get(ctx context.Context, token string) (library.Principal, error) {
	if token == "" {
		return library.Principal{}, nil
	}
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return library.Principal{}, nil
		}
		return library.Principal{}, fmt.Errorf("read session: %w", err)
	}
	var principal library.Principal
	if err := json.Unmarshal(payload, &principal); err != nil {
		return library.Principal{}, fmt.Errorf("decode session: %w", err)
	}
	return principal, nil
}

func (s *redisStore) Set(ctx context.Context, token string, principal library.Principal) error {
	if token == "" {
		return errEmptyToken
	}
	payload, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *redisStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
