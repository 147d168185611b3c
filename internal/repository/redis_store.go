package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/storefront-client/internal/port"
	"github.com/redis/go-redis/v9"
)

var errValueChanged = errors.New("value changed")

type redisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedis keeps every key under "<namespace>:" so several browser profiles
// or users can share one server.
func NewRedis(client *redis.Client, namespace string) (port.Store, error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if namespace == "" {
		return nil, fmt.Errorf("namespace is empty")
	}

	return &redisStore{
		client:    client,
		namespace: namespace,
	}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is empty")
	}

	value, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}

	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if err := s.client.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

// CompareAndSwap uses WATCH/MULTI: EXEC aborts if another client touched the
// key between the read and the write.
func (s *redisStore) CompareAndSwap(ctx context.Context, key string, old, next *string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key is empty")
	}

	rkey := s.redisKey(key)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, rkey).Result()
		present := true
		if errors.Is(err, redis.Nil) {
			present = false
		} else if err != nil {
			return fmt.Errorf("redis get failed: %w", err)
		}

		if !matches(current, present, old) {
			return errValueChanged
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, rkey)
			} else {
				pipe.Set(ctx, rkey, *next, 0)
			}
			return nil
		})
		return err
	}, rkey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errValueChanged), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("redis watch failed: %w", err)
	}
}

func (s *redisStore) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", s.namespace, key)
}
