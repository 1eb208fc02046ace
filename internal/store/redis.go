package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "voxdemo"

// RedisStore keeps records in Redis. Each record is a JSON string under
// <prefix>:sample:<id>; <prefix>:samples lists ids in insertion order.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix. Default is "voxdemo".
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore returns a store backed by client.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenRedis connects to the Redis server at url and checks it responds.
func OpenRedis(ctx context.Context, url string, opts ...RedisOption) (*RedisStore, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(client, opts...), nil
}

func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	ids, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange failed: %w", err)
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.sampleKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget failed: %w", err)
	}

	records := make([]Record, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // listed id whose record is gone
		}
		var r Record
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sample: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *RedisStore) FindByLanguage(ctx context.Context, code string) (Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return Record{}, err
	}
	return matchLanguage(records, code)
}

func (s *RedisStore) Create(ctx context.Context, r Record) (Record, error) {
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	r.ID = uuid.NewString()

	data, err := json.Marshal(r)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal sample: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sampleKey(r.ID), data, 0)
		pipe.RPush(ctx, s.indexKey(), r.ID)
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("redis pipeline failed: %w", err)
	}
	return r, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}

	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.sampleKey(id))
		pipe.LRem(ctx, s.indexKey(), 0, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis llen failed: %w", err)
	}
	return int(n), nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) sampleKey(id string) string {
	return s.prefix + ":sample:" + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":samples"
}
