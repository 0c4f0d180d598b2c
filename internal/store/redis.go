package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, so several deployments can share a server.
	Prefix string
}

// Redis keeps device state in a Redis server.
type Redis struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

var _ KV = (*Redis)(nil)

// NewRedis connects and pings the server before returning.
func NewRedis(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	dialCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()

	if err := client.Ping(dialCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis (ping failed): %w", err)
	}

	if logger != nil {
		logger.Info("Redis connection established", "addr", opts.Addr, "db", opts.DB)
	}

	return NewRedisFromClient(client, opts.Prefix, logger), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string, logger *slog.Logger) *Redis {
	return &Redis{client: client, prefix: prefix, logger: logger}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// Get implements KV.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if errors.Is(err, redis.ErrClosed) {
		err = ErrClosed
	}
	if err != nil {
		return nil, opError("get", key, err)
	}
	return val, nil
}

// Set implements KV. Device state never expires.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	err := r.client.Set(ctx, r.key(key), value, 0).Err()
	if errors.Is(err, redis.ErrClosed) {
		err = ErrClosed
	}
	return opError("set", key, err)
}

// Delete implements KV.
func (r *Redis) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, r.key(key)).Err()
	if errors.Is(err, redis.ErrClosed) {
		err = ErrClosed
	}
	return opError("delete", key, err)
}

// Close implements KV.
func (r *Redis) Close() error {
	if r.logger != nil {
		r.logger.Info("Closing redis connection")
	}
	return r.client.Close()
}
