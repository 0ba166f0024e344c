package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config locates the Redis instance shared by sessions, drafts, collection
// caches and the job queue.
type Config struct {
	Addr     string
	Password string
	DB       int
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}
}

// AsynqOpt returns the connection options for the job queue so the worker
// and the web process always point at the same database.
func (c Config) AsynqOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.Addr, Password: c.Password, DB: c.DB}
}

// New creates a Redis client and fails when the server does not answer a ping.
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(cfg.options())
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Ping checks connectivity with a bounded timeout.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	if client == nil {
		return fmt.Errorf("platform/cache: client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("platform/cache: ping: %w", err)
	}
	return nil
}

// HealthCheck adapts Ping to the readiness probe signature.
func HealthCheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		return Ping(ctx, client)
	}
}
