package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ivyresort/internal/config"
	"ivyresort/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisMirrorRepository stores the shared reservation snapshot as a JSON
// blob and announces every update on a pub/sub channel so other
// processes pick it up without waiting out the poll interval.
type RedisMirrorRepository struct {
	client  *redis.Client
	key     string
	channel string
}

// NewRedisClient builds a client from config settings.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisMirrorRepository(client *redis.Client, key, channel string) *RedisMirrorRepository {
	return &RedisMirrorRepository{client: client, key: key, channel: channel}
}

func (r *RedisMirrorRepository) GetSnapshot(ctx context.Context) ([]*models.Reservation, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot from redis: %w", err)
	}

	var reservations []*models.Reservation
	if err := json.Unmarshal([]byte(val), &reservations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return reservations, nil
}

func (r *RedisMirrorRepository) SetSnapshot(ctx context.Context, reservations []*models.Reservation) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(reservations)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot in redis: %w", err)
	}
	return nil
}

func (r *RedisMirrorRepository) Announce(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	payload := fmt.Sprintf(`{"updated_at":%q}`, time.Now().UTC().Format(time.RFC3339Nano))
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to announce snapshot update: %w", err)
	}
	return nil
}

// Subscribe returns the raw pub/sub subscription for the announcement
// channel. Callers own closing it.
func (r *RedisMirrorRepository) Subscribe(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, r.channel)
}

// Ping verifies the redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
