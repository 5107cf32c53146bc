// Package cache keeps recent detections so a repeated upload of the same
// photo skips OCR and contour extraction.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"picklist/models"
)

// Cache stores detections by key. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*models.Detection, error)
	Set(ctx context.Context, key string, d *models.Detection) error
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (*models.Detection, error) { return nil, nil }
func (Noop) Set(context.Context, string, *models.Detection) error   { return nil }

const keyPrefix = "picklist:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis is a TTL-bound detection cache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Redis{client: client, ttl: cfg.TTL}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (*models.Detection, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var d models.Detection
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode cached detection %s: %w", key, err)
	}
	return &d, nil
}

func (r *Redis) Set(ctx context.Context, key string, d *models.Detection) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+key, data, r.ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
