package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	platformredis "github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/redis"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/models"
)

// RedisView shares the status view across instances via Redis.
type RedisView struct {
	client *platformredis.Client
}

// NewRedis wraps the platform Redis client as a StatusView.
func NewRedis(client *platformredis.Client) *RedisView {
	return &RedisView{client: client}
}

func key(requestID uuid.UUID) string {
	return "request:status:" + requestID.String()
}

func (v *RedisView) Put(ctx context.Context, requestID uuid.UUID, status models.Status) error {
	if err := v.client.Set(ctx, key(requestID), string(status), TTL).Err(); err != nil {
		return fmt.Errorf("cache request status: %w", err)
	}
	return nil
}

func (v *RedisView) Get(ctx context.Context, requestID uuid.UUID) (models.Status, bool, error) {
	val, err := v.client.Get(ctx, key(requestID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read cached request status: %w", err)
	}
	return models.Status(val), true, nil
}
