// Package redisqueue is a durable notification transport on a Redis list.
package redisqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/contoso-notify/internal/config"
	"github.com/contoso-notify/internal/domain"
	"github.com/redis/go-redis/v9"
)

// popWait is the BLPOP timeout; Redis does not accept less than a second here.
const popWait = time.Second

type Queue struct {
	rdb redis.Cmdable
	key string
}

func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Notify.RedisAddr,
		Password: cfg.Notify.RedisPassword,
		DB:       cfg.Notify.RedisDB,
	})
}

func NewQueue(rdb redis.Cmdable, key string) *Queue {
	return &Queue{rdb: rdb, key: key}
}

func (q *Queue) Enqueue(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return fmt.Errorf("%w: nil notification", domain.ErrBadRequest)
	}
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.key, body).Err(); err != nil {
		return fmt.Errorf("%w: redis rpush: %w", domain.ErrTransport, err)
	}
	return nil
}

// TryDequeue blocks for at most popWait. redis.Nil means the list stayed empty.
func (q *Queue) TryDequeue(ctx context.Context) (*domain.Notification, error) {
	res, err := q.rdb.BLPop(ctx, popWait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis blpop: %w", domain.ErrTransport, err)
	}
	// BLPOP replies with [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("%w: unexpected blpop reply of %d elements", domain.ErrTransport, len(res))
	}

	var n domain.Notification
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		return nil, fmt.Errorf("%w: unmarshal notification: %w", domain.ErrTransport, err)
	}
	return &n, nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
