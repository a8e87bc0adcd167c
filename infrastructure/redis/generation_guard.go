package redis

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"storyforge/domain/ports"
	"storyforge/pkg/logger"
)

const keyPrefix = "storyforge:"

// GenerationGuard เก็บ epoch และ lock ไว้ใน Redis
// ใช้ได้แม้ API รันหลาย instance
type GenerationGuard struct {
	client *Client
}

func NewGenerationGuard(client *Client) ports.GenerationGuardPort {
	return &GenerationGuard{client: client}
}

func (g *GenerationGuard) Advance(ctx context.Context, key string) (int64, error) {
	return g.client.Incr(ctx, keyPrefix+"epoch:"+key)
}

func (g *GenerationGuard) Current(ctx context.Context, key string) (int64, error) {
	raw, err := g.client.Get(ctx, keyPrefix+"epoch:"+key)
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (g *GenerationGuard) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	lockKey := keyPrefix + "lock:" + key
	token := uuid.NewString()

	ok, err := g.client.AcquireLock(ctx, lockKey, token, ttl)
	if err != nil || !ok {
		return func() {}, false, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// ใช้ context ใหม่ เผื่อ request ถูก cancel ไปแล้ว
			rctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := g.client.ReleaseLock(rctx, lockKey, token); err != nil {
				logger.Warn("Failed to release generation lock", "key", key, "error", err)
			}
		})
	}
	return release, true, nil
}
