package repository

import (
	"context"
	"time"

	domainRepo "vows-and-wishes/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const slotLockKeyPrefix = "booking:lock:"

// releaseLockScript deletes the lock only if it still carries our token,
// so an expired-and-reacquired lock is never released by the old holder.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

type redisSlotLocker struct {
	client *redis.Client
}

func NewRedisSlotLocker(client *redis.Client) domainRepo.SlotLocker {
	return &redisSlotLocker{client: client}
}

func (l *redisSlotLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lockKey := slotLockKeyPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainRepo.ErrLockHeld
	}

	release := func(ctx context.Context) error {
		return releaseLockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
	}
	return release, nil
}
