package repository

import (
	"context"
	"fmt"
	"time"

	domainRepo "vows-and-wishes/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const accessTokenKeyPrefix = "access_token"

type redisTokenRepository struct {
	client *redis.Client
}

func NewRedisTokenRepository(client *redis.Client) domainRepo.TokenRepository {
	return &redisTokenRepository{client: client}
}

func accessTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", accessTokenKeyPrefix, userID.String(), tokenID)
}

func (r *redisTokenRepository) Store(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return r.client.Set(ctx, accessTokenKey(userID, tokenID), "valid", ttl).Err()
}

func (r *redisTokenRepository) Exists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, accessTokenKey(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisTokenRepository) Revoke(ctx context.Context, userID uuid.UUID, tokenID string) error {
	return r.client.Del(ctx, accessTokenKey(userID, tokenID)).Err()
}
