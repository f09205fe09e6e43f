package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenRepository tracks issued access tokens so they can be revoked before they expire
type TokenRepository interface {
	Store(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, tokenID string) error
}
