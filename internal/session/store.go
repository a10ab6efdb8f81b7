package session

import (
	"context"
	"errors"
	"time"

	"reforco-escolar/internal/models"
)

// ErrNotFound is returned when no session matches a token.
var ErrNotFound = errors.New("session: not found")

// Store persists sessions keyed by their raw bearer token.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, s *models.Session) error
	// DeleteExpired removes sessions that expired before now and reports how
	// many were removed. Backends with native expiry may return 0.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
