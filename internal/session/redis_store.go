package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reforco-escolar/internal/models"

	"github.com/redis/go-redis/v9"
)

// expiredGrace keeps a key around after ExpiresAt so the first request that
// sees it can still report the session as expired instead of missing.
const expiredGrace = time.Hour

// RedisStore keeps sessions in redis. Keys expire natively, so a periodic
// sweep has nothing to do.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (r *RedisStore) key(token string) string {
	return r.prefix + token
}

func (r *RedisStore) Create(ctx context.Context, s *models.Session) error {
	if err := s.ValidateOwner(); err != nil {
		return err
	}
	if s.Token == "" || s.ID == "" {
		return errors.New("session: missing id or token")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	ttl := time.Until(s.ExpiresAt) + expiredGrace
	if ttl <= expiredGrace {
		return errors.New("session: expires_at must be in the future")
	}

	data, err := json.Marshal(redisSession{
		ID:        s.ID,
		UserID:    s.UserID,
		StudentID: s.StudentID,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	// NX: tokens are unique
	ok, err := r.client.SetNX(ctx, r.key(s.Token), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	if !ok {
		return errors.New("session: token already exists")
	}
	return nil
}

func (r *RedisStore) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	val, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var rs redisSession
	if err := json.Unmarshal(val, &rs); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &models.Session{
		ID:        rs.ID,
		Token:     token,
		UserID:    rs.UserID,
		StudentID: rs.StudentID,
		ExpiresAt: rs.ExpiresAt,
		CreatedAt: rs.CreatedAt,
	}, nil
}

func (r *RedisStore) Delete(ctx context.Context, s *models.Session) error {
	if err := r.client.Del(ctx, r.key(s.Token)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

func (r *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// redisSession is the stored value; the token is the key.
type redisSession struct {
	ID        string    `json:"id"`
	UserID    *uint     `json:"userId,omitempty"`
	StudentID *uint     `json:"studentId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
