package util

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password is empty")

// Hasher runs bcrypt on a bounded number of goroutines so that slow hashing
// cannot occupy every CPU while requests are waiting.
type Hasher struct {
	cost  int
	slots chan struct{}
}

// NewHasher returns a Hasher using the given bcrypt cost and at most workers
// concurrent hash operations. Non-positive values fall back to defaults.
func NewHasher(cost, workers int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Hasher{
		cost:  cost,
		slots: make(chan struct{}, workers),
	}
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() { <-h.slots }

// Hash returns the bcrypt hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Check reports whether password matches the stored hash. A mismatch is not
// an error; err is only set when ctx is done before a worker is free.
func (h *Hasher) Check(ctx context.Context, hash, password string) (bool, error) {
	if hash == "" || password == "" {
		return false, nil
	}
	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.release()

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}
