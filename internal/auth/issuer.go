package auth

import (
	"context"
	"fmt"
	"time"

	"reforco-escolar/internal/models"
	"reforco-escolar/internal/session"
	"reforco-escolar/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Issued is the result of a successful login.
type Issued struct {
	Token     string
	ExpiresAt time.Time
	SessionID string
}

// Issuer signs bearer tokens and records the matching sessions.
type Issuer struct {
	secret string
	issuer string
	ttl    time.Duration
	store  session.Store
	now    func() time.Time
}

func NewIssuer(secret, issuer string, ttl time.Duration, store session.Store) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		store:  store,
		now:    time.Now,
	}
}

// Store returns the session store sessions are written to.
func (i *Issuer) Store() session.Store { return i.store }

// Now is the issuer's clock; tests may replace it.
func (i *Issuer) Now() time.Time { return i.now() }

// SetClock replaces the time source.
func (i *Issuer) SetClock(now func() time.Time) { i.now = now }

// Issue creates a token and session for an identity that already passed
// password verification.
func (i *Issuer) Issue(ctx context.Context, id Identity) (*Issued, error) {
	now := i.now()
	sessionID := uuid.NewString()

	claims := util.Claims{
		IdentityID: id.ID,
		Kind:       string(id.Kind),
		Email:      id.Email,
		Role:       string(id.Role),
		Nonce:      uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:     sessionID,
			Issuer: i.issuer,
		},
	}
	token, err := util.GenerateToken(i.secret, claims, now, i.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	sess := &models.Session{
		ID:        sessionID,
		Token:     token,
		ExpiresAt: now.Add(i.ttl),
		CreatedAt: now,
	}
	ownerID := id.ID
	if id.IsStudent() {
		sess.StudentID = &ownerID
	} else {
		sess.UserID = &ownerID
	}
	if err := i.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	return &Issued{Token: token, ExpiresAt: sess.ExpiresAt, SessionID: sessionID}, nil
}

// Verify checks the token signature and issuer. Expiry is decided by the
// session row, not by the exp claim.
func (i *Issuer) Verify(token string) (*util.Claims, error) {
	claims, err := util.ParseToken(i.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if i.issuer != "" && claims.Issuer != i.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	return claims, nil
}

// Revoke deletes the session, ending it for every holder of the token.
func (i *Issuer) Revoke(ctx context.Context, sess *models.Session) error {
	return i.store.Delete(ctx, sess)
}
