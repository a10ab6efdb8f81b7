package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"reforco-escolar/internal/auth"
	"reforco-escolar/internal/logger"
	"reforco-escolar/internal/models"
	"reforco-escolar/internal/session"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	sessionKey  = "session"
)

// Authenticator turns a bearer token into a resolved identity.
type Authenticator struct {
	issuer    *auth.Issuer
	directory *auth.Directory
}

func NewAuthenticator(issuer *auth.Issuer, directory *auth.Directory) *Authenticator {
	return &Authenticator{issuer: issuer, directory: directory}
}

// Authenticate runs the token checks in order: presence, signature, session
// lookup, expiry (deleting the expired row) and identity resolution.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (auth.Identity, *models.Session, error) {
	if token == "" {
		return auth.Identity{}, nil, auth.ErrUnauthenticated
	}

	if _, err := a.issuer.Verify(token); err != nil {
		return auth.Identity{}, nil, err
	}

	store := a.issuer.Store()
	sess, err := store.FindByToken(ctx, token)
	if errors.Is(err, session.ErrNotFound) {
		return auth.Identity{}, nil, auth.ErrSessionNotFound
	}
	if err != nil {
		return auth.Identity{}, nil, err
	}

	if sess.Expired(a.issuer.Now()) {
		if err := store.Delete(ctx, sess); err != nil {
			return auth.Identity{}, nil, err
		}
		return auth.Identity{}, nil, auth.ErrSessionExpired
	}

	id, err := a.directory.Resolve(ctx, sess)
	if err != nil {
		return auth.Identity{}, nil, err
	}
	return id, sess, nil
}

// bearerToken extracts the token from "Authorization: Bearer xxx".
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

var authFailures = []error{
	auth.ErrUnauthenticated,
	auth.ErrInvalidToken,
	auth.ErrSessionNotFound,
	auth.ErrSessionExpired,
	auth.ErrInvalidSession,
}

// AuthMiddleware rejects requests without a live session and stores the
// caller identity for later handlers.
func AuthMiddleware(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, sess, err := a.Authenticate(c.Request.Context(), bearerToken(c))
		if err != nil {
			for _, known := range authFailures {
				if errors.Is(err, known) {
					util.Abort(c, http.StatusUnauthorized, known.Error())
					return
				}
			}
			logger.Log.WithError(err).WithField("path", c.Request.URL.Path).Error("authenticate request")
			util.Abort(c, http.StatusInternalServerError, "internal server error")
			return
		}

		c.Set(identityKey, id)
		c.Set(sessionKey, sess)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// CurrentIdentity returns the identity set by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// CurrentSession returns the session set by AuthMiddleware.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*models.Session)
	return sess, ok && sess != nil
}
