package middleware

import (
	"net/http"

	"reforco-escolar/internal/auth"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
)

// RequireRole lets through only identities holding one of roles.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			util.Abort(c, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		util.Abort(c, http.StatusForbidden, auth.ErrForbidden.Error())
	}
}

// RequireAdmin guards admin-only routes.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(auth.RoleAdmin)
}

// RequireStaff rejects students.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(auth.RoleAdmin, auth.RoleTeacher)
}
