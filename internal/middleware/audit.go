package middleware

import (
	"net/http"

	"reforco-escolar/internal/auth"
	"reforco-escolar/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditMiddleware stores one AuditLog row per mutating request made by an
// authenticated caller. Reads are not recorded.
func AuditMiddleware(db *gorm.DB, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		id, ok := auth.FromContext(c.Request.Context())
		if !ok {
			return
		}

		entry := models.AuditLog{
			Role:      string(id.Role),
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: truncate(c.Request.UserAgent(), 255),
		}
		actor := id.ID
		if id.Kind == auth.KindStudent {
			entry.StudentID = &actor
		} else {
			entry.UserID = &actor
		}

		if err := db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
			log.WithError(err).Warn("write audit log")
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
