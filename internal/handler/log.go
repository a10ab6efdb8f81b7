package handler

import (
	"strings"
	"time"

	"reforco-escolar/internal/models"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler serves the admin audit trail.
type LogHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewLogHandler(db *gorm.DB, pageSize int) *LogHandler {
	return &LogHandler{DB: db, PageSize: pageSize}
}

// ListLogs lists audit entries, filtered by ?role=, ?method=, ?start=,
// ?end= (YYYY-MM-DD) and ?q= on the path.
func (h *LogHandler) ListLogs(c *gin.Context) {
	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}
	page, limit := pageParams(c, h.PageSize)

	base := h.DB.WithContext(c.Request.Context()).Model(&models.AuditLog{})
	if userID != 0 {
		base = base.Where("user_id = ?", userID)
	}
	if role := strings.ToUpper(c.Query("role")); role != "" {
		base = base.Where("role = ?", role)
	}
	if method := strings.ToUpper(c.Query("method")); method != "" {
		base = base.Where("method = ?", method)
	}
	if start := c.Query("start"); start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			badRequest(c, "invalid start date")
			return
		}
		base = base.Where("created_at >= ?", t)
	}
	if end := c.Query("end"); end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			badRequest(c, "invalid end date")
			return
		}
		base = base.Where("created_at < ?", t.Add(24*time.Hour))
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		base = base.Where("path LIKE ?", "%"+q+"%")
	}

	var logs []models.AuditLog
	p, err := paginate(base, &logs, "created_at DESC, id DESC", page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	util.Page(c, logs, p)
}
