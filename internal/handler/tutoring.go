package handler

import (
	"context"
	"strings"
	"time"

	"reforco-escolar/internal/auth"
	"reforco-escolar/internal/models"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TutoringHandler serves /api/tutorings.
type TutoringHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewTutoringHandler(db *gorm.DB, pageSize int) *TutoringHandler {
	return &TutoringHandler{DB: db, PageSize: pageSize}
}

type tutoringReq struct {
	StudentID       *uint   `json:"studentId"`
	Subject         *string `json:"subject" binding:"omitempty,max=80"`
	ScheduledAt     *string `json:"scheduledAt"`
	DurationMinutes *int    `json:"durationMinutes"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

func (h *TutoringHandler) apply(ctx context.Context, scope auth.Scope, req *tutoringReq, t *models.Tutoring) error {
	if req.StudentID != nil && *req.StudentID != t.StudentID {
		var st models.Student
		if err := auth.FindScoped(h.DB.WithContext(ctx), &st, *req.StudentID, scope.Students(), "student"); err != nil {
			return err
		}
		t.StudentID = st.ID
		t.TeacherID = st.TeacherID
	}
	if t.StudentID == 0 {
		return &util.ValidationError{Field: "studentId", Msg: "is required"}
	}

	if req.Subject != nil {
		t.Subject = strings.TrimSpace(*req.Subject)
	}
	if t.Subject == "" {
		return &util.ValidationError{Field: "subject", Msg: "is required"}
	}

	if req.ScheduledAt != nil {
		at, err := util.ParseDate("scheduledAt", *req.ScheduledAt)
		if err != nil {
			return err
		}
		t.ScheduledAt = at
	}
	if t.ScheduledAt.IsZero() {
		return &util.ValidationError{Field: "scheduledAt", Msg: "is required"}
	}

	if req.DurationMinutes != nil {
		t.DurationMinutes = *req.DurationMinutes
	}
	if t.DurationMinutes == 0 {
		t.DurationMinutes = 60
	}
	if t.DurationMinutes < 0 || t.DurationMinutes > 8*60 {
		return &util.ValidationError{Field: "durationMinutes", Msg: "must be between 1 and 480"}
	}

	if req.Status != nil {
		t.Status = strings.ToUpper(strings.TrimSpace(*req.Status))
	}
	if t.Status == "" {
		t.Status = models.TutoringScheduled
	}
	if err := util.ValidateOneOf("status", t.Status,
		models.TutoringScheduled, models.TutoringCompleted, models.TutoringCanceled); err != nil {
		return err
	}

	if req.Notes != nil {
		t.Notes = *req.Notes
	}
	return nil
}

// ListTutorings supports ?studentId=, ?status=, ?from= and ?to= filters.
func (h *TutoringHandler) ListTutorings(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	studentID, ok := queryID(c, "studentId")
	if !ok {
		return
	}
	page, limit := pageParams(c, h.PageSize)

	base := h.DB.WithContext(c.Request.Context()).Model(&models.Tutoring{}).
		Scopes(auth.ScopeFor(id).StudentOwned("tutorings"))
	if studentID != 0 {
		base = base.Where("tutorings.student_id = ?", studentID)
	}
	if status := strings.ToUpper(c.Query("status")); status != "" {
		base = base.Where("tutorings.status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		t, err := util.ParseDate("from", from)
		if err != nil {
			fail(c, err)
			return
		}
		base = base.Where("tutorings.scheduled_at >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := util.ParseDate("to", to)
		if err != nil {
			fail(c, err)
			return
		}
		if len(to) == len("2006-01-02") {
			t = t.Add(24 * time.Hour)
		}
		base = base.Where("tutorings.scheduled_at < ?", t)
	}

	var tutorings []models.Tutoring
	p, err := paginate(base, &tutorings, "tutorings.scheduled_at DESC", page, limit, "Student")
	if err != nil {
		fail(c, err)
		return
	}
	util.Page(c, tutorings, p)
}

func (h *TutoringHandler) CreateTutoring(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req tutoringReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid tutoring payload")
		return
	}

	var t models.Tutoring
	if err := h.apply(c.Request.Context(), auth.ScopeFor(id), &req, &t); err != nil {
		fail(c, err)
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&t).Error; err != nil {
		fail(c, err)
		return
	}
	util.Created(c, t)
}

func (h *TutoringHandler) GetTutoring(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	tutoringID, ok := pathID(c)
	if !ok {
		return
	}

	var t models.Tutoring
	db := h.DB.WithContext(c.Request.Context())
	if err := auth.FindScoped(db, &t, tutoringID,
		auth.ScopeFor(id).StudentOwned("tutorings"), "tutoring", "Student"); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, t)
}

func (h *TutoringHandler) UpdateTutoring(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	tutoringID, ok := pathID(c)
	if !ok {
		return
	}
	var req tutoringReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid tutoring payload")
		return
	}

	ctx := c.Request.Context()
	db := h.DB.WithContext(ctx)
	scope := auth.ScopeFor(id)
	var t models.Tutoring
	if err := auth.FindScoped(db, &t, tutoringID, scope.StudentOwned("tutorings"), "tutoring"); err != nil {
		fail(c, err)
		return
	}
	if err := h.apply(ctx, scope, &req, &t); err != nil {
		fail(c, err)
		return
	}
	if err := db.Save(&t).Error; err != nil {
		fail(c, err)
		return
	}
	util.Success(c, t)
}

func (h *TutoringHandler) DeleteTutoring(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	tutoringID, ok := pathID(c)
	if !ok {
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var t models.Tutoring
	if err := auth.FindScoped(db, &t, tutoringID, auth.ScopeFor(id).StudentOwned("tutorings"), "tutoring"); err != nil {
		fail(c, err)
		return
	}
	if err := db.Delete(&t).Error; err != nil {
		fail(c, err)
		return
	}
	util.Success(c, gin.H{"message": "tutoring deleted"})
}
