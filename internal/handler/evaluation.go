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

// EvaluationHandler serves /api/evaluations.
type EvaluationHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewEvaluationHandler(db *gorm.DB, pageSize int) *EvaluationHandler {
	return &EvaluationHandler{DB: db, PageSize: pageSize}
}

type evaluationReq struct {
	StudentID   *uint    `json:"studentId"`
	Subject     *string  `json:"subject" binding:"omitempty,max=80"`
	Score       *float64 `json:"score"`
	Comments    *string  `json:"comments"`
	EvaluatedAt *string  `json:"evaluatedAt"`
}

func (h *EvaluationHandler) apply(ctx context.Context, scope auth.Scope, req *evaluationReq, e *models.Evaluation) error {
	if req.StudentID != nil && *req.StudentID != e.StudentID {
		var st models.Student
		if err := auth.FindScoped(h.DB.WithContext(ctx), &st, *req.StudentID, scope.Students(), "student"); err != nil {
			return err
		}
		e.StudentID = st.ID
	}
	if e.StudentID == 0 {
		return &util.ValidationError{Field: "studentId", Msg: "is required"}
	}

	if req.Subject != nil {
		e.Subject = strings.TrimSpace(*req.Subject)
	}
	if e.Subject == "" {
		return &util.ValidationError{Field: "subject", Msg: "is required"}
	}

	if req.Score != nil {
		e.Score = *req.Score
	}
	if e.Score < 0 || e.Score > 10 {
		return &util.ValidationError{Field: "score", Msg: "must be between 0 and 10"}
	}

	if req.Comments != nil {
		e.Comments = *req.Comments
	}

	if req.EvaluatedAt != nil {
		at, err := util.ParseDate("evaluatedAt", *req.EvaluatedAt)
		if err != nil {
			return err
		}
		e.EvaluatedAt = at
	}
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = time.Now()
	}
	return nil
}

func (h *EvaluationHandler) ListEvaluations(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	studentID, ok := queryID(c, "studentId")
	if !ok {
		return
	}
	page, limit := pageParams(c, h.PageSize)

	base := h.DB.WithContext(c.Request.Context()).Model(&models.Evaluation{}).
		Scopes(auth.ScopeFor(id).StudentOwned("evaluations"))
	if studentID != 0 {
		base = base.Where("evaluations.student_id = ?", studentID)
	}
	if subject := strings.TrimSpace(c.Query("subject")); subject != "" {
		base = base.Where("LOWER(evaluations.subject) = ?", strings.ToLower(subject))
	}

	var evaluations []models.Evaluation
	p, err := paginate(base, &evaluations, "evaluations.evaluated_at DESC", page, limit, "Student")
	if err != nil {
		fail(c, err)
		return
	}
	util.Page(c, evaluations, p)
}

func (h *EvaluationHandler) CreateEvaluation(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req evaluationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid evaluation payload")
		return
	}

	var e models.Evaluation
	if err := h.apply(c.Request.Context(), auth.ScopeFor(id), &req, &e); err != nil {
		fail(c, err)
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&e).Error; err != nil {
		fail(c, err)
		return
	}
	util.Created(c, e)
}

func (h *EvaluationHandler) GetEvaluation(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	evaluationID, ok := pathID(c)
	if !ok {
		return
	}

	var e models.Evaluation
	db := h.DB.WithContext(c.Request.Context())
	if err := auth.FindScoped(db, &e, evaluationID,
		auth.ScopeFor(id).StudentOwned("evaluations"), "evaluation", "Student"); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, e)
}

func (h *EvaluationHandler) UpdateEvaluation(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	evaluationID, ok := pathID(c)
	if !ok {
		return
	}
	var req evaluationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid evaluation payload")
		return
	}

	ctx := c.Request.Context()
	db := h.DB.WithContext(ctx)
	scope := auth.ScopeFor(id)
	var e models.Evaluation
	if err := auth.FindScoped(db, &e, evaluationID, scope.StudentOwned("evaluations"), "evaluation"); err != nil {
		fail(c, err)
		return
	}
	if err := h.apply(ctx, scope, &req, &e); err != nil {
		fail(c, err)
		return
	}
	if err := db.Save(&e).Error; err != nil {
		fail(c, err)
		return
	}
	util.Success(c, e)
}

func (h *EvaluationHandler) DeleteEvaluation(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	evaluationID, ok := pathID(c)
	if !ok {
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var e models.Evaluation
	if err := auth.FindScoped(db, &e, evaluationID, auth.ScopeFor(id).StudentOwned("evaluations"), "evaluation"); err != nil {
		fail(c, err)
		return
	}
	if err := db.Delete(&e).Error; err != nil {
		fail(c, err)
		return
	}
	util.Success(c, gin.H{"message": "evaluation deleted"})
}
