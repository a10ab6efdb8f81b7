package handler

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"reforco-escolar/internal/auth"
	"reforco-escolar/internal/models"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PaymentHandler serves /api/payments.
type PaymentHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewPaymentHandler(db *gorm.DB, pageSize int) *PaymentHandler {
	return &PaymentHandler{DB: db, PageSize: pageSize}
}

type paymentReq struct {
	StudentID   *uint    `json:"studentId"`
	Amount      *float64 `json:"amount"` // reais, converted to cents
	DueDate     *string  `json:"dueDate"`
	PaidAt      *string  `json:"paidAt"`
	Status      *string  `json:"status"`
	Method      *string  `json:"method" binding:"omitempty,max=32"`
	Description *string  `json:"description" binding:"omitempty,max=255"`
}

// convertToCents rounds a reais amount to whole cents.
func convertToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// formatCents renders cents as a decimal reais string.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d", sign, cents/100, cents%100)
}

func (h *PaymentHandler) apply(ctx context.Context, scope auth.Scope, req *paymentReq, p *models.Payment) error {
	if req.StudentID != nil && *req.StudentID != p.StudentID {
		var st models.Student
		if err := auth.FindScoped(h.DB.WithContext(ctx), &st, *req.StudentID, scope.Students(), "student"); err != nil {
			return err
		}
		p.StudentID = st.ID
	}
	if p.StudentID == 0 {
		return &util.ValidationError{Field: "studentId", Msg: "is required"}
	}

	if req.Amount != nil {
		p.AmountCents = convertToCents(*req.Amount)
	}
	if p.AmountCents <= 0 {
		return &util.ValidationError{Field: "amount", Msg: "must be positive"}
	}

	if req.DueDate != nil {
		d, err := util.ParseDate("dueDate", *req.DueDate)
		if err != nil {
			return err
		}
		p.DueDate = d
	}
	if p.DueDate.IsZero() {
		return &util.ValidationError{Field: "dueDate", Msg: "is required"}
	}

	if req.Status != nil {
		p.Status = strings.ToUpper(strings.TrimSpace(*req.Status))
	}
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	if err := util.ValidateOneOf("status", p.Status,
		models.PaymentPending, models.PaymentPaid, models.PaymentCanceled); err != nil {
		return err
	}

	if req.PaidAt != nil {
		if *req.PaidAt == "" {
			p.PaidAt = nil
		} else {
			at, err := util.ParseDate("paidAt", *req.PaidAt)
			if err != nil {
				return err
			}
			p.PaidAt = &at
		}
	}
	switch p.Status {
	case models.PaymentPaid:
		if p.PaidAt == nil {
			now := time.Now()
			p.PaidAt = &now
		}
	default:
		p.PaidAt = nil
	}

	if req.Method != nil {
		p.Method = strings.TrimSpace(*req.Method)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	return nil
}

// scopedQuery applies the caller scope and list filters shared by the list
// and export endpoints.
func (h *PaymentHandler) scopedQuery(c *gin.Context, id auth.Identity) (*gorm.DB, bool) {
	studentID, ok := queryID(c, "studentId")
	if !ok {
		return nil, false
	}
	base := h.DB.WithContext(c.Request.Context()).Model(&models.Payment{}).
		Scopes(auth.ScopeFor(id).StudentOwned("payments"))
	if studentID != 0 {
		base = base.Where("payments.student_id = ?", studentID)
	}
	if status := strings.ToUpper(c.Query("status")); status != "" {
		base = base.Where("payments.status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		t, err := util.ParseDate("from", from)
		if err != nil {
			fail(c, err)
			return nil, false
		}
		base = base.Where("payments.due_date >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := util.ParseDate("to", to)
		if err != nil {
			fail(c, err)
			return nil, false
		}
		base = base.Where("payments.due_date <= ?", t)
	}
	return base, true
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	base, ok := h.scopedQuery(c, id)
	if !ok {
		return
	}
	page, limit := pageParams(c, h.PageSize)

	var payments []models.Payment
	p, err := paginate(base, &payments, "payments.due_date DESC", page, limit, "Student")
	if err != nil {
		fail(c, err)
		return
	}
	util.Page(c, payments, p)
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req paymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payment payload")
		return
	}

	var p models.Payment
	if err := h.apply(c.Request.Context(), auth.ScopeFor(id), &req, &p); err != nil {
		fail(c, err)
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&p).Error; err != nil {
		fail(c, err)
		return
	}
	util.Created(c, p)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	paymentID, ok := pathID(c)
	if !ok {
		return
	}

	var p models.Payment
	db := h.DB.WithContext(c.Request.Context())
	if err := auth.FindScoped(db, &p, paymentID,
		auth.ScopeFor(id).StudentOwned("payments"), "payment", "Student"); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, p)
}

func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	paymentID, ok := pathID(c)
	if !ok {
		return
	}
	var req paymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payment payload")
		return
	}

	ctx := c.Request.Context()
	db := h.DB.WithContext(ctx)
	scope := auth.ScopeFor(id)
	var p models.Payment
	if err := auth.FindScoped(db, &p, paymentID, scope.StudentOwned("payments"), "payment"); err != nil {
		fail(c, err)
		return
	}
	if err := h.apply(ctx, scope, &req, &p); err != nil {
		fail(c, err)
		return
	}
	if err := db.Save(&p).Error; err != nil {
		fail(c, err)
		return
	}
	util.Success(c, p)
}

func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	paymentID, ok := pathID(c)
	if !ok {
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var p models.Payment
	if err := auth.FindScoped(db, &p, paymentID, auth.ScopeFor(id).StudentOwned("payments"), "payment"); err != nil {
		fail(c, err)
		return
	}
	if err := db.Delete(&p).Error; err != nil {
		fail(c, err)
		return
	}
	util.Success(c, gin.H{"message": "payment deleted"})
}
