package handler

import (
	"context"
	"strings"

	"reforco-escolar/internal/auth"
	"reforco-escolar/internal/models"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MaterialHandler serves the staff-only /api/materials inventory.
type MaterialHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewMaterialHandler(db *gorm.DB, pageSize int) *MaterialHandler {
	return &MaterialHandler{DB: db, PageSize: pageSize}
}

type materialReq struct {
	Name        *string  `json:"name" binding:"omitempty,max=120"`
	Description *string  `json:"description" binding:"omitempty,max=512"`
	Quantity    *int     `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"` // reais
	TeacherID   *uint    `json:"teacherId"`
	Shared      *bool    `json:"shared"` // admin only: clear the owner
}

func (h *MaterialHandler) apply(ctx context.Context, id auth.Identity, req *materialReq, m *models.Material) error {
	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if m.Name == "" {
		return &util.ValidationError{Field: "name", Msg: "is required"}
	}
	if req.Description != nil {
		m.Description = strings.TrimSpace(*req.Description)
	}
	if req.Quantity != nil {
		m.Quantity = *req.Quantity
	}
	if m.Quantity < 0 {
		return &util.ValidationError{Field: "quantity", Msg: "cannot be negative"}
	}
	if req.UnitPrice != nil {
		m.UnitPriceCents = convertToCents(*req.UnitPrice)
	}
	if m.UnitPriceCents < 0 {
		return &util.ValidationError{Field: "unitPrice", Msg: "cannot be negative"}
	}

	switch {
	case id.IsTeacher():
		owner := id.ID
		m.TeacherID = &owner
	case req.Shared != nil && *req.Shared:
		m.TeacherID = nil
	case req.TeacherID != nil:
		var n int64
		if err := h.DB.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", *req.TeacherID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return &util.ValidationError{Field: "teacherId", Msg: "does not reference a staff user"}
		}
		owner := *req.TeacherID
		m.TeacherID = &owner
	}
	return nil
}

// ListMaterials supports ?q= search and ?lowStock=N.
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	page, limit := pageParams(c, h.PageSize)

	base := h.DB.WithContext(c.Request.Context()).Model(&models.Material{}).
		Scopes(auth.ScopeFor(id).Materials())
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		base = base.Where("(LOWER(materials.name) LIKE ? OR LOWER(materials.description) LIKE ?)", like, like)
	}
	if low, ok := queryID(c, "lowStock"); !ok {
		return
	} else if low != 0 {
		base = base.Where("materials.quantity <= ?", low)
	}

	var materials []models.Material
	p, err := paginate(base, &materials, "materials.name ASC", page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	util.Page(c, materials, p)
}

func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req materialReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid material payload")
		return
	}

	var m models.Material
	if err := h.apply(c.Request.Context(), id, &req, &m); err != nil {
		fail(c, err)
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&m).Error; err != nil {
		fail(c, err)
		return
	}
	util.Created(c, m)
}

// find loads a material and checks it against the caller scope.
func (h *MaterialHandler) find(c *gin.Context, id auth.Identity, write bool) (*models.Material, bool) {
	materialID, ok := pathID(c)
	if !ok {
		return nil, false
	}
	var m models.Material
	if err := auth.FindScoped(h.DB.WithContext(c.Request.Context()), &m, materialID,
		auth.ScopeFor(id).Materials(), "material"); err != nil {
		fail(c, err)
		return nil, false
	}
	if err := auth.ScopeFor(id).AuthorizeMaterial(&m, write); err != nil {
		fail(c, err)
		return nil, false
	}
	return &m, true
}

func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	m, ok := h.find(c, id, false)
	if !ok {
		return
	}
	util.Success(c, m)
}

func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req materialReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid material payload")
		return
	}
	m, ok := h.find(c, id, true)
	if !ok {
		return
	}
	if err := h.apply(c.Request.Context(), id, &req, m); err != nil {
		fail(c, err)
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Save(m).Error; err != nil {
		fail(c, err)
		return
	}
	util.Success(c, m)
}

func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	m, ok := h.find(c, id, true)
	if !ok {
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(m).Error; err != nil {
		fail(c, err)
		return
	}
	util.Success(c, gin.H{"message": "material deleted"})
}
