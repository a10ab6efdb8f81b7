package handler

import (
	"net/http"
	"strings"
	"time"

	"reforco-escolar/internal/auth"
	"reforco-escolar/internal/middleware"
	"reforco-escolar/internal/models"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves login, logout and staff registration.
type AuthHandler struct {
	DB        *gorm.DB
	Directory *auth.Directory
	Issuer    *auth.Issuer
	Hasher    *util.Hasher
}

func NewAuthHandler(db *gorm.DB, directory *auth.Directory, issuer *auth.Issuer, hasher *util.Hasher) *AuthHandler {
	return &AuthHandler{
		DB:        db,
		Directory: directory,
		Issuer:    issuer,
		Hasher:    hasher,
	}
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResp struct {
	Token     string       `json:"token"`
	User      auth.Profile `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	req.Email = util.NormalizeEmail(req.Email)
	if err := util.ValidateEmail(req.Email); err != nil {
		fail(c, err)
		return
	}

	id, err := h.Directory.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	issued, err := h.Issuer.Issue(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	if id.User != nil {
		now := h.Issuer.Now()
		if err := h.DB.WithContext(c.Request.Context()).Model(id.User).
			Update("last_login_at", now).Error; err != nil {
			fail(c, err)
			return
		}
	}

	util.Success(c, loginResp{
		Token:     issued.Token,
		User:      id.Profile(),
		ExpiresAt: issued.ExpiresAt,
	})
}

// ---------- logout ----------

func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
		return
	}
	if err := h.Issuer.Revoke(c.Request.Context(), sess); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, gin.H{"message": "logged out"})
}

// ---------- register (admin only) ----------

type registerReq struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Phone    string `json:"phone" binding:"max=32"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, email and password are required")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = util.NormalizeEmail(req.Email)
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if req.Role == "" {
		req.Role = models.RoleTeacher
	}

	if req.Name == "" {
		fail(c, &util.ValidationError{Field: "name", Msg: "is required"})
		return
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		fail(c, err)
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		fail(c, err)
		return
	}
	if err := util.ValidateOneOf("role", req.Role, models.RoleAdmin, models.RoleTeacher); err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	inUse, err := h.Directory.EmailInUse(ctx, req.Email, 0, 0)
	if err != nil {
		fail(c, err)
		return
	}
	if inUse {
		fail(c, auth.ErrEmailInUse)
		return
	}

	hash, err := h.Hasher.Hash(ctx, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		fail(c, err)
		return
	}

	util.Created(c, gin.H{"user": auth.StaffIdentity(&user).Profile()})
}
