package handler

import (
	"net/url"
	"strings"

	"reforco-escolar/internal/auth"
	"reforco-escolar/internal/models"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileHandler lets any authenticated caller edit their own account.
type ProfileHandler struct {
	DB        *gorm.DB
	Directory *auth.Directory
	Hasher    *util.Hasher
}

func NewProfileHandler(db *gorm.DB, directory *auth.Directory, hasher *util.Hasher) *ProfileHandler {
	return &ProfileHandler{DB: db, Directory: directory, Hasher: hasher}
}

// UpdateProfileReq holds optional fields; nil means unchanged. Theming and
// image fields only apply to staff accounts.
type UpdateProfileReq struct {
	Name        *string `json:"name" binding:"omitempty,max=120"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone" binding:"omitempty,max=32"`
	CompanyName *string `json:"companyName" binding:"omitempty,max=120"`
	ThemeColor  *string `json:"themeColor"`
	AvatarURL   *string `json:"avatarUrl" binding:"omitempty,max=512"`
	LogoURL     *string `json:"logoUrl" binding:"omitempty,max=512"`
}

// ChangePasswordReq requires the current password.
type ChangePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// validateImageURL accepts http(s) URLs and absolute paths such as
// /uploads/logo.png served by the upload collaborator.
func validateImageURL(field, raw string) error {
	if raw == "" || (strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//")) {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &util.ValidationError{Field: field, Msg: "must be an http(s) URL or absolute path"}
	}
	return nil
}

// collect validates req and returns the column updates for the caller.
func (h *ProfileHandler) collect(c *gin.Context, id auth.Identity, req *UpdateProfileReq) (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, &util.ValidationError{Field: "name", Msg: "cannot be empty"}
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		email := util.NormalizeEmail(*req.Email)
		if err := util.ValidateEmail(email); err != nil {
			return nil, err
		}
		var exceptUser, exceptStudent uint
		if id.IsStudent() {
			exceptStudent = id.ID
		} else {
			exceptUser = id.ID
		}
		inUse, err := h.Directory.EmailInUse(c.Request.Context(), email, exceptUser, exceptStudent)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, auth.ErrEmailInUse
		}
		updates["email"] = email
	}

	if id.IsStudent() {
		return updates, nil
	}

	if req.CompanyName != nil {
		updates["company_name"] = strings.TrimSpace(*req.CompanyName)
	}
	if req.ThemeColor != nil {
		if err := util.ValidateColor(*req.ThemeColor); err != nil {
			return nil, err
		}
		updates["theme_color"] = *req.ThemeColor
	}
	if req.AvatarURL != nil {
		if err := validateImageURL("avatarUrl", *req.AvatarURL); err != nil {
			return nil, err
		}
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.LogoURL != nil {
		if err := validateImageURL("logoUrl", *req.LogoURL); err != nil {
			return nil, err
		}
		updates["logo_url"] = *req.LogoURL
	}
	return updates, nil
}

// UpdateProfile edits the caller's own profile fields.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid profile payload")
		return
	}

	updates, err := h.collect(c, id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	if id.IsStudent() {
		var student models.Student
		if len(updates) > 0 {
			if err := db.Model(&models.Student{}).Where("id = ?", id.ID).Updates(updates).Error; err != nil {
				fail(c, err)
				return
			}
		}
		if err := db.First(&student, id.ID).Error; err != nil {
			fail(c, err)
			return
		}
		util.Success(c, gin.H{"user": auth.StudentIdentity(&student).Profile()})
		return
	}

	var user models.User
	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", id.ID).Updates(updates).Error; err != nil {
			fail(c, err)
			return
		}
	}
	if err := db.First(&user, id.ID).Error; err != nil {
		fail(c, err)
		return
	}
	util.Success(c, gin.H{"user": auth.StaffIdentity(&user).Profile()})
}

// ChangePassword replaces the caller's password after checking the current one.
// Other sessions stay valid.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "currentPassword and newPassword are required")
		return
	}

	ctx := c.Request.Context()
	match, err := h.Hasher.Check(ctx, id.PasswordHash(), req.CurrentPassword)
	if err != nil {
		fail(c, err)
		return
	}
	if !match {
		badRequest(c, "current password is incorrect")
		return
	}
	if err := util.ValidatePassword(req.NewPassword); err != nil {
		fail(c, err)
		return
	}

	hash, err := h.Hasher.Hash(ctx, req.NewPassword)
	if err != nil {
		fail(c, err)
		return
	}

	var model interface{} = &models.User{}
	if id.IsStudent() {
		model = &models.Student{}
	}
	if err := h.DB.WithContext(ctx).Model(model).Where("id = ?", id.ID).
		Update("password_hash", hash).Error; err != nil {
		fail(c, err)
		return
	}

	util.Success(c, gin.H{"message": "password changed"})
}
