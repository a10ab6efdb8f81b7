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

// StudentHandler serves /api/students.
type StudentHandler struct {
	DB        *gorm.DB
	Directory *auth.Directory
	Hasher    *util.Hasher
	PageSize  int
}

func NewStudentHandler(db *gorm.DB, directory *auth.Directory, hasher *util.Hasher, pageSize int) *StudentHandler {
	return &StudentHandler{DB: db, Directory: directory, Hasher: hasher, PageSize: pageSize}
}

type studentReq struct {
	Name         *string `json:"name" binding:"omitempty,max=120"`
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	Phone        *string `json:"phone" binding:"omitempty,max=32"`
	GuardianName *string `json:"guardianName" binding:"omitempty,max=120"`
	Grade        *string `json:"grade" binding:"omitempty,max=32"`
	BirthDate    *string `json:"birthDate"`
	Active       *bool   `json:"active"`
	TeacherID    *uint   `json:"teacherId"`
}

// apply copies the request onto st. The teacher may only be chosen by admins;
// teachers always own the students they create.
func (h *StudentHandler) apply(ctx context.Context, id auth.Identity, req *studentReq, st *models.Student) error {
	if req.Name != nil {
		st.Name = strings.TrimSpace(*req.Name)
	}
	if st.Name == "" {
		return &util.ValidationError{Field: "name", Msg: "is required"}
	}

	if req.Email != nil {
		email := util.NormalizeEmail(*req.Email)
		if email == "" {
			st.Email = nil
		} else {
			if err := util.ValidateEmail(email); err != nil {
				return err
			}
			inUse, err := h.Directory.EmailInUse(ctx, email, 0, st.ID)
			if err != nil {
				return err
			}
			if inUse {
				return auth.ErrEmailInUse
			}
			st.Email = &email
		}
	}

	if req.Password != nil && *req.Password != "" {
		if err := util.ValidatePassword(*req.Password); err != nil {
			return err
		}
		hash, err := h.Hasher.Hash(ctx, *req.Password)
		if err != nil {
			return err
		}
		st.PasswordHash = hash
	}
	if st.PasswordHash != "" && st.Email == nil {
		return &util.ValidationError{Field: "email", Msg: "is required for students with a password"}
	}

	if req.Phone != nil {
		st.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.GuardianName != nil {
		st.GuardianName = strings.TrimSpace(*req.GuardianName)
	}
	if req.Grade != nil {
		st.Grade = strings.TrimSpace(*req.Grade)
	}
	if req.BirthDate != nil {
		if *req.BirthDate == "" {
			st.BirthDate = nil
		} else {
			t, err := util.ParseDate("birthDate", *req.BirthDate)
			if err != nil {
				return err
			}
			if t.After(time.Now()) {
				return &util.ValidationError{Field: "birthDate", Msg: "cannot be in the future"}
			}
			st.BirthDate = &t
		}
	}
	if req.Active != nil {
		st.Active = *req.Active
	}

	switch {
	case id.IsTeacher():
		st.TeacherID = id.ID
	case req.TeacherID != nil:
		if err := h.checkTeacher(ctx, *req.TeacherID); err != nil {
			return err
		}
		st.TeacherID = *req.TeacherID
	}
	if st.TeacherID == 0 {
		return &util.ValidationError{Field: "teacherId", Msg: "is required"}
	}
	return nil
}

func (h *StudentHandler) checkTeacher(ctx context.Context, teacherID uint) error {
	var n int64
	if err := h.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND role IN ?", teacherID, []string{models.RoleTeacher, models.RoleAdmin}).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return &util.ValidationError{Field: "teacherId", Msg: "does not reference a staff user"}
	}
	return nil
}

// ListStudents lists the students visible to the caller, with ?q= search.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	teacherID, ok := queryID(c, "teacherId")
	if !ok {
		return
	}
	page, limit := pageParams(c, h.PageSize)

	base := h.DB.WithContext(c.Request.Context()).Model(&models.Student{}).
		Scopes(auth.ScopeFor(id).Students())
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		base = base.Where("(LOWER(students.name) LIKE ? OR LOWER(students.email) LIKE ?)", like, like)
	}
	switch c.Query("active") {
	case "true":
		base = base.Where("students.active = ?", true)
	case "false":
		base = base.Where("students.active = ?", false)
	}
	if teacherID != 0 {
		base = base.Where("students.teacher_id = ?", teacherID)
	}

	var students []models.Student
	p, err := paginate(base, &students, "students.name ASC", page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	util.Page(c, students, p)
}

func (h *StudentHandler) CreateStudent(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req studentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid student payload")
		return
	}

	st := models.Student{Active: true}
	if err := h.apply(c.Request.Context(), id, &req, &st); err != nil {
		fail(c, err)
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&st).Error; err != nil {
		fail(c, err)
		return
	}
	util.Created(c, st)
}

func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c)
	if !ok {
		return
	}

	var st models.Student
	db := h.DB.WithContext(c.Request.Context())
	if err := auth.FindScoped(db, &st, studentID, auth.ScopeFor(id).Students(), "student"); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, st)
}

func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c)
	if !ok {
		return
	}
	var req studentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid student payload")
		return
	}

	ctx := c.Request.Context()
	db := h.DB.WithContext(ctx)
	var st models.Student
	if err := auth.FindScoped(db, &st, studentID, auth.ScopeFor(id).Students(), "student"); err != nil {
		fail(c, err)
		return
	}
	prevTeacher := st.TeacherID
	if err := h.apply(ctx, id, &req, &st); err != nil {
		fail(c, err)
		return
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&st).Error; err != nil {
			return err
		}
		if st.TeacherID == prevTeacher {
			return nil
		}
		// tutorings follow the student to the new teacher
		return tx.Model(&models.Tutoring{}).
			Where("student_id = ?", st.ID).
			Update("teacher_id", st.TeacherID).Error
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, st)
}

// DeleteStudent removes the student with its sessions and records.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c)
	if !ok {
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var st models.Student
	if err := auth.FindScoped(db, &st, studentID, auth.ScopeFor(id).Students(), "student"); err != nil {
		fail(c, err)
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.Session{}, &models.Tutoring{}, &models.Payment{}, &models.Evaluation{}} {
			if err := tx.Where("student_id = ?", st.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&st).Error
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, gin.H{"message": "student deleted"})
}
