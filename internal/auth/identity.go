package auth

import (
	"context"

	"reforco-escolar/internal/models"
)

// Role is the caller's authorization role.
type Role string

const (
	RoleAdmin   Role = models.RoleAdmin
	RoleTeacher Role = models.RoleTeacher
	RoleStudent Role = "STUDENT"
)

// Kind tells which table an identity was resolved from.
type Kind string

const (
	KindStaff   Kind = "user"
	KindStudent Kind = "student"
)

// Identity is an authenticated principal: a staff user or a student.
// Exactly one of User and Student is set, matching Kind.
type Identity struct {
	Kind    Kind
	ID      uint
	Email   string
	Name    string
	Role    Role
	User    *models.User
	Student *models.Student
}

// StaffIdentity wraps a staff user; the role comes from the stored column.
func StaffIdentity(u *models.User) Identity {
	return Identity{
		Kind:  KindStaff,
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  Role(u.Role),
		User:  u,
	}
}

// StudentIdentity wraps a student; the role is always STUDENT.
func StudentIdentity(s *models.Student) Identity {
	email := ""
	if s.Email != nil {
		email = *s.Email
	}
	return Identity{
		Kind:    KindStudent,
		ID:      s.ID,
		Email:   email,
		Name:    s.Name,
		Role:    RoleStudent,
		Student: s,
	}
}

func (i Identity) IsAdmin() bool   { return i.Role == RoleAdmin }
func (i Identity) IsTeacher() bool { return i.Role == RoleTeacher }
func (i Identity) IsStudent() bool { return i.Kind == KindStudent }
func (i Identity) IsStaff() bool   { return i.Kind == KindStaff }

// PasswordHash returns the stored hash for whichever record backs the identity.
func (i Identity) PasswordHash() string {
	if i.Student != nil {
		return i.Student.PasswordHash
	}
	if i.User != nil {
		return i.User.PasswordHash
	}
	return ""
}

// Profile is the public JSON view of an identity; it never carries a hash.
type Profile struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	ThemeColor  string `json:"themeColor,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
	TeacherID   *uint  `json:"teacherId,omitempty"`
	Grade       string `json:"grade,omitempty"`
}

func (i Identity) Profile() Profile {
	p := Profile{ID: i.ID, Name: i.Name, Email: i.Email, Role: i.Role}
	switch {
	case i.User != nil:
		p.Phone = i.User.Phone
		p.CompanyName = i.User.CompanyName
		p.ThemeColor = i.User.ThemeColor
		p.AvatarURL = i.User.AvatarURL
		p.LogoURL = i.User.LogoURL
	case i.Student != nil:
		teacherID := i.Student.TeacherID
		p.Phone = i.Student.Phone
		p.TeacherID = &teacherID
		p.Grade = i.Student.Grade
	}
	return p
}

type identityKey struct{}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext extracts the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
