package models

import "time"

// Student is a tutoring client. Students with a password may log in.
type Student struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:120;not null" json:"name"`
	Email        *string    `gorm:"size:160;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Phone        string     `gorm:"size:32" json:"phone"`
	GuardianName string     `gorm:"size:120" json:"guardianName"`
	Grade        string     `gorm:"size:32" json:"grade"`
	BirthDate    *time.Time `json:"birthDate"`
	Active       bool       `gorm:"not null" json:"active"`
	TeacherID    uint       `gorm:"index;not null" json:"teacherId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Teacher *User `gorm:"constraint:OnDelete:RESTRICT" json:"teacher,omitempty"`
}

// HasPassword reports whether the student can authenticate.
func (s *Student) HasPassword() bool {
	return s.PasswordHash != ""
}
