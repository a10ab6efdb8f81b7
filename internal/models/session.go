package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrSessionOwner is returned when a session does not reference exactly one identity.
var ErrSessionOwner = errors.New("session must reference exactly one of user or student")

// Session binds a bearer token to one identity until ExpiresAt.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"` // UUID
	Token     string    `gorm:"size:1024;uniqueIndex;not null" json:"-"`
	UserID    *uint     `gorm:"index" json:"userId,omitempty"`
	StudentID *uint     `gorm:"index" json:"studentId,omitempty"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`

	User    *User    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Student *Student `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// ValidateOwner checks the user/student exclusivity.
func (s *Session) ValidateOwner() error {
	if (s.UserID == nil) == (s.StudentID == nil) {
		return ErrSessionOwner
	}
	return nil
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	return s.ValidateOwner()
}
