package models

import "time"

// User is a staff account (administrator or teacher).
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:120;not null" json:"name"`
	Email        string `gorm:"size:160;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:16;index;not null" json:"role"` // ADMIN / TEACHER
	Phone        string `gorm:"size:32" json:"phone"`

	// display and theming fields shown in the staff area
	CompanyName string `gorm:"size:120" json:"companyName"`
	ThemeColor  string `gorm:"size:16" json:"themeColor"`
	AvatarURL   string `gorm:"size:512" json:"avatarUrl"`
	LogoURL     string `gorm:"size:512" json:"logoUrl"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
)
