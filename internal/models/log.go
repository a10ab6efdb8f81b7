package models

import "time"

// AuditLog records mutating requests made by authenticated callers.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"userId,omitempty"`
	StudentID *uint     `gorm:"index" json:"studentId,omitempty"`
	Role      string    `gorm:"size:16;index" json:"role"`
	Method    string    `gorm:"size:16" json:"method"`
	Path      string    `gorm:"size:255" json:"path"`
	Status    int       `json:"status"`
	IP        string    `gorm:"size:64" json:"ip"`
	UserAgent string    `gorm:"size:255" json:"userAgent"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
