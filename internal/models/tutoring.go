package models

import "time"

const (
	TutoringScheduled = "SCHEDULED"
	TutoringCompleted = "COMPLETED"
	TutoringCanceled  = "CANCELED"
)

// Tutoring is one scheduled lesson for a student.
type Tutoring struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StudentID       uint      `gorm:"index;not null" json:"studentId"`
	TeacherID       uint      `gorm:"index;not null" json:"teacherId"`
	Subject         string    `gorm:"size:80;not null" json:"subject"`
	ScheduledAt     time.Time `gorm:"index;not null" json:"scheduledAt"`
	DurationMinutes int       `gorm:"not null;default:60" json:"durationMinutes"`
	Status          string    `gorm:"size:16;index;not null" json:"status"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Student *Student `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
}
