package models

import "time"

// Evaluation records a teacher's assessment of a student.
type Evaluation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"index;not null" json:"studentId"`
	Subject     string    `gorm:"size:80;not null" json:"subject"`
	Score       float64   `gorm:"not null" json:"score"` // 0-10
	Comments    string    `gorm:"type:text" json:"comments"`
	EvaluatedAt time.Time `gorm:"index;not null" json:"evaluatedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Student *Student `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
}
