package models

import "time"

const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentCanceled = "CANCELED"
)

// Payment is a charge to a student. Amounts are stored in cents.
type Payment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StudentID   uint       `gorm:"index;not null" json:"studentId"`
	AmountCents int64      `gorm:"not null" json:"amountCents"`
	DueDate     time.Time  `gorm:"index;not null" json:"dueDate"`
	PaidAt      *time.Time `json:"paidAt"`
	Status      string     `gorm:"size:16;index;not null" json:"status"`
	Method      string     `gorm:"size:32" json:"method"` // PIX, cash, card...
	Description string     `gorm:"size:255" json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Student *Student `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
}
