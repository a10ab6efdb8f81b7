package models

import "time"

// Material is an inventory item. A nil TeacherID means shared company stock.
type Material struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:120;not null" json:"name"`
	Description    string    `gorm:"size:512" json:"description"`
	Quantity       int       `gorm:"not null;default:0" json:"quantity"`
	UnitPriceCents int64     `gorm:"not null;default:0" json:"unitPriceCents"`
	TeacherID      *uint     `gorm:"index" json:"teacherId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
