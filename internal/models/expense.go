package models

import "time"

type Expense struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	WorkshopID uint `gorm:"index" json:"workshop_id"`

	Description string    `gorm:"size:150;not null" json:"description"`
	Category    string    `gorm:"size:50" json:"category"`
	Amount      float64   `gorm:"not null" json:"amount"`
	PaidAt      time.Time `json:"paid_at"`
	Notes       string    `gorm:"size:255" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
