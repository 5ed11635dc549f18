package models

import "time"

// Cliente da oficina, sem login, vinculado ao workshop
type Client struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	WorkshopID uint `gorm:"index" json:"workshop_id"`

	Name     string `gorm:"size:100;not null" json:"name"`
	Phone    string `gorm:"size:20" json:"phone"`
	Email    string `gorm:"size:100" json:"email"`
	Document string `gorm:"size:20" json:"document"`
	Notes    string `gorm:"size:255" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
