package models

import "time"

// Product é um item de estoque (peças, óleo, etc.)
type Product struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	WorkshopID uint `gorm:"index" json:"workshop_id"`

	Name        string  `gorm:"size:100;not null" json:"name"`
	Description string  `gorm:"size:255" json:"description"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost"`
	Stock       int     `gorm:"default:0" json:"stock"`
	MinStock    int     `gorm:"default:0" json:"min_stock"`
	Active      bool    `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
