package models

import "time"

type OrderItem struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	WorkshopID     uint `gorm:"index" json:"workshop_id"`
	ServiceOrderID uint `gorm:"index" json:"service_order_id"`

	// kind define qual referência é preenchida: service_id XOR product_id
	Kind string `gorm:"size:10;not null" json:"kind"`

	ServiceID *uint `json:"service_id"`
	ProductID *uint `json:"product_id"`

	Description string  `gorm:"size:150" json:"description"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	Total       float64 `json:"total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
