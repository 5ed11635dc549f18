package models

import "time"

type Vehicle struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	WorkshopID uint `gorm:"uniqueIndex:idx_vehicle_plate" json:"workshop_id"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	Plate string `gorm:"size:16;uniqueIndex:idx_vehicle_plate;not null" json:"plate"`
	Brand string `gorm:"size:50" json:"brand"`
	Model string `gorm:"size:50" json:"model"`
	Year  int    `json:"year"`
	Color string `gorm:"size:30" json:"color"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
