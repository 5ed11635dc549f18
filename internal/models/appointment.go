package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	WorkshopID uint     `gorm:"index" json:"workshop_id"`
	Workshop   Workshop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"workshop"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	// Veículo e mecânico são opcionais; deletar o alvo faz SET NULL
	VehicleID *uint    `gorm:"index" json:"vehicle_id"`
	Vehicle   *Vehicle `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"vehicle,omitempty"`

	MechanicID *uint `gorm:"index" json:"mechanic_id"`
	Mechanic   *User `gorm:"foreignKey:MechanicID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"mechanic,omitempty"`

	ServiceID uint        `json:"service_id"`
	Service   ShopService `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
