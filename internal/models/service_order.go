package models

import "time"

const (
	OrderStatusOpen      = "open"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type ServiceOrder struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	WorkshopID uint   `gorm:"index" json:"workshop_id"`
	Number     string `gorm:"size:40;uniqueIndex;not null" json:"number"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	VehicleID *uint    `json:"vehicle_id"`
	Vehicle   *Vehicle `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"vehicle,omitempty"`

	Status string `gorm:"size:20;default:'open'" json:"status"`

	// Totais agregados; sempre recalculados na mesma transação
	// que alterou os itens
	ServiceTotal float64 `json:"service_total"`
	ProductTotal float64 `json:"product_total"`
	Total        float64 `json:"total"`

	Items []OrderItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
