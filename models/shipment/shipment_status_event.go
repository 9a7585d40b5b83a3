package shipment

import (
	"time"
)

// ShipmentStatusEvent records every status value a shipment passes through.
type ShipmentStatusEvent struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ShipmentID uint      `gorm:"not null;index" json:"shipment_id"`
	Shipment   Shipment  `gorm:"foreignKey:ShipmentID" json:"-"`
	Status     Status    `gorm:"type:varchar(30);not null" json:"status"`
	CreatedBy  string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
