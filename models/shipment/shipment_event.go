package shipment

import (
	"time"
)

// ShipmentEvent is a full-row snapshot of a shipment taken whenever a
// mutating operation runs, tagged with the operation name.
type ShipmentEvent struct {
	ID         uint `gorm:"primaryKey;autoIncrement" json:"id"`
	ShipmentID uint `gorm:"not null;index" json:"shipment_id"`

	TrackingNumber string `gorm:"type:varchar(50);not null;index" json:"tracking_number"`
	ParcelID       string `gorm:"type:varchar(30);not null" json:"parcel_id"`
	ParcelIDShort  string `gorm:"type:varchar(20);not null" json:"parcel_id_short"`

	SenderID      uint   `gorm:"not null" json:"sender_id"`
	ReceiverName  string `gorm:"type:varchar(255);not null" json:"receiver_name"`
	ReceiverPhone string `gorm:"type:varchar(20);not null" json:"receiver_phone"`

	PickupCity      string     `gorm:"type:varchar(120)" json:"pickup_city"`
	PickupAddress   string     `gorm:"type:text" json:"pickup_address"`
	DeliveryCity    string     `gorm:"type:varchar(120)" json:"delivery_city"`
	DeliveryAddress string     `gorm:"type:text" json:"delivery_address"`
	PickupDate      *time.Time `json:"pickup_date,omitempty"`

	WeightKG   float64 `gorm:"type:decimal(8,2)" json:"weight_kg"`
	ParcelSize string  `gorm:"type:varchar(20)" json:"parcel_size"`

	Status          Status          `gorm:"type:varchar(30);not null" json:"status"`
	WarehouseStatus WarehouseStatus `gorm:"type:varchar(30);not null" json:"warehouse_status"`

	PickupDriverID   *uint `json:"pickup_driver_id,omitempty"`
	DeliveryDriverID *uint `json:"delivery_driver_id,omitempty"`

	IsSelfDropoff bool   `json:"is_self_dropoff"`
	AdminNotes    string `gorm:"type:text" json:"admin_notes"`

	// Operation that produced this snapshot, e.g. "status_updated" or
	// "delivery_driver_assigned".
	EventType string `gorm:"type:varchar(60);not null;index" json:"event_type"`

	CreatedBy string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
