package shipment

import (
	"time"

	"mm-shipping/models/driver"
	"mm-shipping/models/user"
)

// Shipment is the central record of a parcel's life from booking in the UK to
// delivery in Ghana.
type Shipment struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Public lookup key. Assigned at creation, never reassigned.
	TrackingNumber string `gorm:"type:varchar(50);not null;uniqueIndex" json:"tracking_number"`

	// Warehouse label identifiers, e.g. MM-UK-2025-00482 and MM482.
	ParcelID      string `gorm:"type:varchar(30);not null;uniqueIndex" json:"parcel_id"`
	ParcelIDShort string `gorm:"type:varchar(20);not null;uniqueIndex" json:"parcel_id_short"`

	SenderID uint      `gorm:"not null;index" json:"sender_id"`
	Sender   user.User `gorm:"foreignKey:SenderID" json:"sender"`

	ReceiverName  string `gorm:"type:varchar(255);not null" json:"receiver_name"`
	ReceiverPhone string `gorm:"type:varchar(20);not null" json:"receiver_phone"`

	PickupCity      string     `gorm:"type:varchar(120);not null" json:"pickup_city"`
	PickupAddress   string     `gorm:"type:text;not null" json:"pickup_address"`
	DeliveryCity    string     `gorm:"type:varchar(120);not null" json:"delivery_city"`
	DeliveryAddress string     `gorm:"type:text;not null" json:"delivery_address"`
	PickupDate      *time.Time `json:"pickup_date,omitempty"`

	WeightKG    float64 `gorm:"type:decimal(8,2);not null" json:"weight_kg"`
	Dimensions  *string `gorm:"type:varchar(100)" json:"dimensions,omitempty"`
	ParcelType  string  `gorm:"type:varchar(50)" json:"parcel_type"`
	ParcelSize  string  `gorm:"type:varchar(20);not null" json:"parcel_size"`
	Description string  `gorm:"type:text" json:"description"`
	Items       ItemList `gorm:"type:json" json:"items"`

	Status          Status          `gorm:"type:varchar(30);not null;index" json:"status"`
	WarehouseStatus WarehouseStatus `gorm:"type:varchar(30);not null;default:not_arrived" json:"warehouse_status"`

	PickupDriverID   *uint          `gorm:"index" json:"pickup_driver_id,omitempty"`
	PickupDriver     *driver.Driver `gorm:"foreignKey:PickupDriverID" json:"pickup_driver,omitempty"`
	DeliveryDriverID *uint          `gorm:"index" json:"delivery_driver_id,omitempty"`
	DeliveryDriver   *driver.Driver `gorm:"foreignKey:DeliveryDriverID" json:"delivery_driver,omitempty"`

	// Each stamped the first time the matching status is entered, never after.
	BookedAt         time.Time  `gorm:"not null" json:"booked_at"`
	PickedUpAt       *time.Time `json:"picked_up_at,omitempty"`
	InTransitAt      *time.Time `json:"in_transit_at,omitempty"`
	CustomsAt        *time.Time `json:"customs_at,omitempty"`
	OutForDeliveryAt *time.Time `json:"out_for_delivery_at,omitempty"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`

	IsSelfDropoff bool `gorm:"default:false" json:"is_self_dropoff"`

	// Append-only audit trail; new notes are concatenated, never replace.
	AdminNotes string `gorm:"type:text" json:"admin_notes"`

	// Serialized scan payload and the rendered QR image path.
	QRCodeData string  `gorm:"type:text" json:"qr_code_data"`
	QRCodeURL  *string `gorm:"type:varchar(512)" json:"qr_code_url,omitempty"`

	CreatedBy string     `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedBy string     `gorm:"type:varchar(255)" json:"updated_by,omitempty"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// AppendNote concatenates a timestamped audit note. Prior notes are never
// rewritten.
func (s *Shipment) AppendNote(note string, at time.Time) {
	entry := "[" + at.UTC().Format(time.RFC3339) + "] " + note
	if s.AdminNotes == "" {
		s.AdminNotes = entry
		return
	}
	s.AdminNotes = s.AdminNotes + "\n" + entry
}

// MarkSelfDropoff switches the booking to a customer warehouse drop-off, with
// an audit note. Callers gate on CanSwitchToDropoff first.
func (s *Shipment) MarkSelfDropoff(actor string, at time.Time) {
	s.Status = StatusPendingDropoff
	s.IsSelfDropoff = true
	s.AppendNote("Switched to self drop-off by "+actor, at)
}

// RevertSelfDropoff returns a pending drop-off to a courier pickup booking,
// with an audit note.
func (s *Shipment) RevertSelfDropoff(actor string, at time.Time) {
	s.Status = StatusBooked
	s.IsSelfDropoff = false
	s.AppendNote("Self drop-off cancelled by "+actor, at)
}
