package driver

import (
	"time"
)

type DriverRole string

const (
	RoleDriver DriverRole = "driver"
	RoleAdmin  DriverRole = "admin"
	RoleUser   DriverRole = "user"
)

// DriverType classifies which leg of the journey a driver works.
type DriverType string

const (
	TypeUKPickup      DriverType = "uk_pickup"
	TypeGhanaDelivery DriverType = "ghana_delivery"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Driver is referenced by shipments but owned by the account service.
type Driver struct {
	ID                 uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid               string             `gorm:"type:varchar(255);not null;unique" json:"uuid"`
	Name               string             `gorm:"type:varchar(255);not null" json:"name"`
	Phone              string             `gorm:"type:varchar(20);not null;unique" json:"phone"`
	Role               DriverRole         `gorm:"type:varchar(20);not null;default:driver" json:"role"`
	DriverType         DriverType         `gorm:"type:varchar(30);not null" json:"driver_type"`
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;default:pending" json:"verification_status"`
	NotificationToken  *string            `gorm:"type:varchar(512)" json:"notification_token,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// PublicView is the shape exposed on tracking lookups. Credentials and tokens
// never leave the service.
type PublicView struct {
	Name               string             `json:"name"`
	Phone              string             `json:"phone"`
	VerificationStatus VerificationStatus `json:"verification_status"`
}

func (d *Driver) Public() PublicView {
	return PublicView{
		Name:               d.Name,
		Phone:              d.Phone,
		VerificationStatus: d.VerificationStatus,
	}
}
