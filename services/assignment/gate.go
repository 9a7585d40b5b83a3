package assignment

import (
	"errors"
	"time"

	driverModel "mm-shipping/models/driver"
	shipmentModel "mm-shipping/models/shipment"

	"gorm.io/gorm"
)

// Kind selects which leg of the journey a driver is being bound to.
type Kind string

const (
	KindPickup   Kind = "pickup"
	KindDelivery Kind = "delivery"
)

func (k Kind) IsValid() bool {
	return k == KindPickup || k == KindDelivery
}

var (
	ErrDriverNotFound  = errors.New("driver not found")
	ErrNotADriver      = errors.New("candidate does not have the driver role")
	ErrWrongDriverType = errors.New("driver type does not match the requested assignment")
	ErrNotVerified     = errors.New("driver is not verified")
)

// Gate validates a candidate driver before a shipment may be bound to them.
type Gate struct {
	DB *gorm.DB
}

func NewGate(db *gorm.DB) *Gate {
	return &Gate{DB: db}
}

// ValidateEligibility applies the role, type and verification rules for the
// requested kind. requireVerified is false on the admin path only.
func ValidateEligibility(d *driverModel.Driver, kind Kind, requireVerified bool) error {
	if d.Role != driverModel.RoleDriver {
		return ErrNotADriver
	}
	switch kind {
	case KindPickup:
		if d.DriverType != driverModel.TypeUKPickup {
			return ErrWrongDriverType
		}
	case KindDelivery:
		if d.DriverType != driverModel.TypeGhanaDelivery {
			return ErrWrongDriverType
		}
	}
	if requireVerified && d.VerificationStatus != driverModel.VerificationVerified {
		return ErrNotVerified
	}
	return nil
}

// Assign binds an eligible driver to the shipment. A successful delivery
// assignment also forces the shipment into out_for_delivery through the state
// machine's Apply, so the implicit rule is visible here and nowhere else.
// The caller persists the mutated shipment.
func (g *Gate) Assign(s *shipmentModel.Shipment, driverID uint, kind Kind, requireVerified bool, at time.Time) (*driverModel.Driver, error) {
	var d driverModel.Driver
	if err := g.DB.First(&d, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	if err := ValidateEligibility(&d, kind, requireVerified); err != nil {
		return nil, err
	}

	switch kind {
	case KindPickup:
		s.PickupDriverID = &d.ID
	case KindDelivery:
		s.DeliveryDriverID = &d.ID
		s.Apply(shipmentModel.StatusOutForDelivery, at)
	}
	return &d, nil
}

// Unassign clears the driver binding for the given kind. Removal is not a
// grant, so it bypasses every eligibility check.
func Unassign(s *shipmentModel.Shipment, kind Kind) {
	switch kind {
	case KindPickup:
		s.PickupDriverID = nil
		s.PickupDriver = nil
	case KindDelivery:
		s.DeliveryDriverID = nil
		s.DeliveryDriver = nil
	}
}
