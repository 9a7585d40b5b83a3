package assignment

import (
	"testing"
	"time"

	driverModel "mm-shipping/models/driver"
	shipmentModel "mm-shipping/models/shipment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifiedDriver(dt driverModel.DriverType) *driverModel.Driver {
	return &driverModel.Driver{
		ID:                 7,
		Role:               driverModel.RoleDriver,
		DriverType:         dt,
		VerificationStatus: driverModel.VerificationVerified,
	}
}

func TestValidateEligibility(t *testing.T) {
	tests := []struct {
		name            string
		mutate          func(*driverModel.Driver)
		kind            Kind
		requireVerified bool
		wantErr         error
	}{
		{
			name:   "verified uk pickup driver for pickup",
			mutate: func(d *driverModel.Driver) {},
			kind:   KindPickup, requireVerified: true,
			wantErr: nil,
		},
		{
			name:   "admin role rejected",
			mutate: func(d *driverModel.Driver) { d.Role = driverModel.RoleAdmin },
			kind:   KindPickup, requireVerified: true,
			wantErr: ErrNotADriver,
		},
		{
			name:   "plain user role rejected",
			mutate: func(d *driverModel.Driver) { d.Role = driverModel.RoleUser },
			kind:   KindPickup, requireVerified: true,
			wantErr: ErrNotADriver,
		},
		{
			name:   "ghana driver cannot take pickup leg",
			mutate: func(d *driverModel.Driver) { d.DriverType = driverModel.TypeGhanaDelivery },
			kind:   KindPickup, requireVerified: true,
			wantErr: ErrWrongDriverType,
		},
		{
			name:   "unverified rejected when verification required",
			mutate: func(d *driverModel.Driver) { d.VerificationStatus = driverModel.VerificationPending },
			kind:   KindPickup, requireVerified: true,
			wantErr: ErrNotVerified,
		},
		{
			name:   "unverified allowed on the admin path",
			mutate: func(d *driverModel.Driver) { d.VerificationStatus = driverModel.VerificationPending },
			kind:   KindPickup, requireVerified: false,
			wantErr: nil,
		},
		{
			name:   "rejected driver blocked even with matching type",
			mutate: func(d *driverModel.Driver) { d.VerificationStatus = driverModel.VerificationRejected },
			kind:   KindPickup, requireVerified: true,
			wantErr: ErrNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := verifiedDriver(driverModel.TypeUKPickup)
			tt.mutate(d)
			err := ValidateEligibility(d, tt.kind, tt.requireVerified)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEligibilityDeliveryKind(t *testing.T) {
	d := verifiedDriver(driverModel.TypeGhanaDelivery)
	assert.NoError(t, ValidateEligibility(d, KindDelivery, true))

	d.DriverType = driverModel.TypeUKPickup
	assert.ErrorIs(t, ValidateEligibility(d, KindDelivery, true), ErrWrongDriverType)
}

func TestKindIsValid(t *testing.T) {
	assert.True(t, KindPickup.IsValid())
	assert.True(t, KindDelivery.IsValid())
	assert.False(t, Kind("return").IsValid())
	assert.False(t, Kind("").IsValid())
}

func TestDeliveryAssignmentForcesOutForDelivery(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	driverID := uint(7)

	s := &shipmentModel.Shipment{Status: shipmentModel.StatusCustoms}
	s.DeliveryDriverID = &driverID
	s.Apply(shipmentModel.StatusOutForDelivery, at)

	assert.Equal(t, shipmentModel.StatusOutForDelivery, s.Status)
	require.NotNil(t, s.OutForDeliveryAt)
	assert.Equal(t, at, *s.OutForDeliveryAt)

	// Reassignment later must not move the original stamp.
	s.Apply(shipmentModel.StatusOutForDelivery, at.Add(time.Hour))
	assert.Equal(t, at, *s.OutForDeliveryAt)
}

func TestUnassign(t *testing.T) {
	pickupID, deliveryID := uint(3), uint(9)
	s := &shipmentModel.Shipment{
		PickupDriverID:   &pickupID,
		DeliveryDriverID: &deliveryID,
	}

	Unassign(s, KindPickup)
	assert.Nil(t, s.PickupDriverID)
	assert.Nil(t, s.PickupDriver)
	assert.NotNil(t, s.DeliveryDriverID)

	Unassign(s, KindDelivery)
	assert.Nil(t, s.DeliveryDriverID)
	assert.Nil(t, s.DeliveryDriver)

	// Unassigning an already-empty leg is a no-op.
	Unassign(s, KindPickup)
	assert.Nil(t, s.PickupDriverID)
}
