package shipment

import (
	"encoding/json"
	"testing"
	"time"

	driverModel "mm-shipping/models/driver"
	shipmentModel "mm-shipping/models/shipment"
	userModel "mm-shipping/models/user"

	"github.com/jinzhu/now"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingViewScrubsSender(t *testing.T) {
	senderToken := "sender-push-token"
	driverToken := "driver-push-token"
	email := "ama@example.com"
	driverID := uint(7)

	s := &shipmentModel.Shipment{
		TrackingNumber: "MMT20250314093045ABCDEF",
		Sender: userModel.User{
			Uuid:              "8f14e45f-ceea-467f-a0e6-b7b1c3f5a2d1",
			Username:          "ama.mensah",
			LegalName:         "Ama Mensah",
			Phone:             "+447700900123",
			Email:             &email,
			NotificationToken: &senderToken,
		},
		PickupDriverID: &driverID,
		PickupDriver: &driverModel.Driver{
			ID:                 driverID,
			Name:               "Kwame Osei",
			Phone:              "+447700900456",
			VerificationStatus: driverModel.VerificationVerified,
			NotificationToken:  &driverToken,
		},
	}

	raw, err := json.Marshal(newTrackingView(s))
	require.NoError(t, err)
	body := string(raw)

	// Contact details survive for the public lookup.
	assert.Contains(t, body, "Ama Mensah")
	assert.Contains(t, body, "+447700900123")
	assert.Contains(t, body, "Kwame Osei")

	// Credentials and account identifiers never do.
	assert.NotContains(t, body, senderToken)
	assert.NotContains(t, body, driverToken)
	assert.NotContains(t, body, "notification_token")
	assert.NotContains(t, body, email)
	assert.NotContains(t, body, "ama.mensah")
	assert.NotContains(t, body, "8f14e45f-ceea-467f-a0e6-b7b1c3f5a2d1")
}

func TestTrackingViewOmitsUnassignedDrivers(t *testing.T) {
	s := &shipmentModel.Shipment{
		TrackingNumber: "MMT20250314093045ABCDEF",
		Sender:         userModel.User{LegalName: "Ama Mensah", Phone: "+447700900123"},
	}

	view := newTrackingView(s)
	assert.Nil(t, view.PickupDriver)
	assert.Nil(t, view.DeliveryDriver)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "pickup_driver")
}

func TestParsePickupDateAcceptsToday(t *testing.T) {
	today := time.Now().Format("2006-01-02")

	d, err := parsePickupDate(today)
	require.NoError(t, err)

	// Today must never read as past, whatever the server's UTC offset.
	assert.False(t, d.Before(now.BeginningOfDay()))
}

func TestParsePickupDateRejectsMalformed(t *testing.T) {
	for _, value := range []string{"14-03-2025", "2025/03/14", "tomorrow", ""} {
		_, err := parsePickupDate(value)
		assert.Error(t, err, "value %q", value)
	}
}
