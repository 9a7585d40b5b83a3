package parcelid

import (
	"strings"
	"testing"
	"time"

	shipmentModel "mm-shipping/models/shipment"
	"mm-shipping/models/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatParcelID(t *testing.T) {
	bookedAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, "MM-UK-2025-00001", FormatParcelID(1, bookedAt))
	assert.Equal(t, "MM-UK-2025-00482", FormatParcelID(482, bookedAt))
	assert.Equal(t, "MM-UK-2025-99999", FormatParcelID(99999, bookedAt))

	// Sequences beyond five digits widen rather than truncate.
	assert.Equal(t, "MM-UK-2025-123456", FormatParcelID(123456, bookedAt))

	nextYear := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "MM-UK-2026-00482", FormatParcelID(482, nextYear))
}

func TestFormatShortID(t *testing.T) {
	assert.Equal(t, "MM1", FormatShortID(1))
	assert.Equal(t, "MM482", FormatShortID(482))
	assert.Equal(t, "MM100000", FormatShortID(100000))
}

func TestNewTrackingNumber(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 45, 0, time.UTC)

	tn := NewTrackingNumber(at)
	assert.True(t, strings.HasPrefix(tn, "MMT20250314093045"))
	assert.Len(t, tn, len("MMT")+14+6)
	assert.Equal(t, strings.ToUpper(tn), tn)

	// The random suffix makes collisions within a second implausible.
	other := NewTrackingNumber(at)
	assert.NotEqual(t, tn, other)
}

func TestClassifySize(t *testing.T) {
	tests := []struct {
		weightKG float64
		want     string
	}{
		{0.5, "small"},
		{5, "small"},
		{5.01, "medium"},
		{6, "medium"},
		{15, "medium"},
		{15.5, "large"},
		{30, "large"},
		{30.1, "extra_large"},
		{120, "extra_large"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifySize(tt.weightKG), "weight %.2f", tt.weightKG)
	}
}

func sampleShipment() *shipmentModel.Shipment {
	return &shipmentModel.Shipment{
		TrackingNumber: "MMT20250314093045ABCDEF",
		ParcelID:       "MM-UK-2025-00482",
		ParcelIDShort:  "MM482",
		Sender: user.User{
			LegalName: "Ama Mensah",
			Phone:     "+447700900123",
		},
		ReceiverName:    "Kofi Mensah",
		ReceiverPhone:   "+233244123456",
		PickupCity:      "London",
		PickupAddress:   "12 Peckham High St",
		DeliveryCity:    "Accra",
		DeliveryAddress: "4 Oxford St, Osu",
		WeightKG:        6,
		ParcelType:      "box",
		ParcelSize:      "medium",
		Status:          shipmentModel.StatusBooked,
		BookedAt:        time.Date(2025, 3, 14, 9, 30, 45, 0, time.UTC),
	}
}

func TestBuildScanPayload(t *testing.T) {
	p := BuildScanPayload(sampleShipment())

	assert.Equal(t, "MM-UK-2025-00482", p.ParcelID)
	assert.Equal(t, "MM482", p.ParcelIDShort)
	assert.Equal(t, "Ama Mensah", p.CustomerName)
	assert.Equal(t, "+447700900123", p.CustomerPhone)
	assert.Equal(t, "Kofi Mensah", p.ReceiverName)
	assert.Equal(t, "12 Peckham High St, London", p.PickupLocation)
	assert.Equal(t, "Accra", p.Destination)
	assert.Equal(t, "MMT20250314093045ABCDEF", p.TrackingNumber)
	assert.Equal(t, "2025-03-14T09:30:45Z", p.BookedAt)
	assert.Equal(t, "booked", p.Status)
}

func TestScanPayloadRoundTrip(t *testing.T) {
	p := BuildScanPayload(sampleShipment())

	encoded, err := EncodeScanPayload(p)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "{"))

	decoded, err := DecodeScanPayload(encoded)
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestDecodeScanPayloadRejectsGarbage(t *testing.T) {
	_, err := DecodeScanPayload("not json")
	assert.Error(t, err)
}
