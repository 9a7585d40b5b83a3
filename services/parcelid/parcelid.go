package parcelid

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	shipmentModel "mm-shipping/models/shipment"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	parcelPrefix   = "MM"
	trackingPrefix = "MMT"
	qrDir          = "./qr_codes"
	qrSizePx       = 300
)

// FormatParcelID builds the long warehouse label id, e.g. MM-UK-2025-00482.
func FormatParcelID(sequence int64, bookedAt time.Time) string {
	return fmt.Sprintf("%s-UK-%d-%05d", parcelPrefix, bookedAt.Year(), sequence)
}

// FormatShortID builds the short label id, e.g. MM482. No zero padding.
func FormatShortID(sequence int64) string {
	return fmt.Sprintf("%s%d", parcelPrefix, sequence)
}

// NewTrackingNumber generates the public lookup key: prefix, UTC timestamp
// and a random suffix. Independent of the parcel sequence.
func NewTrackingNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return trackingPrefix + at.UTC().Format("20060102150405") + suffix
}

// ClassifySize derives the parcel size from weight alone. Dimensions are
// accepted on booking but do not participate in the classification.
func ClassifySize(weightKG float64) string {
	switch {
	case weightKG <= 5:
		return "small"
	case weightKG <= 15:
		return "medium"
	case weightKG <= 30:
		return "large"
	default:
		return "extra_large"
	}
}

// ScanPayload is the flat JSON blob encoded into the shipment QR code. It
// summarizes identity, parcel and destination data for offline warehouse
// scanning.
type ScanPayload struct {
	ParcelID       string  `json:"parcel_id"`
	ParcelIDShort  string  `json:"parcel_id_short"`
	CustomerName   string  `json:"customer_name"`
	CustomerPhone  string  `json:"customer_phone"`
	ReceiverName   string  `json:"receiver_name"`
	ReceiverPhone  string  `json:"receiver_phone"`
	ParcelType     string  `json:"parcel_type"`
	ParcelSize     string  `json:"parcel_size"`
	WeightKG       float64 `json:"weight_kg"`
	PickupLocation string  `json:"pickup_location"`
	Destination    string  `json:"destination"`
	TrackingNumber string  `json:"tracking_number"`
	BookedAt       string  `json:"booked_at"`
	Status         string  `json:"status"`
}

// BuildScanPayload assembles the payload from a shipment with its sender
// loaded. Pure given its inputs.
func BuildScanPayload(s *shipmentModel.Shipment) ScanPayload {
	return ScanPayload{
		ParcelID:       s.ParcelID,
		ParcelIDShort:  s.ParcelIDShort,
		CustomerName:   s.Sender.LegalName,
		CustomerPhone:  s.Sender.Phone,
		ReceiverName:   s.ReceiverName,
		ReceiverPhone:  s.ReceiverPhone,
		ParcelType:     s.ParcelType,
		ParcelSize:     s.ParcelSize,
		WeightKG:       s.WeightKG,
		PickupLocation: s.PickupAddress + ", " + s.PickupCity,
		Destination:    s.DeliveryCity,
		TrackingNumber: s.TrackingNumber,
		BookedAt:       s.BookedAt.UTC().Format(time.RFC3339),
		Status:         s.Status.String(),
	}
}

// EncodeScanPayload serializes the payload for storage alongside the
// shipment row.
func EncodeScanPayload(p ScanPayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal scan payload: %w", err)
	}
	return string(data), nil
}

// DecodeScanPayload parses a stored scan payload.
func DecodeScanPayload(data string) (ScanPayload, error) {
	var p ScanPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return ScanPayload{}, fmt.Errorf("unmarshal scan payload: %w", err)
	}
	return p, nil
}

// RenderQR writes the payload as a 300x300 high-error-correction PNG and
// returns its path. Warehouse scanners read labels through shrink wrap, so
// ECC stays at High.
func RenderQR(payload string, trackingNumber string) (string, error) {
	if err := os.MkdirAll(qrDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create qr directory: %w", err)
	}

	path := filepath.Join(qrDir, trackingNumber+".png")
	if err := qrcode.WriteFile(payload, qrcode.High, qrSizePx, path); err != nil {
		return "", fmt.Errorf("render qr image: %w", err)
	}
	return path, nil
}
