package sequence

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"mm-shipping/logger"
	"mm-shipping/models/counter"
	shipmentModel "mm-shipping/models/shipment"

	"gorm.io/gorm"
)

// Allocator produces the strictly increasing integer behind parcel_id_short.
// The primary path is a single atomic upsert on the parcel_counters row, so
// two concurrent bookings can never observe the same value. The fallback
// chain below trades strict uniqueness for forward progress and logs loudly
// whenever it is exercised.
type Allocator struct {
	DB *gorm.DB
}

func NewAllocator(db *gorm.DB) *Allocator {
	return &Allocator{DB: db}
}

// Next returns the next parcel sequence number.
func (a *Allocator) Next() (int64, error) {
	value, err := a.nextAtomic()
	if err == nil {
		return value, nil
	}
	logger.Warning(fmt.Sprintf("Atomic sequence allocation failed, falling back to latest-suffix scan: %v", err))

	value, err = a.nextFromLatestSuffix()
	if err == nil {
		return value, nil
	}
	logger.Warning(fmt.Sprintf("Latest-suffix fallback failed, falling back to row count: %v", err))

	value, err = a.nextFromCount()
	if err == nil {
		return value, nil
	}
	logger.Error("Row-count fallback failed, issuing random sequence; uniqueness is no longer guaranteed", err)

	return randomLargeSequence(), nil
}

// nextAtomic bumps the named counter row in one statement.
func (a *Allocator) nextAtomic() (int64, error) {
	var value int64
	err := a.DB.Raw(
		`INSERT INTO counters (name, value, updated_at) VALUES (?, 1, NOW())
		 ON CONFLICT (name) DO UPDATE SET value = counters.value + 1, updated_at = NOW()
		 RETURNING value`,
		counter.ParcelSequence,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("counter returned non-positive value %d", value)
	}
	return value, nil
}

// nextFromLatestSuffix reads the most recently created shipment that carries a
// short parcel id and returns its numeric suffix plus one. Racy under
// concurrent bookings, which is why it is a fallback only.
func (a *Allocator) nextFromLatestSuffix() (int64, error) {
	var latest shipmentModel.Shipment
	err := a.DB.
		Where("parcel_id_short <> ''").
		Order("created_at DESC").
		First(&latest).Error
	if err == gorm.ErrRecordNotFound {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	suffix, err := ExtractSuffix(latest.ParcelIDShort)
	if err != nil {
		return 0, err
	}
	return suffix + 1, nil
}

func (a *Allocator) nextFromCount() (int64, error) {
	var count int64
	if err := a.DB.Model(&shipmentModel.Shipment{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count + 1, nil
}

// ExtractSuffix parses the numeric part of a short parcel id, e.g. "MM482" -> 482.
func ExtractSuffix(shortID string) (int64, error) {
	digits := strings.TrimPrefix(shortID, "MM")
	if digits == shortID || digits == "" {
		return 0, fmt.Errorf("malformed short parcel id %q", shortID)
	}
	suffix, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed short parcel id %q: %w", shortID, err)
	}
	return suffix, nil
}

// randomLargeSequence guarantees forward progress when every database path is
// down. Collisions are possible but bookings keep working.
func randomLargeSequence() int64 {
	return 1_000_000_000 + rand.Int63n(1_000_000_000)
}
