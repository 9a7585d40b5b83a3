package counter

import (
	"time"
)

// Counter is a named persisted sequence. The parcel numbering counter is
// bumped with a single atomic upsert so concurrent bookings can never read
// the same value.
type Counter struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ParcelSequence is the logical counter behind parcel_id_short numbering.
const ParcelSequence = "parcel_sequence"
