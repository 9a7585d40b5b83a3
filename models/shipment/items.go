package shipment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Item is one declared parcel content line.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ItemList stores declared items as a JSON column.
type ItemList []Item

// Scan implements the Scanner interface for database deserialization
func (il *ItemList) Scan(value interface{}) error {
	if value == nil {
		*il = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, il)
}

// Value implements the driver Valuer interface for database serialization
func (il ItemList) Value() (driver.Value, error) {
	if il == nil {
		return nil, nil
	}
	return json.Marshal(il)
}
