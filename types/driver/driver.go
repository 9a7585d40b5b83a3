package driver

import (
	"fmt"
)

// AssignDriverRequest binds or clears a driver on a shipment. A zero/absent
// driver_id means unassignment.
type AssignDriverRequest struct {
	DriverID uint   `json:"driver_id"`
	Type     string `json:"type"` // pickup | delivery
}

func (r AssignDriverRequest) Validate() error {
	if r.Type != "pickup" && r.Type != "delivery" {
		return fmt.Errorf("type must be either 'pickup' or 'delivery'")
	}
	return nil
}
