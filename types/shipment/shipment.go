package shipment

import (
	"fmt"

	shipmentModel "mm-shipping/models/shipment"
)

// ShipmentCreateRequest is the booking payload. Missing required fields are
// reported by name, before any identifier is allocated.
type ShipmentCreateRequest struct {
	ReceiverName    string               `json:"receiver_name"`
	ReceiverPhone   string               `json:"receiver_phone"`
	PickupCity      string               `json:"pickup_city"`
	PickupAddress   string               `json:"pickup_address"`
	DeliveryCity    string               `json:"delivery_city"`
	DeliveryAddress string               `json:"delivery_address"`
	WeightKG        float64              `json:"weight_kg"`
	Dimensions      string               `json:"dimensions"`
	ParcelType      string               `json:"parcel_type"`
	Description     string               `json:"description"`
	PickupDate      string               `json:"pickup_date"` // YYYY-MM-DD, optional
	Items           []shipmentModel.Item `json:"items"`
}

// MissingFields returns the names of the required fields that are absent.
func (r ShipmentCreateRequest) MissingFields() []string {
	var missing []string
	if r.ReceiverName == "" {
		missing = append(missing, "receiver_name")
	}
	if r.ReceiverPhone == "" {
		missing = append(missing, "receiver_phone")
	}
	if r.PickupCity == "" {
		missing = append(missing, "pickup_city")
	}
	if r.PickupAddress == "" {
		missing = append(missing, "pickup_address")
	}
	if r.DeliveryCity == "" {
		missing = append(missing, "delivery_city")
	}
	if r.DeliveryAddress == "" {
		missing = append(missing, "delivery_address")
	}
	if r.WeightKG <= 0 {
		missing = append(missing, "weight_kg")
	}
	return missing
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type RescheduleRequest struct {
	PickupDate string `json:"pickup_date"` // YYYY-MM-DD
	Reason     string `json:"reason"`
}

func (r RescheduleRequest) Validate() error {
	if r.PickupDate == "" {
		return fmt.Errorf("pickup_date is required")
	}
	if r.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	return nil
}

type WarehouseStatusRequest struct {
	WarehouseStatus string `json:"warehouse_status"`
}

func (r WarehouseStatusRequest) Validate() error {
	if r.WarehouseStatus == "" {
		return fmt.Errorf("warehouse_status is required")
	}
	return nil
}
