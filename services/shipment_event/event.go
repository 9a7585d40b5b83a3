package shipment_event

import (
	shipmentModel "mm-shipping/models/shipment"

	"gorm.io/gorm"
)

// SnapshotShipmentToEvent writes a full snapshot of a Shipment row into
// ShipmentEvent with the given event type.
func SnapshotShipmentToEvent(tx *gorm.DB, s *shipmentModel.Shipment, eventType string, updatedBy string) error {
	// Refresh the row so the snapshot reflects what was just persisted.
	if err := tx.First(s, s.ID).Error; err != nil {
		return err
	}

	ev := shipmentModel.ShipmentEvent{
		ShipmentID:     s.ID,
		TrackingNumber: s.TrackingNumber,
		ParcelID:       s.ParcelID,
		ParcelIDShort:  s.ParcelIDShort,

		SenderID:      s.SenderID,
		ReceiverName:  s.ReceiverName,
		ReceiverPhone: s.ReceiverPhone,

		PickupCity:      s.PickupCity,
		PickupAddress:   s.PickupAddress,
		DeliveryCity:    s.DeliveryCity,
		DeliveryAddress: s.DeliveryAddress,
		PickupDate:      s.PickupDate,

		WeightKG:   s.WeightKG,
		ParcelSize: s.ParcelSize,

		Status:          s.Status,
		WarehouseStatus: s.WarehouseStatus,

		PickupDriverID:   s.PickupDriverID,
		DeliveryDriverID: s.DeliveryDriverID,

		IsSelfDropoff: s.IsSelfDropoff,
		AdminNotes:    s.AdminNotes,

		EventType: eventType,
		CreatedBy: updatedBy,
	}

	return tx.Create(&ev).Error
}
