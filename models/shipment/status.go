package shipment

import "time"

// Status is the customer-facing delivery pipeline state.
type Status string

const (
	StatusBooked         Status = "booked"
	StatusPendingPickup  Status = "pending_pickup"
	StatusPendingDropoff Status = "pending_dropoff"
	StatusPickedUp       Status = "picked_up"
	StatusInTransit      Status = "in_transit"
	StatusCustoms        Status = "customs"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"

	// StatusPending predates the booked/pending_pickup split. No current
	// operation produces it, but rows written by older releases still carry
	// it and remain cancellable.
	StatusPending Status = "pending"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusBooked, StatusPendingPickup, StatusPendingDropoff, StatusPickedUp,
		StatusInTransit, StatusCustoms, StatusOutForDelivery, StatusDelivered,
		StatusCancelled, StatusPending:
		return true
	default:
		return false
	}
}

// IsTerminal returns true when no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// transitions is the single source of truth for the forward pipeline. Cancel,
// drop-off toggles and reschedule have their own allow-lists below and never
// go through this table.
var transitions = map[Status][]Status{
	StatusBooked:         {StatusPendingPickup, StatusPickedUp},
	StatusPendingPickup:  {StatusPickedUp},
	StatusPendingDropoff: {StatusPickedUp},
	StatusPending:        {StatusPickedUp},
	StatusPickedUp:       {StatusInTransit},
	StatusInTransit:      {StatusCustoms},
	StatusCustoms:        {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// NextStatuses returns the forward transitions legal from the given status.
func NextStatuses(from Status) []Status {
	return transitions[from]
}

// CanTransition reports whether from -> to is a legal forward transition.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CancellableStatuses are the only source states cancel may act on.
var CancellableStatuses = []Status{StatusBooked, StatusPendingPickup, StatusPendingDropoff, StatusPending}

func (s Status) CanBeCancelled() bool {
	for _, c := range CancellableStatuses {
		if s == c {
			return true
		}
	}
	return false
}

// DropoffEligibleStatuses are the source states from which a customer may
// switch to self drop-off. The same set gates reschedule.
var DropoffEligibleStatuses = []Status{StatusBooked, StatusPendingPickup}

func (s Status) CanSwitchToDropoff() bool {
	for _, d := range DropoffEligibleStatuses {
		if s == d {
			return true
		}
	}
	return false
}

func (s Status) CanCancelDropoff() bool {
	return s == StatusPendingDropoff
}

func (s Status) CanBeRescheduled() bool {
	return s.CanSwitchToDropoff()
}

// Apply sets the status and stamps the matching timestamp field if it has
// never been set. A timestamp, once written, is never overwritten by a later
// transition.
func (sh *Shipment) Apply(to Status, at time.Time) {
	sh.Status = to
	switch to {
	case StatusPickedUp:
		if sh.PickedUpAt == nil {
			sh.PickedUpAt = &at
		}
	case StatusInTransit:
		if sh.InTransitAt == nil {
			sh.InTransitAt = &at
		}
	case StatusCustoms:
		if sh.CustomsAt == nil {
			sh.CustomsAt = &at
		}
	case StatusOutForDelivery:
		if sh.OutForDeliveryAt == nil {
			sh.OutForDeliveryAt = &at
		}
	case StatusDelivered:
		if sh.DeliveredAt == nil {
			sh.DeliveredAt = &at
		}
	case StatusCancelled:
		if sh.CancelledAt == nil {
			sh.CancelledAt = &at
		}
	}
}

// TimestampColumn names the database column stamped when the given status is
// entered, or "" when the status carries no timestamp of its own.
func TimestampColumn(s Status) string {
	switch s {
	case StatusPickedUp:
		return "picked_up_at"
	case StatusInTransit:
		return "in_transit_at"
	case StatusCustoms:
		return "customs_at"
	case StatusOutForDelivery:
		return "out_for_delivery_at"
	case StatusDelivered:
		return "delivered_at"
	case StatusCancelled:
		return "cancelled_at"
	default:
		return ""
	}
}

// WarehouseStatus tracks the parcel's physical handling stage inside the
// warehouse. It is an independent axis from Status and is not ordered
// against it.
type WarehouseStatus string

const (
	WarehouseNotArrived WarehouseStatus = "not_arrived"
	WarehouseReceived   WarehouseStatus = "received"
	WarehouseSorted     WarehouseStatus = "sorted"
	WarehousePacked     WarehouseStatus = "packed"
	WarehouseShipped    WarehouseStatus = "shipped"
)

func (ws WarehouseStatus) String() string {
	return string(ws)
}

func (ws WarehouseStatus) IsValid() bool {
	switch ws {
	case WarehouseNotArrived, WarehouseReceived, WarehouseSorted, WarehousePacked, WarehouseShipped:
		return true
	default:
		return false
	}
}

// GetAllWarehouseStatuses returns the fixed allow-list of warehouse statuses.
func GetAllWarehouseStatuses() []WarehouseStatus {
	return []WarehouseStatus{
		WarehouseNotArrived,
		WarehouseReceived,
		WarehouseSorted,
		WarehousePacked,
		WarehouseShipped,
	}
}
