package shipment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"booked to pending_pickup", StatusBooked, StatusPendingPickup, true},
		{"booked direct to picked_up", StatusBooked, StatusPickedUp, true},
		{"pending_pickup to picked_up", StatusPendingPickup, StatusPickedUp, true},
		{"pending_dropoff to picked_up", StatusPendingDropoff, StatusPickedUp, true},
		{"legacy pending to picked_up", StatusPending, StatusPickedUp, true},
		{"picked_up to in_transit", StatusPickedUp, StatusInTransit, true},
		{"in_transit to customs", StatusInTransit, StatusCustoms, true},
		{"customs to out_for_delivery", StatusCustoms, StatusOutForDelivery, true},
		{"out_for_delivery to delivered", StatusOutForDelivery, StatusDelivered, true},

		{"no skipping customs", StatusInTransit, StatusOutForDelivery, false},
		{"no skipping in_transit", StatusPickedUp, StatusCustoms, false},
		{"no going backwards", StatusCustoms, StatusInTransit, false},
		{"booked cannot jump to delivered", StatusBooked, StatusDelivered, false},
		{"delivered is terminal", StatusDelivered, StatusBooked, false},
		{"cancelled is terminal", StatusCancelled, StatusPickedUp, false},
		{"cancel not a forward transition", StatusBooked, StatusCancelled, false},
		{"dropoff switch not a forward transition", StatusBooked, StatusPendingDropoff, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestNextStatuses(t *testing.T) {
	assert.ElementsMatch(t, []Status{StatusPendingPickup, StatusPickedUp}, NextStatuses(StatusBooked))
	assert.Empty(t, NextStatuses(StatusDelivered))
	assert.Empty(t, NextStatuses(StatusCancelled))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusBooked.IsTerminal())
	assert.False(t, StatusOutForDelivery.IsTerminal())
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusBooked.IsValid())
	assert.True(t, StatusPending.IsValid())
	assert.False(t, Status("shipped").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestCanBeCancelled(t *testing.T) {
	cancellable := []Status{StatusBooked, StatusPendingPickup, StatusPendingDropoff, StatusPending}
	for _, s := range cancellable {
		assert.True(t, s.CanBeCancelled(), "expected %s to be cancellable", s)
	}

	notCancellable := []Status{StatusPickedUp, StatusInTransit, StatusCustoms, StatusOutForDelivery, StatusDelivered, StatusCancelled}
	for _, s := range notCancellable {
		assert.False(t, s.CanBeCancelled(), "expected %s not to be cancellable", s)
	}
}

func TestDropoffEligibility(t *testing.T) {
	assert.True(t, StatusBooked.CanSwitchToDropoff())
	assert.True(t, StatusPendingPickup.CanSwitchToDropoff())
	assert.False(t, StatusPendingDropoff.CanSwitchToDropoff())
	assert.False(t, StatusPickedUp.CanSwitchToDropoff())
	assert.False(t, StatusPending.CanSwitchToDropoff())

	assert.True(t, StatusPendingDropoff.CanCancelDropoff())
	assert.False(t, StatusBooked.CanCancelDropoff())

	// Reschedule shares the drop-off allow-list.
	assert.True(t, StatusBooked.CanBeRescheduled())
	assert.True(t, StatusPendingPickup.CanBeRescheduled())
	assert.False(t, StatusInTransit.CanBeRescheduled())
}

func TestApplyStampsTimestampOnce(t *testing.T) {
	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	s := &Shipment{Status: StatusPendingPickup}
	s.Apply(StatusPickedUp, first)

	require.NotNil(t, s.PickedUpAt)
	assert.Equal(t, first, *s.PickedUpAt)
	assert.Equal(t, StatusPickedUp, s.Status)

	// A second entry into the same status must not move the stamp.
	s.Apply(StatusPickedUp, later)
	assert.Equal(t, first, *s.PickedUpAt)
}

func TestApplyStampsEachStatus(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	s := &Shipment{Status: StatusBooked}
	s.Apply(StatusPickedUp, at)
	s.Apply(StatusInTransit, at)
	s.Apply(StatusCustoms, at)
	s.Apply(StatusOutForDelivery, at)
	s.Apply(StatusDelivered, at)

	require.NotNil(t, s.PickedUpAt)
	require.NotNil(t, s.InTransitAt)
	require.NotNil(t, s.CustomsAt)
	require.NotNil(t, s.OutForDeliveryAt)
	require.NotNil(t, s.DeliveredAt)
	assert.Nil(t, s.CancelledAt)

	s.Apply(StatusCancelled, at)
	require.NotNil(t, s.CancelledAt)
}

func TestTimestampColumn(t *testing.T) {
	assert.Equal(t, "picked_up_at", TimestampColumn(StatusPickedUp))
	assert.Equal(t, "in_transit_at", TimestampColumn(StatusInTransit))
	assert.Equal(t, "customs_at", TimestampColumn(StatusCustoms))
	assert.Equal(t, "out_for_delivery_at", TimestampColumn(StatusOutForDelivery))
	assert.Equal(t, "delivered_at", TimestampColumn(StatusDelivered))
	assert.Equal(t, "cancelled_at", TimestampColumn(StatusCancelled))
	assert.Equal(t, "", TimestampColumn(StatusBooked))
	assert.Equal(t, "", TimestampColumn(StatusPendingPickup))
}

func TestWarehouseStatusIsValid(t *testing.T) {
	for _, ws := range GetAllWarehouseStatuses() {
		assert.True(t, ws.IsValid(), "expected %s to be valid", ws)
	}
	assert.False(t, WarehouseStatus("delivered").IsValid())
	assert.False(t, WarehouseStatus("").IsValid())
}

func TestAppendNote(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	s := &Shipment{}
	s.AppendNote("first note", at)
	assert.Equal(t, "[2025-06-01T10:00:00Z] first note", s.AdminNotes)

	s.AppendNote("second note", at.Add(time.Hour))
	assert.Equal(t, "[2025-06-01T10:00:00Z] first note\n[2025-06-01T11:00:00Z] second note", s.AdminNotes)
}

func TestSelfDropoffRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	s := &Shipment{Status: StatusBooked}
	s.MarkSelfDropoff("ama.mensah", at)

	assert.Equal(t, StatusPendingDropoff, s.Status)
	assert.True(t, s.IsSelfDropoff)

	// Cancelling the drop-off restores the courier pickup booking.
	s.RevertSelfDropoff("ama.mensah", at.Add(time.Hour))

	assert.Equal(t, StatusBooked, s.Status)
	assert.False(t, s.IsSelfDropoff)

	// Both legs of the toggle leave their own audit note, in order.
	notes := strings.Split(s.AdminNotes, "\n")
	require.Len(t, notes, 2)
	assert.Contains(t, notes[0], "Switched to self drop-off by ama.mensah")
	assert.Contains(t, notes[1], "Self drop-off cancelled by ama.mensah")
}

func TestSelfDropoffFromPendingPickup(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	s := &Shipment{Status: StatusPendingPickup}
	require.True(t, s.Status.CanSwitchToDropoff())

	s.MarkSelfDropoff("admin", at)
	assert.Equal(t, StatusPendingDropoff, s.Status)
	require.True(t, s.Status.CanCancelDropoff())

	s.RevertSelfDropoff("admin", at)
	assert.Equal(t, StatusBooked, s.Status)
	assert.False(t, s.IsSelfDropoff)
}
