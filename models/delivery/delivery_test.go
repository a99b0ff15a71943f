package delivery

import (
	"testing"

	"cylinder-booking/models/booking"

	"github.com/stretchr/testify/assert"
)

func TestAssignmentTransitions(t *testing.T) {
	tests := []struct {
		from    AssignmentStatus
		to      AssignmentStatus
		allowed bool
	}{
		{AssignmentStatusAssigned, AssignmentStatusPickedUp, true},
		{AssignmentStatusAssigned, AssignmentStatusFailed, true},
		{AssignmentStatusAssigned, AssignmentStatusOutForDelivery, false},
		{AssignmentStatusAssigned, AssignmentStatusDelivered, false},
		{AssignmentStatusPickedUp, AssignmentStatusOutForDelivery, true},
		{AssignmentStatusPickedUp, AssignmentStatusDelivered, false},
		{AssignmentStatusOutForDelivery, AssignmentStatusDelivered, true},
		{AssignmentStatusOutForDelivery, AssignmentStatusFailed, true},
		{AssignmentStatusDelivered, AssignmentStatusFailed, false},
		{AssignmentStatusFailed, AssignmentStatusAssigned, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAssignmentStatusBookingMapping(t *testing.T) {
	s, ok := AssignmentStatusOutForDelivery.BookingStatus()
	assert.True(t, ok)
	assert.Equal(t, booking.BookingStatusOutForDelivery, s)

	s, ok = AssignmentStatusDelivered.BookingStatus()
	assert.True(t, ok)
	assert.Equal(t, booking.BookingStatusDelivered, s)

	// A failed attempt releases the booking for reassignment.
	s, ok = AssignmentStatusFailed.BookingStatus()
	assert.True(t, ok)
	assert.Equal(t, booking.BookingStatusApproved, s)

	_, ok = AssignmentStatusAssigned.BookingStatus()
	assert.False(t, ok)

	_, ok = AssignmentStatusPickedUp.BookingStatus()
	assert.False(t, ok)
}
