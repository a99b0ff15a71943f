package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusIsValid(t *testing.T) {
	for _, s := range GetAllBookingStatuses() {
		assert.True(t, s.IsValid(), "expected %s to be valid", s)
	}
	assert.False(t, BookingStatus("SHIPPED").IsValid())
	assert.False(t, BookingStatus("").IsValid())
}

func TestBookingStatusLifecycle(t *testing.T) {
	tests := []struct {
		status     BookingStatus
		canCancel  bool
		canApprove bool
		canAssign  bool
		terminal   bool
	}{
		{BookingStatusPending, true, true, false, false},
		{BookingStatusApproved, true, false, true, false},
		{BookingStatusOutForDelivery, false, false, false, false},
		{BookingStatusDelivered, false, false, false, true},
		{BookingStatusCancelled, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.canCancel, tt.status.CanCancel())
			assert.Equal(t, tt.canApprove, tt.status.CanApprove())
			assert.Equal(t, tt.canAssign, tt.status.CanAssignPartner())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestPaymentMethodIsValid(t *testing.T) {
	assert.True(t, PaymentMethodCOD.IsValid())
	assert.True(t, PaymentMethodUPI.IsValid())
	assert.False(t, PaymentMethod("CARD").IsValid())
}
