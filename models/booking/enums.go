package booking

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending        BookingStatus = "PENDING"
	BookingStatusApproved       BookingStatus = "APPROVED"
	BookingStatusOutForDelivery BookingStatus = "OUT_FOR_DELIVERY"
	BookingStatusDelivered      BookingStatus = "DELIVERED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
)

func (bs BookingStatus) String() string {
	return string(bs)
}

func (bs BookingStatus) IsValid() bool {
	switch bs {
	case BookingStatusPending, BookingStatusApproved, BookingStatusOutForDelivery,
		BookingStatusDelivered, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once no further transition is possible.
func (bs BookingStatus) IsTerminal() bool {
	return bs == BookingStatusDelivered || bs == BookingStatusCancelled
}

// CanCancel returns true while the booking has not gone out for delivery.
// Cancelling restores the user's quota.
func (bs BookingStatus) CanCancel() bool {
	return bs == BookingStatusPending || bs == BookingStatusApproved
}

// CanApprove returns true only for freshly placed bookings.
func (bs BookingStatus) CanApprove() bool {
	return bs == BookingStatusPending
}

// CanAssignPartner returns true when a delivery partner may be attached.
func (bs BookingStatus) CanAssignPartner() bool {
	return bs == BookingStatusApproved
}

// GetAllBookingStatuses returns all valid booking statuses
func GetAllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusApproved,
		BookingStatusOutForDelivery,
		BookingStatusDelivered,
		BookingStatusCancelled,
	}
}

// PaymentMethod is how the customer pays for a booking.
type PaymentMethod string

const (
	PaymentMethodCOD PaymentMethod = "COD"
	PaymentMethodUPI PaymentMethod = "UPI"
)

func (pm PaymentMethod) String() string {
	return string(pm)
}

func (pm PaymentMethod) IsValid() bool {
	return pm == PaymentMethodCOD || pm == PaymentMethodUPI
}
