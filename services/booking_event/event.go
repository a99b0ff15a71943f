package booking_event

import (
	bookingModel "cylinder-booking/models/booking"

	"gorm.io/gorm"
)

// Snapshot writes an audit row capturing the booking's current state with the
// given event type. Call inside the same transaction as the change when the
// event must not be lost.
func Snapshot(tx *gorm.DB, b *bookingModel.Booking, eventType string, createdBy string) error {
	ev := bookingModel.BookingEvent{
		BookingID:     b.ID,
		BookingRef:    b.BookingRef,
		UserID:        b.UserID,
		Status:        b.Status,
		PaymentMethod: b.PaymentMethod,
		Quantity:      b.Quantity,
		EventType:     eventType,
		CreatedBy:     createdBy,
	}

	return tx.Create(&ev).Error
}
