package booking

import (
	"time"
)

// BookingEvent is an append-only audit row written on every booking lifecycle
// change. Events are many per booking; fields are a snapshot of the booking
// at the time the event was recorded.
type BookingEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for booking relationship
	BookingID uint    `gorm:"not null;index" json:"booking_id"`
	Booking   Booking `gorm:"foreignKey:BookingID" json:"booking"`

	// DO NOT make this unique here (events are many per booking)
	BookingRef string `gorm:"type:varchar(64);not null;index" json:"booking_ref"`
	UserID     uint   `gorm:"not null" json:"user_id"`

	Status        BookingStatus `gorm:"type:varchar(30);not null" json:"status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null" json:"payment_method"`
	Quantity      int           `gorm:"not null" json:"quantity"`

	// created, approved, cancelled, partner_assigned, delivery_status_changed,
	// payment_reviewed, delivered, ...
	EventType string `gorm:"type:varchar(50);not null;index" json:"event_type"`

	CreatedBy string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the BookingEvent model
func (BookingEvent) TableName() string {
	return "booking_events"
}
