package payment

import (
	"time"

	"cylinder-booking/models/booking"
)

// PaymentStatus is the state of a single payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

func (ps PaymentStatus) String() string {
	return string(ps)
}

func (ps PaymentStatus) IsValid() bool {
	switch ps {
	case PaymentStatusPending, PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

// IsFinal returns true once the payment can no longer change state.
func (ps PaymentStatus) IsFinal() bool {
	return ps != PaymentStatusPending
}

// Payment is one payment attempt for a booking. Bookings may accumulate
// several rows (e.g. a rejected UPI payment followed by a fresh one); the
// latest row by created_at is the current one.
type Payment struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for booking relationship
	BookingID uint            `gorm:"not null;index" json:"booking_id"`
	Booking   booking.Booking `gorm:"foreignKey:BookingID" json:"booking"`

	Amount float64               `gorm:"not null" json:"amount"`
	Method booking.PaymentMethod `gorm:"type:varchar(10);not null" json:"method"`
	Status PaymentStatus         `gorm:"type:varchar(20);not null;default:PENDING" json:"status"`

	// UPITransactionID is the reference the customer submits after paying
	// through their UPI app.
	UPITransactionID *string `gorm:"column:upi_transaction_id;type:varchar(100)" json:"upi_transaction_id,omitempty"`
	ReviewedBy       *string `gorm:"type:varchar(255)" json:"reviewed_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Reviewable reports whether an admin may confirm or reject this payment.
// Only pending UPI payments are reviewable.
func (p *Payment) Reviewable() bool {
	return p.Status == PaymentStatusPending && p.Method == booking.PaymentMethodUPI
}
