package delivery

import (
	"time"

	"cylinder-booking/models/booking"
)

// AssignmentStatus is the delivery-side lifecycle tracked in parallel with
// the booking status.
type AssignmentStatus string

const (
	AssignmentStatusAssigned       AssignmentStatus = "ASSIGNED"
	AssignmentStatusPickedUp       AssignmentStatus = "PICKED_UP"
	AssignmentStatusOutForDelivery AssignmentStatus = "OUT_FOR_DELIVERY"
	AssignmentStatusDelivered      AssignmentStatus = "DELIVERED"
	AssignmentStatusFailed         AssignmentStatus = "FAILED"
)

func (as AssignmentStatus) String() string {
	return string(as)
}

func (as AssignmentStatus) IsValid() bool {
	switch as {
	case AssignmentStatusAssigned, AssignmentStatusPickedUp, AssignmentStatusOutForDelivery,
		AssignmentStatusDelivered, AssignmentStatusFailed:
		return true
	default:
		return false
	}
}

// assignmentTransitions is the single source of truth for allowed
// assignment status changes.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusAssigned:       {AssignmentStatusPickedUp, AssignmentStatusFailed},
	AssignmentStatusPickedUp:       {AssignmentStatusOutForDelivery, AssignmentStatusFailed},
	AssignmentStatusOutForDelivery: {AssignmentStatusDelivered, AssignmentStatusFailed},
}

// CanTransitionTo reports whether next is a legal move from the current
// status. Delivered and failed assignments are terminal.
func (as AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	for _, allowed := range assignmentTransitions[as] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BookingStatus maps an assignment status onto the booking status it implies.
// The second return value is false when the booking status is not affected
// by this assignment state (e.g. PICKED_UP).
func (as AssignmentStatus) BookingStatus() (booking.BookingStatus, bool) {
	switch as {
	case AssignmentStatusOutForDelivery:
		return booking.BookingStatusOutForDelivery, true
	case AssignmentStatusDelivered:
		return booking.BookingStatusDelivered, true
	case AssignmentStatusFailed:
		// Failed delivery returns the booking to the approved pool for
		// reassignment.
		return booking.BookingStatusApproved, true
	default:
		return "", false
	}
}

// DeliveryPartner is a roster entry for someone who delivers cylinders.
type DeliveryPartner struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string  `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string  `gorm:"type:varchar(20);not null;unique" json:"phone"`
	VehicleNo *string `gorm:"type:varchar(30)" json:"vehicle_no,omitempty"`
	Active    bool    `gorm:"default:true" json:"active"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// DeliveryAssignment links a booking to a delivery partner. At most one
// active assignment exists per booking; a failed assignment is deactivated
// so the booking can be reassigned.
type DeliveryAssignment struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID uint            `gorm:"not null;index" json:"booking_id"`
	Booking   booking.Booking `gorm:"foreignKey:BookingID" json:"booking"`

	PartnerID uint            `gorm:"not null;index" json:"partner_id"`
	Partner   DeliveryPartner `gorm:"foreignKey:PartnerID" json:"partner"`

	Status AssignmentStatus `gorm:"type:varchar(30);not null;default:ASSIGNED" json:"status"`
	Active bool             `gorm:"default:true;index" json:"active"`
	Note   *string          `gorm:"type:text" json:"note,omitempty"`

	AssignedBy  string     `gorm:"type:varchar(255);not null" json:"assigned_by"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
