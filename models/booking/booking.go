package booking

import (
	"time"

	"cylinder-booking/models/address"
	"cylinder-booking/models/user"
)

// Booking represents a cylinder booking placed by a user against their
// yearly quota.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingRef string `gorm:"type:varchar(64);not null;unique" json:"booking_ref"`

	// Foreign key for users relationship
	UserID uint      `gorm:"not null" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	// Foreign key for delivery address relationship
	AddressID   uint            `gorm:"not null" json:"address_id"`
	AddressInfo address.Address `gorm:"foreignKey:AddressID" json:"address_info"`

	Status        BookingStatus `gorm:"type:varchar(30);not null;default:PENDING" json:"status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null" json:"payment_method"`
	Quantity      int           `gorm:"not null" json:"quantity"`

	// Receiver overrides; when empty the booking user receives the delivery.
	ReceiverName  *string `gorm:"type:varchar(255)" json:"receiver_name,omitempty"`
	ReceiverPhone *string `gorm:"type:varchar(20)" json:"receiver_phone,omitempty"`

	RequestedAt        time.Time  `gorm:"not null" json:"requested_at"`
	ExpectedDeliveryAt *time.Time `json:"expected_delivery_at,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`

	CreatedBy string     `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedBy string     `gorm:"type:varchar(255)" json:"updated_by,omitempty"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
