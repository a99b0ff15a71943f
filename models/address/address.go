package address

import (
	"time"
)

// Address is a delivery address snapshot referenced by a booking.
type Address struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Line1       string  `gorm:"type:varchar(255);not null" json:"line1"`
	Line2       *string `gorm:"type:varchar(255)" json:"line2,omitempty"`
	City        string  `gorm:"type:varchar(100);not null" json:"city"`
	State       string  `gorm:"type:varchar(100);not null" json:"state"`
	Pincode     string  `gorm:"type:varchar(10);not null" json:"pincode"`
	Landmark    *string `gorm:"type:varchar(255)" json:"landmark,omitempty"`
	AddressType string  `gorm:"type:varchar(20);not null;default:home" json:"address_type"` // home or work

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
