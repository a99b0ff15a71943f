package user

import (
	"time"
)

// User is a customer or administrator account. RemainingQuota tracks how many
// cylinders the user may still book in QuotaYear; it is decremented when a
// booking is created and restored when a booking is cancelled.
type User struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	Email         string  `gorm:"type:varchar(255);not null;unique" json:"email"`
	EmailVerified bool    `gorm:"type:bool;default:false" json:"email_verified"`
	Phone         string  `gorm:"type:varchar(20);not null;unique" json:"phone"`
	PasswordHash  string  `gorm:"type:varchar(255);not null" json:"-"`
	Role          string  `gorm:"type:varchar(20);not null;default:USER" json:"role"`
	Address       string  `gorm:"type:text" json:"address"`
	City          *string `gorm:"type:varchar(100)" json:"city,omitempty"`
	Pincode       *string `gorm:"type:varchar(10)" json:"pincode,omitempty"`

	RemainingQuota int `gorm:"not null;default:12" json:"remaining_quota"`
	QuotaYear      int `gorm:"not null" json:"quota_year"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
