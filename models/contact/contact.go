package contact

import (
	"time"

	"cylinder-booking/models/user"
)

// ContactStatus is the state of a support ticket.
type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "NEW"
	ContactStatusOpen     ContactStatus = "OPEN"
	ContactStatusResolved ContactStatus = "RESOLVED"
	ContactStatusArchived ContactStatus = "ARCHIVED"
)

func (cs ContactStatus) String() string {
	return string(cs)
}

func (cs ContactStatus) IsValid() bool {
	switch cs {
	case ContactStatusNew, ContactStatusOpen, ContactStatusResolved, ContactStatusArchived:
		return true
	default:
		return false
	}
}

// Contact is a customer support ticket.
type Contact struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	Subject string        `gorm:"type:varchar(255);not null" json:"subject"`
	Message string        `gorm:"type:text;not null" json:"message"`
	Status  ContactStatus `gorm:"type:varchar(20);not null;default:NEW" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ContactReply is one admin reply in a ticket thread.
type ContactReply struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	ContactID uint    `gorm:"not null;index" json:"contact_id"`
	Contact   Contact `gorm:"foreignKey:ContactID" json:"contact"`

	Message   string    `gorm:"type:text;not null" json:"message"`
	RepliedBy string    `gorm:"type:varchar(255);not null" json:"replied_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
