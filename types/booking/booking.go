package booking

import (
	"cylinder-booking/models/address"
	"cylinder-booking/types"
)

// BookingCreateRequest represents the request payload for creating a booking
type BookingCreateRequest struct {
	Quantity      int    `json:"quantity" validate:"required,min=1,max=10"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=COD UPI"`

	// Delivery address
	Line1       string `json:"line1" validate:"required,min=1,max=255"`
	Line2       string `json:"line2" validate:"omitempty,max=255"`
	City        string `json:"city" validate:"required,min=1,max=100"`
	State       string `json:"state" validate:"required,min=1,max=100"`
	Pincode     string `json:"pincode" validate:"required,min=4,max=10"`
	Landmark    string `json:"landmark" validate:"omitempty,max=255"`
	AddressType string `json:"address_type" validate:"required,oneof=home work"`

	// Receiver overrides (optional)
	ReceiverName  string `json:"receiver_name" validate:"omitempty,max=255"`
	ReceiverPhone string `json:"receiver_phone" validate:"omitempty,min=10,max=15"`
}

func (b BookingCreateRequest) Validate() error {
	return types.Validate.Struct(b)
}

// ToAddress builds the address snapshot row for this booking.
func (b BookingCreateRequest) ToAddress() address.Address {
	addr := address.Address{
		Line1:       b.Line1,
		City:        b.City,
		State:       b.State,
		Pincode:     b.Pincode,
		AddressType: b.AddressType,
	}
	if b.Line2 != "" {
		addr.Line2 = &b.Line2
	}
	if b.Landmark != "" {
		addr.Landmark = &b.Landmark
	}
	return addr
}

type BookingCancelRequest struct {
	BookingID uint `json:"booking_id" validate:"required"`
}

func (b BookingCancelRequest) Validate() error {
	return types.Validate.Struct(b)
}

type BookingApproveRequest struct {
	BookingID uint `json:"booking_id" validate:"required"`
	// ExpectedDeliveryDate is optional, formatted 2006-01-02.
	ExpectedDeliveryDate string `json:"expected_delivery_date" validate:"omitempty,datetime=2006-01-02"`
}

func (b BookingApproveRequest) Validate() error {
	return types.Validate.Struct(b)
}
