package payment

import (
	"cylinder-booking/types"
)

type SubmitUPIRequest struct {
	BookingID        uint   `json:"booking_id" validate:"required"`
	UPITransactionID string `json:"upi_transaction_id" validate:"required,min=6,max=100"`
}

func (r SubmitUPIRequest) Validate() error {
	return types.Validate.Struct(r)
}

// ReviewAction is what the admin decided about a pending UPI payment.
const (
	ReviewActionConfirm = "CONFIRM"
	ReviewActionReject  = "REJECT"
)

type ReviewRequest struct {
	PaymentID uint   `json:"payment_id" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=CONFIRM REJECT"`
	Note      string `json:"note" validate:"omitempty,max=500"`
}

func (r ReviewRequest) Validate() error {
	return types.Validate.Struct(r)
}
