package inventory

import (
	"cylinder-booking/types"
)

type BatchReceiveRequest struct {
	Supplier string `json:"supplier" validate:"required,min=1,max=255"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	// ReceivedDate is optional, formatted 2006-01-02; defaults to today.
	ReceivedDate string `json:"received_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r BatchReceiveRequest) Validate() error {
	return types.Validate.Struct(r)
}

type AdjustRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,oneof=RECEIVE ISSUE DAMAGE AUDIT CORRECTION"`
	Note   string `json:"note" validate:"omitempty,max=500"`
}

func (r AdjustRequest) Validate() error {
	return types.Validate.Struct(r)
}
