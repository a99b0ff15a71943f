package delivery

import (
	"cylinder-booking/types"
)

type PartnerCreateRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Phone     string `json:"phone" validate:"required,min=10,max=15"`
	VehicleNo string `json:"vehicle_no" validate:"omitempty,max=30"`
}

func (r PartnerCreateRequest) Validate() error {
	return types.Validate.Struct(r)
}

type PartnerUpdateRequest struct {
	PartnerID uint    `json:"partner_id" validate:"required"`
	Name      string  `json:"name" validate:"omitempty,min=1,max=255"`
	Phone     string  `json:"phone" validate:"omitempty,min=10,max=15"`
	VehicleNo string  `json:"vehicle_no" validate:"omitempty,max=30"`
	Active    *bool   `json:"active"`
	Note      *string `json:"note"`
}

func (r PartnerUpdateRequest) Validate() error {
	return types.Validate.Struct(r)
}

type AssignRequest struct {
	BookingID uint `json:"booking_id" validate:"required"`
	PartnerID uint `json:"partner_id" validate:"required"`
}

func (r AssignRequest) Validate() error {
	return types.Validate.Struct(r)
}

type AssignmentStatusRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=PICKED_UP OUT_FOR_DELIVERY DELIVERED FAILED"`
	Note         string `json:"note" validate:"omitempty,max=500"`
}

func (r AssignmentStatusRequest) Validate() error {
	return types.Validate.Struct(r)
}
