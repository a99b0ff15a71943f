package contact

import (
	"cylinder-booking/types"
)

type ContactCreateRequest struct {
	Subject string `json:"subject" validate:"required,min=1,max=255"`
	Message string `json:"message" validate:"required,min=1"`
}

func (r ContactCreateRequest) Validate() error {
	return types.Validate.Struct(r)
}

type ContactReplyRequest struct {
	ContactID uint   `json:"contact_id" validate:"required"`
	Message   string `json:"message" validate:"required,min=1"`
	// Resolve marks the ticket RESOLVED along with the reply.
	Resolve bool `json:"resolve"`
}

func (r ContactReplyRequest) Validate() error {
	return types.Validate.Struct(r)
}

type ContactStatusRequest struct {
	ContactID uint   `json:"contact_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=NEW OPEN RESOLVED ARCHIVED"`
}

func (r ContactStatusRequest) Validate() error {
	return types.Validate.Struct(r)
}
