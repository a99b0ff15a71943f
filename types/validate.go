package types

import (
	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance used by request DTOs.
var Validate = validator.New()
