package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator. Field rules live on the request
// structs; nothing cross-field is needed for the order payloads.
func New() *validatorv10.Validate {
	return validatorv10.New()
}
