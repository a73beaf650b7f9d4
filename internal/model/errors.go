package model

import "errors"

// Domain errors shared by services and handlers.
var (
	ErrClinicNotFound       = errors.New("clinic not found")
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrSlotUnavailable      = errors.New("time slot unavailable")
	ErrClientConflict       = errors.New("client with this email or phone already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

// InputError carries per-field validation messages and matches ErrInvalidInput.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	return "invalid input"
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInputError builds an InputError for a single field.
func NewInputError(field, message string) *InputError {
	return &InputError{Fields: map[string]string{field: message}}
}
