package service

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the workflows. Handlers map these onto HTTP
// status codes and user-facing Indonesian messages; raw store errors are
// logged server-side and never forwarded.
var (
	ErrValidation         = errors.New("invalid input")
	ErrConflict           = errors.New("duplicate record")
	ErrOTPNotFound        = errors.New("otp not found")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrConfiguration      = errors.New("configuration incomplete")
	// ErrDelivery marks a failed email dispatch; it is surfaced distinctly
	// from storage failures so clients can tell "saved but not mailed" apart
	// from "not saved".
	ErrDelivery = errors.New("email delivery failed")
)

// Validation refinements so handlers can pick the exact message.
var (
	ErrMissingFields = fmt.Errorf("%w: missing fields", ErrValidation)
	ErrBadNISN       = fmt.Errorf("%w: nisn must be 10 digits", ErrValidation)
	ErrBadEmail      = fmt.Errorf("%w: malformed email", ErrValidation)
)
