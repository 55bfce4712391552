package errors

import "errors"

// Domain errors
var (
	// Target errors
	ErrInvalidTarget     = errors.New("invalid target identifier")
	ErrTargetUnreachable = errors.New("target could not be reached")
	ErrNoDocument        = errors.New("target has no document loaded")

	// Signal collection errors
	ErrSignalsUnavailable = errors.New("page signals unavailable")

	// Protocol errors
	ErrUnknownMessage   = errors.New("unknown message type")
	ErrMalformedMessage = errors.New("malformed message")

	// Configuration errors
	ErrUnsupportedMode   = errors.New("unsupported audit mode")
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// Validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
)
