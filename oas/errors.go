package oas

import "github.com/pkg/errors"

var (
	// ErrInvalidStatusCode is returned when a response is addressed with a
	// status code outside [100, 599].
	//
	// See: https://spec.openapis.org/oas/v3.0.3#http-status-codes
	ErrInvalidStatusCode = errors.New("status code must be between 100 and 599")

	// ErrIndexOutOfRange is returned when a sequence-backed collection is
	// indexed past its length.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnknownMethod is returned when a path item is addressed with a
	// method that has no operation field.
	//
	// See: https://spec.openapis.org/oas/v3.0.3#path-item-object
	ErrUnknownMethod = errors.New("unknown HTTP method")
)
