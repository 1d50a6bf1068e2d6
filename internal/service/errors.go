package service

import "errors"

// Sentinel errors returned by services. Handlers map these to HTTP
// status codes in one place.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrDealAlreadyClosed  = errors.New("deal already closed")
	ErrTotalMismatch      = errors.New("quote total does not match items")
	ErrNotOwner           = errors.New("resource belongs to another user")
	ErrReadOnly           = errors.New("insufficient permissions")
)
