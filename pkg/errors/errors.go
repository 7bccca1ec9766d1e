package errors

import "errors"

// Error taxonomy shared by every layer. Services wrap these with entity
// specific sentinels; handlers map them to HTTP status codes.
var (
	// ErrNotFound referenced case/shelter/volunteer/unit does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition requested case status change violates the lifecycle
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyAssigned case changed since the assignment plan was computed
	ErrAlreadyAssigned = errors.New("case already assigned or modified since plan")

	// ErrShelterFull shelter has no availability left; the case assignment still succeeds
	ErrShelterFull = errors.New("shelter has no availability")

	// ErrUnresolvableForecastInput disaster type not known to the forecasting model
	ErrUnresolvableForecastInput = errors.New("unresolvable forecast input")

	// ErrMalformedExpiryDate inventory expiry date cannot be parsed
	ErrMalformedExpiryDate = errors.New("malformed expiry date")

	// ErrOptimisticLock record was modified by another operation
	ErrOptimisticLock = errors.New("record modified by another operation, refresh and retry")
)
