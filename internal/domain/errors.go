package domain

import "errors"

// Typed domain errors. Handlers map these onto HTTP statuses; everything
// else is treated as a persistence failure.
var (
	ErrMachineNotFound  = errors.New("machine not found")
	ErrRentalNotFound   = errors.New("rental not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrUnknownModel     = errors.New("unknown machine model")

	ErrNotificationNotFound = errors.New("notification not found")

	ErrDuplicateSerial    = errors.New("serial number already registered for this model")
	ErrMachineUnavailable = errors.New("machine is in maintenance or retired")
	ErrMachineInUse       = errors.New("machine has an active rental")
	ErrMachineHasHistory  = errors.New("machine has rental history")
	ErrOverlappingRental  = errors.New("rental window overlaps an existing assignment")
	ErrAlreadyTerminal    = errors.New("rental is already returned or cancelled")

	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound reports whether err is one of the referenced-entity-absent
// errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMachineNotFound) ||
		errors.Is(err, ErrRentalNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrUnknownModel)
}

// IsConflict reports whether err is a business-rule violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateSerial) ||
		errors.Is(err, ErrMachineUnavailable) ||
		errors.Is(err, ErrMachineInUse) ||
		errors.Is(err, ErrMachineHasHistory) ||
		errors.Is(err, ErrOverlappingRental) ||
		errors.Is(err, ErrAlreadyTerminal)
}
