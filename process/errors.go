package process

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrProcessUnavailable is returned when the target process has exited or its handle
	// is no longer valid. Unlike a region-level read failure this is fatal for the
	// operation that observes it.
	ErrProcessUnavailable = errors.New("process unavailable")
)
