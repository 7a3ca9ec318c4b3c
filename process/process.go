// Package process provides interfaces and types for process manipulation
package process

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrProcessNotFound is returned when no running process matches the requested name.
	ErrProcessNotFound = errors.New("process not found")

	// ErrResolutionFailure is returned when an address cannot be resolved: a module is absent,
	// a signature has no match or a pointer along a path is null.
	ErrResolutionFailure = errors.New("address resolution failed")

	// ErrPartialTransfer is returned when a read or write moved fewer bytes than requested.
	ErrPartialTransfer = errors.New("partial transfer")

	// ErrPermissionDenied is returned when a watcher's span lacks the required read or write access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrMalformedSignature is returned when a signature pattern cannot be parsed.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrViewTooSmall is returned when the scanner view cannot hold two signature lengths.
	ErrViewTooSmall = errors.New("scanner view too small")

	// ErrWidthMismatch is returned when a value codec does not fit the watched width.
	ErrWidthMismatch = errors.New("width mismatch")
)
