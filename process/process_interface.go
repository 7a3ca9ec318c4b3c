package process

import (
	"memsplit/process/memory_map"
)

// Provider is the set of memory primitives a platform backend supplies.
//
// ReadMemory and WriteMemory report the number of bytes actually transferred. A short count is
// not an error by itself: the caller decides whether a partial transfer is acceptable.
type Provider interface {
	// ReadMemory reads up to len(buf) bytes at addr into buf
	ReadMemory(addr ProcessMemoryAddress, buf []byte) (int, error)

	// WriteMemory writes up to len(data) bytes from data to addr
	WriteMemory(addr ProcessMemoryAddress, data []byte) (int, error)

	// QueryRegion returns the region containing addr, or the unmapped gap starting at addr
	QueryRegion(addr ProcessMemoryAddress) (memory_map.MemoryMapItem, error)

	// Modules returns the images loaded into the process
	Modules() ([]Module, error)

	// SystemInfo returns the bounds of the user address space
	SystemInfo() (SystemInfo, error)
}

// Process is an attached process
type Process interface {
	Provider

	// GetPID returns the process ID
	GetPID() ProcessID

	// IsAlive reports whether the process is still running
	IsAlive() bool

	// Close closes the process and releases resources
	Close() error
}

// Opener attaches to a process by name
type Opener interface {
	Open(name string) (Process, error)
}

// OpenerFunc adapts a function to the Opener interface
type OpenerFunc func(name string) (Process, error)

func (f OpenerFunc) Open(name string) (Process, error) {
	return f(name)
}
