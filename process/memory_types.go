package process

import (
	"fmt"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// Add returns the address displaced by a signed offset
func (pma ProcessMemoryAddress) Add(offset int64) ProcessMemoryAddress {
	return ProcessMemoryAddress(int64(pma) + offset)
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// PointerSize is the width of a pointer in the target process
const PointerSize = 8

// Module is an image loaded into the target process
type Module struct {
	Name string               // File name of the image, e.g. "GameAssembly.dll"
	Base ProcessMemoryAddress // Load address
	Size ProcessMemorySize    // Size of the mapped image
}

// SystemInfo describes the user address space of the target process
type SystemInfo struct {
	MinimumAddress ProcessMemoryAddress
	MaximumAddress ProcessMemoryAddress
	PageSize       ProcessMemorySize
}
