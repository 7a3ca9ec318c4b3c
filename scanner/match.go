package scanner

import (
	"encoding/binary"
	"fmt"

	"memsplit/process"
)

// Match is one occurrence of a signature. Data holds the matched bytes as read from the
// target, wildcard positions included.
type Match struct {
	Address process.ProcessMemoryAddress
	Data    []byte
}

func (m Match) field(offset, width int) ([]byte, error) {
	if offset < 0 || offset+width > len(m.Data) {
		return nil, fmt.Errorf("field of %d bytes at offset %d is outside the %d byte match", width, offset, len(m.Data))
	}
	return m.Data[offset : offset+width], nil
}

// Int32 decodes a little-endian int32 at offset
func (m Match) Int32(offset int) (int32, error) {
	b, err := m.field(offset, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Uint32 decodes a little-endian uint32 at offset
func (m Match) Uint32(offset int) (uint32, error) {
	b, err := m.field(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Int64 decodes a little-endian int64 at offset
func (m Match) Int64(offset int) (int64, error) {
	b, err := m.field(offset, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// Uint64 decodes a little-endian uint64 at offset
func (m Match) Uint64(offset int) (uint64, error) {
	b, err := m.field(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Pointer decodes a pointer-width field at offset
func (m Match) Pointer(offset int) (process.ProcessMemoryAddress, error) {
	v, err := m.Uint64(offset)
	return process.ProcessMemoryAddress(v), err
}
