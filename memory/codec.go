package memory

import (
	"encoding/binary"
	"fmt"
	"math"

	"memsplit/process"
)

// Codec converts between a value and its little-endian encoding in the target
type Codec[T any] interface {
	Size() int
	Decode(b []byte) T
	Encode(v T, b []byte)
}

type codec[T any] struct {
	size   int
	decode func([]byte) T
	encode func(T, []byte)
}

func (c codec[T]) Size() int            { return c.size }
func (c codec[T]) Decode(b []byte) T    { return c.decode(b) }
func (c codec[T]) Encode(v T, b []byte) { c.encode(v, b) }

var le = binary.LittleEndian

var (
	Bool Codec[bool] = codec[bool]{1,
		func(b []byte) bool { return b[0] != 0 },
		func(v bool, b []byte) {
			b[0] = 0
			if v {
				b[0] = 1
			}
		}}

	Int8 Codec[int8] = codec[int8]{1,
		func(b []byte) int8 { return int8(b[0]) },
		func(v int8, b []byte) { b[0] = byte(v) }}

	Uint8 Codec[uint8] = codec[uint8]{1,
		func(b []byte) uint8 { return b[0] },
		func(v uint8, b []byte) { b[0] = v }}

	Int16 Codec[int16] = codec[int16]{2,
		func(b []byte) int16 { return int16(le.Uint16(b)) },
		func(v int16, b []byte) { le.PutUint16(b, uint16(v)) }}

	Uint16 Codec[uint16] = codec[uint16]{2, le.Uint16, func(v uint16, b []byte) { le.PutUint16(b, v) }}

	Int32 Codec[int32] = codec[int32]{4,
		func(b []byte) int32 { return int32(le.Uint32(b)) },
		func(v int32, b []byte) { le.PutUint32(b, uint32(v)) }}

	Uint32 Codec[uint32] = codec[uint32]{4, le.Uint32, func(v uint32, b []byte) { le.PutUint32(b, v) }}

	Int64 Codec[int64] = codec[int64]{8,
		func(b []byte) int64 { return int64(le.Uint64(b)) },
		func(v int64, b []byte) { le.PutUint64(b, uint64(v)) }}

	Uint64 Codec[uint64] = codec[uint64]{8, le.Uint64, func(v uint64, b []byte) { le.PutUint64(b, v) }}

	Float32 Codec[float32] = codec[float32]{4,
		func(b []byte) float32 { return math.Float32frombits(le.Uint32(b)) },
		func(v float32, b []byte) { le.PutUint32(b, math.Float32bits(v)) }}

	Float64 Codec[float64] = codec[float64]{8,
		func(b []byte) float64 { return math.Float64frombits(le.Uint64(b)) },
		func(v float64, b []byte) { le.PutUint64(b, math.Float64bits(v)) }}

	Pointer Codec[process.ProcessMemoryAddress] = codec[process.ProcessMemoryAddress]{process.PointerSize,
		func(b []byte) process.ProcessMemoryAddress { return process.ProcessMemoryAddress(le.Uint64(b)) },
		func(v process.ProcessMemoryAddress, b []byte) { le.PutUint64(b, uint64(v)) }}
)

func checkWidth(size int) error {
	switch size {
	case 1, 2, 4, 8:
		return nil
	}
	return fmt.Errorf("%w: unsupported value width %d", process.ErrWidthMismatch, size)
}
