// Package search discovers pointer paths from a known address to a value, for finding the
// field offsets the game package relies on after an update.
package search

import (
	"bytes"
	"fmt"
	"strings"

	"memsplit/memory"
	"memsplit/process"
	"memsplit/process/memory_map"
)

// Searcher holds configuration for the search
type Searcher struct {
	MaxStructSize int
	MaxDepth      int
	MinAlignment  int
	SearchFor     func([]byte) bool
}

// Option is a function that configures a Searcher
type Option func(*Searcher)

func WithMaxStructSize(size int) Option {
	return func(s *Searcher) {
		s.MaxStructSize = size
	}
}

func WithMaxDepth(depth int) Option {
	return func(s *Searcher) {
		s.MaxDepth = depth
	}
}

func WithMinAlignment(align int) Option {
	return func(s *Searcher) {
		s.MinAlignment = align
	}
}

// WithBytes searches for an exact byte sequence
func WithBytes(want []byte) Option {
	want = bytes.Clone(want)
	return func(s *Searcher) {
		s.SearchFor = func(data []byte) bool {
			return bytes.HasPrefix(data, want)
		}
	}
}

// WithValue searches for v as encoded by codec
func WithValue[T any](codec memory.Codec[T], v T) Option {
	buf := make([]byte, codec.Size())
	codec.Encode(v, buf)
	return WithBytes(buf)
}

// Result is one path to the target. Every offset but the last lands on a pointer that is
// followed; the last lands on the value.
type Result struct {
	Offsets []int64
}

// Path turns the result into a pointer path starting at entry
func (r Result) Path(entry memory.ResolvableAddress) *memory.PointerPath {
	b := memory.NewPath(entry)
	for i, off := range r.Offsets {
		b = b.Offset(off)
		if i < len(r.Offsets)-1 {
			b = b.Deref()
		}
	}
	return b.Build()
}

func (r Result) String() string {
	parts := make([]string, len(r.Offsets))
	for i, off := range r.Offsets {
		parts[i] = fmt.Sprintf("+0x%X", off)
	}
	return strings.Join(parts, " -> ")
}

// Search walks structures reachable from base and returns every path to the target
func Search(mi *memory.MemoryInterface, base process.ProcessMemoryAddress, options ...Option) ([]Result, error) {
	s := &Searcher{
		MaxStructSize: 256,
		MaxDepth:      3,
		MinAlignment:  4,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.SearchFor == nil {
		return nil, fmt.Errorf("no search target specified")
	}
	if s.MinAlignment <= 0 || s.MaxStructSize <= 0 {
		return nil, fmt.Errorf("invalid struct size %d or alignment %d", s.MaxStructSize, s.MinAlignment)
	}

	var results []Result
	visited := make(map[process.ProcessMemoryAddress]bool)
	buf := make([]byte, s.MaxStructSize)

	var searchRecursive func(addr process.ProcessMemoryAddress, depth int, path []int64)
	searchRecursive = func(addr process.ProcessMemoryAddress, depth int, path []int64) {
		if depth > s.MaxDepth || visited[addr] {
			return
		}
		visited[addr] = true

		n, _ := mi.ReadMemory(addr, buf)
		if n == 0 {
			return
		}
		data := bytes.Clone(buf[:n])

		for offset := 0; offset+s.MinAlignment <= len(data); offset += s.MinAlignment {
			if s.SearchFor(data[offset:]) {
				results = append(results, Result{Offsets: extend(path, int64(offset))})
			}

			if offset%process.PointerSize != 0 || depth >= s.MaxDepth || offset+process.PointerSize > len(data) {
				continue
			}

			ptr := memory.Pointer.Decode(data[offset:])
			if ptr == 0 || !mi.AccessFlags(ptr, 1).Has(memory_map.AccessRead) {
				continue
			}
			searchRecursive(ptr, depth+1, extend(path, int64(offset)))
		}
	}

	searchRecursive(base, 0, nil)

	return results, nil
}

func extend(path []int64, offset int64) []int64 {
	out := make([]int64, len(path), len(path)+1)
	copy(out, path)
	return append(out, offset)
}
