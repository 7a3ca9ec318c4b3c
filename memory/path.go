package memory

import (
	"fmt"
	"strings"

	"memsplit/process"
	"memsplit/signature"
)

type stepKind uint8

const (
	stepDeref stepKind = iota
	stepOffset
)

type step struct {
	kind   stepKind
	offset int64
}

// PathBuilder accumulates the steps of a pointer path. Every method returns a new builder,
// so a builder may be shared and extended in different directions.
type PathBuilder struct {
	entry ResolvableAddress
	steps []step
}

// NewPath starts a path at entry
func NewPath(entry ResolvableAddress) *PathBuilder {
	return &PathBuilder{entry: entry}
}

// ModulePath starts a path at a module base plus offset
func ModulePath(module string, offset int64) *PathBuilder {
	return NewPath(NewModuleAddress(module, offset))
}

// SignaturePath starts a path at the pointer found offset bytes into the first match of sig
func SignaturePath(sig *signature.Signature, offset int, code bool) *PathBuilder {
	return NewPath(NewSignatureAddress(sig, offset, code))
}

func (b *PathBuilder) with(s step) *PathBuilder {
	steps := make([]step, len(b.steps), len(b.steps)+1)
	copy(steps, b.steps)
	return &PathBuilder{entry: b.entry, steps: append(steps, s)}
}

// Deref replaces the current address with the pointer stored at it
func (b *PathBuilder) Deref() *PathBuilder {
	return b.with(step{kind: stepDeref})
}

// Offset displaces the current address
func (b *PathBuilder) Offset(offset int64) *PathBuilder {
	return b.with(step{kind: stepOffset, offset: offset})
}

// Build freezes the builder into a path with its own cache
func (b *PathBuilder) Build() *PointerPath {
	steps := make([]step, len(b.steps))
	copy(steps, b.steps)
	return &PointerPath{entry: b.entry, steps: steps}
}

// PointerPath is an entry resolver followed by dereference and offset steps. The terminal
// address is cached until Flush.
//
// Paths forked with Extend share the entry resolver instance, so flushing one path with
// invalidateEntry also forces every sibling to re-resolve the entry on its next miss. The
// terminal caches stay per path.
type PointerPath struct {
	entry ResolvableAddress
	steps []step

	cached process.ProcessMemoryAddress
	valid  bool
}

// Follow returns the terminal address, walking the path only on a cache miss
func (p *PointerPath) Follow(mi *MemoryInterface) (process.ProcessMemoryAddress, error) {
	if p.valid {
		return p.cached, nil
	}

	addr, err := p.entry.Resolve(mi)
	if err != nil {
		return 0, err
	}

	for i, s := range p.steps {
		switch s.kind {
		case stepDeref:
			next, err := mi.ReadPointer(addr)
			if err != nil {
				return 0, fmt.Errorf("step %d: %w", i, err)
			}
			if next == 0 {
				return 0, fmt.Errorf("%w: step %d: null pointer at %s", process.ErrResolutionFailure, i, addr.ToString())
			}
			addr = next
		case stepOffset:
			addr = addr.Add(s.offset)
		}
	}

	p.cached = addr
	p.valid = true
	return addr, nil
}

// Flush drops the terminal cache and, with invalidateEntry, the entry resolver's cache
func (p *PointerPath) Flush(invalidateEntry bool) {
	p.valid = false
	if invalidateEntry {
		p.entry.Invalidate()
	}
}

// Extend returns a builder continuing this path. The entry resolver is shared.
func (p *PointerPath) Extend() *PathBuilder {
	steps := make([]step, len(p.steps))
	copy(steps, p.steps)
	return &PathBuilder{entry: p.entry, steps: steps}
}

// Entry returns the entry resolver
func (p *PointerPath) Entry() ResolvableAddress {
	return p.entry
}

func (p *PointerPath) String() string {
	var sb strings.Builder
	fmt.Fprint(&sb, p.entry)
	for _, s := range p.steps {
		switch s.kind {
		case stepDeref:
			sb.WriteString(" ->")
		case stepOffset:
			if s.offset < 0 {
				fmt.Fprintf(&sb, " -0x%X", -s.offset)
			} else {
				fmt.Fprintf(&sb, " +0x%X", s.offset)
			}
		}
	}
	return sb.String()
}
