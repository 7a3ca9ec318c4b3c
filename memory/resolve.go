package memory

import (
	"fmt"

	"memsplit/process"
	"memsplit/scanner"
	"memsplit/signature"
)

// ResolvableAddress produces an absolute address on demand and caches it until invalidated
type ResolvableAddress interface {
	Resolve(mi *MemoryInterface) (process.ProcessMemoryAddress, error)
	Invalidate()
}

// ModuleAddress resolves to a module's base address plus a fixed offset
type ModuleAddress struct {
	name   string
	offset int64

	cached process.ProcessMemoryAddress
	valid  bool
}

// NewModuleAddress returns a resolver for name+offset. The name is matched ignoring case.
func NewModuleAddress(name string, offset int64) *ModuleAddress {
	return &ModuleAddress{name: name, offset: offset}
}

func (m *ModuleAddress) Resolve(mi *MemoryInterface) (process.ProcessMemoryAddress, error) {
	if m.valid {
		return m.cached, nil
	}

	mod, ok := mi.Module(m.name)
	if !ok {
		return 0, fmt.Errorf("%w: module %s is not loaded", process.ErrResolutionFailure, m.name)
	}

	m.cached = mod.Base.Add(m.offset)
	m.valid = true
	return m.cached, nil
}

func (m *ModuleAddress) Invalidate() {
	m.valid = false
}

func (m *ModuleAddress) String() string {
	return fmt.Sprintf("%s+0x%X", m.name, m.offset)
}

// SignatureAddress resolves to a pointer stored inside the first match of a signature
type SignatureAddress struct {
	sig    *signature.Signature
	offset int
	code   bool

	cached process.ProcessMemoryAddress
	valid  bool
}

// NewSignatureAddress returns a resolver reading the pointer at offset bytes into the first
// match of sig. Code resolvers search executable regions, the others search data regions.
func NewSignatureAddress(sig *signature.Signature, offset int, code bool) *SignatureAddress {
	return &SignatureAddress{sig: sig, offset: offset, code: code}
}

func (s *SignatureAddress) Resolve(mi *MemoryInterface) (process.ProcessMemoryAddress, error) {
	if s.valid {
		return s.cached, nil
	}

	filter := scanner.DataFilter
	if s.code {
		filter = scanner.CodeFilter
	}

	matches, err := mi.NewScanner(0).Find(s.sig, filter, true)
	if err != nil {
		return 0, fmt.Errorf("%w: scanning for %s: %w", process.ErrResolutionFailure, s.sig, err)
	}
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: no match for %s", process.ErrResolutionFailure, s.sig)
	}

	addr, err := matches[0].Pointer(s.offset)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", process.ErrResolutionFailure, err)
	}

	mi.log.Debugln("signature", s.sig.String(), "matched at", matches[0].Address.ToString(), "->", addr.ToString())

	s.cached = addr
	s.valid = true
	return s.cached, nil
}

func (s *SignatureAddress) Invalidate() {
	s.valid = false
}

func (s *SignatureAddress) String() string {
	return fmt.Sprintf("[%s]+%d", s.sig, s.offset)
}
