package memory

import (
	"fmt"

	"memsplit/process"
	"memsplit/process/memory_map"
)

// VariableWatcher tracks a fixed width value behind a pointer path. Old and Current start at
// the default value; Update shifts Current into Old and reads a fresh Current.
//
// Access flags are computed once, when the watcher is created. A watcher over memory that
// later changes protection keeps its original verdict until it is rebuilt.
type VariableWatcher[T any] struct {
	mi     *MemoryInterface
	path   *PointerPath
	codec  Codec[T]
	access memory_map.AccessFlags

	def T
	old T
	cur T

	buf []byte
}

// WatchVariable creates a watcher for the value path points at. The path is followed once to
// compute access flags, so it must be resolvable now.
func WatchVariable[T any](mi *MemoryInterface, path *PointerPath, codec Codec[T], def T) (*VariableWatcher[T], error) {
	if err := checkWidth(codec.Size()); err != nil {
		return nil, err
	}

	addr, err := path.Follow(mi)
	if err != nil {
		return nil, fmt.Errorf("failed to follow %v: %w", path, err)
	}

	return newVariableWatcher(mi, path, codec, def, mi.AccessFlags(addr, process.ProcessMemorySize(codec.Size()))), nil
}

func newVariableWatcher[T any](mi *MemoryInterface, path *PointerPath, codec Codec[T], def T, access memory_map.AccessFlags) *VariableWatcher[T] {
	return &VariableWatcher[T]{
		mi:     mi,
		path:   path,
		codec:  codec,
		access: access,
		def:    def,
		old:    def,
		cur:    def,
		buf:    make([]byte, codec.Size()),
	}
}

// Update reads the current value. On any failure Old and Current are left untouched.
func (w *VariableWatcher[T]) Update() error {
	if !w.access.Has(memory_map.AccessRead) {
		return fmt.Errorf("%w: %v is not readable", process.ErrPermissionDenied, w.path)
	}

	addr, err := w.path.Follow(w.mi)
	if err != nil {
		return err
	}

	n, err := w.mi.ReadMemory(addr, w.buf)
	if n < len(w.buf) {
		return transferError("read", n, len(w.buf), addr, err)
	}

	w.old = w.cur
	w.cur = w.codec.Decode(w.buf)
	return nil
}

// Set writes v to the target. Old and Current change only when every byte was written.
func (w *VariableWatcher[T]) Set(v T) error {
	if !w.access.Has(memory_map.AccessWrite) {
		return fmt.Errorf("%w: %v is not writable", process.ErrPermissionDenied, w.path)
	}

	addr, err := w.path.Follow(w.mi)
	if err != nil {
		return err
	}

	data := make([]byte, w.codec.Size())
	w.codec.Encode(v, data)

	n, err := w.mi.WriteMemory(addr, data)
	if n < len(data) {
		return transferError("wrote", n, len(data), addr, err)
	}

	w.old = w.cur
	w.cur = v
	return nil
}

// Reset restores Old and Current to the default value
func (w *VariableWatcher[T]) Reset() {
	w.old = w.def
	w.cur = w.def
}

func (w *VariableWatcher[T]) Old() T                         { return w.old }
func (w *VariableWatcher[T]) Current() T                     { return w.cur }
func (w *VariableWatcher[T]) Default() T                     { return w.def }
func (w *VariableWatcher[T]) Path() *PointerPath             { return w.path }
func (w *VariableWatcher[T]) Access() memory_map.AccessFlags { return w.access }

// MemoryWatcher tracks a raw byte range behind a pointer path
type MemoryWatcher struct {
	mi      *MemoryInterface
	path    *PointerPath
	access  memory_map.AccessFlags
	content []byte
	scratch []byte
}

// WatchMemory creates a watcher for size bytes at the address path points at
func (mi *MemoryInterface) WatchMemory(path *PointerPath, size int) (*MemoryWatcher, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid watch size %d", size)
	}

	addr, err := path.Follow(mi)
	if err != nil {
		return nil, fmt.Errorf("failed to follow %v: %w", path, err)
	}

	return &MemoryWatcher{
		mi:      mi,
		path:    path,
		access:  mi.AccessFlags(addr, process.ProcessMemorySize(size)),
		content: make([]byte, size),
		scratch: make([]byte, size),
	}, nil
}

// Update refreshes the snapshot. A partial read leaves the previous snapshot in place.
func (w *MemoryWatcher) Update() error {
	if !w.access.Has(memory_map.AccessRead) {
		return fmt.Errorf("%w: %v is not readable", process.ErrPermissionDenied, w.path)
	}

	addr, err := w.path.Follow(w.mi)
	if err != nil {
		return err
	}

	n, err := w.mi.ReadMemory(addr, w.scratch)
	if n < len(w.scratch) {
		return transferError("read", n, len(w.scratch), addr, err)
	}

	w.content, w.scratch = w.scratch, w.content
	return nil
}

// Content returns the last snapshot. The slice is owned by the watcher.
func (w *MemoryWatcher) Content() []byte {
	return w.content
}

// Size returns the width of the watched range
func (w *MemoryWatcher) Size() int {
	return len(w.content)
}

func (w *MemoryWatcher) Path() *PointerPath             { return w.path }
func (w *MemoryWatcher) Access() memory_map.AccessFlags { return w.access }

// Write copies src into the target at dstOffset bytes into the watched range. The snapshot is
// not refreshed; call Update to observe the result.
func (w *MemoryWatcher) Write(src []byte, dstOffset int) error {
	if dstOffset < 0 || dstOffset+len(src) > len(w.content) {
		return fmt.Errorf("write of %d bytes at offset %d exceeds the %d byte range", len(src), dstOffset, len(w.content))
	}
	if !w.access.Has(memory_map.AccessWrite) {
		return fmt.Errorf("%w: %v is not writable", process.ErrPermissionDenied, w.path)
	}

	addr, err := w.path.Follow(w.mi)
	if err != nil {
		return err
	}

	addr += process.ProcessMemoryAddress(dstOffset)
	n, err := w.mi.WriteMemory(addr, src)
	if n < len(src) {
		return transferError("wrote", n, len(src), addr, err)
	}
	return nil
}

// VariableOf views a raw watcher's range as a typed value. The codec width must equal the
// watched size.
func VariableOf[T any](raw *MemoryWatcher, codec Codec[T], def T) (*VariableWatcher[T], error) {
	if err := checkWidth(codec.Size()); err != nil {
		return nil, err
	}
	if codec.Size() != raw.Size() {
		return nil, fmt.Errorf("%w: %d byte codec over a %d byte range", process.ErrWidthMismatch, codec.Size(), raw.Size())
	}
	return newVariableWatcher(raw.mi, raw.path, codec, def, raw.access), nil
}

func transferError(verb string, n, want int, addr process.ProcessMemoryAddress, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s %d of %d bytes at %s: %w", process.ErrPartialTransfer, verb, n, want, addr.ToString(), err)
	}
	return fmt.Errorf("%w: %s %d of %d bytes at %s", process.ErrPartialTransfer, verb, n, want, addr.ToString())
}
