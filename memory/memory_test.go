package memory

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"memsplit/process"
	"memsplit/process/memory_map"
	"memsplit/process_blob"
	"memsplit/scanner"
	"memsplit/signature"
)

const (
	moduleBase = process.ProcessMemoryAddress(0x180000000)
	heapBase   = process.ProcessMemoryAddress(0x20000000)
)

// newFixture maps a module image holding a pointer to a heap object:
//
//	GameAssembly.dll+0x10 -> heap+0x100, heap+0x100+0x38 holds 0x11223344
func newFixture(t *testing.T) (*process_blob.ProcessBlob, *MemoryInterface) {
	t.Helper()

	p := process_blob.NewProcessBlob(1, "TOEM")
	p.AddModule("GameAssembly.dll", moduleBase, 0x1000)
	p.Map(moduleBase, "rw-p", make([]byte, 0x1000))
	p.Map(heapBase, "rw-p", make([]byte, 0x1000))

	mustPut(t, p.PutUint64(moduleBase+0x10, uint64(heapBase+0x100)))
	mustPut(t, p.PutUint32(heapBase+0x138, 0x11223344))

	mi, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, mi
}

func mustPut(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("put: %v", err)
	}
}

func TestModuleAddress(t *testing.T) {
	_, mi := newFixture(t)

	addr, err := NewModuleAddress("gameassembly.DLL", 0x10).Resolve(mi)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if addr != moduleBase+0x10 {
		t.Errorf("Resolve = %s", addr.ToString())
	}

	_, err = NewModuleAddress("UnityPlayer.dll", 0).Resolve(mi)
	if !errors.Is(err, process.ErrResolutionFailure) {
		t.Errorf("missing module: err = %v", err)
	}
}

func TestModuleTableIsSnapshot(t *testing.T) {
	p, mi := newFixture(t)
	p.AddModule("Late.dll", 0x190000000, 0x1000)

	if _, ok := mi.Module("late.dll"); ok {
		t.Fatal("module loaded after attachment should not be visible")
	}
}

func TestPointerPathFollow(t *testing.T) {
	_, mi := newFixture(t)

	path := ModulePath("GameAssembly.dll", 0x10).Deref().Offset(0x38).Build()
	addr, err := path.Follow(mi)
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if addr != heapBase+0x138 {
		t.Errorf("Follow = %s, want %s", addr.ToString(), (heapBase + 0x138).ToString())
	}
}

func TestPointerPathCache(t *testing.T) {
	p, mi := newFixture(t)

	path := ModulePath("GameAssembly.dll", 0x10).Deref().Offset(0x38).Build()
	first, err := path.Follow(mi)
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}

	// retarget the pointer; a cached path must not notice
	mustPut(t, p.PutUint64(moduleBase+0x10, uint64(heapBase+0x200)))

	reads := p.Reads()
	again, _ := path.Follow(mi)
	if again != first || p.Reads() != reads {
		t.Fatalf("cached Follow = %s with %d reads", again.ToString(), p.Reads()-reads)
	}

	path.Flush(false)
	moved, err := path.Follow(mi)
	if err != nil {
		t.Fatalf("Follow after flush: %v", err)
	}
	if moved != heapBase+0x238 {
		t.Errorf("Follow after flush = %s", moved.ToString())
	}
}

func TestPointerPathNullAndShort(t *testing.T) {
	p, mi := newFixture(t)

	mustPut(t, p.PutUint64(moduleBase+0x20, 0))
	_, err := ModulePath("GameAssembly.dll", 0x20).Deref().Build().Follow(mi)
	if !errors.Is(err, process.ErrResolutionFailure) {
		t.Errorf("null deref: err = %v", err)
	}

	// the last 4 bytes of the image, the pointer would run past the mapping
	_, err = ModulePath("GameAssembly.dll", 0xFFC).Deref().Build().Follow(mi)
	if !errors.Is(err, process.ErrPartialTransfer) {
		t.Errorf("short deref: err = %v", err)
	}
}

func TestExtendSharesEntry(t *testing.T) {
	p, mi := newFixture(t)

	base := ModulePath("GameAssembly.dll", 0x10).Deref().Build()
	field := base.Extend().Offset(0x38).Build()

	if _, err := field.Follow(mi); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if base.Entry() != field.Entry() {
		t.Fatal("Extend should share the entry resolver")
	}

	// extending must not alter the parent
	got, err := base.Follow(mi)
	if err != nil || got != heapBase+0x100 {
		t.Fatalf("base Follow = %s, %v", got.ToString(), err)
	}

	mustPut(t, p.PutUint64(moduleBase+0x10, uint64(heapBase+0x200)))
	base.Flush(true)
	field.Flush(false)
	got, _ = field.Follow(mi)
	if got != heapBase+0x238 {
		t.Errorf("field after flush = %s", got.ToString())
	}
}

func TestSignatureAddress(t *testing.T) {
	p := process_blob.NewProcessBlob(1, "TOEM")
	code := make([]byte, 0x100)
	copy(code[0x40:], []byte{0x41, 0xFF, 0xD3, 0x48, 0x8B, 0xCE, 0x48, 0xB8})
	copy(code[0x48:], []byte{0x00, 0x01, 0x00, 0x20, 0x00, 0x00, 0x00, 0x00})
	copy(code[0x50:], []byte{0x89, 0x08, 0x48, 0xB8})
	p.Map(0x10000000, "rwxp", code)
	p.Map(heapBase, "rw-p", make([]byte, 0x1000))

	mi, err := New(p, WithViewSize(64))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sig := signature.MustFrom("41 FF D3 48 8B CE 48 B8 ?? ?? ?? ?? ?? ?? ?? ?? 89 08 48 B8")
	entry := NewSignatureAddress(sig, 8, true)
	addr, err := entry.Resolve(mi)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if addr != heapBase+0x100 {
		t.Errorf("Resolve = %s", addr.ToString())
	}

	reads := p.Reads()
	if _, err := entry.Resolve(mi); err != nil || p.Reads() != reads {
		t.Errorf("cached Resolve did %d reads, err %v", p.Reads()-reads, err)
	}

	_, err = NewSignatureAddress(signature.MustFrom("DE AD BE EF"), 0, false).Resolve(mi)
	if !errors.Is(err, process.ErrResolutionFailure) {
		t.Errorf("absent signature: err = %v", err)
	}
}

func TestRegionsAndAccessFlags(t *testing.T) {
	p := process_blob.NewProcessBlob(1, "TOEM")
	p.Map(0x100000, "rw-p", make([]byte, 0x1000))
	p.Map(0x101000, "r--p", make([]byte, 0x1000))
	p.Map(0x200000, "rwxp", make([]byte, 0x1000))
	if err := p.SetProtection(0x200000, "rwxp", true); err != nil {
		t.Fatal(err)
	}

	mi, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	regions, err := mi.Regions(scanner.ReadableFilter)
	if err != nil {
		t.Fatalf("Regions: %v", err)
	}
	var starts []uint64
	for _, r := range regions {
		starts = append(starts, r.Address)
	}
	if diff := cmp.Diff([]uint64{0x100000, 0x101000}, starts); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name string
		addr process.ProcessMemoryAddress
		size process.ProcessMemorySize
		want memory_map.AccessFlags
	}{
		{"inside rw", 0x100010, 8, memory_map.AccessRead | memory_map.AccessWrite},
		{"spanning rw and r", 0x100FFC, 8, memory_map.AccessRead},
		{"unmapped tail", 0x101FFC, 8, memory_map.AccessNone},
		{"guard", 0x200000, 4, memory_map.AccessNone},
		{"unmapped", 0x300000, 4, memory_map.AccessNone},
	}
	for _, tt := range tests {
		if got := mi.AccessFlags(tt.addr, tt.size); got != tt.want {
			t.Errorf("%s: AccessFlags = %s, want %s", tt.name, got, tt.want)
		}
	}
}
