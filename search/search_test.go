package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"memsplit/memory"
	"memsplit/process"
	"memsplit/process_blob"
)

const (
	moduleBase = process.ProcessMemoryAddress(0x180000000)
	heapBase   = process.ProcessMemoryAddress(0x20000000)
)

func newMemory(t *testing.T) *memory.MemoryInterface {
	t.Helper()

	p := process_blob.NewProcessBlob(1, "TOEM")
	p.AddModule("GameAssembly.dll", moduleBase, 0x1000)
	p.Map(moduleBase, "rw-p", make([]byte, 0x1000))
	p.Map(heapBase, "rw-p", make([]byte, 0x1000))

	// module+0x20 -> heap+0x100, heap+0x100+0xB8 -> heap+0x400, heap+0x400+0x48 = 5
	for _, put := range []struct {
		addr process.ProcessMemoryAddress
		v    uint64
	}{
		{moduleBase + 0x20, uint64(heapBase + 0x100)},
		{heapBase + 0x1B8, uint64(heapBase + 0x400)},
		{heapBase + 0x448, 5},
		// Dangling pointers are skipped
		{moduleBase + 0x28, 0xDEAD00000000},
	} {
		if err := p.PutUint64(put.addr, put.v); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	mi, err := memory.New(p)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	return mi
}

func TestSearchFindsPointerPath(t *testing.T) {
	mi := newMemory(t)

	results, err := Search(mi, moduleBase, WithValue(memory.Int32, int32(5)), WithMaxDepth(2))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := []Result{{Offsets: []int64{0x20, 0xB8, 0x48}}}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Fatalf("results (-want +got):\n%s", diff)
	}
	if got := results[0].String(); got != "+0x20 -> +0xB8 -> +0x48" {
		t.Errorf("String = %q", got)
	}
}

func TestSearchResultPathFollows(t *testing.T) {
	mi := newMemory(t)

	results, err := Search(mi, moduleBase, WithValue(memory.Int32, int32(5)))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %v", results)
	}

	path := results[0].Path(memory.NewModuleAddress("GameAssembly.dll", 0))
	w, err := memory.WatchVariable(mi, path, memory.Int32, -1)
	if err != nil {
		t.Fatalf("WatchVariable: %v", err)
	}
	if err := w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if w.Current() != 5 {
		t.Errorf("Current = %d", w.Current())
	}
}

func TestSearchDepthLimit(t *testing.T) {
	mi := newMemory(t)

	results, err := Search(mi, moduleBase, WithValue(memory.Int32, int32(5)), WithMaxDepth(1))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v beyond the depth limit", results)
	}
}

func TestSearchRequiresTarget(t *testing.T) {
	if _, err := Search(newMemory(t), moduleBase); err == nil {
		t.Fatal("expected error")
	}
}
