package process_blob

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"memsplit/process"
	"memsplit/process/memory_map"
)

func TestReadAcrossAdjacentRegions(t *testing.T) {
	p := NewProcessBlob(1, "test")
	p.Map(0x1000, "rw-p", []byte{1, 2, 3, 4})
	p.Map(0x1004, "r--p", []byte{5, 6, 7, 8})

	buf := make([]byte, 10)
	n, err := p.ReadMemory(0x1002, buf)
	if err != nil {
		t.Fatalf("ReadMemory: %v", err)
	}
	if diff := cmp.Diff([]byte{3, 4, 5, 6, 7, 8}, buf[:n]); diff != "" {
		t.Errorf("read mismatch (-want +got):\n%s", diff)
	}
}

func TestTransferLimit(t *testing.T) {
	p := NewProcessBlob(1, "test")
	p.Map(0x1000, "rw-p", make([]byte, 16))
	p.SetTransferLimit(3)

	n, err := p.WriteMemory(0x1000, []byte{9, 9, 9, 9, 9})
	if err != nil || n != 3 {
		t.Fatalf("WriteMemory = %d, %v; want 3, nil", n, err)
	}

	got, _ := p.Bytes(0x1000, 5)
	if diff := cmp.Diff([]byte{9, 9, 9, 0, 0}, got); diff != "" {
		t.Errorf("memory mismatch (-want +got):\n%s", diff)
	}
}

func TestProtection(t *testing.T) {
	p := NewProcessBlob(1, "test")
	p.Map(0x1000, "r--p", make([]byte, 8))

	if n, err := p.WriteMemory(0x1000, []byte{1}); n != 0 || err == nil {
		t.Errorf("write to read-only = %d, %v; want refusal", n, err)
	}
	if _, err := p.ReadMemory(0x5000, make([]byte, 1)); !errors.Is(err, process.ErrAddressNotMapped) {
		t.Errorf("read unmapped: err = %v", err)
	}
}

func TestQueryRegionGap(t *testing.T) {
	p := NewProcessBlob(1, "test")
	p.Map(0x20000, "rw-p", make([]byte, 0x1000))

	gap, err := p.QueryRegion(0x10000)
	if err != nil {
		t.Fatalf("QueryRegion: %v", err)
	}
	if gap.Address != 0x10000 || gap.End() != 0x20000 || gap.Access() != memory_map.AccessNone {
		t.Errorf("gap = %v", gap)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()

	src := NewProcessBlob(42, "TOEM")
	src.AddModule("GameAssembly.dll", 0x180000000, 0x2000)
	src.Map(0x180000000, "r-xp", []byte{0x48, 0x8B, 0x05})
	src.Map(0x200000, "rw-p", []byte{1, 2, 3, 4})
	src.Map(0x300000, "---p", []byte{7, 7})

	if err := Save(dir, "TOEM", src); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.GetPID() != 42 || got.Name() != "TOEM" {
		t.Errorf("metadata = %d %q", got.GetPID(), got.Name())
	}

	mods, _ := got.Modules()
	if diff := cmp.Diff([]process.Module{{Name: "GameAssembly.dll", Base: 0x180000000, Size: 0x2000}}, mods); diff != "" {
		t.Errorf("modules mismatch (-want +got):\n%s", diff)
	}

	want := []memory_map.MemoryMapItem{
		{Address: 0x200000, Size: 4, Perms: "rw-p"},
		{Address: 0x180000000, Size: 3, Perms: "r-xp"},
	}
	if diff := cmp.Diff(want, got.GetMemoryMap()); diff != "" {
		t.Errorf("memory map mismatch (-want +got):\n%s", diff)
	}

	data, err := got.Bytes(0x200000, 4)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, data); diff != "" {
		t.Errorf("blob mismatch (-want +got):\n%s", diff)
	}
}
