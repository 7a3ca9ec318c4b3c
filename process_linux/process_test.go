//go:build linux

package process_linux

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"memsplit/process"
	"memsplit/process/memory_map"
)

func TestModulesFromMemoryMap(t *testing.T) {
	mm, err := memory_map.ParseMaps(strings.NewReader(`140000000-140001000 r--p 00000000 00:2a 11 /games/TOEM/TOEM.exe
140001000-140005000 r-xp 00001000 00:2a 11 /games/TOEM/TOEM.exe
180000000-180001000 r--p 00000000 00:2a 12 /games/TOEM/GameAssembly.dll
180001000-181c00000 r-xp 00001000 00:2a 12 /games/TOEM/GameAssembly.dll
7f0000000000-7f0000001000 rw-p 00000000 00:00 0 [heap]
`))
	if err != nil {
		t.Fatalf("ParseMaps: %v", err)
	}

	want := []process.Module{
		{Name: "TOEM.exe", Base: 0x140000000, Size: 0x5000},
		{Name: "GameAssembly.dll", Base: 0x180000000, Size: 0x1c00000},
	}
	if diff := cmp.Diff(want, ModulesFromMemoryMap(mm)); diff != "" {
		t.Errorf("modules mismatch (-want +got):\n%s", diff)
	}
}

// Reading our own memory exercises the syscall path without a second process.
func TestReadOwnMemory(t *testing.T) {
	p, err := NewWithPID(process.ProcessID(os.Getpid()))
	if err != nil {
		t.Skipf("cannot open self: %v", err)
	}
	defer p.Close()

	region, err := p.QueryRegion(0)
	if err != nil {
		t.Fatalf("QueryRegion: %v", err)
	}
	if region.Access() != memory_map.AccessNone {
		t.Errorf("page zero should be unmapped, got %v", region)
	}

	mods, err := p.Modules()
	if err != nil || len(mods) == 0 {
		t.Fatalf("Modules = %v, %v", mods, err)
	}

	buf := make([]byte, 4)
	n, err := p.ReadMemory(process.ProcessMemoryAddress(mods[0].Base), buf)
	if err != nil {
		t.Skipf("process_vm_readv not permitted here: %v", err)
	}
	if n != 4 || string(buf[1:4]) != "ELF" {
		t.Errorf("read %d bytes %q, want an ELF header", n, buf)
	}
}
