//go:build windows

package memory_map

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	windowsMinimumAddress = 0x10000
	windowsMaximumAddress = 0x7FFFFFFEFFFF
)

// WindowsMemoryMap implements MemoryMap for Windows
type WindowsMemoryMap struct{}

// NewWindowsMemoryMap creates a new WindowsMemoryMap instance
func NewWindowsMemoryMap() *WindowsMemoryMap {
	return &WindowsMemoryMap{}
}

// ReadMemoryMap walks the address space of a process with VirtualQueryEx and returns the
// committed regions
func (w *WindowsMemoryMap) ReadMemoryMap(pid int) ([]MemoryMapItem, error) {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ, false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("OpenProcess failed: %w", err)
	}
	defer windows.CloseHandle(handle)

	var memoryMap []MemoryMapItem
	for addr := uint64(windowsMinimumAddress); addr < windowsMaximumAddress; {
		item, err := QueryRegion(handle, addr)
		if err != nil {
			break
		}
		if item.Perms[0] != '-' || item.Perms[2] != '-' || item.Guard {
			memoryMap = append(memoryMap, item)
		}
		if item.Size == 0 {
			break
		}
		addr = item.End()
	}

	return memoryMap, nil
}

// QueryRegion describes the region containing addr in the process behind handle
func QueryRegion(handle windows.Handle, addr uint64) (MemoryMapItem, error) {
	var mbi windows.MemoryBasicInformation
	if err := windows.VirtualQueryEx(handle, uintptr(addr), &mbi, unsafe.Sizeof(mbi)); err != nil {
		return MemoryMapItem{}, fmt.Errorf("VirtualQueryEx(0x%x) failed: %w", addr, err)
	}

	return FromProtect(uint64(mbi.BaseAddress), uint64(mbi.RegionSize), mbi.State, mbi.Protect), nil
}

// FromProtect converts a VirtualQueryEx result into a region item. Uncommitted memory keeps its
// extent but carries no permissions.
func FromProtect(base, size uint64, state, protect uint32) MemoryMapItem {
	item := MemoryMapItem{Address: base, Size: uint(size), Perms: "---p"}
	if state != windows.MEM_COMMIT {
		return item
	}

	item.Guard = protect&windows.PAGE_GUARD != 0

	perms := []byte("---p")
	// the low byte holds the base protection, higher bits are modifiers
	switch protect & 0xFF {
	case windows.PAGE_READONLY:
		perms[0] = 'r'
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		perms[0], perms[1] = 'r', 'w'
	case windows.PAGE_EXECUTE:
		perms[2] = 'x'
	case windows.PAGE_EXECUTE_READ:
		perms[0], perms[2] = 'r', 'x'
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		perms[0], perms[1], perms[2] = 'r', 'w', 'x'
	}
	item.Perms = string(perms)

	return item
}
