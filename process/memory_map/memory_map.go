package memory_map

import (
	"fmt"
	"sort"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint   // The size of the memory region in bytes
	Perms   string // Permissions (e.g., "r-xp" for read, execute, private)
	Guard   bool   `json:",omitempty"` // Guard page, any access faults
	Path    string `json:",omitempty"` // Backing file, empty for anonymous memory
}

// AccessFlags is the set of operations permitted on a region
type AccessFlags uint8

const AccessNone AccessFlags = 0

const (
	AccessRead AccessFlags = 1 << iota
	AccessWrite
	AccessExecute
)

// Has reports whether every flag in want is present
func (a AccessFlags) Has(want AccessFlags) bool {
	return a&want == want
}

func (a AccessFlags) String() string {
	b := []byte("---")
	if a.Has(AccessRead) {
		b[0] = 'r'
	}
	if a.Has(AccessWrite) {
		b[1] = 'w'
	}
	if a.Has(AccessExecute) {
		b[2] = 'x'
	}
	return string(b)
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s", mmItem.Address, mmItem.Size, mmItem.Perms)
}

// End returns the first address past the region
func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

// Contains reports whether addr lies inside the region
func (mmItem MemoryMapItem) Contains(addr uint64) bool {
	return addr >= mmItem.Address && addr < mmItem.End()
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsWritable() bool {
	return len(mmItem.Perms) > 1 && mmItem.Perms[1] == 'w'
}

func (mmItem MemoryMapItem) IsExecutable() bool {
	return len(mmItem.Perms) > 2 && mmItem.Perms[2] == 'x'
}

// Access returns the permitted operations. A guard page permits nothing.
func (mmItem MemoryMapItem) Access() AccessFlags {
	if mmItem.Guard {
		return AccessNone
	}
	flags := AccessNone
	if mmItem.IsReadable() {
		flags |= AccessRead
	}
	if mmItem.IsWritable() {
		flags |= AccessWrite
	}
	if mmItem.IsExecutable() {
		flags |= AccessExecute
	}
	return flags
}

// MemoryMap defines the interface for operations related to a process's memory map
type MemoryMap interface {
	// ReadMemoryMap reads and parses the memory map for a process
	ReadMemoryMap(pid int) ([]MemoryMapItem, error)
}

// Sort orders a memory map by address, as required by Lookup
func Sort(memoryMap []MemoryMapItem) {
	sort.Slice(memoryMap, func(i, j int) bool {
		return memoryMap[i].Address < memoryMap[j].Address
	})
}

// Lookup returns the region containing addr in a sorted memory map
func Lookup(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// RegionAt answers a region query against a sorted memory map. Addresses outside every region
// yield a gap item without permissions that ends at the next mapped region (or at limit).
func RegionAt(addr uint64, memoryMap []MemoryMapItem, limit uint64) MemoryMapItem {
	if item := Lookup(addr, memoryMap); item != nil {
		return *item
	}

	end := limit
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].Address > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address < end {
		end = memoryMap[i].Address
	}
	if end <= addr {
		end = addr + 1
	}

	return MemoryMapItem{Address: addr, Size: uint(end - addr), Perms: "---p"}
}
