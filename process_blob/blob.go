// Package process_blob implements a process whose memory lives in byte slices. It backs the
// tests and offline analysis of saved dumps.
package process_blob

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"memsplit/process"
	"memsplit/process/memory_map"
)

const (
	defaultMinimumAddress = 0x10000
	defaultMaximumAddress = 0x7FFFFFFFFFFF
)

type blobRegion struct {
	item memory_map.MemoryMapItem
	data []byte
}

// ProcessBlob is an in-memory process
type ProcessBlob struct {
	mu sync.Mutex

	pid     process.ProcessID
	name    string
	regions []*blobRegion // sorted by address, non-overlapping
	modules []process.Module
	info    process.SystemInfo
	alive   bool

	transferLimit int

	reads  int
	writes int
}

var _ process.Process = (*ProcessBlob)(nil)

// NewProcessBlob creates an empty in-memory process
func NewProcessBlob(pid process.ProcessID, name string) *ProcessBlob {
	return &ProcessBlob{
		pid:   pid,
		name:  name,
		alive: true,
		info: process.SystemInfo{
			MinimumAddress: defaultMinimumAddress,
			MaximumAddress: defaultMaximumAddress,
			PageSize:       0x1000,
		},
	}
}

// Name returns the process name
func (p *ProcessBlob) Name() string {
	return p.name
}

// Map adds a region backed by data. Regions must not overlap.
func (p *ProcessBlob) Map(addr process.ProcessMemoryAddress, perms string, data []byte) {
	p.MapItem(memory_map.MemoryMapItem{Address: uint64(addr), Size: uint(len(data)), Perms: perms}, data)
}

// MapItem adds a region described by item. data is resized to the region size.
func (p *ProcessBlob) MapItem(item memory_map.MemoryMapItem, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if uint(len(data)) != item.Size {
		resized := make([]byte, item.Size)
		copy(resized, data)
		data = resized
	}

	p.regions = append(p.regions, &blobRegion{item: item, data: data})
	sort.Slice(p.regions, func(i, j int) bool {
		return p.regions[i].item.Address < p.regions[j].item.Address
	})
}

// AddModule registers a loaded image
func (p *ProcessBlob) AddModule(name string, base process.ProcessMemoryAddress, size process.ProcessMemorySize) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modules = append(p.modules, process.Module{Name: name, Base: base, Size: size})
}

// SetTransferLimit caps the bytes moved by a single read or write. Zero removes the cap.
func (p *ProcessBlob) SetTransferLimit(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transferLimit = n
}

// SetProtection changes the permissions of the region containing addr
func (p *ProcessBlob) SetProtection(addr process.ProcessMemoryAddress, perms string, guard bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.find(uint64(addr))
	if r == nil {
		return process.ErrAddressNotMapped
	}
	r.item.Perms = perms
	r.item.Guard = guard
	return nil
}

// Kill marks the process as exited
func (p *ProcessBlob) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive = false
}

// Reads returns the number of ReadMemory calls served
func (p *ProcessBlob) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

// Writes returns the number of WriteMemory calls served
func (p *ProcessBlob) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

// Put stores data at addr regardless of protection
func (p *ProcessBlob) Put(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(data) > 0 {
		r := p.find(uint64(addr))
		if r == nil {
			return fmt.Errorf("put at %s: %w", addr.ToString(), process.ErrAddressNotMapped)
		}
		n := copy(r.data[uint64(addr)-r.item.Address:], data)
		data = data[n:]
		addr += process.ProcessMemoryAddress(n)
	}
	return nil
}

// PutUint64 stores a little-endian uint64 at addr
func (p *ProcessBlob) PutUint64(addr process.ProcessMemoryAddress, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return p.Put(addr, b[:])
}

// PutUint32 stores a little-endian uint32 at addr
func (p *ProcessBlob) PutUint32(addr process.ProcessMemoryAddress, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return p.Put(addr, b[:])
}

// Bytes returns a copy of size bytes at addr regardless of protection
func (p *ProcessBlob) Bytes(addr process.ProcessMemoryAddress, size int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]byte, 0, size)
	for len(out) < size {
		r := p.find(uint64(addr))
		if r == nil {
			return nil, process.ErrAddressNotMapped
		}
		chunk := r.data[uint64(addr)-r.item.Address:]
		chunk = chunk[:min(len(chunk), size-len(out))]
		out = append(out, chunk...)
		addr += process.ProcessMemoryAddress(len(chunk))
	}
	return out, nil
}

func (p *ProcessBlob) find(addr uint64) *blobRegion {
	i := sort.Search(len(p.regions), func(i int) bool {
		return p.regions[i].item.End() > addr
	})
	if i < len(p.regions) && p.regions[i].item.Contains(addr) {
		return p.regions[i]
	}
	return nil
}

// transfer moves bytes between buf and the regions starting at addr, continuing across
// adjacent regions that grant want. It stops at the first gap or refused region.
func (p *ProcessBlob) transfer(addr process.ProcessMemoryAddress, buf []byte, want memory_map.AccessFlags, write bool) (int, error) {
	limit := len(buf)
	if p.transferLimit > 0 && limit > p.transferLimit {
		limit = p.transferLimit
	}

	done := 0
	for done < limit {
		cursor := uint64(addr) + uint64(done)
		r := p.find(cursor)
		if r == nil {
			if done == 0 {
				return 0, fmt.Errorf("%s: %w", process.ProcessMemoryAddress(cursor).ToString(), process.ErrAddressNotMapped)
			}
			break
		}
		if !r.item.Access().Has(want) {
			if done == 0 {
				return 0, fmt.Errorf("%s: access %s not permitted by %s", process.ProcessMemoryAddress(cursor).ToString(), want, r.item.Perms)
			}
			break
		}

		region := r.data[cursor-r.item.Address:]
		var n int
		if write {
			n = copy(region, buf[done:limit])
		} else {
			n = copy(buf[done:limit], region)
		}
		done += n
	}

	return done, nil
}

func (p *ProcessBlob) ReadMemory(addr process.ProcessMemoryAddress, buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.reads++
	if !p.alive {
		return 0, process.ErrProcessNotOpen
	}
	return p.transfer(addr, buf, memory_map.AccessRead, false)
}

func (p *ProcessBlob) WriteMemory(addr process.ProcessMemoryAddress, data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.writes++
	if !p.alive {
		return 0, process.ErrProcessNotOpen
	}
	return p.transfer(addr, data, memory_map.AccessWrite, true)
}

func (p *ProcessBlob) QueryRegion(addr process.ProcessMemoryAddress) (memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.alive {
		return memory_map.MemoryMapItem{}, process.ErrProcessNotOpen
	}
	return memory_map.RegionAt(uint64(addr), p.memoryMap(), uint64(p.info.MaximumAddress)), nil
}

func (p *ProcessBlob) memoryMap() []memory_map.MemoryMapItem {
	mm := make([]memory_map.MemoryMapItem, len(p.regions))
	for i, r := range p.regions {
		mm[i] = r.item
	}
	return mm
}

// GetMemoryMap returns the mapped regions
func (p *ProcessBlob) GetMemoryMap() []memory_map.MemoryMapItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.memoryMap()
}

func (p *ProcessBlob) Modules() ([]process.Module, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]process.Module, len(p.modules))
	copy(out, p.modules)
	return out, nil
}

func (p *ProcessBlob) SystemInfo() (process.SystemInfo, error) {
	return p.info, nil
}

func (p *ProcessBlob) GetPID() process.ProcessID {
	return p.pid
}

func (p *ProcessBlob) IsAlive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

func (p *ProcessBlob) Close() error {
	return nil
}
