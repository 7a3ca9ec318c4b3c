// Package memory is the façade the game logic talks to: it wraps a platform Provider, keeps
// the module table captured at attachment and builds resolvers, pointer paths and watchers on
// top of it.
package memory

import (
	"encoding/binary"
	"fmt"
	"strings"

	"memsplit/process"
	"memsplit/process/memory_map"
	"memsplit/scanner"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// MemoryInterface gives typed access to the memory of one attached process
type MemoryInterface struct {
	provider process.Provider
	modules  map[string]process.Module
	info     process.SystemInfo
	viewSize int
	log      *logger.Logger
}

// Option configures a MemoryInterface
type Option func(*MemoryInterface)

// WithViewSize sets the view size of scanners created for signature resolution
func WithViewSize(size int) Option {
	return func(mi *MemoryInterface) {
		mi.viewSize = size
	}
}

// New attaches the façade to provider. The module table is enumerated once here and never
// refreshed; re-attach to pick up modules loaded later.
func New(provider process.Provider, options ...Option) (*MemoryInterface, error) {
	mi := &MemoryInterface{
		provider: provider,
		modules:  make(map[string]process.Module),
		viewSize: scanner.DefaultViewSize,
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "memory")),
	}

	for _, opt := range options {
		opt(mi)
	}

	info, err := provider.SystemInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to query system info: %w", err)
	}
	mi.info = info

	modules, err := provider.Modules()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate modules: %w", err)
	}
	for _, m := range modules {
		key := strings.ToLower(m.Name)
		if _, ok := mi.modules[key]; !ok {
			mi.modules[key] = m
		}
	}

	mi.log.Infoln("Attached with", len(mi.modules), "modules")

	return mi, nil
}

// ReadMemory reads up to len(buf) bytes at addr. Partial reads are reported, never retried.
func (mi *MemoryInterface) ReadMemory(addr process.ProcessMemoryAddress, buf []byte) (int, error) {
	return mi.provider.ReadMemory(addr, buf)
}

// WriteMemory writes up to len(data) bytes at addr. Partial writes are reported, never retried.
func (mi *MemoryInterface) WriteMemory(addr process.ProcessMemoryAddress, data []byte) (int, error) {
	return mi.provider.WriteMemory(addr, data)
}

// ReadPointer reads a pointer at addr. Anything short of a full pointer is ErrPartialTransfer.
func (mi *MemoryInterface) ReadPointer(addr process.ProcessMemoryAddress) (process.ProcessMemoryAddress, error) {
	var buf [process.PointerSize]byte
	n, err := mi.provider.ReadMemory(addr, buf[:])
	if n < len(buf) {
		if err != nil {
			return 0, fmt.Errorf("%w: pointer at %s: %w", process.ErrPartialTransfer, addr.ToString(), err)
		}
		return 0, fmt.Errorf("%w: read %d of %d pointer bytes at %s", process.ErrPartialTransfer, n, len(buf), addr.ToString())
	}
	return process.ProcessMemoryAddress(binary.LittleEndian.Uint64(buf[:])), nil
}

// QueryRegion describes the region containing addr as reported by the provider right now
func (mi *MemoryInterface) QueryRegion(addr process.ProcessMemoryAddress) (memory_map.MemoryMapItem, error) {
	return mi.provider.QueryRegion(addr)
}

// SystemInfo returns the address space bounds captured at attachment
func (mi *MemoryInterface) SystemInfo() process.SystemInfo {
	return mi.info
}

// Regions walks the address space from the minimum to the maximum application address and
// returns the regions accepted by filter. A nil filter accepts every mapped region.
func (mi *MemoryInterface) Regions(filter scanner.Filter) ([]memory_map.MemoryMapItem, error) {
	var out []memory_map.MemoryMapItem

	addr := mi.info.MinimumAddress
	for addr < mi.info.MaximumAddress {
		item, err := mi.provider.QueryRegion(addr)
		if err != nil {
			if len(out) == 0 {
				return nil, fmt.Errorf("failed to query region at %s: %w", addr.ToString(), err)
			}
			mi.log.Warn("region walk stopped at ", addr.ToString(), ": ", err)
			break
		}

		end := process.ProcessMemoryAddress(item.End())
		if end <= addr {
			break
		}

		if filter == nil || filter(item) {
			out = append(out, item)
		}
		addr = end
	}

	return out, nil
}

// AccessFlags returns the operations permitted on every byte of [addr, addr+size). A span
// crossing regions gets the intersection of their flags; an unqueryable byte permits nothing.
func (mi *MemoryInterface) AccessFlags(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) memory_map.AccessFlags {
	if size == 0 {
		size = 1
	}

	flags := memory_map.AccessRead | memory_map.AccessWrite | memory_map.AccessExecute
	end := addr + process.ProcessMemoryAddress(size)
	for cursor := addr; cursor < end; {
		item, err := mi.provider.QueryRegion(cursor)
		if err != nil || !item.Contains(uint64(cursor)) {
			return memory_map.AccessNone
		}
		flags &= item.Access()
		if flags == memory_map.AccessNone {
			return flags
		}
		cursor = process.ProcessMemoryAddress(item.End())
	}

	return flags
}

// Module looks up a module by name, ignoring case
func (mi *MemoryInterface) Module(name string) (process.Module, bool) {
	m, ok := mi.modules[strings.ToLower(name)]
	return m, ok
}

// NewScanner returns a scanner over the process memory. A non-positive viewSize selects the
// size configured on the façade.
func (mi *MemoryInterface) NewScanner(viewSize int) *scanner.Scanner {
	if viewSize <= 0 {
		viewSize = mi.viewSize
	}
	return scanner.New(mi, viewSize)
}
