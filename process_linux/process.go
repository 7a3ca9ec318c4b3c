//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"memsplit/process"
	"memsplit/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/unix"
)

const (
	minimumAddress = 0x10000
	maximumAddress = 0x7FFFFFFFFFFF

	// region queries within this window share one parse of /proc/[pid]/maps
	memoryMapTTL = 250 * time.Millisecond
)

// LinuxProcess implements the process.Process interface for Linux systems
type LinuxProcess struct {
	pid process.ProcessID
	log *logger.Logger

	mu       sync.Mutex
	mm       []memory_map.MemoryMapItem
	mmLoaded time.Time
}

var _ process.Process = (*LinuxProcess)(nil)

// NewWithPID opens the process with the given PID for memory operations
func NewWithPID(pid process.ProcessID) (*LinuxProcess, error) {
	// Check if process exists
	procPath := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("process with PID %d does not exist", pid)
	}

	p := &LinuxProcess{
		pid: pid,
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid))),
	}

	if err := p.UpdateMemoryMap(); err != nil {
		return nil, fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened")

	return p, nil
}

// OpenByName opens the first running process called name
func OpenByName(name string) (process.Process, error) {
	found, err := process.FindProcessByName(name)
	if err != nil {
		return nil, err
	}
	return NewWithPID(found[0].PID)
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Infoln("Closing process")

	p.pid = 0
	p.mm = nil
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *LinuxProcess) IsAlive() bool {
	pid := p.GetPID()
	return pid != 0 && process.IsRunning(pid)
}

// UpdateMemoryMap re-reads /proc/[pid]/maps
func (p *LinuxProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updateMemoryMapInternal()
}

func (p *LinuxProcess) updateMemoryMapInternal() error {
	if p.pid == 0 {
		return process.ErrProcessNotOpen
	}

	mm, err := memory_map.NewLinuxMemoryMap().ReadMemoryMap(int(p.pid))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	p.mm = mm
	p.mmLoaded = time.Now()
	return nil
}

// memoryMap returns a recent memory map, re-reading it once it is older than memoryMapTTL
func (p *LinuxProcess) memoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mm == nil || time.Since(p.mmLoaded) > memoryMapTTL {
		if err := p.updateMemoryMapInternal(); err != nil {
			return nil, err
		}
	}
	return p.mm, nil
}

func (p *LinuxProcess) QueryRegion(addr process.ProcessMemoryAddress) (memory_map.MemoryMapItem, error) {
	mm, err := p.memoryMap()
	if err != nil {
		return memory_map.MemoryMapItem{}, err
	}
	return memory_map.RegionAt(uint64(addr), mm, maximumAddress), nil
}

// Modules derives the loaded images from file-backed mappings. Each file becomes one module
// spanning its lowest to its highest mapping.
func (p *LinuxProcess) Modules() ([]process.Module, error) {
	if err := p.UpdateMemoryMap(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	mm := p.mm
	p.mu.Unlock()

	return ModulesFromMemoryMap(mm), nil
}

// ModulesFromMemoryMap groups file-backed regions of a sorted memory map by file
func ModulesFromMemoryMap(mm []memory_map.MemoryMapItem) []process.Module {
	var modules []process.Module
	index := make(map[string]int)

	for _, item := range mm {
		if item.Path == "" || item.Path[0] != '/' {
			continue
		}

		if i, ok := index[item.Path]; ok {
			m := &modules[i]
			end := process.ProcessMemoryAddress(item.End())
			if end > m.Base+process.ProcessMemoryAddress(m.Size) {
				m.Size = process.ProcessMemorySize(end - m.Base)
			}
			continue
		}

		index[item.Path] = len(modules)
		modules = append(modules, process.Module{
			Name: filepath.Base(item.Path),
			Base: process.ProcessMemoryAddress(item.Address),
			Size: process.ProcessMemorySize(item.Size),
		})
	}

	return modules
}

func (p *LinuxProcess) SystemInfo() (process.SystemInfo, error) {
	return process.SystemInfo{
		MinimumAddress: minimumAddress,
		MaximumAddress: maximumAddress,
		PageSize:       process.ProcessMemorySize(unix.Getpagesize()),
	}, nil
}
