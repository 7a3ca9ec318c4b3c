//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"memsplit/process"
	"memsplit/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

const (
	minimumAddress = 0x10000
	maximumAddress = 0x7FFFFFFEFFFF

	processAccess = windows.PROCESS_VM_READ | windows.PROCESS_VM_WRITE | windows.PROCESS_VM_OPERATION |
		windows.PROCESS_QUERY_INFORMATION | windows.SYNCHRONIZE
)

// WindowsProcess implements the process.Process interface for Windows systems
type WindowsProcess struct {
	pid    process.ProcessID
	handle windows.Handle
	log    *logger.Logger
	mu     sync.Mutex
}

var _ process.Process = (*WindowsProcess)(nil)

// NewWithPID opens the process with the given PID for memory operations
func NewWithPID(pid process.ProcessID) (*WindowsProcess, error) {
	handle, err := windows.OpenProcess(processAccess, false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("OpenProcess failed: %w", err)
	}

	p := &WindowsProcess{
		pid:    pid,
		handle: handle,
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid))),
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

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		if err := windows.CloseHandle(p.handle); err != nil {
			return fmt.Errorf("CloseHandle failed: %w", err)
		}
		p.handle = 0
	}

	p.pid = 0
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))
	p.log.Infoln("Process closed")

	return nil
}

func (p *WindowsProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *WindowsProcess) getHandle() (windows.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return 0, process.ErrProcessNotOpen
	}
	return p.handle, nil
}

func (p *WindowsProcess) IsAlive() bool {
	handle, err := p.getHandle()
	if err != nil {
		return false
	}
	event, err := windows.WaitForSingleObject(handle, 0)
	return err == nil && event == uint32(windows.WAIT_TIMEOUT)
}

// ReadMemory reads up to len(buf) bytes at addr. ReadProcessMemory reports
// ERROR_PARTIAL_COPY when it stops at an inaccessible page; the bytes it did copy are kept.
func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	handle, err := p.getHandle()
	if err != nil {
		return 0, err
	}

	var n uintptr
	err = windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(len(buf)), &n)
	if err != nil && (n == 0 || !errors.Is(err, windows.ERROR_PARTIAL_COPY)) {
		return int(n), fmt.Errorf("ReadProcessMemory(%s) failed: %w", addr.ToString(), err)
	}
	return int(n), nil
}

// WriteMemory writes up to len(data) bytes at addr
func (p *WindowsProcess) WriteMemory(addr process.ProcessMemoryAddress, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	handle, err := p.getHandle()
	if err != nil {
		return 0, err
	}

	var n uintptr
	err = windows.WriteProcessMemory(handle, uintptr(addr), &data[0], uintptr(len(data)), &n)
	if err != nil && (n == 0 || !errors.Is(err, windows.ERROR_PARTIAL_COPY)) {
		return int(n), fmt.Errorf("WriteProcessMemory(%s) failed: %w", addr.ToString(), err)
	}
	return int(n), nil
}

func (p *WindowsProcess) QueryRegion(addr process.ProcessMemoryAddress) (memory_map.MemoryMapItem, error) {
	handle, err := p.getHandle()
	if err != nil {
		return memory_map.MemoryMapItem{}, err
	}
	return memory_map.QueryRegion(handle, uint64(addr))
}

// Modules enumerates the loaded images with a Toolhelp32 snapshot
func (p *WindowsProcess) Modules() ([]process.Module, error) {
	pid := p.GetPID()
	if pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var modules []process.Module
	for err = windows.Module32First(snapshot, &entry); err == nil; err = windows.Module32Next(snapshot, &entry) {
		modules = append(modules, process.Module{
			Name: windows.UTF16ToString(entry.Module[:]),
			Base: process.ProcessMemoryAddress(entry.ModBaseAddr),
			Size: process.ProcessMemorySize(entry.ModBaseSize),
		})
	}
	if !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return nil, fmt.Errorf("module enumeration failed: %w", err)
	}

	p.log.Debugln("Enumerated", len(modules), "modules")

	return modules, nil
}

func (p *WindowsProcess) SystemInfo() (process.SystemInfo, error) {
	return process.SystemInfo{
		MinimumAddress: minimumAddress,
		MaximumAddress: maximumAddress,
		PageSize:       process.ProcessMemorySize(windows.Getpagesize()),
	}, nil
}
