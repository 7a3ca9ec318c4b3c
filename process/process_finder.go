package process

import (
	"fmt"
	"strings"

	gops "github.com/shirou/gopsutil/v3/process"
)

// FindProcessByName returns every running process whose name matches name. The comparison is
// case-insensitive and ignores a trailing ".exe" on either side.
func FindProcessByName(name string) ([]ProcessInfo, error) {
	procs, err := gops.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	want := normalizeName(name)

	var result []ProcessInfo
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue
		}
		if normalizeName(pname) == want {
			result = append(result, ProcessInfo{PID: ProcessID(p.Pid), Name: pname})
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
	}

	return result, nil
}

// IsRunning reports whether a process with the given PID is still alive
func IsRunning(pid ProcessID) bool {
	p, err := gops.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := p.IsRunning()
	return err == nil && running
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".exe")
}
