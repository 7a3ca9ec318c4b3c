package main

import (
	"memsplit/process"
	"memsplit/process_windows"
)

func getProcess(pid int) (process.Process, error) {
	proc, err := process_windows.NewWithPID(process.ProcessID(pid))
	if err != nil {
		return nil, err
	}
	return proc, nil
}
