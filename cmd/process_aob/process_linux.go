package main

import (
	"memsplit/process"
	"memsplit/process_linux"
)

func getProcess(pid int) (process.Process, error) {
	proc, err := process_linux.NewWithPID(process.ProcessID(pid))
	if err != nil {
		return nil, err
	}
	return proc, nil
}
