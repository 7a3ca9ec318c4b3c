package main

import (
	"memsplit/process"
	"memsplit/process_windows"
)

var opener process.Opener = process.OpenerFunc(process_windows.OpenByName)
