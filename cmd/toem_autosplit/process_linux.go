package main

import (
	"memsplit/process"
	"memsplit/process_linux"
)

var opener process.Opener = process.OpenerFunc(process_linux.OpenByName)
