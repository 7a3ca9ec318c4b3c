package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"memsplit/hexdump"
	"memsplit/process"
	"memsplit/process_blob"
)

func main() {
	fromFlag := flag.String("from", "", "Directory containing the dump")
	addrFlag := flag.String("addr", "", "Address to read from (hex)")
	sizeFlag := flag.Int("size", 256, "Number of bytes to hexdump")
	flag.Parse()

	if *fromFlag == "" {
		fmt.Println("Error: --from is required")
		flag.Usage()
		os.Exit(1)
	}

	dump, err := process_blob.Load(*fromFlag)
	if err != nil {
		fmt.Printf("Error loading dump from %s: %v\n", *fromFlag, err)
		os.Exit(1)
	}

	memoryMap := dump.GetMemoryMap()
	modules, _ := dump.Modules()

	fmt.Printf("Loaded dump from %s\n", *fromFlag)
	fmt.Printf("Process Name: %s\n", dump.Name())
	fmt.Printf("PID: %d\n", dump.GetPID())
	fmt.Printf("Memory Regions: %d\n", len(memoryMap))

	// If no address is specified, just print summary and exit
	if *addrFlag == "" {
		fmt.Println("\nModules:")
		for _, m := range modules {
			fmt.Printf("  %s %s (%s)\n", m.Base.ToString(), m.Name, m.Size.ToString())
		}
		fmt.Println("\nMemory Map:")
		for _, region := range memoryMap {
			fmt.Printf("  %016x - %016x (%s) %d bytes %s\n",
				region.Address, region.End(), region.Perms, region.Size, region.Path)
		}
		return
	}

	addrVal, err := strconv.ParseUint(strings.TrimPrefix(*addrFlag, "0x"), 16, 64)
	if err != nil {
		fmt.Printf("Error parsing address: %v\n", err)
		os.Exit(1)
	}
	addr := process.ProcessMemoryAddress(addrVal)

	data := make([]byte, *sizeFlag)
	n, err := dump.ReadMemory(addr, data)
	if n == 0 {
		fmt.Printf("Error reading memory at %s: %v\n", addr.ToString(), err)
		os.Exit(1)
	}

	fmt.Printf("\nHexdump at %s (%d bytes):\n", addr.ToString(), n)
	fmt.Print(hexdump.Dump(data[:n], hexdump.Options{Base: uint64(addr)}))
}
