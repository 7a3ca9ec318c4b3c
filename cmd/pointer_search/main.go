package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"memsplit/memory"
	"memsplit/process"
	"memsplit/process_blob"
	"memsplit/search"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to")
	dumpFlag := flag.String("dump", "", "Directory of a saved dump to search instead of a live process")
	moduleFlag := flag.String("module", "GameAssembly.dll", "Module the search starts from")
	offsetFlag := flag.String("offset", "0", "Offset into the module (hex)")
	valueFlag := flag.Int64("value", 0, "Value to search for")
	widthFlag := flag.Int("width", 4, "Width of the value in bytes (1, 2, 4 or 8)")
	depthFlag := flag.Int("depth", 3, "Maximum number of pointers to follow")
	structFlag := flag.Int("struct-size", 256, "Bytes scanned per structure")
	alignFlag := flag.Int("align", 4, "Alignment of candidate fields")
	flag.Parse()

	if *pidFlag == 0 && *dumpFlag == "" {
		fmt.Println("Error: --pid or --dump is required")
		flag.Usage()
		os.Exit(1)
	}

	offset, err := strconv.ParseInt(strings.TrimPrefix(*offsetFlag, "0x"), 16, 64)
	if err != nil {
		fmt.Printf("Error parsing offset: %v\n", err)
		os.Exit(1)
	}

	target, err := valueOption(*valueFlag, *widthFlag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var proc process.Process
	if *dumpFlag != "" {
		proc, err = process_blob.Load(*dumpFlag)
	} else {
		proc, err = getProcess(*pidFlag)
	}
	if err != nil {
		fmt.Printf("Error opening target: %v\n", err)
		os.Exit(1)
	}
	defer proc.Close()

	mi, err := memory.New(proc)
	if err != nil {
		fmt.Printf("Error attaching to process %d: %v\n", proc.GetPID(), err)
		os.Exit(1)
	}

	entry := memory.NewModuleAddress(*moduleFlag, offset)
	base, err := entry.Resolve(mi)
	if err != nil {
		fmt.Printf("Error resolving %v: %v\n", entry, err)
		os.Exit(1)
	}

	fmt.Printf("Searching from %v (%s) for %d\n", entry, base.ToString(), *valueFlag)

	results, err := search.Search(mi, base, target,
		search.WithMaxDepth(*depthFlag),
		search.WithMaxStructSize(*structFlag),
		search.WithMinAlignment(*alignFlag))
	if err != nil {
		fmt.Printf("Error searching: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d paths:\n", len(results))
	for _, r := range results {
		fmt.Printf("  %v\n", r.Path(entry))
	}
}

func valueOption(v int64, width int) (search.Option, error) {
	switch width {
	case 1:
		return search.WithValue(memory.Uint8, uint8(v)), nil
	case 2:
		return search.WithValue(memory.Uint16, uint16(v)), nil
	case 4:
		return search.WithValue(memory.Uint32, uint32(v)), nil
	case 8:
		return search.WithValue(memory.Int64, v), nil
	}
	return nil, fmt.Errorf("%w: unsupported width %d", process.ErrWidthMismatch, width)
}
