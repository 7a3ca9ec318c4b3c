package main

import (
	"flag"
	"fmt"
	"os"

	"memsplit/hexdump"
	"memsplit/memory"
	"memsplit/process"
	"memsplit/process_blob"
	"memsplit/scanner"
	"memsplit/signature"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to")
	dumpFlag := flag.String("dump", "", "Directory of a saved dump to scan instead of a live process")
	aobFlag := flag.String("aob", "", "Array of bytes to scan for (e.g., '48 8B ?? ?? 89 08')")
	regionFlag := flag.String("regions", "readable", "Regions to scan: readable, code or data")
	firstFlag := flag.Bool("first", false, "Stop at the first match")
	viewFlag := flag.Int("view", scanner.DefaultViewSize, "Scanner view size in bytes")
	contextFlag := flag.Int("context", 16, "Bytes of context to show around each match")
	colorFlag := flag.Bool("color", true, "Highlight matched bytes with ANSI colors")
	flag.Parse()

	if *pidFlag == 0 && *dumpFlag == "" {
		fmt.Println("Error: --pid or --dump is required")
		flag.Usage()
		os.Exit(1)
	}

	if *aobFlag == "" {
		fmt.Println("Error: --aob is required")
		flag.Usage()
		os.Exit(1)
	}

	sig, err := signature.From(*aobFlag)
	if err != nil {
		fmt.Printf("Error parsing AOB: %v\n", err)
		os.Exit(1)
	}

	filter, err := regionFilter(*regionFlag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	proc, err := openTarget(*pidFlag, *dumpFlag)
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

	fmt.Printf("Attached to process %d\n", proc.GetPID())
	fmt.Printf("Scanning %s regions for pattern: %s\n", *regionFlag, sig)

	matches, err := mi.NewScanner(*viewFlag).Find(sig, filter, *firstFlag)
	if err != nil {
		fmt.Printf("Error scanning memory: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Found %d matches:\n", len(matches))

	for _, match := range matches {
		fmt.Printf("Match at %s:\n", match.Address.ToString())
		printContext(mi, sig, match, *contextFlag, *colorFlag)
	}
}

func regionFilter(name string) (scanner.Filter, error) {
	switch name {
	case "readable":
		return scanner.ReadableFilter, nil
	case "code":
		return scanner.CodeFilter, nil
	case "data":
		return scanner.DataFilter, nil
	}
	return nil, fmt.Errorf("unknown region kind %q", name)
}

func openTarget(pid int, dump string) (process.Process, error) {
	if dump != "" {
		blob, err := process_blob.Load(dump)
		if err != nil {
			return nil, err
		}
		return blob, nil
	}
	return getProcess(pid)
}

// printContext dumps the match with surrounding bytes, highlighting the fixed pattern bytes
func printContext(mi *memory.MemoryInterface, sig *signature.Signature, match scanner.Match, context int, color bool) {
	start := match.Address.Add(int64(-context))
	data := make([]byte, context+sig.Len()+context)

	n, err := mi.ReadMemory(start, data)
	if n < context+sig.Len() {
		// Context may run off the region; fall back to the matched bytes
		start, data, n = match.Address, match.Data, len(match.Data)
		context = 0
		if err != nil {
			fmt.Printf("  (context unavailable: %v)\n", err)
		}
	}

	mask := sig.Mask()
	fmt.Print(hexdump.Dump(data[:n], hexdump.Options{
		Base:  uint64(start),
		Color: color,
		Highlight: func(i int) bool {
			j := i - context
			return j >= 0 && j < len(mask) && !mask[j]
		},
	}))
}
