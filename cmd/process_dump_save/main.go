package main

import (
	"flag"
	"fmt"
	"os"

	"memsplit/process"
	"memsplit/process_blob"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to")
	nameFlag := flag.String("name", "", "Process name to look up instead of --pid")
	outputFlag := flag.String("output", "", "Output directory for the dump")
	flag.Parse()

	if *pidFlag == 0 && *nameFlag == "" {
		fmt.Println("Error: --pid or --name is required")
		flag.Usage()
		os.Exit(1)
	}

	if *outputFlag == "" {
		fmt.Println("Error: --output is required")
		flag.Usage()
		os.Exit(1)
	}

	pid, name := *pidFlag, *nameFlag
	if pid == 0 {
		found, err := process.FindProcessByName(name)
		if err != nil {
			fmt.Printf("Error finding process %s: %v\n", name, err)
			os.Exit(1)
		}
		pid = int(found[0].PID)
	}

	proc, err := getProcess(pid)
	if err != nil {
		fmt.Printf("Error attaching to process %d: %v\n", pid, err)
		os.Exit(1)
	}
	defer proc.Close()

	fmt.Printf("Attached to process %d\n", pid)

	fmt.Printf("Saving dump to %s...\n", *outputFlag)
	if err := process_blob.Save(*outputFlag, name, proc); err != nil {
		fmt.Printf("Error saving dump: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Dump saved successfully.")
}
