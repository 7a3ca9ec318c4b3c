package process_blob

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"memsplit/process"
	"memsplit/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

const (
	metadataFile  = "metadata.json"
	memoryMapFile = "process_memory_map.json"

	// MaxBlobSize is the largest region Save writes out
	MaxBlobSize = 100 * 1024 * 1024

	saveChunkSize = 1024 * 1024
)

type metadata struct {
	PID     process.ProcessID `json:"pid"`
	Name    string            `json:"name"`
	Modules []process.Module  `json:"modules,omitempty"`
}

func blobFilename(dirname string, item memory_map.MemoryMapItem) string {
	return filepath.Join(dirname, fmt.Sprintf("blob_0x%x_%d.bin", item.Address, item.Size))
}

// Save writes the readable memory of proc to dirname: a metadata file with the PID, name and
// module table, the memory map and one blob file per saved region. Unreadable pages inside a
// saved region are stored as zeros.
func Save(dirname string, name string, proc process.Process) error {
	log := logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("dump-%d", proc.GetPID())))

	if err := os.MkdirAll(dirname, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	modules, err := proc.Modules()
	if err != nil {
		return fmt.Errorf("failed to enumerate modules: %w", err)
	}

	metadataJSON, err := json.MarshalIndent(metadata{PID: proc.GetPID(), Name: name, Modules: modules}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, metadataFile), metadataJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	mm, err := readableRegions(proc)
	if err != nil {
		return err
	}

	memoryMapJSON, err := json.MarshalIndent(mm, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory map: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, memoryMapFile), memoryMapJSON, 0644); err != nil {
		return fmt.Errorf("failed to write memory map file: %w", err)
	}

	saved, skipped := 0, 0
	for _, item := range mm {
		if item.Size > MaxBlobSize {
			log.Infoln("Skipping large region at", fmt.Sprintf("%x", item.Address), "(size:", item.Size/1024/1024, "MB)")
			skipped++
			continue
		}

		data := make([]byte, item.Size)
		readAny := false
		for off := 0; off < len(data); off += saveChunkSize {
			end := min(off+saveChunkSize, len(data))
			n, _ := proc.ReadMemory(process.ProcessMemoryAddress(item.Address+uint64(off)), data[off:end])
			if n > 0 {
				readAny = true
			}
		}
		if !readAny {
			skipped++
			continue
		}

		if err := os.WriteFile(blobFilename(dirname, item), data, 0644); err != nil {
			return fmt.Errorf("failed to write blob for region %x: %w", item.Address, err)
		}
		saved++
	}

	log.Infoln("Saved", saved, "regions,", skipped, "skipped, to", dirname)

	return nil
}

func readableRegions(proc process.Process) ([]memory_map.MemoryMapItem, error) {
	info, err := proc.SystemInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to query system info: %w", err)
	}

	var mm []memory_map.MemoryMapItem
	for addr := info.MinimumAddress; addr < info.MaximumAddress; {
		item, err := proc.QueryRegion(addr)
		if err != nil {
			if len(mm) == 0 {
				return nil, fmt.Errorf("failed to query region at %s: %w", addr.ToString(), err)
			}
			break
		}
		if item.End() <= uint64(addr) {
			break
		}
		if item.Access().Has(memory_map.AccessRead) {
			mm = append(mm, item)
		}
		addr = process.ProcessMemoryAddress(item.End())
	}
	return mm, nil
}

// Load reads a dump written by Save into an in-memory process. Regions whose blob file is
// missing are mapped as zeros.
func Load(dirname string) (*ProcessBlob, error) {
	metadataBytes, err := os.ReadFile(filepath.Join(dirname, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta metadata
	if err := json.Unmarshal(metadataBytes, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	mmBytes, err := os.ReadFile(filepath.Join(dirname, memoryMapFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read memory map: %w", err)
	}

	var mm []memory_map.MemoryMapItem
	if err := json.Unmarshal(mmBytes, &mm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memory map: %w", err)
	}

	p := NewProcessBlob(meta.PID, meta.Name)
	for _, m := range meta.Modules {
		p.AddModule(m.Name, m.Base, m.Size)
	}

	for _, item := range mm {
		data, err := os.ReadFile(blobFilename(dirname, item))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read blob for region %x: %w", item.Address, err)
		}
		p.MapItem(item, data)
	}

	return p, nil
}
