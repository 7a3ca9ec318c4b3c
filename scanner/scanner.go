// Package scanner streams process memory through a fixed size view and reports signature
// matches.
package scanner

import (
	"fmt"

	"memsplit/process"
	"memsplit/process/memory_map"
	"memsplit/signature"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// DefaultViewSize is the size of the scan view when none is given
const DefaultViewSize = 256 * 1024

// Filter selects the regions a scan visits
type Filter func(item memory_map.MemoryMapItem) bool

// CodeFilter selects regions usable as code: executable, readable and writable
func CodeFilter(item memory_map.MemoryMapItem) bool {
	return item.Access().Has(memory_map.AccessRead | memory_map.AccessWrite | memory_map.AccessExecute)
}

// DataFilter selects readable and writable regions
func DataFilter(item memory_map.MemoryMapItem) bool {
	return item.Access().Has(memory_map.AccessRead | memory_map.AccessWrite)
}

// ReadableFilter selects every readable region
func ReadableFilter(item memory_map.MemoryMapItem) bool {
	return item.Access().Has(memory_map.AccessRead)
}

// Source is the memory a scanner reads from
type Source interface {
	// ReadMemory reads up to len(buf) bytes at addr and returns the count transferred
	ReadMemory(addr process.ProcessMemoryAddress, buf []byte) (int, error)

	// Regions returns the regions accepted by filter in ascending address order
	Regions(filter Filter) ([]memory_map.MemoryMapItem, error)
}

// Scanner finds signatures in a Source. A Scanner owns its view buffer and is not safe for
// concurrent use.
type Scanner struct {
	src  Source
	view []byte
	log  *logger.Logger
}

// New creates a scanner with a view of viewSize bytes. A non-positive size selects
// DefaultViewSize.
func New(src Source, viewSize int) *Scanner {
	if viewSize <= 0 {
		viewSize = DefaultViewSize
	}
	return &Scanner{
		src:  src,
		view: make([]byte, viewSize),
		log:  logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "scanner")),
	}
}

// ViewSize returns the size of the view buffer
func (s *Scanner) ViewSize() int {
	return len(s.view)
}

// Find scans every region selected by filter and returns the matches in ascending address
// order. With abortAfterFirstMatch the scan ends at the first match.
func (s *Scanner) Find(sig *signature.Signature, filter Filter, abortAfterFirstMatch bool) ([]Match, error) {
	if len(s.view) < 2*sig.Len() {
		return nil, fmt.Errorf("%w: view of %d bytes cannot hold a %d byte signature", process.ErrViewTooSmall, len(s.view), sig.Len())
	}

	regions, err := s.src.Regions(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate regions: %w", err)
	}

	var matches []Match
	for _, region := range regions {
		done := s.scanRegion(sig, region, func(m Match) bool {
			matches = append(matches, m)
			return !abortAfterFirstMatch
		})
		if done {
			break
		}
	}

	s.log.Debugln("scan for", sig.Len(), "byte signature over", len(regions), "regions found", len(matches), "matches")

	return matches, nil
}

// scanRegion streams one region through the view. The tail of each view is carried to the
// front of the next one so matches across chunk boundaries are found; the carry never crosses
// into another region. It returns true when emit asked to stop.
func (s *Scanner) scanRegion(sig *signature.Signature, region memory_map.MemoryMapItem, emit func(Match) bool) bool {
	base := process.ProcessMemoryAddress(region.Address)
	size := uint64(region.Size)
	keep := sig.Len() - 1

	carry := 0
	for offset := uint64(0); offset < size; {
		chunk := uint64(len(s.view) - carry)
		if remaining := size - offset; remaining < chunk {
			chunk = remaining
		}

		n, err := s.src.ReadMemory(base+process.ProcessMemoryAddress(offset), s.view[carry:carry+int(chunk)])
		if err != nil || n <= 0 {
			// unreadable chunk: skip it and restart the stream after it
			s.log.Debugln("skipping unreadable chunk at", (base + process.ProcessMemoryAddress(offset)).ToString(), err)
			offset += chunk
			carry = 0
			continue
		}

		valid := carry + n
		viewBase := base + process.ProcessMemoryAddress(offset) - process.ProcessMemoryAddress(carry)
		stopped := false
		sig.Scan(s.view[:valid], func(i int) bool {
			data := make([]byte, sig.Len())
			copy(data, s.view[i:i+sig.Len()])
			if !emit(Match{Address: viewBase + process.ProcessMemoryAddress(i), Data: data}) {
				stopped = true
			}
			return !stopped
		})
		if stopped {
			return true
		}

		offset += uint64(n)
		carry = min(keep, valid)
		copy(s.view, s.view[valid-carry:valid])
	}

	return false
}
