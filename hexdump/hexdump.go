// Package hexdump renders memory as offset/hex/ascii lines with optional highlighting.
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Options customizes the dump
type Options struct {
	// BytesPerLine defaults to 16
	BytesPerLine int

	// Base is the address of data[0]; line offsets are printed relative to it
	Base uint64

	// Highlight marks bytes by index into data
	Highlight func(i int) bool

	// Color enables ANSI colors. Without it highlighted bytes are printed in upper case.
	Color bool
}

// Dump renders data as a string
func Dump(data []byte, options Options) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpToWriter writes the dump of data to writer
func DumpToWriter(writer io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}
	if options.Highlight == nil {
		options.Highlight = func(int) bool { return false }
	}

	width := len(fmt.Sprintf("%x", options.Base+uint64(len(data))))
	if width < 8 {
		width = 8
	}

	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data[offset:end], offset, width, options)
	}
}

func formatLine(writer io.Writer, line []byte, offset, width int, options Options) {
	addr := fmt.Sprintf("%0*x", width, options.Base+uint64(offset))
	if options.Color {
		addr = coloransi.Foreground(coloransi.ColorPurple, addr)
	}

	var hexCol, asciiCol strings.Builder
	for i := 0; i < options.BytesPerLine; i++ {
		if i == options.BytesPerLine/2 {
			hexCol.WriteByte(' ')
		}
		if i >= len(line) {
			hexCol.WriteString("   ")
			continue
		}

		b := line[i]
		h := fmt.Sprintf("%02x", b)
		a := "."
		if b >= 0x20 && b < 0x7f {
			a = string(rune(b))
		}

		switch {
		case !options.Highlight(offset + i):
			hexCol.WriteString(h + " ")
		case options.Color:
			hexCol.WriteString(coloransi.Foreground(coloransi.ColorOrange, h) + " ")
			a = coloransi.Foreground(coloransi.ColorOrange, a)
		default:
			hexCol.WriteString(strings.ToUpper(h) + " ")
		}
		asciiCol.WriteString(a)
	}

	fmt.Fprintf(writer, "%s  %s |%s|\n", addr, hexCol.String(), asciiCol.String())
}
