package hexdump

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDumpPlain(t *testing.T) {
	data := []byte("ABCDEFGHIJKLMNOP\x00\x01")
	got := Dump(data, Options{Base: 0x1000})

	want := strings.Join([]string{
		"00001000  41 42 43 44 45 46 47 48  49 4a 4b 4c 4d 4e 4f 50  |ABCDEFGHIJKLMNOP|",
		"00001010  00 01" + strings.Repeat(" ", 45) + "|..|",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dump (-want +got):\n%s", diff)
	}
}

func TestDumpHighlight(t *testing.T) {
	got := Dump([]byte{0xAA, 0xBB, 0xCC}, Options{
		BytesPerLine: 4,
		Highlight:    func(i int) bool { return i == 1 },
	})

	if !strings.Contains(got, "aa BB  cc") {
		t.Errorf("highlight missing in %q", got)
	}
}

func TestDumpEmpty(t *testing.T) {
	if got := Dump(nil, Options{}); got != "" {
		t.Errorf("Dump(nil) = %q", got)
	}
}
