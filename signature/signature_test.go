package signature

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"memsplit/process"
)

func TestFrom(t *testing.T) {
	sig, err := From("41 FF d3 ?? ", "\t48\n8b")
	if err != nil {
		t.Fatalf("From: %v", err)
	}

	if diff := cmp.Diff([]byte{0x41, 0xFF, 0xD3, 0x00, 0x48, 0x8B}, sig.Bytes()); diff != "" {
		t.Errorf("bytes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{false, false, false, true, false, false}, sig.Mask()); diff != "" {
		t.Errorf("mask mismatch (-want +got):\n%s", diff)
	}
	if got := len(sig.Prefixes()); got != sig.Len()+1 {
		t.Errorf("table length = %d, want %d", got, sig.Len()+1)
	}
	if got := sig.String(); got != "41 FF D3 ?? 48 8B" {
		t.Errorf("String() = %q", got)
	}
}

func TestFromWhitespaceInsensitive(t *testing.T) {
	a := MustFrom("4889??C3")
	b := MustFrom("48 89 ?? C3")
	if diff := cmp.Diff(a.String(), b.String()); diff != "" {
		t.Errorf("spacing changed the pattern:\n%s", diff)
	}
}

func TestFromMalformed(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"4",
		"41 F",
		"4?",
		"?4",
		"GG",
		"41 -1",
	}

	for _, pattern := range tests {
		_, err := From(pattern)
		if !errors.Is(err, process.ErrMalformedSignature) {
			t.Errorf("From(%q) error = %v, want ErrMalformedSignature", pattern, err)
		}
	}
}

func TestFindAll(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		data    []byte
		want    []int
	}{
		{"exact", "01 02", []byte{0, 1, 2, 0, 1, 2}, []int{1, 4}},
		{"overlapping", "AA AA", []byte{0xAA, 0xAA, 0xAA}, []int{0, 1}},
		{"wildcard", "01 ?? 03", []byte{1, 9, 3, 1, 3, 3}, []int{0, 3}},
		{"all wildcards", "?? ??", []byte{1, 2, 3}, []int{0, 1}},
		{"at end", "03", []byte{1, 2, 3}, []int{2}},
		{"short data", "01 02 03", []byte{1, 2}, nil},
		// a wildcard in the matched prefix must not be trusted on fallback
		{"wildcard overlap", "01 ?? 01 02", []byte{1, 1, 1, 2}, []int{0}},
		{"wildcard hides restart", "?? 01 02", []byte{5, 5, 1, 2}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustFrom(tt.pattern).FindAll(tt.data)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FindAll mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanStopsEarly(t *testing.T) {
	sig := MustFrom("00")
	calls := 0
	sig.Scan(make([]byte, 16), func(int) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Fatalf("callback ran %d times, want 1", calls)
	}
}

func bruteForce(sig *Signature, data []byte) []int {
	var out []int
	for p := 0; p+sig.Len() <= len(data); p++ {
		if sig.MatchAt(data, p) {
			out = append(out, p)
		}
	}
	return out
}

// Small alphabets force plenty of partial matches and self-overlaps.
func TestFindAllMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const hex = "0123"

	for iter := 0; iter < 5000; iter++ {
		n := 1 + rng.Intn(8)
		pattern := make([]byte, 0, 3*n)
		for k := 0; k < n; k++ {
			if rng.Intn(3) == 0 {
				pattern = append(pattern, '?', '?', ' ')
			} else {
				pattern = append(pattern, '0', hex[rng.Intn(len(hex))], ' ')
			}
		}
		sig := MustFrom(string(pattern))

		data := make([]byte, rng.Intn(64))
		for k := range data {
			data[k] = byte(rng.Intn(len(hex)))
		}

		want := bruteForce(sig, data)
		got := sig.FindAll(data)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("pattern %q data %v (-brute +automaton):\n%s", sig, data, diff)
		}
	}
}
