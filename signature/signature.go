// Package signature parses wildcard byte patterns and matches them against memory.
//
// A pattern is written as hex byte pairs with "??" standing for any byte, for example
//
//	41 FF D3 48 8B CE 48 B8 ?? ?? ?? ?? ?? ?? ?? ?? 89 08
//
// Whitespace is ignored anywhere in the pattern.
package signature

import (
	"fmt"
	"strings"
	"unicode"

	"memsplit/process"
)

// Signature is an immutable wildcard byte pattern together with its matching tables
type Signature struct {
	bytes []byte
	mask  []bool // true marks a wildcard position

	// For every matched length j (1..len), shift[j] is the smallest displacement of the current
	// alignment that is not refuted by the pattern itself, fallback[j] = j - shift[j] is the length
	// kept after displacing, and verified[j] reports whether those kept bytes are known to match.
	shift    []int
	fallback []int
	verified []bool
}

// From parses a pattern. Multiple arguments are concatenated before parsing.
func From(pattern ...string) (*Signature, error) {
	var sb strings.Builder
	for _, part := range pattern {
		for _, r := range part {
			if !unicode.IsSpace(r) {
				sb.WriteRune(r)
			}
		}
	}
	text := sb.String()

	if len(text) == 0 {
		return nil, fmt.Errorf("%w: empty pattern", process.ErrMalformedSignature)
	}
	if len(text)%2 != 0 {
		return nil, fmt.Errorf("%w: pattern contains half-bytes", process.ErrMalformedSignature)
	}

	n := len(text) / 2
	s := &Signature{
		bytes: make([]byte, n),
		mask:  make([]bool, n),
	}

	for i := 0; i < n; i++ {
		hi, lo := text[2*i], text[2*i+1]
		if hi == '?' || lo == '?' {
			if hi != lo {
				return nil, fmt.Errorf("%w: partial wildcard %q at byte %d", process.ErrMalformedSignature, text[2*i:2*i+2], i)
			}
			s.mask[i] = true
			continue
		}

		h, ok1 := fromHex(hi)
		l, ok2 := fromHex(lo)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: invalid hex %q at byte %d", process.ErrMalformedSignature, text[2*i:2*i+2], i)
		}
		s.bytes[i] = h<<4 | l
	}

	s.build()
	return s, nil
}

// MustFrom is like From but panics on a malformed pattern. It is meant for package-level
// signatures written in source.
func MustFrom(pattern ...string) *Signature {
	s, err := From(pattern...)
	if err != nil {
		panic(err)
	}
	return s
}

func fromHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Len returns the pattern length in bytes
func (s *Signature) Len() int {
	return len(s.bytes)
}

// Bytes returns a copy of the pattern bytes. Wildcard positions hold zero.
func (s *Signature) Bytes() []byte {
	out := make([]byte, len(s.bytes))
	copy(out, s.bytes)
	return out
}

// Mask returns a copy of the wildcard mask
func (s *Signature) Mask() []bool {
	out := make([]bool, len(s.mask))
	copy(out, s.mask)
	return out
}

// Prefixes returns the failure table, one entry per matched length 0..Len(). Entry 0 is -1.
func (s *Signature) Prefixes() []int {
	out := make([]int, len(s.fallback))
	copy(out, s.fallback)
	return out
}

// Matches reports whether byte b satisfies pattern position j
func (s *Signature) Matches(j int, b byte) bool {
	return s.mask[j] || s.bytes[j] == b
}

// String returns the canonical text form of the pattern
func (s *Signature) String() string {
	var sb strings.Builder
	for i := range s.bytes {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if s.mask[i] {
			sb.WriteString("??")
		} else {
			fmt.Fprintf(&sb, "%02X", s.bytes[i])
		}
	}
	return sb.String()
}
