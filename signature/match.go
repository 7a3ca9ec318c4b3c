package signature

// Scan runs the pattern over data and calls fn with the offset of every match in ascending
// order. Overlapping matches are all reported. Scanning stops early when fn returns false.
func (s *Signature) Scan(data []byte, fn func(offset int) bool) {
	n := len(s.bytes)
	if n == 0 || len(data) < n {
		return
	}

	i, j := 0, 0
	for i < len(data) {
		if s.Matches(j, data[i]) {
			i++
			j++
			if j < n {
				continue
			}
			if !fn(i - n) {
				return
			}
		} else if j == 0 {
			i++
			continue
		}

		// fall back from a mismatch at j, or from a complete match (j == n)
		if s.verified[j] {
			j = s.fallback[j]
		} else {
			i -= s.fallback[j]
			j = 0
		}

		if len(data)-i+j < n {
			return
		}
	}
}

// FindAll returns the offsets of every match in data
func (s *Signature) FindAll(data []byte) []int {
	var offsets []int
	s.Scan(data, func(offset int) bool {
		offsets = append(offsets, offset)
		return true
	})
	return offsets
}

// MatchAt reports whether the pattern matches data at offset
func (s *Signature) MatchAt(data []byte, offset int) bool {
	if offset < 0 || offset+len(s.bytes) > len(data) {
		return false
	}
	for k := range s.bytes {
		if !s.Matches(k, data[offset+k]) {
			return false
		}
	}
	return true
}
