package signature

// compatible reports whether pattern positions a and b can hold the same text byte
func (s *Signature) compatible(a, b int) bool {
	return s.mask[a] || s.mask[b] || s.bytes[a] == s.bytes[b]
}

// build computes the matching tables.
//
// With wildcards, a self-overlap of the pattern does not imply the text matches the overlapped
// prefix: a wildcard in the already matched part says nothing about the text byte below it. So
// besides the displacement we record whether the retained prefix is proven by the bytes seen so
// far. When it is not, the matcher re-reads from the new alignment instead of trusting it.
func (s *Signature) build() {
	n := len(s.bytes)
	s.shift = make([]int, n+1)
	s.fallback = make([]int, n+1)
	s.verified = make([]bool, n+1)
	s.fallback[0] = -1

	for j := 1; j <= n; j++ {
		shift := j
		for d := 1; d < j; d++ {
			if s.overlaps(d, j) {
				shift = d
				break
			}
		}

		keep := j - shift
		proven := true
		for t := 0; t < keep; t++ {
			// text below position shift+t is only known when the pattern fixed it
			if s.mask[shift+t] && !s.mask[t] {
				proven = false
				break
			}
		}

		s.shift[j] = shift
		s.fallback[j] = keep
		s.verified[j] = proven
	}
}

// overlaps reports whether, after matching j bytes, an alignment displaced by d is still
// possible
func (s *Signature) overlaps(d, j int) bool {
	for t := 0; t+d < j; t++ {
		if !s.compatible(t, t+d) {
			return false
		}
	}
	return true
}
