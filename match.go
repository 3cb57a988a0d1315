package fmindex

// MatchExact returns the number of occurrences of pattern in the text and
// the suffix array interval holding them. Patterns containing an ambiguous
// base never match.
func (ix *Index) MatchExact(pattern []byte) (int64, Interval) {
	n, iv := ix.MatchExactAlt(pattern, ix.FullRange())
	if n == 0 {
		return 0, Interval{K: 1, L: 0}
	}
	return n, iv
}

// MatchExactAlt extends the interval iv by pattern, right to left. On a
// match it returns the occurrence count and the narrowed interval; otherwise
// it returns 0 and iv unchanged.
func (ix *Index) MatchExactAlt(pattern []byte, iv Interval) (int64, Interval) {
	cur := iv
	for i := len(pattern) - 1; i >= 0; i-- {
		c := pattern[i]
		if c > 3 {
			return 0, iv
		}
		cur = ix.Extend(cur, c)
		if cur.Empty() {
			return 0, iv
		}
	}
	return cur.Size(), cur
}
