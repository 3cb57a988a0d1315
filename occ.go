package fmindex

// Occ returns the number of occurrences of symbol c (0..3) in BWT rows
// [0, row]. row must lie in [-1, SeqLen()]; -1 yields 0. The sentinel row
// never counts as an occurrence.
func (ix *Index) Occ(row int64, c byte) int64 {
	if row < 0 {
		return 0
	}
	return ix.occ(ix.packedRow(row), c)
}

// occ counts c in packed positions [0, p].
func (ix *Index) occ(p int64, c byte) int64 {
	b := ix.block(p / ix.occIntv)
	w := b.bases()
	k := p % ix.occIntv
	l := k / basesPerWord
	return b.count(c) + occFull(w[:l], c) + occPartial(w[l], k%basesPerWord, c)
}

// occFull counts c over whole base words.
func occFull(w []uint64, c byte) (n int64) {
	switch c {
	case 0:
		for _, x := range w {
			n += occAux(^x)
		}
	case 3:
		for _, x := range w {
			n += occAux(x)
		}
	default:
		m := nMask[c]
		for _, x := range w {
			n += occAux(x ^ m)
		}
	}
	return n
}

// occPartial counts c over bases 0..j of a single base word.
func occPartial(x uint64, j int64, c byte) int64 {
	x &= occMask[j]
	switch c {
	case 0:
		// cleared bases read back as code 0 after the complement
		return occAux(^x) - (j ^ 31)
	case 3:
		return occAux(x)
	default:
		return occAux(x ^ nMask[c])
	}
}

// Occ4 returns the rank of all four symbols at row in one pass.
func (ix *Index) Occ4(row int64) (cnt [4]int64) {
	if row < 0 {
		return cnt
	}
	p := ix.packedRow(row)
	b := ix.block(p / ix.occIntv)
	k := p % ix.occIntv
	x := occGroups(b, 0, k>>4) + occGroupTail(b, k)
	addCounts(&cnt, b, x)
	return cnt
}

// TwoOcc4 returns Occ4(k) and Occ4(l), scanning the checkpoint block once
// when both rows share it. It requires k <= l.
func (ix *Index) TwoOcc4(k, l int64) (cntk, cntl [4]int64) {
	if k == l {
		cntk = ix.Occ4(k)
		return cntk, cntk
	}
	if k < 0 || l < 0 {
		return ix.Occ4(k), ix.Occ4(l)
	}
	pk, pl := ix.packedRow(k), ix.packedRow(l)
	if pk/ix.occIntv != pl/ix.occIntv {
		return ix.Occ4(k), ix.Occ4(l)
	}
	b := ix.block(pk / ix.occIntv)
	k, l = pk%ix.occIntv, pl%ix.occIntv
	x := occGroups(b, 0, k>>4)
	y := x + occGroups(b, k>>4, l>>4) + occGroupTail(b, l)
	x += occGroupTail(b, k)
	addCounts(&cntk, b, x)
	addCounts(&cntl, b, y)
	return cntk, cntl
}

// occGroups sums the byte-packed symbol counters of 16-base groups [from, to).
// A block holds at most 128 bases, so no counter overflows its byte.
func occGroups(b block, from, to int64) (x uint32) {
	for g := from; g < to; g++ {
		x += occAux4(b.group(g))
	}
	return x
}

// occGroupTail counts bases up to offset k inside k's 16-base group.
func occGroupTail(b block, k int64) uint32 {
	return occAux4(b.group(k>>4)&uint32(occMask[k&15])) - uint32(^k&15)
}

func addCounts(cnt *[4]int64, b block, x uint32) {
	for c := range cnt {
		cnt[c] = b.count(byte(c)) + int64(x>>(8*uint(c))&0xff)
	}
}
