package fmindex

// Extend prepends symbol c to the match described by iv and returns the new
// interval:
//
//	K' = L2[c] + Occ(K-1, c) + 1
//	L' = L2[c] + Occ(L, c)
//
// When both bounds fall into the same checkpoint block the two ranks come
// from one scan. An empty result has K' == L'+1; callers must stop extending
// once it is empty.
func (ix *Index) Extend(iv Interval, c byte) Interval {
	m := ix.packedRow(iv.K - 1)
	i := ix.packedRow(iv.L)
	if iv.K == 0 || i <= m || m/ix.occIntv != i/ix.occIntv {
		return ix.extendSplit(iv, m, i, c)
	}

	b := ix.block(m / ix.occIntv)
	w := b.bases()
	mw := m % ix.occIntv / basesPerWord
	iw := i % ix.occIntv / basesPerWord

	l := occPartial(w[iw], i%basesPerWord, c)
	if iw > mw {
		l += occFull(w[mw:iw], c)
	}
	k := occPartial(w[mw], m%basesPerWord, c) + 1
	if k > l {
		return Interval{K: k, L: l}
	}
	n := ix.l2[c] + b.count(c) + occFull(w[:mw], c)
	return Interval{K: k + n, L: l + n}
}

// extendSplit computes both bounds independently. m and i are the packed
// positions of K-1 and L.
func (ix *Index) extendSplit(iv Interval, m, i int64, c byte) Interval {
	var out Interval
	if iv.K == 0 {
		out.K = ix.l2[c] + 1
	} else {
		out.K = ix.l2[c] + ix.occ(m, c) + 1
	}
	switch {
	case i <= m:
		out.L = out.K - 1
	case iv.K == 0 && iv.L == ix.seqLen:
		out.L = ix.l2[c+1]
	default:
		out.L = ix.l2[c] + ix.occ(i, c)
	}
	return out
}
