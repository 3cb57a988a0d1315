package fmindex

// calSA fills the sampled suffix array by walking the whole text backwards
// from the sentinel row, keeping the suffix array value of every row that is
// a multiple of intv. It must run after the packed BWT exists and before the
// index is shared. Slot 0 ends up holding -1 so that a walk wrapping through
// the sentinel row lands on the right position. A full suffix array also
// gets its leftmost-position structure.
func (ix *Index) calSA(intv int64) {
	if ix.bwt == nil {
		panic("fmindex: calSA on an index without a packed BWT")
	}
	if intv <= 0 {
		panic("fmindex: calSA with a non-positive sample interval")
	}
	ix.saIntv = intv
	ix.sa = make([]int64, (ix.seqLen+intv)/intv)

	isa, sa := int64(0), ix.seqLen
	for i := int64(0); i < ix.seqLen; i++ {
		if isa%intv == 0 {
			ix.sa[isa/intv] = sa
		}
		sa--
		isa = ix.lf(isa)
	}
	if isa%intv == 0 {
		ix.sa[isa/intv] = sa
	}
	ix.sa[0] = -1
	ix.buildLeftmost()
}

// Resample returns a copy of the index whose suffix array is sampled every
// intv rows. The packed BWT is shared with ix, which is left untouched.
func (ix *Index) Resample(intv int64) *Index {
	out := *ix
	out.sa, out.leftmost = nil, nil
	out.calSA(intv)
	return &out
}

// lf maps a BWT row to the row of the suffix one position earlier in the
// text. The sentinel row maps to row 0.
func (ix *Index) lf(row int64) int64 {
	if row == ix.primary {
		return 0
	}
	p := ix.packedRow(row)
	c := ix.symbolAt(p)
	if row < ix.seqLen {
		return ix.l2[c] + ix.occ(p, c)
	}
	return ix.l2[c+1]
}

// SA returns the text position of the suffix at BWT row k, for k in
// [1, SeqLen()]. Row 0 is the sentinel suffix and reports -1.
func (ix *Index) SA(k int64) int64 {
	var steps int64
	if m := ix.saIntv - 1; ix.saIntv&m == 0 {
		for k&m != 0 {
			steps++
			k = ix.lf(k)
		}
	} else {
		for k%ix.saIntv != 0 {
			steps++
			k = ix.lf(k)
		}
	}
	return steps + ix.sa[k/ix.saIntv]
}
