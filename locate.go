package fmindex

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/viniciusth/rmq"
)

// Locate appends the text position of every row of iv to dst.
func (ix *Index) Locate(iv Interval, dst []int64) []int64 {
	for k := iv.K; k <= iv.L; k++ {
		dst = append(dst, ix.SA(k))
	}
	return dst
}

// LocateSet returns the distinct text positions of iv. The sentinel row is
// skipped.
func (ix *Index) LocateSet(iv Interval) *roaring64.Bitmap {
	bm := roaring64.NewBitmap()
	for k := iv.K; k <= iv.L; k++ {
		if pos := ix.SA(k); pos >= 0 {
			bm.Add(uint64(pos))
		}
	}
	return bm
}

// leftmostIndex answers range-minimum queries over a full suffix array.
type leftmostIndex struct {
	sa  []int
	rmq *rmq.RMQHybridNaive[int]
}

// buildLeftmost needs a suffix array sampled at every row.
func (ix *Index) buildLeftmost() {
	if ix.saIntv != 1 {
		ix.leftmost = nil
		return
	}
	sa := make([]int, len(ix.sa))
	for i, v := range ix.sa {
		sa[i] = int(v)
	}
	// the sentinel suffix starts past the last symbol
	sa[0] = int(ix.seqLen)
	ix.leftmost = &leftmostIndex{sa: sa, rmq: rmq.NewRMQHybridNaive(sa)}
}

// Leftmost returns the smallest text position among the rows of iv. It is
// O(1) when the index keeps its full suffix array and walks the interval
// otherwise.
func (ix *Index) Leftmost(iv Interval) (int64, bool) {
	if iv.Empty() {
		return 0, false
	}
	if lm := ix.leftmost; lm != nil {
		return int64(lm.sa[lm.rmq.Query(int(iv.K), int(iv.L))]), true
	}
	best := int64(-1)
	for k := iv.K; k <= iv.L; k++ {
		pos := ix.SA(k)
		if pos < 0 {
			pos = ix.seqLen
		}
		if best < 0 || pos < best {
			best = pos
		}
	}
	return best, true
}
