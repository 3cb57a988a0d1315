// Package fmindex answers exact-match queries over the Burrows-Wheeler
// transform of a nucleotide text: rank counts, backward extension of
// suffix-array intervals and recovery of text positions from BWT rows.
//
// Symbols are the codes 0..3 (A, C, G, T). Code 4 marks an ambiguous base.
// An Index is immutable once built and may be shared by any number of
// goroutines.
package fmindex

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyText             = errors.New("fmindex: empty text")
	ErrTextTooLong           = errors.New("fmindex: text too long")
	ErrInvalidSymbol         = errors.New("fmindex: symbol code out of alphabet")
	ErrInvalidOccInterval    = errors.New("fmindex: occurrence interval must be a power of two in [32, 128]")
	ErrInvalidSampleInterval = errors.New("fmindex: suffix array sample interval must be positive")
)

const (
	// DefaultOccInterval is the number of BWT rows covered by one checkpoint.
	DefaultOccInterval = 128
	// DefaultSampleInterval keeps one suffix array value every 32 rows.
	DefaultSampleInterval = 32

	// Ambiguous is the code of a base outside the alphabet.
	Ambiguous byte = 4

	minOccInterval = 32
	maxOccInterval = 128
	basesPerWord   = 32
	countWords     = 2
)

// Interval is a suffix array interval [K, L]. It is empty when K > L.
type Interval struct {
	K, L int64
}

// Empty reports whether the interval holds no rows.
func (iv Interval) Empty() bool { return iv.K > iv.L }

// Size is the number of rows of the interval.
func (iv Interval) Size() int64 {
	if iv.K > iv.L {
		return 0
	}
	return iv.L - iv.K + 1
}

func (iv Interval) String() string { return fmt.Sprintf("[%d, %d]", iv.K, iv.L) }

// Index is an FM-index over a packed BWT with embedded rank checkpoints and a
// sampled suffix array.
type Index struct {
	seqLen  int64
	primary int64
	l2      [5]int64

	occIntv int64
	stride  int64
	bwt     []uint64

	saIntv   int64
	sa       []int64
	leftmost *leftmostIndex
}

func validOccInterval(n int64) bool {
	return n >= minOccInterval && n <= maxOccInterval && n&(n-1) == 0
}

func blockStride(occIntv int64) int64 {
	return countWords + occIntv/basesPerWord
}

// SeqLen is the number of real symbols in the indexed text.
func (ix *Index) SeqLen() int64 { return ix.seqLen }

// Primary is the BWT row holding the sentinel.
func (ix *Index) Primary() int64 { return ix.primary }

// Rows is the number of BWT rows, sentinel included.
func (ix *Index) Rows() int64 { return ix.l2[4] + 1 }

// CumulativeCount returns the number of text symbols smaller than c, for c in 0..4.
func (ix *Index) CumulativeCount(c byte) int64 { return ix.l2[c] }

// OccInterval is the checkpoint spacing the packed BWT was built with.
func (ix *Index) OccInterval() int64 { return ix.occIntv }

// SampleInterval is the suffix array sampling rate.
func (ix *Index) SampleInterval() int64 { return ix.saIntv }

// FullRange is the interval matching the empty pattern.
func (ix *Index) FullRange() Interval { return Interval{K: 0, L: ix.seqLen} }

// block is one checkpoint record: two words with the four 32-bit symbol
// counts preceding the block, followed by the packed base words.
type block []uint64

func (b block) count(c byte) int64 {
	return int64(uint32(b[c>>1] >> (32 * uint(c&1))))
}

func (b block) bases() []uint64 { return b[countWords:] }

// group returns the 16-base group g (a 32-bit half of a base word).
func (b block) group(g int64) uint32 {
	return uint32(b[countWords+g>>1] >> (32 * uint(g&1)))
}

func (ix *Index) block(b int64) block {
	off := b * ix.stride
	return block(ix.bwt[off : off+ix.stride])
}

// symbolAt returns the code stored at packed position p (a row with the
// sentinel already removed).
func (ix *Index) symbolAt(p int64) byte {
	j := p % ix.occIntv
	w := ix.block(p / ix.occIntv).bases()[j/basesPerWord]
	return byte(w >> baseShift(int(j%basesPerWord)) & 3)
}

// packedRow maps a BWT row to its position in the packed BWT.
func (ix *Index) packedRow(row int64) int64 {
	if row >= ix.primary {
		return row - 1
	}
	return row
}
