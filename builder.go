package fmindex

import (
	"fmt"
	"index/suffixarray"
	"log/slog"
	"math"
	"runtime"
	"time"
	"unsafe"
)

// Builder constructs an Index from a text of symbol codes.
type Builder struct {
	text    []byte
	occIntv int
	saIntv  int
	logger  *slog.Logger
}

func NewBuilder(text []byte) *Builder {
	return &Builder{
		text:    text,
		occIntv: DefaultOccInterval,
		saIntv:  DefaultSampleInterval,
		logger:  slog.New(slog.DiscardHandler),
	}
}

// Sets the number of BWT rows between rank checkpoints.
// Must be a power of two between 32 and 128.
// Smaller intervals make rank queries faster and the index larger.
func (b *Builder) OccInterval(n int) *Builder {
	b.occIntv = n
	return b
}

// Sets the suffix array sampling rate. Position recovery takes up to n-1
// LF-mapping steps, the sample array holds SeqLen/n values.
func (b *Builder) SampleInterval(n int) *Builder {
	b.saIntv = n
	return b
}

// Keeps the whole suffix array plus a range-minimum structure over it.
// Costs O(|T|) extra memory, makes SA and Leftmost O(1).
func (b *Builder) FullSuffixArray() *Builder {
	b.saIntv = 1
	return b
}

// Logs construction phases to logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

func (b *Builder) Build() (*Index, error) {
	if len(b.text) == 0 {
		return nil, ErrEmptyText
	}
	if int64(len(b.text)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: text of %d symbols does not fit 32-bit checkpoints", ErrTextTooLong, len(b.text))
	}
	if !validOccInterval(int64(b.occIntv)) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOccInterval, b.occIntv)
	}
	if b.saIntv <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleInterval, b.saIntv)
	}
	for i, c := range b.text {
		if c > 3 {
			return nil, fmt.Errorf("%w: code %d at position %d", ErrInvalidSymbol, c, i)
		}
	}

	start := time.Now()
	suffixArray := buildSuffixArray(b.text)
	b.logger.Debug("suffix array sorted", "seq_len", len(b.text), "elapsed", time.Since(start))

	ix := packBWT(b.text, suffixArray, int64(b.occIntv))
	b.logger.Debug("bwt packed",
		"primary", ix.primary,
		"occ_interval", ix.occIntv,
		"words", len(ix.bwt),
	)

	ix.calSA(int64(b.saIntv))
	b.logger.Info("index built",
		"seq_len", ix.seqLen,
		"sample_interval", ix.saIntv,
		"samples", len(ix.sa),
		"elapsed", time.Since(start),
	)
	return ix, nil
}

// buildSuffixArray sorts the suffixes of text with the SA-IS construction
// behind index/suffixarray. A suffix sorts before every longer suffix it
// prefixes.
func buildSuffixArray(text []byte) []int64 {
	idx := suffixarray.New(text)

	// Layout of suffixarray.Index (src/index/suffixarray/suffixarray.go):
	//   type Index struct { data []byte; sa ints }
	//   type ints struct { int32 []int32; int64 []int64 }
	// Texts up to math.MaxInt32 bytes populate int32, longer ones int64.
	type intsHeader struct {
		int32Ptr unsafe.Pointer
		int32Len int
		int32Cap int
		int64Ptr unsafe.Pointer
		int64Len int
		int64Cap int
	}
	type indexHeader struct {
		dataPtr unsafe.Pointer
		dataLen int
		dataCap int
		sa      intsHeader
	}
	h := (*indexHeader)(unsafe.Pointer(idx))

	sa := make([]int64, len(text))
	if h.sa.int32Len == len(text) {
		for i, v := range unsafe.Slice((*int32)(h.sa.int32Ptr), h.sa.int32Len) {
			sa[i] = int64(v)
		}
	} else {
		copy(sa, unsafe.Slice((*int64)(h.sa.int64Ptr), h.sa.int64Len))
	}
	runtime.KeepAlive(idx)
	return sa
}

// packBWT lays out the BWT of text, given its suffix array, as checkpoint
// blocks. BWT row 0 is the sentinel suffix; the row whose suffix is the whole
// text holds the sentinel symbol and is left out of the packed sequence.
func packBWT(text []byte, suffixArray []int64, occIntv int64) *Index {
	n := int64(len(text))
	ix := &Index{
		seqLen:  n,
		occIntv: occIntv,
		stride:  blockStride(occIntv),
	}
	ix.bwt = make([]uint64, (n/occIntv+1)*ix.stride)

	var cnt [4]int64
	var p int64
	put := func(c byte) {
		j := p % occIntv
		blk := ix.block(p / occIntv)
		if j == 0 {
			blk.setCounts(cnt)
		}
		blk.bases()[j/basesPerWord] |= uint64(c) << baseShift(int(j%basesPerWord))
		cnt[c]++
		p++
	}

	put(text[n-1])
	for r := int64(1); r <= n; r++ {
		s := suffixArray[r-1]
		if s == 0 {
			ix.primary = r
			continue
		}
		put(text[s-1])
	}
	if p%occIntv == 0 {
		ix.block(p / occIntv).setCounts(cnt)
	}

	for c := 0; c < 4; c++ {
		ix.l2[c+1] = ix.l2[c] + cnt[c]
	}
	return ix
}

func (b block) setCounts(cnt [4]int64) {
	b[0] = uint64(uint32(cnt[0])) | uint64(uint32(cnt[1]))<<32
	b[1] = uint64(uint32(cnt[2])) | uint64(uint32(cnt[3]))<<32
}
