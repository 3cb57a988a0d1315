package fmindex

import "fmt"

// SMEM is a super-maximal exact match: a bidirectional interval (K on the
// forward index, RevK on the reverse one, Size rows) and the query span
// [Begin, End) it covers.
type SMEM struct {
	K, RevK, Size int64
	Begin, End    int
}

// Len is the length of the matched query span.
func (m SMEM) Len() int { return m.End - m.Begin }

// Scratch holds the per-query buffers a Finder works in. Reset keeps their
// capacity so a worker allocates only while its buffers grow.
type Scratch struct {
	Matches []SMEM
	Sub     []SMEM
	Tmp     [2][]SMEM
}

func (s *Scratch) Reset() {
	s.Matches = s.Matches[:0]
	s.Sub = s.Sub[:0]
	s.Tmp[0] = s.Tmp[0][:0]
	s.Tmp[1] = s.Tmp[1][:0]
}

// Finder enumerates the SMEMs overlapping query[start]. It appends them to
// s.Matches, may use the other Scratch buffers freely, and returns the query
// position the next search starts from, which must be greater than start.
type Finder interface {
	FindSMEMs(ix *Index, query []byte, start int, s *Scratch) int
}

// IteratorState tracks where an SMEMIterator is in its query.
type IteratorState uint8

const (
	IteratorIdle IteratorState = iota
	IteratorPositioned
	IteratorExhausted
)

func (s IteratorState) String() string {
	switch s {
	case IteratorIdle:
		return "idle"
	case IteratorPositioned:
		return "positioned"
	case IteratorExhausted:
		return "exhausted"
	}
	return "unknown"
}

// SMEMIterator walks a query and yields its SMEMs one batch at a time.
// An iterator is owned by a single goroutine; use one per worker.
type SMEMIterator struct {
	ix      *Index
	finder  Finder
	query   []byte
	start   int
	state   IteratorState
	scratch Scratch
}

func NewSMEMIterator(ix *Index, finder Finder) *SMEMIterator {
	return &SMEMIterator{ix: ix, finder: finder}
}

// Reset positions the iterator at the start of query.
func (it *SMEMIterator) Reset(query []byte) {
	it.query = query
	it.start = 0
	it.state = IteratorPositioned
}

func (it *SMEMIterator) State() IteratorState { return it.state }

// Next returns the next batch of matches. An empty batch marks a stretch of
// the query with no match; ok is false once the query is exhausted. The
// returned slice is only valid until the next call.
func (it *SMEMIterator) Next() (matches []SMEM, ok bool) {
	it.scratch.Reset()
	if it.state != IteratorPositioned {
		return nil, false
	}
	for it.start < len(it.query) && it.query[it.start] > 3 {
		it.start++
	}
	if it.start >= len(it.query) {
		it.state = IteratorExhausted
		return nil, false
	}
	next := it.finder.FindSMEMs(it.ix, it.query, it.start, &it.scratch)
	if next <= it.start {
		panic(fmt.Sprintf("fmindex: Finder returned position %d, not past %d", next, it.start))
	}
	it.start = next
	return it.scratch.Matches, true
}

// Longest returns the longest match of a batch, the first one on ties.
func Longest(matches []SMEM) (SMEM, bool) {
	if len(matches) == 0 {
		return SMEM{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Len() > best.Len() {
			best = m
		}
	}
	return best, true
}
