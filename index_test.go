package fmindex

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomText(r *rand.Rand, n int) []byte {
	text := make([]byte, n)
	for i := range text {
		text[i] = byte(r.Intn(4))
	}
	return text
}

// naiveSuffixArray sorts the suffixes by direct comparison.
func naiveSuffixArray(text []byte) []int64 {
	sa := make([]int64, len(text))
	for i := range sa {
		sa[i] = int64(i)
	}
	sort.Slice(sa, func(i, j int) bool {
		return bytes.Compare(text[sa[i]:], text[sa[j]:]) < 0
	})
	return sa
}

// naiveBWT returns the BWT rows, with Ambiguous standing for the sentinel,
// and the sentinel's row.
func naiveBWT(text []byte) ([]byte, int64) {
	sa := naiveSuffixArray(text)
	bwt := []byte{text[len(text)-1]}
	var primary int64
	for r, s := range sa {
		if s == 0 {
			primary = int64(r + 1)
			bwt = append(bwt, Ambiguous)
			continue
		}
		bwt = append(bwt, text[s-1])
	}
	return bwt, primary
}

func naiveOcc(bwt []byte, row int64, c byte) int64 {
	var n int64
	for _, b := range bwt[:row+1] {
		if b == c {
			n++
		}
	}
	return n
}

func naivePositions(text, pattern []byte) []int64 {
	var pos []int64
	for i := 0; i+len(pattern) <= len(text); i++ {
		if bytes.Equal(text[i:i+len(pattern)], pattern) {
			pos = append(pos, int64(i))
		}
	}
	return pos
}

func buildIndex(t testing.TB, text []byte, occIntv, saIntv int) *Index {
	t.Helper()
	ix, err := NewBuilder(text).OccInterval(occIntv).SampleInterval(saIntv).Build()
	require.NoError(t, err)
	return ix
}

// texts covers lengths around word and checkpoint boundaries.
func texts(r *rand.Rand) map[string][]byte {
	out := map[string][]byte{
		"single":   {2},
		"acgtacgt": EncodeString("ACGTACGT"),
		"homopoly": bytes.Repeat([]byte{0}, 150),
		"periodic": bytes.Repeat([]byte{3, 1}, 97),
	}
	for _, n := range []int{31, 32, 33, 127, 128, 129, 300} {
		out["random"+string(rune('A'+len(out)))] = randomText(r, n)
	}
	return out
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		want    error
	}{
		{"empty", NewBuilder(nil), ErrEmptyText},
		{"ambiguous", NewBuilder([]byte{0, 1, 4, 2}), ErrInvalidSymbol},
		{"occ not power of two", NewBuilder([]byte{0, 1}).OccInterval(96), ErrInvalidOccInterval},
		{"occ too small", NewBuilder([]byte{0, 1}).OccInterval(16), ErrInvalidOccInterval},
		{"occ too large", NewBuilder([]byte{0, 1}).OccInterval(256), ErrInvalidOccInterval},
		{"sample zero", NewBuilder([]byte{0, 1}).SampleInterval(0), ErrInvalidSampleInterval},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ix, err := tc.builder.Build()
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, ix)
		})
	}
}

func TestSuffixArrayMatchesNaive(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for name, text := range texts(r) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, naiveSuffixArray(text), buildSuffixArray(text))
		})
	}
}

func TestPackedLayout(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for name, text := range texts(r) {
		for _, occIntv := range []int{32, 64, 128} {
			ix := buildIndex(t, text, occIntv, 4)
			bwt, primary := naiveBWT(text)
			n := int64(len(text))

			require.Equal(t, primary, ix.Primary(), name)
			assert.Equal(t, n, ix.SeqLen())
			assert.Equal(t, n+1, ix.Rows())
			assert.Equal(t, n, ix.CumulativeCount(4))
			assert.Equal(t, int64(occIntv), ix.OccInterval())

			var p int64
			for row, c := range bwt {
				if int64(row) == primary {
					continue
				}
				require.Equal(t, c, ix.symbolAt(p), "%s occ=%d row=%d", name, occIntv, row)
				p++
			}
			for c := byte(0); c < 4; c++ {
				assert.Equal(t, naiveOcc(bwt, n, c), ix.CumulativeCount(c+1)-ix.CumulativeCount(c))
			}
		}
	}
}

func TestTables(t *testing.T) {
	assert.Equal(t, uint64(0xc0000000), occMask[0])
	assert.Equal(t, uint64(0xffffffff), occMask[15])
	assert.Equal(t, uint64(0xc0000000ffffffff), occMask[16])
	assert.Equal(t, ^uint64(0), occMask[31])

	// 0b11100100 packs the codes 3, 2, 1, 0
	assert.Equal(t, uint32(0x01010101), cntTable[0xe4])
	assert.Equal(t, uint32(4), cntTable[0x00])
	assert.Equal(t, uint32(4<<24), cntTable[0xff])

	assert.Equal(t, int64(32), occAux(^uint64(0)))
	assert.Equal(t, int64(0), occAux(0xaaaaaaaaaaaaaaaa))
}

func TestInterval(t *testing.T) {
	assert.True(t, Interval{K: 3, L: 2}.Empty())
	assert.Equal(t, int64(0), Interval{K: 3, L: 2}.Size())
	assert.Equal(t, int64(1), Interval{K: 3, L: 3}.Size())
	assert.Equal(t, "[1, 4]", Interval{K: 1, L: 4}.String())
}
