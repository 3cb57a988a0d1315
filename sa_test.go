package fmindex

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSARoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(31))
	for name, text := range texts(r) {
		sa := naiveSuffixArray(text)
		for _, saIntv := range []int{1, 2, 3, 5, 8, 32} {
			ix := buildIndex(t, text, 64, saIntv)
			assert.Equal(t, int64(saIntv), ix.SampleInterval())
			assert.Equal(t, int64(-1), ix.SA(0))
			for row := int64(1); row <= ix.SeqLen(); row++ {
				require.Equal(t, sa[row-1], ix.SA(row), "%s intv=%d row=%d", name, saIntv, row)
			}
		}
	}
}

func TestLFWalksTextBackwards(t *testing.T) {
	text := EncodeString("GATTACAGATTACCA")
	ix := buildIndex(t, text, 32, 1)
	row := ix.Primary()
	for pos := int64(0); pos <= ix.SeqLen(); pos++ {
		// pos steps back from the start of the text wrap around to its end
		want := (ix.SeqLen() + 1 - pos) % (ix.SeqLen() + 1)
		got := ix.SA(row)
		if got < 0 {
			got = ix.SeqLen()
		}
		require.Equal(t, want, got, "step %d", pos)
		row = ix.lf(row)
	}
}

func TestResample(t *testing.T) {
	r := rand.New(rand.NewSource(32))
	text := randomText(r, 257)
	sa := naiveSuffixArray(text)
	ix := buildIndex(t, text, 128, 16)
	samples := slices.Clone(ix.sa)

	re := ix.Resample(6)
	assert.Equal(t, int64(6), re.SampleInterval())
	assert.Len(t, re.sa, (257+6)/6)
	assert.Nil(t, re.leftmost)
	for row := int64(1); row <= re.SeqLen(); row++ {
		require.Equal(t, sa[row-1], re.SA(row))
	}

	// the source index keeps its own samples
	assert.Equal(t, int64(16), ix.SampleInterval())
	assert.Equal(t, samples, ix.sa)
	for row := int64(1); row <= ix.SeqLen(); row++ {
		require.Equal(t, sa[row-1], ix.SA(row))
	}

	full := ix.Resample(1)
	require.NotNil(t, full.leftmost)
	assert.Nil(t, ix.leftmost)
}

func TestCalSAPreconditions(t *testing.T) {
	assert.Panics(t, func() { (&Index{seqLen: 4}).calSA(2) })

	ix := buildIndex(t, []byte{0, 1, 2, 3}, 32, 1)
	assert.Panics(t, func() { ix.Resample(0) })
}

func BenchmarkSA(b *testing.B) {
	r := rand.New(rand.NewSource(33))
	ix := buildIndex(b, randomText(r, 1<<16), 128, 32)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.SA(1 + int64(i)%ix.SeqLen())
	}
}
