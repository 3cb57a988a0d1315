package fmindex

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtendMatchesRankFormula(t *testing.T) {
	r := rand.New(rand.NewSource(21))
	for name, text := range texts(r) {
		if len(text) > 140 {
			continue
		}
		for _, occIntv := range []int{32, 128} {
			ix := buildIndex(t, text, occIntv, 8)
			n := ix.SeqLen()
			for k := int64(0); k <= n; k++ {
				for l := k - 1; l <= n; l++ {
					for c := byte(0); c < 4; c++ {
						want := Interval{
							K: ix.CumulativeCount(c) + ix.Occ(k-1, c) + 1,
							L: ix.CumulativeCount(c) + ix.Occ(l, c),
						}
						got := ix.Extend(Interval{K: k, L: l}, c)
						if want.Empty() {
							require.True(t, got.Empty(), "%s occ=%d [%d,%d] c=%d got %v", name, occIntv, k, l, c, got)
							require.Equal(t, got.K, got.L+1)
							continue
						}
						require.Equal(t, want, got, "%s occ=%d [%d,%d] c=%d", name, occIntv, k, l, c)
					}
				}
			}
		}
	}
}

// Walking a pattern backwards must keep the interval equal to the rows whose
// suffixes start with the matched part.
func TestExtendTracksSuffixRange(t *testing.T) {
	r := rand.New(rand.NewSource(22))
	text := randomText(r, 400)
	ix := buildIndex(t, text, 64, 4)
	sa := naiveSuffixArray(text)

	for trial := 0; trial < 50; trial++ {
		start := r.Intn(len(text) - 12)
		pattern := text[start : start+12]
		iv := ix.FullRange()
		for i := len(pattern) - 1; i >= 0; i-- {
			iv = ix.Extend(iv, pattern[i])
			require.False(t, iv.Empty())
			suffix := pattern[i:]
			for row := iv.K; row <= iv.L; row++ {
				pos := sa[row-1]
				require.GreaterOrEqual(t, len(text)-int(pos), len(suffix))
				require.Equal(t, suffix, text[pos:int(pos)+len(suffix)])
			}
			require.Equal(t, int64(len(naivePositions(text, suffix))), iv.Size())
		}
	}
}

func BenchmarkExtend(b *testing.B) {
	r := rand.New(rand.NewSource(23))
	text := randomText(r, 1<<16)
	ix := buildIndex(b, text, 128, 32)
	pattern := text[1000:1020]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.MatchExact(pattern)
	}
}
