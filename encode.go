package fmindex

import (
	"io"

	"golang.org/x/text/transform"
)

var nt4Table = func() (t [256]byte) {
	for i := range t {
		t[i] = Ambiguous
	}
	for c, b := range []byte("ACGT") {
		t[b] = byte(c)
		t[b+'a'-'A'] = byte(c)
	}
	return t
}()

const codeLetters = "ACGTN"

// Encoder is a transform.Transformer turning nucleotide letters into symbol
// codes. A, C, G and T (any case) map to 0..3, line breaks are dropped and
// every other byte becomes Ambiguous.
type Encoder struct{ transform.NopResetter }

func (Encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		b := src[nSrc]
		if b == '\n' || b == '\r' {
			nSrc++
			continue
		}
		if nDst == len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = nt4Table[b]
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}

// Encode returns the symbol codes of seq.
func Encode(seq []byte) []byte {
	out, _, _ := transform.Bytes(Encoder{}, seq)
	return out
}

// EncodeString returns the symbol codes of seq.
func EncodeString(seq string) []byte {
	return Encode([]byte(seq))
}

// NewEncodingReader streams the symbol codes of the letters read from r.
func NewEncodingReader(r io.Reader) io.Reader {
	return transform.NewReader(r, Encoder{})
}

// Decode turns symbol codes back into letters; codes above 3 become N.
func Decode(codes []byte) string {
	out := make([]byte, len(codes))
	for i, c := range codes {
		out[i] = codeLetters[min(c, Ambiguous)]
	}
	return string(out)
}
