package fmindex

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, []byte{0, 1, 2, 3, 0, 1, 2, 3, 4, 4}, EncodeString("ACGTacgtNx"))
	assert.Equal(t, []byte{0, 3, 2}, EncodeString("A\r\nT\nG"))
	assert.Empty(t, EncodeString(""))
	assert.Equal(t, "ACGTN", Decode([]byte{0, 1, 2, 3, 9}))
}

func TestEncodingReader(t *testing.T) {
	seq := strings.Repeat("GATTACA\nNNacgt\n", 500)
	r := NewEncodingReader(iotest.OneByteReader(strings.NewReader(seq)))
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, EncodeString(seq), got)
	assert.Equal(t, strings.ReplaceAll(strings.ToUpper(seq), "\n", ""), Decode(got))
}

func TestEncoderShortDst(t *testing.T) {
	dst := make([]byte, 3)
	nDst, nSrc, err := Encoder{}.Transform(dst, []byte("AC\nGTA"), true)
	assert.Error(t, err)
	assert.Equal(t, 3, nDst)
	assert.Equal(t, 4, nSrc)
	assert.Equal(t, []byte{0, 1, 2}, dst)
}
