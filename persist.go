package fmindex

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	// magicNumber identifies index files (ASCII: "FMI0").
	magicNumber = 0x464d4930
	// formatVersion is the current file format version. Version 2 checksums
	// the header along with the payload.
	formatVersion = 2
	// lz4MaxRatio bounds how far an LZ4 block can expand.
	lz4MaxRatio = 255
)

var (
	ErrInvalidMagic       = errors.New("fmindex: invalid magic number")
	ErrUnsupportedVersion = errors.New("fmindex: unsupported format version")
	ErrCorruptIndex       = errors.New("fmindex: corrupt index file")
)

// Compression selects how the index payload is stored.
type Compression uint8

const (
	CompressionNone Compression = iota
	// CompressionLZ4 favours load speed.
	CompressionLZ4
	// CompressionZSTD favours file size.
	CompressionZSTD
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression accepts "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	}
	return 0, fmt.Errorf("fmindex: unknown compression %q", s)
}

// fileHeader is the fixed-size header preceding the payload. The payload is
// the packed BWT words followed by the suffix array samples, little-endian.
type fileHeader struct {
	Magic          uint32
	Version        uint16
	Compression    uint8
	Padding        uint8
	OccInterval    uint32
	SampleInterval uint32
	SeqLen         int64
	Primary        int64
	L2             [5]int64
	RawSize        uint64
	StoredSize     uint64
	Checksum       uint32 // CRC32 (IEEE) of the header, Checksum zeroed, then the raw payload
	Reserved       uint32
}

func (h fileHeader) checksum(raw []byte) uint32 {
	h.Checksum = 0
	hdr, err := binary.Append(nil, binary.LittleEndian, &h)
	if err != nil {
		panic("fmindex: encode header: " + err.Error())
	}
	d := crc32.NewIEEE()
	d.Write(hdr)
	d.Write(raw)
	return d.Sum32()
}

// validate checks the header fields that size the payload and drive queries.
func (h *fileHeader) validate() error {
	if h.SeqLen <= 0 || h.Primary <= 0 || h.Primary > h.SeqLen {
		return fmt.Errorf("%w: seq_len %d, primary %d", ErrCorruptIndex, h.SeqLen, h.Primary)
	}
	if h.SeqLen > math.MaxUint32 {
		return fmt.Errorf("%w: seq_len %d: %w", ErrCorruptIndex, h.SeqLen, ErrTextTooLong)
	}
	if h.L2[0] != 0 || h.L2[4] != h.SeqLen {
		return fmt.Errorf("%w: cumulative counts %v for seq_len %d", ErrCorruptIndex, h.L2, h.SeqLen)
	}
	for c := 0; c < 4; c++ {
		if h.L2[c+1] < h.L2[c] {
			return fmt.Errorf("%w: cumulative counts %v decrease", ErrCorruptIndex, h.L2)
		}
	}

	switch Compression(h.Compression) {
	case CompressionNone:
		if h.StoredSize != h.RawSize {
			return fmt.Errorf("%w: stored %d bytes of a %d byte payload", ErrCorruptIndex, h.StoredSize, h.RawSize)
		}
	case CompressionLZ4:
		if h.StoredSize > h.RawSize+h.RawSize/255+16 || h.RawSize > lz4MaxRatio*h.StoredSize+16 {
			return fmt.Errorf("%w: lz4 block of %d bytes for a %d byte payload", ErrCorruptIndex, h.StoredSize, h.RawSize)
		}
	case CompressionZSTD:
		if h.StoredSize > 2*h.RawSize+64 {
			return fmt.Errorf("%w: zstd frame of %d bytes for a %d byte payload", ErrCorruptIndex, h.StoredSize, h.RawSize)
		}
	default:
		return fmt.Errorf("%w: unknown compression %d", ErrCorruptIndex, h.Compression)
	}
	return nil
}

// ChecksumMismatchError is returned when a loaded payload does not match its
// recorded checksum.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("fmindex: checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Save writes the index to w.
func (ix *Index) Save(w io.Writer, c Compression) error {
	raw := make([]byte, 0, 8*(len(ix.bwt)+len(ix.sa)))
	for _, x := range ix.bwt {
		raw = binary.LittleEndian.AppendUint64(raw, x)
	}
	for _, v := range ix.sa {
		raw = binary.LittleEndian.AppendUint64(raw, uint64(v))
	}

	stored, used, err := compressPayload(raw, c)
	if err != nil {
		return fmt.Errorf("fmindex: compress payload: %w", err)
	}

	h := fileHeader{
		Magic:          magicNumber,
		Version:        formatVersion,
		Compression:    uint8(used),
		OccInterval:    uint32(ix.occIntv),
		SampleInterval: uint32(ix.saIntv),
		SeqLen:         ix.seqLen,
		Primary:        ix.primary,
		L2:             ix.l2,
		RawSize:        uint64(len(raw)),
		StoredSize:     uint64(len(stored)),
	}
	h.Checksum = h.checksum(raw)
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return err
	}
	if _, err := bw.Write(stored); err != nil {
		return err
	}
	return bw.Flush()
}

// SaveFile writes the index to the file at path.
func (ix *Index) SaveFile(path string, c Compression) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ix.Save(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads an index written by Save.
func Load(r io.Reader) (*Index, error) {
	var h fileHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("fmindex: read header: %w", err)
	}
	if h.Magic != magicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedVersion, h.Version)
	}
	occIntv, saIntv := int64(h.OccInterval), int64(h.SampleInterval)
	if !validOccInterval(occIntv) {
		return nil, fmt.Errorf("%w: file uses %d", ErrInvalidOccInterval, occIntv)
	}
	if saIntv <= 0 {
		return nil, fmt.Errorf("%w: file uses %d", ErrInvalidSampleInterval, saIntv)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	stride := blockStride(occIntv)
	nWords := (h.SeqLen/occIntv + 1) * stride
	nSamples := (h.SeqLen + saIntv) / saIntv
	if h.RawSize != uint64(8*(nWords+nSamples)) {
		return nil, fmt.Errorf("%w: payload of %d bytes, want %d", ErrCorruptIndex, h.RawSize, 8*(nWords+nSamples))
	}

	// grow with the bytes actually present rather than the declared size
	stored, err := io.ReadAll(io.LimitReader(r, int64(h.StoredSize)))
	if err != nil {
		return nil, fmt.Errorf("fmindex: read payload: %w", err)
	}
	if uint64(len(stored)) != h.StoredSize {
		return nil, fmt.Errorf("fmindex: read payload: %w", io.ErrUnexpectedEOF)
	}
	raw, err := decompressPayload(stored, int(h.RawSize), Compression(h.Compression))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptIndex, err)
	}
	if sum := h.checksum(raw); sum != h.Checksum {
		return nil, &ChecksumMismatchError{Expected: h.Checksum, Actual: sum}
	}

	ix := &Index{
		seqLen:  h.SeqLen,
		primary: h.Primary,
		l2:      h.L2,
		occIntv: occIntv,
		stride:  stride,
		bwt:     make([]uint64, nWords),
		saIntv:  saIntv,
		sa:      make([]int64, nSamples),
	}
	for i := range ix.bwt {
		ix.bwt[i] = binary.LittleEndian.Uint64(raw[8*i:])
	}
	raw = raw[8*nWords:]
	for i := range ix.sa {
		ix.sa[i] = int64(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	totals := ix.Occ4(ix.seqLen)
	for c := 0; c < 4; c++ {
		if totals[c] != ix.l2[c+1]-ix.l2[c] {
			return nil, fmt.Errorf("%w: %d occurrences of symbol %d, cumulative counts say %d",
				ErrCorruptIndex, totals[c], c, ix.l2[c+1]-ix.l2[c])
		}
	}
	ix.buildLeftmost()
	return ix, nil
}

// LoadFile reads an index from the file at path.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(bufio.NewReader(f))
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// compressPayload returns the stored bytes and the compression actually
// used; incompressible LZ4 input is stored as is.
func compressPayload(raw []byte, c Compression) ([]byte, Compression, error) {
	switch c {
	case CompressionNone:
		return raw, CompressionNone, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			return raw, CompressionNone, nil
		}
		return dst[:n], CompressionLZ4, nil
	case CompressionZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, 0, err
		}
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(raw, nil), CompressionZSTD, nil
	default:
		return nil, 0, fmt.Errorf("unknown compression %d", uint8(c))
	}
}

func decompressPayload(stored []byte, rawSize int, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(stored) != rawSize {
			return nil, errors.New("stored size mismatch")
		}
		return stored, nil
	case CompressionLZ4:
		raw := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(stored, raw)
		if err != nil {
			return nil, err
		}
		if n != rawSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return raw, nil
	case CompressionZSTD:
		var fh zstd.Header
		if err := fh.Decode(stored); err != nil {
			return nil, err
		}
		if fh.HasFCS && fh.FrameContentSize != uint64(rawSize) {
			return nil, errors.New("frame content size mismatch")
		}
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)
		raw, err := dec.DecodeAll(stored, nil)
		if err != nil {
			return nil, err
		}
		if len(raw) != rawSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}
