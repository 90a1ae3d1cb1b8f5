package compression_test

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/granuleserde/internal/compression"
)

func pairs(t *testing.T) map[string][2]any {
	t.Helper()
	out := make(map[string][2]any)
	for _, m := range []byte{compression.MethodLZ4, compression.MethodZstd} {
		c, d, err := compression.NewPair(m)
		require.NoError(t, err)
		out[compression.MethodName(m)] = [2]any{c, d}
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("granule serde page "), 500)
	for name, p := range pairs(t) {
		t.Run(name, func(t *testing.T) {
			c := p[0].(compression.Compressor)
			d := p[1].(compression.Decompressor)

			dst := make([]byte, c.MaxCompressedLength(len(src)))
			n, err := c.Compress(src, dst)
			require.NoError(t, err)
			assert.Less(t, n, len(src))

			out := make([]byte, len(src))
			m, err := d.Decompress(dst[:n], out)
			require.NoError(t, err)
			assert.Equal(t, len(src), m)
			assert.Equal(t, src, out)
		})
	}
}

func TestDecompressIntoShortBuffer(t *testing.T) {
	src := bytes.Repeat([]byte{7}, 4096)
	for name, p := range pairs(t) {
		t.Run(name, func(t *testing.T) {
			c := p[0].(compression.Compressor)
			d := p[1].(compression.Decompressor)

			dst := make([]byte, c.MaxCompressedLength(len(src)))
			n, err := c.Compress(src, dst)
			require.NoError(t, err)

			_, err = d.Decompress(dst[:n], make([]byte, 100))
			assert.Error(t, err)
		})
	}
}

func TestLZ4RejectsDestinationBelowBound(t *testing.T) {
	c := &compression.LZ4Compressor{}
	_, err := c.Compress([]byte("abc"), make([]byte, 1))
	assert.ErrorIs(t, err, compression.ErrShortBuffer)
}

func TestIncompressibleStaysWithinBound(t *testing.T) {
	src := make([]byte, 1000)
	x := uint32(2463534242)
	for i := range src {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		src[i] = byte(x)
	}
	for name, p := range pairs(t) {
		t.Run(name, func(t *testing.T) {
			c := p[0].(compression.Compressor)
			bound := c.MaxCompressedLength(len(src))
			n, err := c.Compress(src, make([]byte, bound))
			require.NoError(t, err)
			assert.LessOrEqual(t, n, bound)
		})
	}
}

func TestParseMethod(t *testing.T) {
	m, err := compression.ParseMethod("LZ4")
	require.NoError(t, err)
	assert.Equal(t, compression.MethodLZ4, m)

	m, err = compression.ParseMethod("zstd")
	require.NoError(t, err)
	assert.Equal(t, compression.MethodZstd, m)

	_, err = compression.ParseMethod("brotli")
	assert.ErrorIs(t, err, compression.ErrUnknownMethod)

	assert.Equal(t, "0x07", compression.MethodName(7))
}

func TestNewPairNone(t *testing.T) {
	c, d, err := compression.NewPair(compression.MethodNone)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Nil(t, d)

	_, _, err = compression.NewPair(0x55)
	assert.ErrorIs(t, err, compression.ErrUnknownMethod)
}

func zstdPair(t *testing.T) (*compression.ZstdCompressor, *compression.ZstdDecompressor) {
	t.Helper()
	c, err := compression.NewZstdCompressor(zstd.SpeedDefault)
	require.NoError(t, err)
	d, err := compression.NewZstdDecompressor()
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Close()
		d.Close()
	})
	return c, d
}

func zstdCompress(t *testing.T, c *compression.ZstdCompressor, src []byte) []byte {
	t.Helper()
	dst := make([]byte, c.MaxCompressedLength(len(src)))
	n, err := c.Compress(src, dst)
	require.NoError(t, err)
	return dst[:n]
}

func TestZstdSmallAndEmptyFramesDeclareSize(t *testing.T) {
	c, d := zstdPair(t)
	for _, src := range [][]byte{{}, []byte("tiny"), bytes.Repeat([]byte{3}, 200)} {
		frame := zstdCompress(t, c, src)

		var h zstd.Header
		require.NoError(t, h.Decode(frame))
		assert.True(t, h.HasFCS)
		assert.Equal(t, uint64(len(src)), h.FrameContentSize)

		out := make([]byte, len(src))
		n, err := d.Decompress(frame, out)
		require.NoError(t, err)
		assert.Equal(t, len(src), n)
		assert.Equal(t, src, out)
	}
}

func TestZstdRejectsOversizedFrameBeforeDecoding(t *testing.T) {
	c, d := zstdPair(t)
	frame := zstdCompress(t, c, make([]byte, 64<<20))

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := d.Decompress(frame, make([]byte, 16))
	runtime.ReadMemStats(&after)

	assert.ErrorIs(t, err, compression.ErrShortBuffer)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}

func TestZstdBoundsConcatenatedFrames(t *testing.T) {
	c, d := zstdPair(t)
	src := append(zstdCompress(t, c, []byte("12345678")), zstdCompress(t, c, make([]byte, 1<<20))...)

	_, err := d.Decompress(src, make([]byte, 8))
	assert.ErrorIs(t, err, compression.ErrShortBuffer)
}

func TestZstdRejectsFrameWithoutContentSize(t *testing.T) {
	enc, err := zstd.NewWriter(nil, zstd.WithSingleSegment(false))
	require.NoError(t, err)
	defer enc.Close()
	frame := enc.EncodeAll([]byte("short input"), nil)

	var h zstd.Header
	require.NoError(t, h.Decode(frame))
	require.False(t, h.HasFCS)

	_, d := zstdPair(t)
	_, err = d.Decompress(frame, make([]byte, 64))
	assert.ErrorIs(t, err, compression.ErrNoContentSize)
}
