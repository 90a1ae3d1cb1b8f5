package compression

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// maxZstdWindow bounds decoder memory for a single frame. Single-segment
// frames use their content size as the window, so it must cover the largest
// page.
const maxZstdWindow = 1 << 31

// ErrNoContentSize is returned for zstd frames that do not declare their
// decoded size.
var ErrNoContentSize = errors.New("zstd frame has no content size")

// ZstdCompressor encodes whole buffers as single-segment zstd frames, which
// always carry the frame content size.
type ZstdCompressor struct {
	enc *zstd.Encoder
}

// NewZstdCompressor creates a single-threaded encoder at the given level.
func NewZstdCompressor(level zstd.EncoderLevel) (*ZstdCompressor, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(level),
		zstd.WithEncoderConcurrency(1),
		zstd.WithSingleSegment(true),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd.NewWriter: %w", err)
	}
	return &ZstdCompressor{enc: enc}, nil
}

func (c *ZstdCompressor) MaxCompressedLength(uncompressedSize int) int {
	return c.enc.MaxEncodedSize(uncompressedSize)
}

func (c *ZstdCompressor) Compress(src, dst []byte) (int, error) {
	out := c.enc.EncodeAll(src, dst[:0])
	return settle(out, dst, "zstd compress")
}

// Close releases encoder resources.
func (c *ZstdCompressor) Close() error {
	return c.enc.Close()
}

// ZstdDecompressor decodes frames produced by ZstdCompressor.
type ZstdDecompressor struct {
	dec *zstd.Decoder
}

// NewZstdDecompressor creates a single-threaded decoder.
func NewZstdDecompressor() (*ZstdDecompressor, error) {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxZstdWindow),
		zstd.WithDecoderMaxWindow(maxZstdWindow),
		zstd.WithDecodeAllCapLimit(true),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd.NewReader: %w", err)
	}
	return &ZstdDecompressor{dec: dec}, nil
}

// Decompress never writes past len(dst). A frame whose declared content size
// exceeds dst is rejected before any output is produced.
func (d *ZstdDecompressor) Decompress(src, dst []byte) (int, error) {
	var h zstd.Header
	if err := h.Decode(src); err != nil {
		return 0, fmt.Errorf("zstd decompress: reading frame header: %w", err)
	}
	if !h.HasFCS {
		return 0, fmt.Errorf("zstd decompress: %w", ErrNoContentSize)
	}
	if h.FrameContentSize > uint64(len(dst)) {
		return 0, fmt.Errorf("zstd decompress: %w: have %d, frame declares %d", ErrShortBuffer, len(dst), h.FrameContentSize)
	}
	out, err := d.dec.DecodeAll(src, dst[:0:len(dst)])
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
		return 0, fmt.Errorf("zstd decompress: %w: %w", ErrShortBuffer, err)
	}
	if err != nil {
		return 0, fmt.Errorf("zstd decompress: %w", err)
	}
	return settle(out, dst, "zstd decompress")
}

// Close releases decoder resources.
func (d *ZstdDecompressor) Close() error {
	d.dec.Close()
	return nil
}

// settle maps an append-style result back onto dst. EncodeAll and DecodeAll
// reallocate when the output outgrows dst's capacity.
func settle(out, dst []byte, op string) (int, error) {
	if len(out) > len(dst) {
		return 0, fmt.Errorf("%s: %w: have %d, need %d", op, ErrShortBuffer, len(dst), len(out))
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return len(out), nil
}
