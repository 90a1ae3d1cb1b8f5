package compression

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4Compressor implements LZ4 block compression. It keeps its hash table
// between calls.
type LZ4Compressor struct {
	c lz4.Compressor
}

func (c *LZ4Compressor) MaxCompressedLength(uncompressedSize int) int {
	return lz4.CompressBlockBound(uncompressedSize)
}

func (c *LZ4Compressor) Compress(src, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if len(dst) < lz4.CompressBlockBound(len(src)) {
		return 0, fmt.Errorf("lz4 compress: %w: have %d, need %d", ErrShortBuffer, len(dst), lz4.CompressBlockBound(len(src)))
	}
	n, err := c.c.CompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		// Only reported when dst is below the bound, which was checked above.
		return 0, fmt.Errorf("lz4 compress: %w", ErrShortBuffer)
	}
	return n, nil
}

// LZ4Decompressor decodes LZ4 blocks.
type LZ4Decompressor struct{}

func (d *LZ4Decompressor) Decompress(src, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("lz4 decompress: %w", err)
	}
	return n, nil
}
