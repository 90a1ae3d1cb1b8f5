// Package serde turns pages into SerializedPages and back, compressing the
// encoded blocks when that pays off.
package serde

import (
	"bytes"
	"fmt"
	"io"

	"github.com/harshithgowdakt/granuleserde/internal/compression"
	"github.com/harshithgowdakt/granuleserde/internal/page"
)

// maxCompressionRatio is the largest compressed/uncompressed ratio for which
// the compressed form is kept. Above it the raw bytes are sent instead.
const maxCompressionRatio = 0.8

// sizeOfLengthField is added to the page size estimate when pre-sizing the
// encode buffer.
const sizeOfLengthField = 4

// BlockCodec encodes the blocks of a page to a stream and decodes them.
type BlockCodec interface {
	Encode(w io.Writer, p *page.Page) error
	Decode(r io.Reader, positionCount int) (*page.Page, error)
}

// ReusingBlockCodec is a BlockCodec that can decode into the storage of an
// existing page.
type ReusingBlockCodec interface {
	BlockCodec
	DecodeInto(r io.Reader, positionCount int, reuse *page.Page) (*page.Page, error)
}

// PageCodec serializes and deserializes pages. A PageCodec keeps a scratch
// buffer between WrapBuffer calls and is not safe for concurrent use; give
// each goroutine its own instance (see Factory).
type PageCodec struct {
	blocks       BlockCodec
	compressor   compression.Compressor
	decompressor compression.Decompressor

	// scratch receives WrapBuffer compression output. It only grows.
	scratch []byte
}

// NewPageCodec creates a codec. compressor and decompressor must both be
// nil or both be set.
func NewPageCodec(blocks BlockCodec, compressor compression.Compressor, decompressor compression.Decompressor) (*PageCodec, error) {
	if blocks == nil {
		return nil, ErrNoBlockCodec
	}
	if (compressor == nil) != (decompressor == nil) {
		return nil, ErrPartialCompression
	}
	return &PageCodec{
		blocks:       blocks,
		compressor:   compressor,
		decompressor: decompressor,
	}, nil
}

// Compresses reports whether the codec has a compressor configured.
func (c *PageCodec) Compresses() bool { return c.compressor != nil }

// Serialize encodes p and compresses the result when compression saves at
// least 20%.
func (c *PageCodec) Serialize(p *page.Page) (*SerializedPage, error) {
	if p == nil {
		return nil, ErrNilPage
	}
	hint, err := bufferHint(p.SizeInBytes())
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, hint))
	if err := c.blocks.Encode(buf, p); err != nil {
		return nil, fmt.Errorf("encoding page: %w", err)
	}
	raw := buf.Bytes()
	if len(raw) > MaxSerializedSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPageTooLarge, len(raw))
	}

	if c.compressor == nil {
		return NewSerializedPage(raw, Uncompressed, p.PositionCount(), len(raw))
	}
	return c.compress(raw, p.PositionCount(), make([]byte, c.compressor.MaxCompressedLength(len(raw))))
}

// WrapBuffer builds a SerializedPage from blocks that are already encoded,
// applying the same compression policy as Serialize. Compression goes
// through the codec's scratch buffer; raw is kept as the payload, without
// copying, when the page ends up uncompressed.
func (c *PageCodec) WrapBuffer(raw []byte, positionCount int) (*SerializedPage, error) {
	if len(raw) > MaxSerializedSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPageTooLarge, len(raw))
	}
	if c.compressor == nil {
		return NewSerializedPage(raw, Uncompressed, positionCount, len(raw))
	}

	maxLen := c.compressor.MaxCompressedLength(len(raw))
	if cap(c.scratch) < maxLen {
		c.scratch = make([]byte, maxLen)
	}
	return c.compress(raw, positionCount, c.scratch[:maxLen])
}

// compress applies the ratio policy. dst may be reused by later calls, so a
// compressed payload is always copied out of it at its exact length.
func (c *PageCodec) compress(raw []byte, positionCount int, dst []byte) (*SerializedPage, error) {
	if len(raw) == 0 {
		return NewSerializedPage(raw, Uncompressed, positionCount, 0)
	}

	maxLen := c.compressor.MaxCompressedLength(len(raw))
	if len(dst) < maxLen {
		return nil, fmt.Errorf("%w: destination %d bytes, bound %d", ErrCompressionBound, len(dst), maxLen)
	}
	n, err := c.compressor.Compress(raw, dst[:maxLen])
	if err != nil {
		return nil, fmt.Errorf("compressing page: %w", err)
	}
	if n < 0 || n > maxLen {
		return nil, fmt.Errorf("%w: wrote %d bytes, bound %d", ErrCompressionBound, n, maxLen)
	}

	if float64(n)/float64(len(raw)) > maxCompressionRatio {
		return NewSerializedPage(raw, Uncompressed, positionCount, len(raw))
	}
	payload := make([]byte, n)
	copy(payload, dst[:n])
	return NewSerializedPage(payload, Compressed, positionCount, len(raw))
}

// Deserialize decodes sp into a new page.
func (c *PageCodec) Deserialize(sp *SerializedPage) (*page.Page, error) {
	return c.DeserializeInto(sp, nil)
}

// DeserializeInto decodes sp, recycling the column storage of reuse when the
// block codec supports it. The result is logically the same as Deserialize.
// reuse must not be used after the call.
func (c *PageCodec) DeserializeInto(sp *SerializedPage, reuse *page.Page) (*page.Page, error) {
	raw, err := c.Uncompressed(sp)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(raw)
	var p *page.Page
	if rc, ok := c.blocks.(ReusingBlockCodec); ok && reuse != nil {
		p, err = rc.DecodeInto(r, sp.PositionCount(), reuse)
	} else {
		p, err = c.blocks.Decode(r, sp.PositionCount())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding blocks: %w", ErrCorruptPayload, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after blocks", ErrCorruptPayload, r.Len())
	}
	if p.PositionCount() != sp.PositionCount() {
		return nil, fmt.Errorf("%w: decoded %d positions, declared %d", ErrCorruptPayload, p.PositionCount(), sp.PositionCount())
	}
	return p, nil
}

// Uncompressed returns the encoded blocks of sp, decompressing them if
// needed. An uncompressed payload is returned as is.
func (c *PageCodec) Uncompressed(sp *SerializedPage) ([]byte, error) {
	if sp == nil {
		return nil, ErrNilSerializedPage
	}
	if !sp.IsCompressed() {
		return sp.Payload(), nil
	}
	if c.decompressor == nil {
		return nil, ErrNoDecompressor
	}

	dst := make([]byte, sp.UncompressedSizeInBytes())
	n, err := c.decompressor.Decompress(sp.Payload(), dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
	}
	if n != sp.UncompressedSizeInBytes() {
		return nil, fmt.Errorf("%w: got %d bytes, declared %d", ErrSizeMismatch, n, sp.UncompressedSizeInBytes())
	}
	return dst, nil
}

// Close releases compressor and decompressor resources that need it.
func (c *PageCodec) Close() error {
	var first error
	for _, v := range []any{c.compressor, c.decompressor} {
		if cl, ok := v.(io.Closer); ok {
			if err := cl.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// bufferHint is the initial encode buffer capacity for a page estimated at
// size bytes.
func bufferHint(size int64) (int, error) {
	if size < 0 || size > MaxSerializedSize-sizeOfLengthField {
		return 0, fmt.Errorf("%w: estimated %d bytes", ErrPageTooLarge, size)
	}
	return int(size) + sizeOfLengthField, nil
}
