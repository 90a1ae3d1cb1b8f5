package serde

import (
	"fmt"
	"math"
)

// MaxSerializedSize is the largest payload or uncompressed size a
// SerializedPage can carry; the framing header stores sizes as uint32 and
// readers size buffers with int32 arithmetic.
const MaxSerializedSize = math.MaxInt32

// Compression tags a SerializedPage payload.
type Compression uint8

const (
	Uncompressed Compression = iota
	Compressed
)

func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "UNCOMPRESSED"
	case Compressed:
		return "COMPRESSED"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// SerializedPage is the transport and spill form of a page. It is immutable
// once constructed.
type SerializedPage struct {
	compression      Compression
	positionCount    int
	uncompressedSize int
	payload          []byte
}

// NewSerializedPage validates and wraps payload without copying it. The
// caller must not modify payload afterwards.
func NewSerializedPage(payload []byte, compression Compression, positionCount, uncompressedSize int) (*SerializedPage, error) {
	switch {
	case compression != Uncompressed && compression != Compressed:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrInvalidSerializedPage, compression)
	case positionCount < 0 || positionCount > math.MaxInt32:
		return nil, fmt.Errorf("%w: position count %d out of range", ErrInvalidSerializedPage, positionCount)
	case uncompressedSize < 0 || uncompressedSize > MaxSerializedSize:
		return nil, fmt.Errorf("%w: uncompressed size %d out of range", ErrInvalidSerializedPage, uncompressedSize)
	case len(payload) > MaxSerializedSize:
		return nil, fmt.Errorf("%w: payload size %d out of range", ErrInvalidSerializedPage, len(payload))
	case compression == Uncompressed && len(payload) != uncompressedSize:
		return nil, fmt.Errorf("%w: uncompressed payload has %d bytes, declared %d",
			ErrInvalidSerializedPage, len(payload), uncompressedSize)
	}
	return &SerializedPage{
		compression:      compression,
		positionCount:    positionCount,
		uncompressedSize: uncompressedSize,
		payload:          payload,
	}, nil
}

func (sp *SerializedPage) Compression() Compression { return sp.compression }
func (sp *SerializedPage) IsCompressed() bool       { return sp.compression == Compressed }
func (sp *SerializedPage) PositionCount() int       { return sp.positionCount }

// UncompressedSizeInBytes is the length of the encoded blocks before
// compression, whether or not the payload is compressed.
func (sp *SerializedPage) UncompressedSizeInBytes() int { return sp.uncompressedSize }

// SizeInBytes is the payload length.
func (sp *SerializedPage) SizeInBytes() int { return len(sp.payload) }

// Payload returns the payload bytes. They must not be modified.
func (sp *SerializedPage) Payload() []byte { return sp.payload }

func (sp *SerializedPage) String() string {
	return fmt.Sprintf("SerializedPage{%s, positions=%d, uncompressed=%d, payload=%d}",
		sp.compression, sp.positionCount, sp.uncompressedSize, len(sp.payload))
}
