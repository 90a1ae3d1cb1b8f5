package serde

import "errors"

// Configuration errors.
var (
	ErrNoBlockCodec       = errors.New("serde: block codec is required")
	ErrPartialCompression = errors.New("serde: compressor and decompressor must be configured together")
)

// Precondition errors.
var (
	ErrNilPage               = errors.New("serde: page is nil")
	ErrNilSerializedPage     = errors.New("serde: serialized page is nil")
	ErrInvalidSerializedPage = errors.New("serde: invalid serialized page")
	ErrPageTooLarge          = errors.New("serde: page exceeds maximum serialized size")
)

// Integrity errors. Any of these means the payload is corrupt or the reader
// is not configured like the writer.
var (
	ErrSizeMismatch   = errors.New("serde: decompressed size does not match declared size")
	ErrCorruptPayload = errors.New("serde: corrupt payload")
	ErrNoDecompressor = errors.New("serde: compressed page but no decompressor configured")
)

// ErrCompressionBound is returned when a compressor reports more output than
// its own MaxCompressedLength allows.
var ErrCompressionBound = errors.New("serde: compressor exceeded its maximum compressed length")
