package compression

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Compressor compresses a whole buffer in one call.
type Compressor interface {
	// MaxCompressedLength returns the largest output Compress may produce
	// for an input of uncompressedSize bytes.
	MaxCompressedLength(uncompressedSize int) int
	// Compress compresses src into dst and returns the number of bytes
	// written. dst must hold at least MaxCompressedLength(len(src)) bytes.
	Compress(src, dst []byte) (int, error)
}

// Decompressor reverses a Compressor.
type Decompressor interface {
	// Decompress decompresses src into dst and returns the number of bytes
	// written. Output that does not fit dst is an error.
	Decompress(src, dst []byte) (int, error)
}

// Method byte constants matching ClickHouse format.
const (
	MethodNone byte = 0x02
	MethodLZ4  byte = 0x82
	MethodZstd byte = 0x90
)

var (
	ErrUnknownMethod = errors.New("unknown compression method")
	ErrShortBuffer   = errors.New("destination buffer too small")
)

var methodNames = map[byte]string{
	MethodNone: "none",
	MethodLZ4:  "lz4",
	MethodZstd: "zstd",
}

// ParseMethod converts a method name (case-insensitive) to its method byte.
func ParseMethod(name string) (byte, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for m, s := range methodNames {
		if s == n {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// MethodName returns the name of a method byte.
func MethodName(method byte) string {
	if s, ok := methodNames[method]; ok {
		return s
	}
	return fmt.Sprintf("0x%02x", method)
}

type options struct {
	zstdLevel zstd.EncoderLevel
}

// Option configures NewPair.
type Option func(*options)

// WithZstdLevel sets the zstd encoder level. Default is zstd.SpeedDefault.
func WithZstdLevel(level zstd.EncoderLevel) Option {
	return func(o *options) { o.zstdLevel = level }
}

// NewPair returns a fresh compressor and decompressor for method. MethodNone
// returns two nil interfaces. The returned values are not safe for
// concurrent use.
func NewPair(method byte, opts ...Option) (Compressor, Decompressor, error) {
	o := options{zstdLevel: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(&o)
	}

	switch method {
	case MethodNone:
		return nil, nil, nil
	case MethodLZ4:
		return &LZ4Compressor{}, &LZ4Decompressor{}, nil
	case MethodZstd:
		c, err := NewZstdCompressor(o.zstdLevel)
		if err != nil {
			return nil, nil, err
		}
		d, err := NewZstdDecompressor()
		if err != nil {
			c.Close()
			return nil, nil, err
		}
		return c, d, nil
	default:
		return nil, nil, fmt.Errorf("%w: 0x%02x", ErrUnknownMethod, method)
	}
}
