package serde

import (
	"fmt"

	"github.com/harshithgowdakt/granuleserde/internal/compression"
)

// Factory builds independent PageCodecs that share a block codec and a
// compression method. Use one codec per goroutine; the factory itself is
// safe for concurrent use as long as the block codec is.
type Factory struct {
	blocks BlockCodec
	method byte
	opts   []compression.Option
}

// NewFactory validates the configuration by building one codec up front.
func NewFactory(blocks BlockCodec, method byte, opts ...compression.Option) (*Factory, error) {
	f := &Factory{blocks: blocks, method: method, opts: opts}
	c, err := f.New()
	if err != nil {
		return nil, err
	}
	c.Close()
	return f, nil
}

// Method returns the compression method byte.
func (f *Factory) Method() byte { return f.method }

// New returns a codec with its own compressor, decompressor and scratch
// buffer.
func (f *Factory) New() (*PageCodec, error) {
	comp, decomp, err := compression.NewPair(f.method, f.opts...)
	if err != nil {
		return nil, fmt.Errorf("creating %s codec: %w", compression.MethodName(f.method), err)
	}
	return NewPageCodec(f.blocks, comp, decomp)
}
