package spill

import (
	"fmt"

	"github.com/harshithgowdakt/granuleserde/internal/compression"
)

// Rewrite copies every page of src into a new spill compressed with method.
// Pages are decompressed to their encoded blocks and recompressed without
// being decoded.
func Rewrite(src *Reader, baseDir, name string, method byte, opts ...compression.Option) (*File, error) {
	w, err := NewWriter(baseDir, name, src.blocks, method, opts...)
	if err != nil {
		return nil, err
	}
	for i := 0; i < src.NumPages(); i++ {
		raw, positions, err := src.ReadRaw(i)
		if err != nil {
			w.Abort()
			return nil, err
		}
		if err := w.WriteRaw(raw, positions); err != nil {
			w.Abort()
			return nil, fmt.Errorf("rewriting page %d: %w", i, err)
		}
	}
	return w.Close()
}
