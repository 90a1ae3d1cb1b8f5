package spill

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/harshithgowdakt/granuleserde/internal/compression"
	"github.com/harshithgowdakt/granuleserde/internal/page"
	"github.com/harshithgowdakt/granuleserde/internal/serde"
)

type readerOptions struct {
	cacheBytes int64
}

// Option configures Open.
type Option func(*readerOptions)

// WithCacheSize keeps up to maxBytes of parsed serialized pages in memory so
// repeated reads skip checksum verification and parsing. Zero disables the
// cache.
func WithCacheSize(maxBytes int64) Option {
	return func(o *readerOptions) { o.cacheBytes = maxBytes }
}

// Reader reads pages from a finished spill. It decodes with its own
// PageCodec, built from the method recorded in the spill, and is therefore
// not safe for concurrent use.
type Reader struct {
	dir    string
	blocks serde.BlockCodec
	method byte
	marks  []Mark
	rows   uint64
	data   []byte
	codec  *serde.PageCodec
	cache  *ristretto.Cache[int, *serde.SerializedPage]
}

// Open opens the spill in dir.
func Open(dir string, blocks serde.BlockCodec, opts ...Option) (*Reader, error) {
	var o readerOptions
	for _, opt := range opts {
		opt(&o)
	}

	methodName, err := os.ReadFile(filepath.Join(dir, compressionFile))
	if err != nil {
		return nil, err
	}
	method, err := compression.ParseMethod(string(methodName))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", compressionFile, err)
	}
	rows, err := readRowCount(dir)
	if err != nil {
		return nil, err
	}
	marks, err := ReadMarksFromFile(filepath.Join(dir, markFile))
	if err != nil {
		return nil, fmt.Errorf("reading marks: %w", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, binFile))
	if err != nil {
		return nil, fmt.Errorf("reading bin file: %w", err)
	}
	for i, m := range marks {
		if m.Offset > uint64(len(data)) || (i > 0 && m.Offset < marks[i-1].Offset) {
			return nil, fmt.Errorf("mark %d: offset %d out of order or past end (%d bytes)", i, m.Offset, len(data))
		}
	}

	factory, err := serde.NewFactory(blocks, method)
	if err != nil {
		return nil, err
	}
	codec, err := factory.New()
	if err != nil {
		return nil, err
	}

	r := &Reader{
		dir:    dir,
		blocks: blocks,
		method: method,
		marks:  marks,
		rows:   rows,
		data:   data,
		codec:  codec,
	}
	if o.cacheBytes > 0 {
		r.cache, err = ristretto.NewCache(&ristretto.Config[int, *serde.SerializedPage]{
			NumCounters:        int64(len(marks))*10 + 10,
			MaxCost:            o.cacheBytes,
			BufferItems:        64,
			IgnoreInternalCost: true,
		})
		if err != nil {
			codec.Close()
			return nil, fmt.Errorf("creating page cache: %w", err)
		}
	}
	return r, nil
}

func (r *Reader) Dir() string      { return r.dir }
func (r *Reader) Method() byte     { return r.method }
func (r *Reader) NumPages() int    { return len(r.marks) }
func (r *Reader) NumRows() uint64  { return r.rows }
func (r *Reader) Marks() []Mark    { return r.marks }
func (r *Reader) SizeBytes() int64 { return int64(len(r.data)) }

// frame returns the bytes of page i as recorded by its mark.
func (r *Reader) frame(i int) ([]byte, error) {
	if i < 0 || i >= len(r.marks) {
		return nil, fmt.Errorf("page %d out of range [0, %d)", i, len(r.marks))
	}
	end := uint64(len(r.data))
	if i+1 < len(r.marks) {
		end = r.marks[i+1].Offset
	}
	return r.data[r.marks[i].Offset:end], nil
}

// ReadSerialized returns page i without decoding it. The payload aliases the
// reader's buffer.
func (r *Reader) ReadSerialized(i int) (*serde.SerializedPage, error) {
	if r.cache != nil {
		if sp, ok := r.cache.Get(i); ok {
			return sp, nil
		}
	}

	frame, err := r.frame(i)
	if err != nil {
		return nil, err
	}
	if sum := xxhash.Sum64(frame); sum != r.marks[i].Checksum {
		return nil, fmt.Errorf("%w: page %d: have %016x, want %016x", ErrChecksumMismatch, i, sum, r.marks[i].Checksum)
	}
	sp, n, err := serde.ParseSerializedPage(frame)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", i, err)
	}
	if n != len(frame) {
		return nil, fmt.Errorf("page %d: %w: frame is %d bytes, mark spans %d",
			i, serde.ErrInvalidSerializedPage, n, len(frame))
	}

	if r.cache != nil {
		r.cache.Set(i, sp, int64(n))
	}
	return sp, nil
}

// ReadPage decodes page i.
func (r *Reader) ReadPage(i int) (*page.Page, error) {
	return r.ReadPageInto(i, nil)
}

// ReadPageInto decodes page i into the storage of reuse where possible.
func (r *Reader) ReadPageInto(i int, reuse *page.Page) (*page.Page, error) {
	sp, err := r.ReadSerialized(i)
	if err != nil {
		return nil, err
	}
	p, err := r.codec.DeserializeInto(sp, reuse)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", i, err)
	}
	return p, nil
}

// ReadRaw returns the encoded blocks of page i and its position count,
// decompressing if needed but not decoding.
func (r *Reader) ReadRaw(i int) ([]byte, int, error) {
	sp, err := r.ReadSerialized(i)
	if err != nil {
		return nil, 0, err
	}
	raw, err := r.codec.Uncompressed(sp)
	if err != nil {
		return nil, 0, fmt.Errorf("page %d: %w", i, err)
	}
	return raw, sp.PositionCount(), nil
}

// Close releases the cache and codec.
func (r *Reader) Close() error {
	if r.cache != nil {
		r.cache.Close()
	}
	return r.codec.Close()
}

// readRowCount reads the row count from count.txt.
func readRowCount(dir string) (uint64, error) {
	data, err := os.ReadFile(filepath.Join(dir, countFile))
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", countFile, err)
	}
	return n, nil
}
