// Package blockcodec encodes the channels of a page to a byte stream and
// decodes them back.
//
// Stream layout of one page:
//
//	[channel_count varint]
//	per channel: [kind (1)] [data_type (1)] [column data]
//
// Plain column data is the format of column.EncodeColumnTo. Dictionary
// column data is the format of column.EncodeDictionaryTo. The position
// count is not part of the stream; the caller carries it.
package blockcodec

import (
	"fmt"
	"io"
	"math"

	"github.com/harshithgowdakt/granuleserde/internal/column"
	"github.com/harshithgowdakt/granuleserde/internal/page"
	"github.com/harshithgowdakt/granuleserde/internal/types"
)

// Channel kinds.
const (
	KindPlain      byte = 0x01
	KindDictionary byte = 0x02
)

// maxChannels bounds the channel count read from a stream.
const maxChannels = 1 << 16

// Codec is the columnar block codec. It holds no state and may be shared by
// any number of goroutines.
type Codec struct{}

// New returns a block codec.
func New() *Codec { return &Codec{} }

// Encode writes all channels of p to w.
func (Codec) Encode(w io.Writer, p *page.Page) error {
	if err := column.WriteVarUInt(w, uint64(p.ChannelCount())); err != nil {
		return err
	}
	for i := 0; i < p.ChannelCount(); i++ {
		if err := encodeChannel(w, p.Block(i)); err != nil {
			return fmt.Errorf("encoding channel %d: %w", i, err)
		}
	}
	return nil
}

// Decode reads a page of positionCount rows from r into freshly allocated
// columns.
func (c Codec) Decode(r io.Reader, positionCount int) (*page.Page, error) {
	return c.DecodeInto(r, positionCount, nil)
}

// DecodeInto decodes like Decode but refills the column storage of reuse
// where a channel's kind and type match. The returned page shares storage
// with reuse; reuse itself must not be used afterwards.
func (Codec) DecodeInto(r io.Reader, positionCount int, reuse *page.Page) (*page.Page, error) {
	if positionCount < 0 {
		return nil, fmt.Errorf("negative position count: %d", positionCount)
	}
	br := column.AsReader(r)
	n, err := column.ReadVarUInt(br)
	if err != nil {
		return nil, fmt.Errorf("reading channel count: %w", err)
	}
	if n > maxChannels {
		return nil, fmt.Errorf("channel count %d exceeds %d", n, maxChannels)
	}

	blocks := make([]column.Column, n)
	var claimed map[column.Column]struct{}
	if reuse != nil {
		claimed = make(map[column.Column]struct{}, reuse.ChannelCount())
	}
	for i := range blocks {
		var prev column.Column
		if reuse != nil && i < reuse.ChannelCount() {
			prev = unclaimed(claimed, reuse.Block(i))
		}
		b, err := decodeChannel(br, positionCount, prev)
		if err != nil {
			return nil, fmt.Errorf("decoding channel %d: %w", i, err)
		}
		if claimed != nil {
			claim(claimed, b)
		}
		blocks[i] = b
	}
	return page.New(positionCount, blocks...)
}

// unclaimed returns col unless it, or the dictionary inside it, already
// backs an earlier channel of the page being decoded.
func unclaimed(claimed map[column.Column]struct{}, col column.Column) column.Column {
	if col == nil {
		return nil
	}
	if _, ok := claimed[col]; ok {
		return nil
	}
	if dc, ok := col.(*column.DictionaryColumn); ok && dc != nil && dc.Dict != nil {
		if _, ok := claimed[dc.Dict]; ok {
			return nil
		}
	}
	return col
}

func claim(claimed map[column.Column]struct{}, col column.Column) {
	claimed[col] = struct{}{}
	if dc, ok := col.(*column.DictionaryColumn); ok && dc.Dict != nil {
		claimed[dc.Dict] = struct{}{}
	}
}

func encodeChannel(w io.Writer, col column.Column) error {
	kind := KindPlain
	dc, isDict := col.(*column.DictionaryColumn)
	if isDict {
		kind = KindDictionary
		if uint64(dc.DictLen()) > math.MaxUint32 {
			return fmt.Errorf("dictionary too large: %d entries", dc.DictLen())
		}
	}
	if _, err := w.Write([]byte{kind, byte(col.DataType())}); err != nil {
		return err
	}
	if isDict {
		return column.EncodeDictionaryTo(w, dc)
	}
	return column.EncodeColumnTo(w, col)
}

func decodeChannel(r column.Reader, positionCount int, reuse column.Column) (column.Column, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading channel kind: %w", err)
	}
	tb, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading channel type: %w", err)
	}
	dt := types.DataType(tb)
	if !dt.Valid() {
		return nil, fmt.Errorf("unknown data type 0x%02x", tb)
	}

	switch kind {
	case KindPlain:
		return column.DecodeColumnInto(r, dt, reuse, positionCount)
	case KindDictionary:
		return column.DecodeDictionaryInto(r, dt, reuse, positionCount)
	default:
		return nil, fmt.Errorf("unknown channel kind 0x%02x", kind)
	}
}
