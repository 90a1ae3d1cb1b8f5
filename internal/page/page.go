package page

import (
	"fmt"

	"github.com/harshithgowdakt/granuleserde/internal/column"
)

// Page is a columnar batch of rows: an ordered list of channels, each a
// column of exactly PositionCount values. A page may have no channels.
type Page struct {
	positionCount int
	blocks        []column.Column
}

// New creates a page after checking every block holds positionCount rows.
func New(positionCount int, blocks ...column.Column) (*Page, error) {
	if positionCount < 0 {
		return nil, fmt.Errorf("negative position count: %d", positionCount)
	}
	for i, b := range blocks {
		if b == nil {
			return nil, fmt.Errorf("block %d is nil", i)
		}
		if b.Len() != positionCount {
			return nil, fmt.Errorf("block %d has %d positions, expected %d", i, b.Len(), positionCount)
		}
	}
	return &Page{positionCount: positionCount, blocks: blocks}, nil
}

// FromColumns creates a page whose position count is taken from the first
// block. It panics if the blocks disagree.
func FromColumns(blocks ...column.Column) *Page {
	n := 0
	if len(blocks) > 0 {
		n = blocks[0].Len()
	}
	p, err := New(n, blocks...)
	if err != nil {
		panic(err)
	}
	return p
}

// PositionCount returns the number of rows in the page.
func (p *Page) PositionCount() int { return p.positionCount }

// ChannelCount returns the number of blocks.
func (p *Page) ChannelCount() int { return len(p.blocks) }

// Block returns the block of channel i.
func (p *Page) Block(i int) column.Column { return p.blocks[i] }

// SizeInBytes estimates the encoded size of all blocks.
func (p *Page) SizeInBytes() int64 {
	var n int64
	for _, b := range p.blocks {
		n += b.SizeInBytes()
	}
	return n
}

// Equal reports whether both pages have the same shape and logically equal
// values in every channel.
func (p *Page) Equal(other *Page) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.positionCount != other.positionCount || len(p.blocks) != len(other.blocks) {
		return false
	}
	for i := range p.blocks {
		if !column.Equal(p.blocks[i], other.blocks[i]) {
			return false
		}
	}
	return true
}

// Rows returns the values of rows [from, to) in row-major order. Used by
// tools that print pages.
func (p *Page) Rows(from, to int) [][]any {
	from = max(from, 0)
	to = min(to, p.positionCount)
	out := make([][]any, 0, max(to-from, 0))
	for r := from; r < to; r++ {
		row := make([]any, len(p.blocks))
		for c, b := range p.blocks {
			row[c] = b.Value(r)
		}
		out = append(out, row)
	}
	return out
}
