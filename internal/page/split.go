package page

import "github.com/harshithgowdakt/granuleserde/internal/column"

// DefaultGranuleSize is the default number of rows per page when a large
// batch is cut up for transport or spilling.
const DefaultGranuleSize = 8192

// Range is a half-open row range [Start, End).
type Range struct {
	Start int
	End   int
}

// SplitIntoRanges splits totalRows into ranges of at most granuleSize rows.
func SplitIntoRanges(totalRows, granuleSize int) []Range {
	if granuleSize <= 0 {
		granuleSize = DefaultGranuleSize
	}
	var result []Range
	for start := 0; start < totalRows; start += granuleSize {
		end := min(start+granuleSize, totalRows)
		result = append(result, Range{Start: start, End: end})
	}
	return result
}

// Slice returns a new page with copies of rows [from, to) of every block.
func (p *Page) Slice(from, to int) *Page {
	blocks := make([]column.Column, len(p.blocks))
	for i, b := range p.blocks {
		blocks[i] = b.Slice(from, to)
	}
	return &Page{positionCount: to - from, blocks: blocks}
}

// Split cuts p into pages of at most granuleSize rows. A page with no rows
// is returned as is.
func (p *Page) Split(granuleSize int) []*Page {
	ranges := SplitIntoRanges(p.positionCount, granuleSize)
	if len(ranges) <= 1 {
		return []*Page{p}
	}
	out := make([]*Page, len(ranges))
	for i, r := range ranges {
		out[i] = p.Slice(r.Start, r.End)
	}
	return out
}
