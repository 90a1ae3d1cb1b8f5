package column

import (
	"github.com/harshithgowdakt/granuleserde/internal/types"
)

// DictionaryColumn implements dictionary encoding for low-cardinality data.
// Unique values are stored once in Dict; rows hold uint32 indices into it.
type DictionaryColumn struct {
	Dict    Column         // unique values
	Indices []uint32       // row[i] → Dict position
	lookup  map[any]uint32 // value → dict index (for Append)
}

// NewDictionaryColumn creates an empty dictionary column wrapping the given inner type.
func NewDictionaryColumn(innerType types.DataType, capacity int) *DictionaryColumn {
	return &DictionaryColumn{
		Dict:    NewColumn(innerType),
		Indices: make([]uint32, 0, capacity),
		lookup:  make(map[any]uint32),
	}
}

func (c *DictionaryColumn) DataType() types.DataType { return c.Dict.DataType() }
func (c *DictionaryColumn) Len() int                 { return len(c.Indices) }

func (c *DictionaryColumn) Value(i int) types.Value {
	return c.Dict.Value(int(c.Indices[i]))
}

func (c *DictionaryColumn) Append(v types.Value) {
	if c.lookup == nil {
		c.RebuildLookup()
	}
	if idx, ok := c.lookup[v]; ok {
		c.Indices = append(c.Indices, idx)
		return
	}
	idx := uint32(c.Dict.Len())
	c.Dict.Append(v)
	c.lookup[v] = idx
	c.Indices = append(c.Indices, idx)
}

// Slice shares nothing with the receiver; the dictionary is cloned whole.
func (c *DictionaryColumn) Slice(from, to int) Column {
	indices := make([]uint32, to-from)
	copy(indices, c.Indices[from:to])
	return &DictionaryColumn{Dict: c.Dict.Clone(), Indices: indices}
}

func (c *DictionaryColumn) Clone() Column {
	return c.Slice(0, len(c.Indices))
}

func (c *DictionaryColumn) SizeInBytes() int64 {
	return c.Dict.SizeInBytes() + int64(len(c.Indices))*4
}

// DictLen returns the number of unique values in the dictionary.
func (c *DictionaryColumn) DictLen() int {
	return c.Dict.Len()
}

// RebuildLookup reconstructs the value→index lookup map from the dictionary.
// Decoding leaves the map nil; Append rebuilds it on first use.
func (c *DictionaryColumn) RebuildLookup() {
	c.lookup = make(map[any]uint32, c.Dict.Len())
	for i := 0; i < c.Dict.Len(); i++ {
		c.lookup[c.Dict.Value(i)] = uint32(i)
	}
}
