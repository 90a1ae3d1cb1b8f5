package column

import (
	"fmt"

	"github.com/harshithgowdakt/granuleserde/internal/types"
)

// Column is an in-memory columnar array of a single type. One column is one
// channel (block) of a page.
type Column interface {
	DataType() types.DataType
	Len() int
	Value(i int) types.Value
	Append(v types.Value)
	Slice(from, to int) Column
	Clone() Column
	// SizeInBytes estimates the encoded size of the column's values.
	SizeInBytes() int64
}

// Numeric is the set of Go types backing fixed-size columns.
type Numeric interface {
	uint8 | uint16 | uint32 | uint64 |
		int8 | int16 | int32 | int64 |
		float32 | float64
}

// NumericColumn stores fixed-size values contiguously. The data type is
// kept alongside the slice because UInt32 and DateTime share a Go type.
type NumericColumn[T Numeric] struct {
	dt   types.DataType
	Data []T
}

func (c *NumericColumn[T]) DataType() types.DataType { return c.dt }
func (c *NumericColumn[T]) Len() int                 { return len(c.Data) }
func (c *NumericColumn[T]) Value(i int) types.Value  { return c.Data[i] }
func (c *NumericColumn[T]) Append(v types.Value)     { c.Data = append(c.Data, v.(T)) }

func (c *NumericColumn[T]) Slice(from, to int) Column {
	d := make([]T, to-from)
	copy(d, c.Data[from:to])
	return &NumericColumn[T]{dt: c.dt, Data: d}
}

func (c *NumericColumn[T]) Clone() Column {
	return c.Slice(0, len(c.Data))
}

func (c *NumericColumn[T]) SizeInBytes() int64 {
	return int64(len(c.Data)) * int64(c.dt.FixedSize())
}

// StringColumn stores variable-length strings.
type StringColumn struct{ Data []string }

func (c *StringColumn) DataType() types.DataType { return types.TypeString }
func (c *StringColumn) Len() int                 { return len(c.Data) }
func (c *StringColumn) Value(i int) types.Value  { return c.Data[i] }
func (c *StringColumn) Append(v types.Value)     { c.Data = append(c.Data, v.(string)) }

func (c *StringColumn) Slice(from, to int) Column {
	d := make([]string, to-from)
	copy(d, c.Data[from:to])
	return &StringColumn{Data: d}
}

func (c *StringColumn) Clone() Column {
	return c.Slice(0, len(c.Data))
}

// SizeInBytes counts string bytes plus one 32-bit length per row.
func (c *StringColumn) SizeInBytes() int64 {
	n := int64(len(c.Data)) * 4
	for _, s := range c.Data {
		n += int64(len(s))
	}
	return n
}

func NewUInt8(data []uint8) *NumericColumn[uint8] {
	return &NumericColumn[uint8]{dt: types.TypeUInt8, Data: data}
}

func NewUInt16(data []uint16) *NumericColumn[uint16] {
	return &NumericColumn[uint16]{dt: types.TypeUInt16, Data: data}
}

func NewUInt32(data []uint32) *NumericColumn[uint32] {
	return &NumericColumn[uint32]{dt: types.TypeUInt32, Data: data}
}

func NewUInt64(data []uint64) *NumericColumn[uint64] {
	return &NumericColumn[uint64]{dt: types.TypeUInt64, Data: data}
}

func NewInt8(data []int8) *NumericColumn[int8] {
	return &NumericColumn[int8]{dt: types.TypeInt8, Data: data}
}

func NewInt16(data []int16) *NumericColumn[int16] {
	return &NumericColumn[int16]{dt: types.TypeInt16, Data: data}
}

func NewInt32(data []int32) *NumericColumn[int32] {
	return &NumericColumn[int32]{dt: types.TypeInt32, Data: data}
}

func NewInt64(data []int64) *NumericColumn[int64] {
	return &NumericColumn[int64]{dt: types.TypeInt64, Data: data}
}

func NewFloat32(data []float32) *NumericColumn[float32] {
	return &NumericColumn[float32]{dt: types.TypeFloat32, Data: data}
}

func NewFloat64(data []float64) *NumericColumn[float64] {
	return &NumericColumn[float64]{dt: types.TypeFloat64, Data: data}
}

// NewDateTime wraps unix timestamps (seconds).
func NewDateTime(data []uint32) *NumericColumn[uint32] {
	return &NumericColumn[uint32]{dt: types.TypeDateTime, Data: data}
}

func NewString(data []string) *StringColumn {
	return &StringColumn{Data: data}
}

// NewColumn creates an empty column of the given type.
func NewColumn(dt types.DataType) Column {
	return NewColumnWithCapacity(dt, 0)
}

// NewColumnWithCapacity creates a column pre-allocated for n rows.
func NewColumnWithCapacity(dt types.DataType, n int) Column {
	switch dt {
	case types.TypeUInt8:
		return NewUInt8(make([]uint8, 0, n))
	case types.TypeUInt16:
		return NewUInt16(make([]uint16, 0, n))
	case types.TypeUInt32:
		return NewUInt32(make([]uint32, 0, n))
	case types.TypeUInt64:
		return NewUInt64(make([]uint64, 0, n))
	case types.TypeInt8:
		return NewInt8(make([]int8, 0, n))
	case types.TypeInt16:
		return NewInt16(make([]int16, 0, n))
	case types.TypeInt32:
		return NewInt32(make([]int32, 0, n))
	case types.TypeInt64:
		return NewInt64(make([]int64, 0, n))
	case types.TypeFloat32:
		return NewFloat32(make([]float32, 0, n))
	case types.TypeFloat64:
		return NewFloat64(make([]float64, 0, n))
	case types.TypeString:
		return NewString(make([]string, 0, n))
	case types.TypeDateTime:
		return NewDateTime(make([]uint32, 0, n))
	default:
		panic(fmt.Sprintf("unsupported data type: %d", dt))
	}
}

// Equal reports whether two columns hold the same logical values. The
// physical representation is ignored: a dictionary column equals the plain
// column it materializes to.
func Equal(a, b Column) bool {
	if a.DataType() != b.DataType() || a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !types.SameValue(a.Value(i), b.Value(i)) {
			return false
		}
	}
	return true
}
