package column

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/granuleserde/internal/types"
)

func encodeColumn(col Column) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeColumnTo(&buf, col); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeColumn(dt types.DataType, data []byte, numRows int) (Column, error) {
	return DecodeColumnInto(bytes.NewReader(data), dt, nil, numRows)
}

func roundTrip(t *testing.T, col Column) Column {
	t.Helper()
	data, err := encodeColumn(col)
	require.NoError(t, err)
	got, err := decodeColumn(col.DataType(), data, col.Len())
	require.NoError(t, err)
	return got
}

func TestEncodeDecodeAllTypes(t *testing.T) {
	cols := []Column{
		NewUInt8([]uint8{0, 1, 255}),
		NewUInt16([]uint16{0, 1, math.MaxUint16}),
		NewUInt32([]uint32{0, 7, math.MaxUint32}),
		NewUInt64([]uint64{0, 42, math.MaxUint64}),
		NewInt8([]int8{math.MinInt8, -1, 0, math.MaxInt8}),
		NewInt16([]int16{math.MinInt16, -300, math.MaxInt16}),
		NewInt32([]int32{math.MinInt32, -70000, math.MaxInt32}),
		NewInt64([]int64{math.MinInt64, -1, math.MaxInt64}),
		NewFloat32([]float32{-1.5, 0, float32(math.Inf(1))}),
		NewFloat64([]float64{-2.25, math.SmallestNonzeroFloat64, math.MaxFloat64}),
		NewString([]string{"", "hello", "żółw"}),
		NewDateTime([]uint32{0, 1700000000}),
	}
	for _, col := range cols {
		t.Run(col.DataType().Name(), func(t *testing.T) {
			got := roundTrip(t, col)
			assert.Equal(t, col.DataType(), got.DataType())
			assert.True(t, Equal(col, got), "values differ: %v vs %v", col, got)
		})
	}
}

func TestEncodedSizeMatchesEstimateForFixedTypes(t *testing.T) {
	col := NewInt32([]int32{1, 2, 3, 4})
	data, err := encodeColumn(col)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), col.SizeInBytes())
}

func TestDecodeIntoReusesStorage(t *testing.T) {
	src := NewUInt64([]uint64{9, 8, 7})
	data, err := encodeColumn(src)
	require.NoError(t, err)

	reuse := NewUInt64(make([]uint64, 10, 16))
	got, err := DecodeColumnInto(bytes.NewReader(data), types.TypeUInt64, reuse, 3)
	require.NoError(t, err)

	out, ok := got.(*NumericColumn[uint64])
	require.True(t, ok)
	assert.Same(t, reuse, out)
	assert.Equal(t, []uint64{9, 8, 7}, out.Data)
	assert.Equal(t, 16, cap(out.Data))
}

func TestDecodeIntoTypeMismatchAllocates(t *testing.T) {
	src := NewDateTime([]uint32{1, 2})
	data, err := encodeColumn(src)
	require.NoError(t, err)

	reuse := NewUInt32([]uint32{5, 5, 5})
	got, err := DecodeColumnInto(bytes.NewReader(data), types.TypeDateTime, reuse, 2)
	require.NoError(t, err)
	assert.NotSame(t, reuse, got)
	assert.Equal(t, types.TypeDateTime, got.DataType())
	assert.Equal(t, []uint32{5, 5, 5}, reuse.Data)
}

func TestDecodeTruncated(t *testing.T) {
	data, err := encodeColumn(NewInt64([]int64{1, 2}))
	require.NoError(t, err)
	_, err = decodeColumn(types.TypeInt64, data[:10], 2)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	data, err = encodeColumn(NewString([]string{"abcdef"}))
	require.NoError(t, err)
	_, err = decodeColumn(types.TypeString, data[:3], 1)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeHugeRowCountFailsWithoutData(t *testing.T) {
	_, err := decodeColumn(types.TypeUInt64, []byte{1, 2, 3}, math.MaxInt32)
	assert.Error(t, err)
}

func TestDictionaryEncodeDecode(t *testing.T) {
	dc := NewDictionaryColumn(types.TypeString, 0)
	values := []string{"a", "b", "c", "a", "b", "c", "a"}
	for _, v := range values {
		dc.Append(v)
	}
	if dc.DictLen() != 3 {
		t.Fatalf("expected 3 unique values in dict, got %d", dc.DictLen())
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeDictionaryTo(&buf, dc))

	got, err := DecodeDictionaryInto(bytes.NewReader(buf.Bytes()), types.TypeString, nil, len(values))
	require.NoError(t, err)
	assert.Equal(t, 3, got.DictLen())
	for i, want := range values {
		if got.Value(i).(string) != want {
			t.Fatalf("row %d: expected %q, got %v", i, want, got.Value(i))
		}
	}

	// Append after decode rebuilds the lookup and still deduplicates.
	got.Append("b")
	assert.Equal(t, 3, got.DictLen())
	assert.True(t, Equal(got, NewString(append(values, "b"))))
}

func TestDictionaryIndexOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarUInt(&buf, 1))
	require.NoError(t, EncodeColumnTo(&buf, NewUInt8([]uint8{7})))
	require.NoError(t, writeFixed(&buf, []uint32{0, 1}, 4))

	_, err := DecodeDictionaryInto(bytes.NewReader(buf.Bytes()), types.TypeUInt8, nil, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestAsReaderDoesNotReadAhead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarUInt(&buf, 300))
	buf.WriteString("tail")

	r := AsReader(io.MultiReader(&buf))
	v, err := ReadVarUInt(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(rest))
}

func TestSliceAndClone(t *testing.T) {
	col := NewString([]string{"x", "y", "z"})
	s := col.Slice(1, 3).(*StringColumn)
	assert.Equal(t, []string{"y", "z"}, s.Data)

	c := col.Clone().(*StringColumn)
	c.Data[0] = "changed"
	assert.Equal(t, "x", col.Data[0])
}
