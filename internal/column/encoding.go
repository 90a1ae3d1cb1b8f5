package column

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/harshithgowdakt/granuleserde/internal/types"
)

// maxPrealloc caps up-front allocations driven by a row count read from a
// buffer. Larger columns grow as bytes actually arrive.
const maxPrealloc = 1 << 16

// Reader is what column decoding reads from: a stream that can also be
// consumed byte-wise for varints.
type Reader interface {
	io.Reader
	io.ByteReader
}

// AsReader adapts r to a Reader without buffering ahead, so a decoder never
// consumes bytes past the column it is reading.
func AsReader(r io.Reader) Reader {
	if br, ok := r.(Reader); ok {
		return br
	}
	return &byteReaderWrapper{r: r}
}

// WriteVarUInt writes a variable-length unsigned integer (same encoding as protobuf varint).
func WriteVarUInt(w io.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

// ReadVarUInt reads a variable-length unsigned integer.
func ReadVarUInt(r io.ByteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}

// EncodeColumnTo writes a plain column.
// Fixed-size types: raw little-endian contiguous bytes.
// String: VarInt(length) + raw bytes per string.
func EncodeColumnTo(w io.Writer, col Column) error {
	switch c := col.(type) {
	case *NumericColumn[uint8]:
		_, err := w.Write(c.Data)
		return err
	case *NumericColumn[uint16]:
		return writeFixed(w, c.Data, 2)
	case *NumericColumn[uint32]:
		return writeFixed(w, c.Data, 4)
	case *NumericColumn[uint64]:
		return writeFixed(w, c.Data, 8)
	case *NumericColumn[int8]:
		return writeFixed(w, c.Data, 1)
	case *NumericColumn[int16]:
		return writeFixed(w, c.Data, 2)
	case *NumericColumn[int32]:
		return writeFixed(w, c.Data, 4)
	case *NumericColumn[int64]:
		return writeFixed(w, c.Data, 8)
	case *NumericColumn[float32]:
		return writeFixed(w, c.Data, 4)
	case *NumericColumn[float64]:
		return writeFixed(w, c.Data, 8)
	case *StringColumn:
		for i, s := range c.Data {
			if err := WriteVarUInt(w, uint64(len(s))); err != nil {
				return err
			}
			if _, err := io.WriteString(w, s); err != nil {
				return fmt.Errorf("writing string at row %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported column type for encoding: %T", col)
	}
}

// DecodeColumnInto decodes numRows values of type dt from r. When reuse is a
// plain column of the same type its backing slice is truncated and refilled
// instead of allocating; otherwise a new column is returned. On error the
// contents of reuse are unspecified.
func DecodeColumnInto(r Reader, dt types.DataType, reuse Column, numRows int) (Column, error) {
	switch dt {
	case types.TypeUInt8:
		return decodeNumeric[uint8](r, dt, reuse, numRows)
	case types.TypeUInt16:
		return decodeNumeric[uint16](r, dt, reuse, numRows)
	case types.TypeUInt32, types.TypeDateTime:
		return decodeNumeric[uint32](r, dt, reuse, numRows)
	case types.TypeUInt64:
		return decodeNumeric[uint64](r, dt, reuse, numRows)
	case types.TypeInt8:
		return decodeNumeric[int8](r, dt, reuse, numRows)
	case types.TypeInt16:
		return decodeNumeric[int16](r, dt, reuse, numRows)
	case types.TypeInt32:
		return decodeNumeric[int32](r, dt, reuse, numRows)
	case types.TypeInt64:
		return decodeNumeric[int64](r, dt, reuse, numRows)
	case types.TypeFloat32:
		return decodeNumeric[float32](r, dt, reuse, numRows)
	case types.TypeFloat64:
		return decodeNumeric[float64](r, dt, reuse, numRows)
	case types.TypeString:
		return decodeStrings(r, reuse, numRows)
	default:
		return nil, fmt.Errorf("unsupported data type for decoding: %d", dt)
	}
}

// EncodeDictionaryTo writes VarInt(dict size), the dictionary as a plain
// column, then one uint32 index per row.
func EncodeDictionaryTo(w io.Writer, c *DictionaryColumn) error {
	if err := WriteVarUInt(w, uint64(c.Dict.Len())); err != nil {
		return err
	}
	if err := EncodeColumnTo(w, c.Dict); err != nil {
		return fmt.Errorf("encoding dictionary: %w", err)
	}
	return writeFixed(w, c.Indices, 4)
}

// DecodeDictionaryInto is the dictionary counterpart of DecodeColumnInto.
// Every index is checked against the dictionary size.
func DecodeDictionaryInto(r Reader, dt types.DataType, reuse Column, numRows int) (*DictionaryColumn, error) {
	dictLen, err := ReadVarUInt(r)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary size: %w", err)
	}
	if dictLen > math.MaxUint32 {
		return nil, fmt.Errorf("dictionary size %d out of range", dictLen)
	}

	col, ok := reuse.(*DictionaryColumn)
	if !ok || col == nil || col.Dict == nil || col.DataType() != dt {
		col = &DictionaryColumn{}
	}
	dict, err := DecodeColumnInto(r, dt, col.Dict, int(dictLen))
	if err != nil {
		return nil, fmt.Errorf("decoding dictionary: %w", err)
	}
	indices, err := readFixed(r, col.Indices, numRows, 4)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary indices: %w", err)
	}
	for i, idx := range indices {
		if uint64(idx) >= dictLen {
			return nil, fmt.Errorf("dictionary index %d at row %d out of range [0, %d)", idx, i, dictLen)
		}
	}
	col.Dict = dict
	col.Indices = indices
	col.lookup = nil
	return col, nil
}

func decodeNumeric[T Numeric](r Reader, dt types.DataType, reuse Column, numRows int) (Column, error) {
	col, ok := reuse.(*NumericColumn[T])
	if !ok || col == nil || col.dt != dt {
		col = &NumericColumn[T]{dt: dt, Data: make([]T, 0, min(numRows, maxPrealloc))}
	}
	data, err := readFixed(r, col.Data, numRows, dt.FixedSize())
	if err != nil {
		return nil, err
	}
	col.Data = data
	return col, nil
}

func decodeStrings(r Reader, reuse Column, numRows int) (Column, error) {
	col, ok := reuse.(*StringColumn)
	if !ok || col == nil {
		col = &StringColumn{Data: make([]string, 0, min(numRows, maxPrealloc))}
	}
	col.Data = col.Data[:0]
	for i := 0; i < numRows; i++ {
		length, err := ReadVarUInt(r)
		if err != nil {
			return nil, fmt.Errorf("reading string length at row %d: %w", i, err)
		}
		if lr, ok := r.(interface{ Len() int }); ok && length > uint64(lr.Len()) {
			return nil, fmt.Errorf("reading string data at row %d: %w", i, io.ErrUnexpectedEOF)
		}
		if length > math.MaxInt32 {
			return nil, fmt.Errorf("string length %d at row %d out of range", length, i)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("reading string data at row %d: %w", i, err)
		}
		col.Data = append(col.Data, string(buf))
	}
	return col, nil
}

// writeFixed writes values as size-byte little-endian words, batching
// through a small buffer.
func writeFixed[T Numeric](w io.Writer, data []T, size int) error {
	buf := make([]byte, 0, min(len(data)*size, 4096))
	for _, v := range data {
		buf = appendFixed(buf, v, size)
		if len(buf)+size > cap(buf) {
			if _, err := w.Write(buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		_, err := w.Write(buf)
		return err
	}
	return nil
}

// readFixed reads n size-byte words into dst[:0], in chunks so that a
// corrupt row count cannot force a huge allocation before data is seen.
func readFixed[T Numeric](r io.Reader, dst []T, n, size int) ([]T, error) {
	dst = dst[:0]
	var chunk [4096]byte
	per := len(chunk) / size
	for remaining := n; remaining > 0; {
		k := min(remaining, per)
		b := chunk[:k*size]
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, err
		}
		for i := 0; i < k; i++ {
			dst = append(dst, fromFixed[T](b[i*size:], size))
		}
		remaining -= k
	}
	return dst, nil
}

func appendFixed[T Numeric](dst []byte, v T, size int) []byte {
	var u uint64
	switch x := any(v).(type) {
	case float32:
		u = uint64(math.Float32bits(x))
	case float64:
		u = math.Float64bits(x)
	default:
		u = uint64(v)
	}
	switch size {
	case 1:
		return append(dst, byte(u))
	case 2:
		return binary.LittleEndian.AppendUint16(dst, uint16(u))
	case 4:
		return binary.LittleEndian.AppendUint32(dst, uint32(u))
	default:
		return binary.LittleEndian.AppendUint64(dst, u)
	}
}

func fromFixed[T Numeric](b []byte, size int) T {
	var u uint64
	switch size {
	case 1:
		u = uint64(b[0])
	case 2:
		u = uint64(binary.LittleEndian.Uint16(b))
	case 4:
		u = uint64(binary.LittleEndian.Uint32(b))
	default:
		u = binary.LittleEndian.Uint64(b)
	}
	var zero T
	switch any(zero).(type) {
	case float32:
		return T(math.Float32frombits(uint32(u)))
	case float64:
		return T(math.Float64frombits(u))
	}
	return T(u)
}

// byteReaderWrapper wraps an io.Reader to implement io.ByteReader.
type byteReaderWrapper struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReaderWrapper) ReadByte() (byte, error) {
	_, err := io.ReadFull(b.r, b.buf[:])
	return b.buf[0], err
}

func (b *byteReaderWrapper) Read(p []byte) (int, error) {
	return b.r.Read(p)
}
